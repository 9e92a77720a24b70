// Package question produces exactly one facilitation question per call by
// prompting the remote insight service with the current analysis snapshot,
// recent transcript, and asked-question history. Like the analysis client it
// never surfaces an error: failures yield a static vibe-keyed fallback
// question targeting the current situation.
package question

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mewong1/Divedeep/internal/api/insight"
	"github.com/mewong1/Divedeep/internal/domain"
)

const fallbackReasoning = "Fallback question due to API error"

// fallbackQuestions is the canned question per vibe, served when the remote
// service is unreachable. Unknown vibes get the mixed variant.
var fallbackQuestions = map[domain.Vibe]string{
	domain.VibeFun:        "Who's here today and what brings you all together?",
	domain.VibeThoughtful: "What's been occupying your mind lately that you haven't had a chance to talk about?",
	domain.VibeDeep:       "What's something you've come to believe that you once doubted?",
	domain.VibeMixed:      "What's the story of how everyone here ended up in the same place today?",
}

// Result is a generated question plus its provenance.
type Result struct {
	Question domain.GeneratedQuestion
	Source   domain.Source
	Reason   domain.FallbackReason
}

// Service is the subset of the insight client used for generation.
type Service interface {
	Generate(ctx context.Context, req *insight.GenerateRequest) (*insight.GenerateResponse, error)
}

// Client wraps the insight service with the fallback contract.
type Client struct {
	service Service
	logger  *slog.Logger
}

// NewClient creates a question client.
func NewClient(service Service, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{service: service, logger: logger}
}

// Fallback returns the canned question for a vibe.
func Fallback(vibe domain.Vibe) domain.GeneratedQuestion {
	text, ok := fallbackQuestions[vibe]
	if !ok {
		text = fallbackQuestions[domain.VibeMixed]
	}
	return domain.GeneratedQuestion{
		Question:  text,
		Domain:    domain.DomainCurrentSituation,
		Reasoning: fallbackReasoning,
	}
}

// Generate requests a single question for the given context. It never
// returns an error; on failure the vibe-keyed fallback is returned.
func (c *Client) Generate(ctx context.Context, qctx domain.QuestionContext) Result {
	req := &insight.GenerateRequest{
		Context: insight.GenerateContext{
			SystemPrompt: SystemPrompt(),
			UserPrompt:   UserPrompt(qctx),
		},
	}

	resp, err := c.service.Generate(ctx, req)
	if err != nil {
		reason := domain.FallbackTransport
		if errors.Is(err, insight.ErrMalformed) {
			reason = domain.FallbackMalformed
		}
		c.logger.Warn("question generation fell back",
			slog.String("vibe", string(qctx.Vibe)),
			slog.String("reason", string(reason)),
			slog.String("error", err.Error()),
		)
		return Result{Question: Fallback(qctx.Vibe), Source: domain.SourceFallback, Reason: reason}
	}

	q := resp.Result
	if q.Question == "" {
		c.logger.Warn("question generation returned empty question, serving fallback")
		return Result{Question: Fallback(qctx.Vibe), Source: domain.SourceFallback, Reason: domain.FallbackMalformed}
	}
	return Result{Question: q, Source: domain.SourceLive, Reason: domain.FallbackNone}
}
