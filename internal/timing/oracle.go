// Package timing decides whether "now" is a good moment to surface a
// question. Cheap deterministic pre-filters handle the clear cases; only the
// ambiguous middle band consults the remote service, and a remote failure
// degrades to a coarse spacing heuristic so questions keep flowing when the
// service is down.
package timing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mewong1/Divedeep/internal/api/insight"
)

const (
	// LongSilence forces a question regardless of the remote judgment.
	LongSilence = 5 * time.Minute
	// MinSpacing is the floor between consecutive questions.
	MinSpacing = 30 * time.Second
	// UtteranceGuard avoids interrupting an utterance in progress.
	UtteranceGuard = 5 * time.Second
	// FallbackSpacing is the coarse safety-net threshold used when the
	// remote timing service is unavailable.
	FallbackSpacing = 60 * time.Second

	// transcriptTail is how much of the transcript's end the remote
	// judgment sees.
	transcriptTail = 300
)

// Rule names which layer of the oracle produced a decision.
type Rule string

const (
	RuleBootstrap      Rule = "bootstrap"
	RuleLongSilence    Rule = "long_silence"
	RuleMinSpacing     Rule = "min_spacing"
	RuleUtteranceGuard Rule = "utterance_guard"
	RuleRemote         Rule = "remote"
	RuleRemoteFallback Rule = "remote_fallback"
)

// Decision is the oracle's verdict plus which rule fired, so logs and tests
// can tell the layers apart.
type Decision struct {
	Ask  bool
	Rule Rule
}

// Service is the subset of the insight client used for timing judgments.
type Service interface {
	Timing(ctx context.Context, req *insight.TimingRequest) (*insight.TimingResponse, error)
}

// Oracle layers deterministic pre-filters over the remote timing service.
type Oracle struct {
	service Service
	logger  *slog.Logger
}

// NewOracle creates a timing oracle.
func NewOracle(service Service, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{service: service, logger: logger}
}

// ShouldAsk evaluates the layered rules in order. lastQuestion is the zero
// time when no question has ever been asked.
func (o *Oracle) ShouldAsk(ctx context.Context, recentTranscript string, lastQuestion, now time.Time) Decision {
	if lastQuestion.IsZero() {
		return Decision{Ask: true, Rule: RuleBootstrap}
	}

	elapsed := now.Sub(lastQuestion)
	if elapsed > LongSilence {
		return Decision{Ask: true, Rule: RuleLongSilence}
	}
	if elapsed < MinSpacing {
		return Decision{Ask: false, Rule: RuleMinSpacing}
	}
	if strings.TrimSpace(recentTranscript) != "" && elapsed < UtteranceGuard {
		return Decision{Ask: false, Rule: RuleUtteranceGuard}
	}

	req := &insight.TimingRequest{
		RecentTranscript: tail(recentTranscript, transcriptTail),
		LastQuestionTime: lastQuestion.UnixMilli(),
		CurrentTime:      now.UnixMilli(),
	}
	resp, err := o.service.Timing(ctx, req)
	if err != nil {
		o.logger.Warn("timing judgment unavailable, using coarse spacing",
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return Decision{Ask: elapsed > FallbackSpacing, Rule: RuleRemoteFallback}
	}

	return Decision{Ask: resp.ShouldAsk, Rule: RuleRemote}
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
