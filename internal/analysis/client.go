// Package analysis classifies a running conversation into explored and
// unexplored connection domains by calling the remote insight service. The
// client never returns an error: any transport or decoding failure yields a
// deterministic fallback analysis identical in shape to a live one, so
// callers never branch on failure versus success.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mewong1/Divedeep/internal/api/insight"
	"github.com/mewong1/Divedeep/internal/domain"
)

const fallbackReasoning = "Starting with current situation as a comfortable entry point."

// systemContext frames every analysis request. The taxonomy text is part of
// the behavioral contract and is deliberately not configurable.
const systemContext = `You analyze a live conversation between people who want to connect more deeply.
Classify which of these connection domains the conversation has already explored:
values_beliefs (core values, worldview, convictions), personal_history (formative
experiences, background, family), aspirations (hopes, goals, dreams),
emotions (feelings named or shown, vulnerability), relational_style (how they
relate, conflict, closeness), current_situation (what is happening in their
lives right now).

Estimate connectionDepth from 0 (strangers exchanging pleasantries) to 10
(profound mutual vulnerability). Suggest the single domain a facilitator
should steer toward next, preferring unexplored domains at a comfortable step
up in depth. Respond with strict JSON only.`

// Result is an analysis plus its provenance.
type Result struct {
	Analysis domain.ConversationAnalysis
	Source   domain.Source
	Reason   domain.FallbackReason
}

// Service is the subset of the insight client used for analysis.
type Service interface {
	Analyze(ctx context.Context, req *insight.AnalyzeRequest) (*insight.AnalyzeResponse, error)
}

// Client wraps the insight service with the fallback contract.
type Client struct {
	service Service
	logger  *slog.Logger
}

// NewClient creates an analysis client.
func NewClient(service Service, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{service: service, logger: logger}
}

// Fallback is the deterministic analysis served when the remote service
// fails. It treats every domain as unexplored and suggests opening with the
// current situation.
func Fallback() domain.ConversationAnalysis {
	return domain.ConversationAnalysis{
		ExploredDomains:   []domain.ConnectionDomain{},
		UnexploredDomains: domain.AllDomains(),
		ConnectionDepth:   1,
		SuggestedDomain:   domain.DomainCurrentSituation,
		Reasoning:         fallbackReasoning,
	}
}

// SystemContext returns the fixed analysis framing text.
func SystemContext() string {
	return strings.TrimSpace(systemContext)
}

// Analyze requests a fresh conversation analysis. It never returns an error;
// on failure the fallback analysis is returned with provenance recorded.
func (c *Client) Analyze(ctx context.Context, transcript string, vibe domain.Vibe, askedQuestions []string) Result {
	req := &insight.AnalyzeRequest{
		Transcript:     transcript,
		Vibe:           string(vibe.Canonical()),
		AskedQuestions: askedQuestions,
	}

	resp, err := c.service.Analyze(ctx, req)
	if err != nil {
		reason := classify(err)
		c.logger.Warn("analysis fell back",
			slog.String("reason", string(reason)),
			slog.String("error", err.Error()),
		)
		return Result{Analysis: Fallback(), Source: domain.SourceFallback, Reason: reason}
	}

	a := resp.Result
	a.ClampDepth()
	return Result{Analysis: a, Source: domain.SourceLive, Reason: domain.FallbackNone}
}

// classify maps a client error onto a fallback reason. Parse failures are
// malformed responses; everything else is a transport problem.
func classify(err error) domain.FallbackReason {
	if errors.Is(err, insight.ErrMalformed) {
		return domain.FallbackMalformed
	}
	return domain.FallbackTransport
}
