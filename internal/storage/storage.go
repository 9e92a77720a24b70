// Package storage defines the audit-trail stores for a facilitation session:
// what questions were surfaced (and how they ended) and what calls were made
// to the insight service. These records exist for operators; the engine works
// purely from its in-memory state and writes here best-effort.
package storage

import (
	"context"
	"time"

	"github.com/mewong1/Divedeep/internal/domain"
)

// QuestionEventKind describes what happened to a question.
type QuestionEventKind string

const (
	QuestionShown     QuestionEventKind = "shown"
	QuestionDismissed QuestionEventKind = "dismissed"
	QuestionSkipped   QuestionEventKind = "skipped"
	QuestionForced    QuestionEventKind = "forced"
)

// QuestionEvent records a question lifecycle event within a session.
type QuestionEvent struct {
	ID        string
	SessionID string
	Kind      QuestionEventKind
	Question  string
	Domain    domain.ConnectionDomain
	Source    domain.Source
	CreatedAt time.Time
}

// ServiceInteraction records one call to the insight service.
type ServiceInteraction struct {
	ID           string
	SessionID    string
	Endpoint     string // analyze, generate, timing
	Status       string // ok, fallback
	Duration     time.Duration
	PromptTokens int
	CreatedAt    time.Time
}

// QuestionStore persists question lifecycle events.
type QuestionStore interface {
	RecordQuestionEvent(ctx context.Context, event *QuestionEvent) error
	ListQuestionEvents(ctx context.Context, sessionID string) ([]*QuestionEvent, error)
}

// InteractionStore persists insight-service call records.
type InteractionStore interface {
	RecordInteraction(ctx context.Context, interaction *ServiceInteraction) error
	ListInteractions(ctx context.Context, sessionID string) ([]*ServiceInteraction, error)
}

// SessionStore is the combined store a session writes to.
type SessionStore interface {
	QuestionStore
	InteractionStore
}
