// Package memory is the in-memory SessionStore, the default when no sqlite
// path is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mewong1/Divedeep/internal/storage"
)

// Store is an in-memory implementation of storage.SessionStore.
type Store struct {
	mu           sync.RWMutex
	events       []*storage.QuestionEvent
	interactions []*storage.ServiceInteraction
}

var _ storage.SessionStore = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{}
}

func (s *Store) RecordQuestionEvent(ctx context.Context, event *storage.QuestionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	copied := *event
	s.events = append(s.events, &copied)
	return nil
}

func (s *Store) ListQuestionEvents(ctx context.Context, sessionID string) ([]*storage.QuestionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*storage.QuestionEvent
	for _, e := range s.events {
		if sessionID != "" && e.SessionID != sessionID {
			continue
		}
		copied := *e
		result = append(result, &copied)
	}
	return result, nil
}

func (s *Store) RecordInteraction(ctx context.Context, interaction *storage.ServiceInteraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}
	copied := *interaction
	s.interactions = append(s.interactions, &copied)
	return nil
}

func (s *Store) ListInteractions(ctx context.Context, sessionID string) ([]*storage.ServiceInteraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*storage.ServiceInteraction
	for _, i := range s.interactions {
		if sessionID != "" && i.SessionID != sessionID {
			continue
		}
		copied := *i
		result = append(result, &copied)
	}
	return result, nil
}
