package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mewong1/Divedeep/internal/domain"
	"github.com/mewong1/Divedeep/internal/storage"
)

func TestStore_QuestionEvents(t *testing.T) {
	store := New()
	ctx := context.Background()

	events := []*storage.QuestionEvent{
		{ID: "e1", SessionID: "s1", Kind: storage.QuestionShown, Question: "q1", Domain: domain.DomainCurrentSituation, Source: domain.SourceLive},
		{ID: "e2", SessionID: "s1", Kind: storage.QuestionDismissed, Question: "q1", Domain: domain.DomainCurrentSituation, Source: domain.SourceLive},
		{ID: "e3", SessionID: "s2", Kind: storage.QuestionShown, Question: "other", Domain: domain.DomainEmotions, Source: domain.SourceFallback},
	}
	for _, e := range events {
		if err := store.RecordQuestionEvent(ctx, e); err != nil {
			t.Fatalf("RecordQuestionEvent(%s) error = %v", e.ID, err)
		}
	}

	got, err := store.ListQuestionEvents(ctx, "s1")
	if err != nil {
		t.Fatalf("ListQuestionEvents() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("event count = %d, want 2", len(got))
	}
	if got[0].ID != "e1" || got[1].ID != "e2" {
		t.Errorf("event order = %s, %s; want e1, e2", got[0].ID, got[1].ID)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not defaulted")
	}

	// Returned records are copies.
	got[0].Question = "mutated"
	again, _ := store.ListQuestionEvents(ctx, "s1")
	if again[0].Question != "q1" {
		t.Error("stored event mutated through returned copy")
	}
}

func TestStore_Interactions(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.RecordInteraction(ctx, &storage.ServiceInteraction{
		ID:           "i1",
		SessionID:    "s1",
		Endpoint:     "analyze",
		Status:       "ok",
		Duration:     120 * time.Millisecond,
		PromptTokens: 42,
	})
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	got, err := store.ListInteractions(ctx, "s1")
	if err != nil {
		t.Fatalf("ListInteractions() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("interaction count = %d, want 1", len(got))
	}
	if got[0].Endpoint != "analyze" || got[0].PromptTokens != 42 {
		t.Errorf("interaction = %+v", got[0])
	}
}
