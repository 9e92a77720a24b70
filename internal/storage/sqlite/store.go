// Package sqlite is the SQLite-backed SessionStore for deployments that
// want the session audit trail on disk.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mewong1/Divedeep/internal/domain"
	"github.com/mewong1/Divedeep/internal/storage"
)

// Store is a SQLite implementation of storage.SessionStore.
type Store struct {
	db *sql.DB
}

var _ storage.SessionStore = (*Store)(nil)

// New opens (creating if needed) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS question_events (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			question TEXT NOT NULL,
			domain TEXT NOT NULL,
			source TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_question_events_session ON question_events(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			status TEXT NOT NULL,
			duration_ns INTEGER NOT NULL,
			prompt_tokens INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RecordQuestionEvent(ctx context.Context, event *storage.QuestionEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO question_events (id, session_id, kind, question, domain, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.SessionID, string(event.Kind), event.Question,
		string(event.Domain), string(event.Source), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert question event: %w", err)
	}
	return nil
}

func (s *Store) ListQuestionEvents(ctx context.Context, sessionID string) ([]*storage.QuestionEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, kind, question, domain, source, created_at
		 FROM question_events WHERE session_id = ? ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query question events: %w", err)
	}
	defer rows.Close()

	var result []*storage.QuestionEvent
	for rows.Next() {
		var e storage.QuestionEvent
		var kind, dom, source string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.Question, &dom, &source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question event: %w", err)
		}
		e.Kind = storage.QuestionEventKind(kind)
		e.Domain = domain.ConnectionDomain(dom)
		e.Source = domain.Source(source)
		result = append(result, &e)
	}
	return result, rows.Err()
}

func (s *Store) RecordInteraction(ctx context.Context, interaction *storage.ServiceInteraction) error {
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, session_id, endpoint, status, duration_ns, prompt_tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		interaction.ID, interaction.SessionID, interaction.Endpoint, interaction.Status,
		interaction.Duration.Nanoseconds(), interaction.PromptTokens, interaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

func (s *Store) ListInteractions(ctx context.Context, sessionID string) ([]*storage.ServiceInteraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, endpoint, status, duration_ns, prompt_tokens, created_at
		 FROM interactions WHERE session_id = ? ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var result []*storage.ServiceInteraction
	for rows.Next() {
		var i storage.ServiceInteraction
		var durationNS int64
		if err := rows.Scan(&i.ID, &i.SessionID, &i.Endpoint, &i.Status, &durationNS, &i.PromptTokens, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		i.Duration = time.Duration(durationNS)
		result = append(result, &i)
	}
	return result, rows.Err()
}
