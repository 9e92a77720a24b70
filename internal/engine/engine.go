// Package engine is the conversation facilitation state machine. It owns all
// session state, drives the bootstrap and periodic check loops, and
// sequences analysis and generation calls with single-flight guarantees.
//
// The engine is a single-writer actor: one goroutine consumes a command
// channel, and every state mutation happens on that goroutine. Timers and
// remote-call completions post commands rather than touching state. Remote
// calls themselves run in short-lived worker goroutines so the actor never
// blocks on the network.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mewong1/Divedeep/internal/analysis"
	"github.com/mewong1/Divedeep/internal/domain"
	"github.com/mewong1/Divedeep/internal/question"
	"github.com/mewong1/Divedeep/internal/storage"
	"github.com/mewong1/Divedeep/internal/timing"
	"github.com/mewong1/Divedeep/internal/tokens"
	"github.com/mewong1/Divedeep/internal/transcript"
)

const (
	// DefaultCheckInterval is the steady-state periodic check cadence.
	DefaultCheckInterval = 15 * time.Second
	// DefaultSettleDelay is the pause before the bootstrap question.
	DefaultSettleDelay = time.Second
	// analysisFreshness is how stale an analysis may be before a periodic
	// check refreshes it ahead of generation.
	analysisFreshness = 30 * time.Second
)

// Analyzer produces a conversation analysis; it never fails.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string, vibe domain.Vibe, askedQuestions []string) analysis.Result
}

// Generator produces a question; it never fails.
type Generator interface {
	Generate(ctx context.Context, qctx domain.QuestionContext) question.Result
}

// Oracle decides whether now is a good moment to ask.
type Oracle interface {
	ShouldAsk(ctx context.Context, recentTranscript string, lastQuestion, now time.Time) timing.Decision
}

// Config carries the session-level settings.
type Config struct {
	SessionID     string
	Vibe          domain.Vibe
	Enabled       bool
	CheckInterval time.Duration
	SettleDelay   time.Duration
}

// Engine is the facilitation state machine. Create with New, drive with
// Start/Stop; all other methods are safe for concurrent use once started.
type Engine struct {
	cfg         Config
	analyzer    Analyzer
	generator   Generator
	oracle      Oracle
	transcripts transcript.Provider
	store       storage.SessionStore
	estimator   *tokens.Estimator
	logger      *slog.Logger
	now         func() time.Time

	commands chan command

	// state is written only by the actor goroutine; the mutex exists so
	// Snapshot can read from other goroutines.
	mu    sync.RWMutex
	state sessionState

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// sessionState is the engine-owned session record.
type sessionState struct {
	phase                 Phase
	currentQuestion       *domain.GeneratedQuestion
	currentSource         domain.Source
	analysis              *domain.ConversationAnalysis
	askedQuestions        []string
	hasShownFirstQuestion bool
	lastQuestionTime      time.Time
	lastAnalysisTime      time.Time
	checkInFlight         bool
}

// Option configures the engine.
type Option func(*Engine)

// WithStore records question events and service interactions to store.
func WithStore(store storage.SessionStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine. The analyzer, generator, oracle, and transcript
// provider are required collaborators.
func New(cfg Config, analyzer Analyzer, generator Generator, oracle Oracle, transcripts transcript.Provider, opts ...Option) *Engine {
	if cfg.SessionID == "" {
		cfg.SessionID = "sess_" + uuid.New().String()
	}
	cfg.Vibe = cfg.Vibe.Canonical()
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}

	e := &Engine{
		cfg:         cfg,
		analyzer:    analyzer,
		generator:   generator,
		oracle:      oracle,
		transcripts: transcripts,
		estimator:   tokens.NewEstimator(),
		logger:      slog.Default(),
		now:         time.Now,
		commands:    make(chan command, 32),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("session_id", cfg.SessionID))
	return e
}

// SessionID returns the session identifier.
func (e *Engine) SessionID() string {
	return e.cfg.SessionID
}

// Start launches the actor loop and, when enabled, the bootstrap and
// periodic timers. Calling Start twice is an error in the caller; the second
// call is ignored.
func (e *Engine) Start(ctx context.Context) {
	if e.started {
		return
	}
	e.started = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	go e.run()
}

// Stop tears the engine down: timers are released as a group and the actor
// drains. In-flight remote calls are not cancelled; their completions are
// discarded.
func (e *Engine) Stop() {
	if !e.started {
		return
	}
	e.cancel()
	<-e.done
}

// Snapshot returns a point-in-time copy of the session state.
func (e *Engine) Snapshot() domain.SessionSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	asked := make([]string, len(e.state.askedQuestions))
	copy(asked, e.state.askedQuestions)

	return domain.SessionSnapshot{
		CurrentQuestion:       e.state.currentQuestion,
		Analysis:              e.state.analysis,
		AskedQuestions:        asked,
		IsAnalyzing:           e.state.phase.analyzing(),
		IsGenerating:          e.state.phase.generating(),
		HasShownFirstQuestion: e.state.hasShownFirstQuestion,
		LastQuestionTime:      e.state.lastQuestionTime,
		LastAnalysisTime:      e.state.lastAnalysisTime,
	}
}

// Dismiss clears the current question. No effect on history or timers.
func (e *Engine) Dismiss() { e.send(command{kind: cmdDismiss}) }

// Skip clears the current question. Behaviorally identical to Dismiss; the
// two verbs exist for interface stability and are recorded distinctly.
func (e *Engine) Skip() { e.send(command{kind: cmdSkip}) }

// ForceNext clears the current question immediately and runs an
// analyze-then-generate sequence, bypassing the timing oracle and the
// analysis freshness gate. Dropped if a force sequence is already running.
func (e *Engine) ForceNext() { e.send(command{kind: cmdForceNext}) }

// AnalyzeNow requests an immediate analysis refresh. Dropped unless the
// engine is idle.
func (e *Engine) AnalyzeNow() { e.send(command{kind: cmdAnalyzeNow}) }

func (e *Engine) send(cmd command) {
	if !e.started {
		return
	}
	select {
	case e.commands <- cmd:
	case <-e.ctx.Done():
	}
}
