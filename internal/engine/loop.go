package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mewong1/Divedeep/internal/analysis"
	"github.com/mewong1/Divedeep/internal/domain"
	"github.com/mewong1/Divedeep/internal/question"
	"github.com/mewong1/Divedeep/internal/storage"
)

type commandKind int

const (
	cmdBootstrap commandKind = iota
	cmdTick
	cmdDismiss
	cmdSkip
	cmdForceNext
	cmdAnalyzeNow
	cmdAnalysisDone
	cmdOracleDone
	cmdGenerateDone
)

// command is one unit of actor work. Completion commands carry the results
// of worker goroutines back onto the actor goroutine.
type command struct {
	kind commandKind

	analysisResult analysis.Result
	questionResult question.Result
	decision       bool
	decisionRule   string

	// forced marks completions belonging to a force-next sequence.
	forced bool
	// thenCheck resumes a periodic cycle after an analysis refresh.
	thenCheck bool
}

// run is the actor loop. It owns the bootstrap timer and periodic ticker;
// both are released when the loop exits so nothing fires against stale
// state.
func (e *Engine) run() {
	defer close(e.done)

	// A disabled session runs no timers at all; only user actions and
	// completions flow through.
	var settleC, tickC <-chan time.Time
	if e.cfg.Enabled {
		settle := time.NewTimer(e.cfg.SettleDelay)
		defer settle.Stop()
		settleC = settle.C

		ticker := time.NewTicker(e.cfg.CheckInterval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-settleC:
			settleC = nil
			e.handle(command{kind: cmdBootstrap})
		case <-tickC:
			e.handle(command{kind: cmdTick})
		case cmd := <-e.commands:
			e.handle(cmd)
		}
	}
}

func (e *Engine) handle(cmd command) {
	switch cmd.kind {
	case cmdBootstrap:
		e.handleBootstrap()
	case cmdTick:
		e.handleTick()
	case cmdDismiss:
		e.clearQuestion(storage.QuestionDismissed)
	case cmdSkip:
		e.clearQuestion(storage.QuestionSkipped)
	case cmdForceNext:
		e.handleForceNext()
	case cmdAnalyzeNow:
		e.handleAnalyzeNow()
	case cmdAnalysisDone:
		e.handleAnalysisDone(cmd)
	case cmdOracleDone:
		e.handleOracleDone(cmd)
	case cmdGenerateDone:
		e.handleGenerateDone(cmd)
	}
}

// handleBootstrap generates the first question from a synthesized default
// analysis instead of waiting for a real one, so the session opens quickly
// without an analysis round-trip.
func (e *Engine) handleBootstrap() {
	if !e.cfg.Enabled {
		return
	}
	e.mu.RLock()
	shown, phase := e.state.hasShownFirstQuestion, e.state.phase
	e.mu.RUnlock()
	if shown || phase != PhaseIdle {
		return
	}

	e.logger.Info("bootstrapping first question")
	e.setPhase(PhaseGenerating)
	e.startGenerate(defaultAnalysis(), false)
}

// defaultAnalysis is the synthesized bootstrap analysis: nothing explored
// yet, depth zero, open with the current situation.
func defaultAnalysis() *domain.ConversationAnalysis {
	return &domain.ConversationAnalysis{
		ExploredDomains:   []domain.ConnectionDomain{},
		UnexploredDomains: domain.AllDomains(),
		ConnectionDepth:   0,
		SuggestedDomain:   domain.DomainCurrentSituation,
		Reasoning:         "No conversation yet; open with the current situation.",
	}
}

// handleTick is the steady-state periodic check. It runs only after
// bootstrap has produced a first question, and skips entirely while a
// question is displayed or a generation is committed.
func (e *Engine) handleTick() {
	if !e.cfg.Enabled {
		return
	}

	e.mu.RLock()
	s := e.state
	e.mu.RUnlock()

	if !s.hasShownFirstQuestion || s.checkInFlight {
		return
	}
	if s.phase.generating() || s.currentQuestion != nil {
		return
	}

	e.setCheckInFlight(true)

	// Analysis is always attempted before generation when both are due in
	// the same cycle: the analysis is generation's quality input.
	if e.now().Sub(s.lastAnalysisTime) > analysisFreshness && s.phase != PhaseAnalyzing {
		e.setPhase(PhaseAnalyzing)
		e.startAnalyze(false, true)
		return
	}
	e.startOracle()
}

// handleForceNext is the manual override: clear the displayed question
// synchronously, then analyze and generate as one sequence.
func (e *Engine) handleForceNext() {
	// The displayed question vanishes the moment the user asks for the
	// next one, before any asynchronous work and even if the sequence
	// below cannot start.
	e.clearQuestionSilently()

	e.mu.RLock()
	phase := e.state.phase
	e.mu.RUnlock()
	if phase != PhaseIdle {
		// An analysis or generation of the same kind is already in
		// flight; stacking another would break single-flight.
		return
	}

	e.logger.Info("force-next requested")
	e.setPhase(PhaseAnalyzingThenGenerating)
	e.startAnalyze(true, false)
}

func (e *Engine) handleAnalyzeNow() {
	e.mu.RLock()
	phase := e.state.phase
	e.mu.RUnlock()
	if phase != PhaseIdle {
		return
	}
	e.setPhase(PhaseAnalyzing)
	e.startAnalyze(false, false)
}

// handleAnalysisDone applies a completed analysis wholesale and either
// returns to idle, resumes the periodic cycle, or continues into the
// force-next generation.
func (e *Engine) handleAnalysisDone(cmd command) {
	a := cmd.analysisResult.Analysis
	e.mu.Lock()
	e.state.analysis = &a
	e.state.lastAnalysisTime = e.now()
	e.mu.Unlock()

	e.logger.Info("analysis applied",
		slog.String("source", string(cmd.analysisResult.Source)),
		slog.String("suggested_domain", string(a.SuggestedDomain)),
		slog.Int("depth", a.ConnectionDepth),
	)

	if cmd.forced {
		// Still PhaseAnalyzingThenGenerating; go straight to generation
		// with the fresh analysis.
		e.startGenerate(&a, true)
		return
	}

	e.setPhase(PhaseIdle)
	if cmd.thenCheck {
		e.startOracle()
	}
}

// handleOracleDone finishes a periodic cycle: generate if the oracle said
// yes and the guards still hold.
func (e *Engine) handleOracleDone(cmd command) {
	e.setCheckInFlight(false)

	if !cmd.decision {
		return
	}

	e.mu.RLock()
	phase, current := e.state.phase, e.state.currentQuestion
	analysisSnapshot := e.state.analysis
	e.mu.RUnlock()
	if phase != PhaseIdle || current != nil {
		return
	}

	e.logger.Info("asking a question", slog.String("timing_rule", cmd.decisionRule))
	e.setPhase(PhaseGenerating)
	if analysisSnapshot == nil {
		analysisSnapshot = defaultAnalysis()
	}
	e.startGenerate(analysisSnapshot, false)
}

// handleGenerateDone installs the new question: it replaces the current
// question, appends to the asked history, and stamps the question time with
// the call-completion time.
func (e *Engine) handleGenerateDone(cmd command) {
	q := cmd.questionResult.Question
	now := e.now()

	e.mu.Lock()
	e.state.currentQuestion = &q
	e.state.currentSource = cmd.questionResult.Source
	e.state.askedQuestions = append(e.state.askedQuestions, q.Question)
	e.state.lastQuestionTime = now
	e.state.hasShownFirstQuestion = true
	e.state.phase = PhaseIdle
	e.mu.Unlock()

	e.logger.Info("question ready",
		slog.String("domain", string(q.Domain)),
		slog.String("source", string(cmd.questionResult.Source)),
	)

	kind := storage.QuestionShown
	if cmd.forced {
		kind = storage.QuestionForced
	}
	e.recordQuestionEvent(kind, &q, cmd.questionResult.Source)
}

// clearQuestion clears the displayed question and records which verb did it.
func (e *Engine) clearQuestion(kind storage.QuestionEventKind) {
	e.mu.Lock()
	q := e.state.currentQuestion
	src := e.state.currentSource
	e.state.currentQuestion = nil
	e.mu.Unlock()

	if q != nil {
		e.recordQuestionEvent(kind, q, src)
	}
}

func (e *Engine) clearQuestionSilently() {
	e.mu.Lock()
	e.state.currentQuestion = nil
	e.mu.Unlock()
}

func (e *Engine) setPhase(p Phase) {
	e.mu.Lock()
	e.state.phase = p
	e.mu.Unlock()
}

func (e *Engine) setCheckInFlight(v bool) {
	e.mu.Lock()
	e.state.checkInFlight = v
	e.mu.Unlock()
}

// startAnalyze runs one analysis call in a worker goroutine. The phase has
// already been committed by the caller, which is what makes the call
// single-flight.
func (e *Engine) startAnalyze(forced, thenCheck bool) {
	snapshot := e.Snapshot()
	transcriptText := e.transcripts.Transcript()

	go func() {
		start := e.now()
		result := e.analyzer.Analyze(e.ctx, transcriptText, e.cfg.Vibe, snapshot.AskedQuestions)
		e.recordInteraction("analyze", result.Source, e.now().Sub(start), transcriptText)
		e.send(command{kind: cmdAnalysisDone, analysisResult: result, forced: forced, thenCheck: thenCheck})
	}()
}

// startGenerate runs one generation call in a worker goroutine.
func (e *Engine) startGenerate(a *domain.ConversationAnalysis, forced bool) {
	snapshot := e.Snapshot()
	transcriptText := e.transcripts.Transcript()

	qctx := domain.QuestionContext{
		Vibe:             e.cfg.Vibe,
		Analysis:         a,
		RecentTranscript: transcriptText,
		AskedQuestions:   snapshot.AskedQuestions,
	}

	go func() {
		start := e.now()
		result := e.generator.Generate(e.ctx, qctx)
		e.recordInteraction("generate", result.Source, e.now().Sub(start), qctx.RecentTranscript)
		e.send(command{kind: cmdGenerateDone, questionResult: result, forced: forced})
	}()
}

// startOracle consults the timing oracle in a worker goroutine; the oracle
// may call the remote service in its middle band.
func (e *Engine) startOracle() {
	e.mu.RLock()
	lastQuestion := e.state.lastQuestionTime
	e.mu.RUnlock()
	transcriptText := e.transcripts.Transcript()

	go func() {
		decision := e.oracle.ShouldAsk(e.ctx, transcriptText, lastQuestion, e.now())
		e.send(command{kind: cmdOracleDone, decision: decision.Ask, decisionRule: string(decision.Rule)})
	}()
}

// recordQuestionEvent writes a question lifecycle event best-effort.
func (e *Engine) recordQuestionEvent(kind storage.QuestionEventKind, q *domain.GeneratedQuestion, source domain.Source) {
	if e.store == nil {
		return
	}
	event := &storage.QuestionEvent{
		ID:        "qev_" + uuid.New().String(),
		SessionID: e.cfg.SessionID,
		Kind:      kind,
		Question:  q.Question,
		Domain:    q.Domain,
		Source:    source,
		CreatedAt: e.now(),
	}
	if err := e.store.RecordQuestionEvent(context.Background(), event); err != nil {
		e.logger.Error("failed to record question event",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}

// recordInteraction writes a service-call record best-effort.
func (e *Engine) recordInteraction(endpoint string, source domain.Source, duration time.Duration, prompt string) {
	if e.store == nil {
		return
	}
	status := "ok"
	if source == domain.SourceFallback {
		status = "fallback"
	}
	interaction := &storage.ServiceInteraction{
		ID:           "int_" + uuid.New().String(),
		SessionID:    e.cfg.SessionID,
		Endpoint:     endpoint,
		Status:       status,
		Duration:     duration,
		PromptTokens: e.estimator.Count(prompt),
		CreatedAt:    e.now(),
	}
	if err := e.store.RecordInteraction(context.Background(), interaction); err != nil {
		e.logger.Error("failed to record interaction",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
	}
}
