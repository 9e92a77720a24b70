package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mewong1/Divedeep/internal/domain"
	"github.com/mewong1/Divedeep/internal/transcript"
)

// Session is the engine surface the handler exposes.
type Session interface {
	Snapshot() domain.SessionSnapshot
	Dismiss()
	Skip()
	ForceNext()
	AnalyzeNow()
}

// SessionHandler serves the session control API.
type SessionHandler struct {
	session Session
	feed    *transcript.Feed
}

// NewSessionHandler creates a handler. feed may be nil when transcripts
// arrive by some other path; the ingest endpoint then reports 404.
func NewSessionHandler(session Session, feed *transcript.Feed) *SessionHandler {
	return &SessionHandler{session: session, feed: feed}
}

// Register mounts the session routes.
func (h *SessionHandler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/v1/session", h.handleSnapshot)
	r.Post("/v1/session/dismiss", h.handleDismiss)
	r.Post("/v1/session/skip", h.handleSkip)
	r.Post("/v1/session/next", h.handleForceNext)
	r.Post("/v1/session/analyze", h.handleAnalyzeNow)
	if h.feed != nil {
		r.Post("/v1/transcript", h.handleTranscript)
	}
}

func (h *SessionHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *SessionHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.session.Snapshot())
}

func (h *SessionHandler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	h.session.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleSkip(w http.ResponseWriter, r *http.Request) {
	h.session.Skip()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleForceNext(w http.ResponseWriter, r *http.Request) {
	h.session.ForceNext()
	w.WriteHeader(http.StatusAccepted)
}

func (h *SessionHandler) handleAnalyzeNow(w http.ResponseWriter, r *http.Request) {
	h.session.AnalyzeNow()
	w.WriteHeader(http.StatusAccepted)
}

type transcriptRequest struct {
	Text string `json:"text"`
}

func (h *SessionHandler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	h.feed.Append(req.Text)
	w.WriteHeader(http.StatusNoContent)
}
