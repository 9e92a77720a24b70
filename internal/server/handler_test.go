package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mewong1/Divedeep/internal/domain"
	"github.com/mewong1/Divedeep/internal/transcript"
)

// fakeSession records which actions were invoked.
type fakeSession struct {
	snapshot  domain.SessionSnapshot
	dismissed int
	skipped   int
	forced    int
	analyzed  int
}

func (f *fakeSession) Snapshot() domain.SessionSnapshot { return f.snapshot }
func (f *fakeSession) Dismiss()                         { f.dismissed++ }
func (f *fakeSession) Skip()                            { f.skipped++ }
func (f *fakeSession) ForceNext()                       { f.forced++ }
func (f *fakeSession) AnalyzeNow()                      { f.analyzed++ }

func newTestServer(t *testing.T, session Session, feed *transcript.Feed) *httptest.Server {
	t.Helper()
	srv := New(0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	NewSessionHandler(session, feed).Register(srv.Router)
	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleSnapshot(t *testing.T) {
	session := &fakeSession{
		snapshot: domain.SessionSnapshot{
			CurrentQuestion: &domain.GeneratedQuestion{
				Question: "What brought you here?",
				Domain:   domain.DomainCurrentSituation,
			},
			AskedQuestions: []string{"What brought you here?"},
			IsGenerating:   false,
		},
	}
	ts := newTestServer(t, session, nil)

	resp, err := http.Get(ts.URL + "/v1/session")
	if err != nil {
		t.Fatalf("GET /v1/session error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var snap domain.SessionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.CurrentQuestion == nil || snap.CurrentQuestion.Question != "What brought you here?" {
		t.Errorf("snapshot question = %+v", snap.CurrentQuestion)
	}
	if len(snap.AskedQuestions) != 1 {
		t.Errorf("asked questions = %v", snap.AskedQuestions)
	}
}

func TestActionEndpoints(t *testing.T) {
	session := &fakeSession{}
	ts := newTestServer(t, session, nil)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/v1/session/dismiss", http.StatusNoContent},
		{"/v1/session/skip", http.StatusNoContent},
		{"/v1/session/next", http.StatusAccepted},
		{"/v1/session/analyze", http.StatusAccepted},
	}
	for _, tt := range tests {
		resp, err := http.Post(ts.URL+tt.path, "application/json", nil)
		if err != nil {
			t.Fatalf("POST %s error = %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("POST %s status = %d, want %d", tt.path, resp.StatusCode, tt.wantStatus)
		}
	}

	if session.dismissed != 1 || session.skipped != 1 || session.forced != 1 || session.analyzed != 1 {
		t.Errorf("action counts = %+v", session)
	}
}

func TestHandleTranscript(t *testing.T) {
	feed := transcript.NewFeed()
	ts := newTestServer(t, &fakeSession{}, feed)

	resp, err := http.Post(ts.URL+"/v1/transcript", "application/json",
		strings.NewReader(`{"text":"we were just talking about the trip"}`))
	if err != nil {
		t.Fatalf("POST /v1/transcript error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := feed.Transcript(); got != "we were just talking about the trip" {
		t.Errorf("feed transcript = %q", got)
	}

	bad, err := http.Post(ts.URL+"/v1/transcript", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", bad.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeSession{}, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
