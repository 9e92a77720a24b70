package insight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mewong1/Divedeep/internal/domain"
)

func TestClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analyze" {
			t.Errorf("path = %q, want /v1/analyze", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}

		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Vibe != "deep" {
			t.Errorf("vibe = %q, want deep", req.Vibe)
		}

		json.NewEncoder(w).Encode(AnalyzeResponse{
			Result: domain.ConversationAnalysis{
				ExploredDomains:   []domain.ConnectionDomain{domain.DomainCurrentSituation},
				UnexploredDomains: []domain.ConnectionDomain{domain.DomainEmotions},
				ConnectionDepth:   4,
				SuggestedDomain:   domain.DomainEmotions,
				Reasoning:         "emotions untouched",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithAPIKey("test-key"))
	resp, err := client.Analyze(context.Background(), &AnalyzeRequest{
		Transcript: "hello there",
		Vibe:       "deep",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if resp.Result.SuggestedDomain != domain.DomainEmotions {
		t.Errorf("suggested domain = %q, want emotions", resp.Result.SuggestedDomain)
	}
	if resp.Result.ConnectionDepth != 4 {
		t.Errorf("depth = %d, want 4", resp.Result.ConnectionDepth)
	}
}

func TestClient_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Generate(context.Background(), &GenerateRequest{})
	if err == nil {
		t.Fatal("Generate() returned nil error on 500")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.StatusCode)
	}
}

func TestClient_Timing_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Timing(context.Background(), &TimingRequest{})
	if err == nil {
		t.Fatal("Timing() returned nil error on malformed body")
	}
}

func TestClient_Timing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req TimingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.LastQuestionTime == 0 {
			t.Error("lastQuestionTime not carried over")
		}
		json.NewEncoder(w).Encode(TimingResponse{ShouldAsk: true})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Timing(context.Background(), &TimingRequest{
		RecentTranscript: "so anyway",
		LastQuestionTime: 1000,
		CurrentTime:      46000,
	})
	if err != nil {
		t.Fatalf("Timing() error = %v", err)
	}
	if !resp.ShouldAsk {
		t.Error("shouldAsk = false, want true")
	}
}

func TestClient_Validate(t *testing.T) {
	if err := NewClient("").Validate(); err == nil {
		t.Error("Validate() accepted empty base URL")
	}
	if err := NewClient("http://localhost:9999").Validate(); err != nil {
		t.Errorf("Validate() rejected valid client: %v", err)
	}
}
