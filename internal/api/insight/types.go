package insight

import (
	"fmt"

	"github.com/mewong1/Divedeep/internal/domain"
)

// AnalyzeRequest is the payload for POST /v1/analyze.
type AnalyzeRequest struct {
	Transcript     string   `json:"transcript"`
	Vibe           string   `json:"vibe"`
	AskedQuestions []string `json:"askedQuestions"`
}

// AnalyzeResponse wraps the analysis result envelope.
type AnalyzeResponse struct {
	Result domain.ConversationAnalysis `json:"result"`
}

// GenerateContext carries the prompts for a generation request.
type GenerateContext struct {
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
}

// GenerateRequest is the payload for POST /v1/generate.
type GenerateRequest struct {
	Context GenerateContext `json:"context"`
}

// GenerateResponse wraps the generated question envelope.
type GenerateResponse struct {
	Result domain.GeneratedQuestion `json:"result"`
}

// TimingRequest is the payload for POST /v1/timing. Times are unix
// milliseconds; a zero LastQuestionTime means no question has been asked.
type TimingRequest struct {
	RecentTranscript string `json:"recentTranscript"`
	LastQuestionTime int64  `json:"lastQuestionTime"`
	CurrentTime      int64  `json:"currentTime"`
}

// TimingResponse is the service's yes/no judgment.
type TimingResponse struct {
	ShouldAsk bool `json:"shouldAsk"`
}

// APIError is a non-2xx response from the insight service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("insight API error (status %d): %s", e.StatusCode, e.Message)
}
