// Package insight is the HTTP client for the remote insight service, which
// provides conversation analysis, question generation, and timing judgment
// for a live session. The client returns errors as-is; converting failures
// into deterministic fallbacks is the job of the analysis, question, and
// timing packages one layer up.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 30 * time.Second

// ErrMalformed marks a 2xx response whose body did not parse as the expected
// schema. Distinguished from transport failures so callers can tag fallback
// provenance.
var ErrMalformed = errors.New("insight: malformed response")

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the transport timeout for all requests. Ignored when a
// custom HTTP client is supplied.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// Client is an HTTP client for the insight service.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a new insight client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c
}

// Validate reports whether the client is usable. A missing base URL is a
// configuration error surfaced at startup, never inside the engine.
func (c *Client) Validate() error {
	if c.baseURL == "" {
		return fmt.Errorf("insight: base URL is required")
	}
	return nil
}

// Analyze requests a fresh domain-coverage analysis of the conversation.
func (c *Client) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	var resp AnalyzeResponse
	if err := c.post(ctx, "/v1/analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Generate requests a single facilitation question.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.post(ctx, "/v1/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Timing requests a yes/no judgment on whether now is a good moment to ask.
func (c *Client) Timing(ctx context.Context, req *TimingRequest) (*TimingResponse, error) {
	var resp TimingResponse
	if err := c.post(ctx, "/v1/timing", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respData))}
	}

	if err := json.Unmarshal(respData, respBody); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
