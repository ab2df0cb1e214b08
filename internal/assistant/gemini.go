package assistant

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

	"miaumarket-be/internal/telemetry"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"

	requestTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

var (
	ErrMissingAPIKey = errors.New("gemini: api key not configured")
	ErrBlocked       = errors.New("gemini: response blocked by safety filters")
	ErrQuota         = errors.New("gemini: quota exhausted")
	ErrEmptyResponse = errors.New("gemini: no text in response")
)

// Generator produces text for a prompt. *GeminiClient is the production
// implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// APIError is a non-2xx answer from the Gemini API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
}

type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

func NewGeminiClient(apiKey, baseURL, model string) *GeminiClient {
	return newGeminiClient(apiKey, baseURL, model, telemetry.NewTransport(nil))
}

func newGeminiClient(apiKey, baseURL, model string, rt http.RoundTripper) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: requestTimeout, Transport: rt},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
}

// Generate sends a single-turn prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	payload, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &cfg,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, body)
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return out.text()
}

func apiError(code int, body []byte) error {
	var parsed geminiErrorResponse
	_ = json.Unmarshal(body, &parsed)

	if code == http.StatusTooManyRequests || parsed.Error.Status == "RESOURCE_EXHAUSTED" {
		return fmt.Errorf("%w: %s", ErrQuota, parsed.Error.Message)
	}

	msg := parsed.Error.Message
	if msg == "" {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		msg = string(body)
	}
	return &APIError{StatusCode: code, Status: parsed.Error.Status, Message: msg}
}

func (r *geminiResponse) text() (string, error) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	cand := r.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		return "", fmt.Errorf("%w: finish reason SAFETY", ErrBlocked)
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
