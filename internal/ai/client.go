package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/model"
)

// APIError represents a non-2xx HTTP response from the model service.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Config holds the connection settings for an OpenAI-compatible
// chat-completions deployment.
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Timeout    time.Duration
}

// Client calls an OpenAI-compatible chat-completions service. Requests
// are made exactly once: a failed or timed-out attempt is not retried,
// so triage latency stays predictable and the caller falls back to the
// heuristic path.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Client with a bounded request timeout.
func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Analyze sends the event and its similar-history context to the model
// and parses the five-section structured report. Implements Analyzer.
func (c *Client) Analyze(ctx context.Context, event model.Event, similar []model.Match) (*Analysis, error) {
	req := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(event, similar)},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	}

	text, err := c.complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ai analyze: %w", err)
	}

	analysis, err := ParseResponse(text)
	if err != nil {
		return nil, fmt.Errorf("ai analyze: %w", err)
	}
	return analysis, nil
}

// complete performs one chat-completions request.
func (c *Client) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.cfg.Endpoint, url.PathEscape(c.cfg.Deployment), url.QueryEscape(c.cfg.APIVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(respBody)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		return "", &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}

	c.log.Debug("ai completion",
		zap.Int("prompt_tokens", parsed.Usage.PromptTokens),
		zap.Int("completion_tokens", parsed.Usage.CompletionTokens))
	return parsed.Choices[0].Message.Content, nil
}
