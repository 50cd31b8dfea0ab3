package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mechsight/triage/internal/model"
)

func testEvent() model.Event {
	force := 645.0
	return model.Event{
		RecordID:        "r1",
		EventID:         "error_0",
		Type:            model.KindErrorLog,
		Timestamp:       time.Date(2025, 11, 17, 9, 18, 37, 0, time.UTC),
		Joint:           "J3",
		CollisionType:   model.CollisionHardImpact,
		ForceValue:      &force,
		Severity:        model.SeverityHigh,
		ErrorCode:       "SRVO-324",
		Description:     "Collision detected on J3",
		ConfidenceFlag:  model.ConfidenceHigh,
		RecurrenceCount: 3,
	}
}

func chatReply(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 100, "completion_tokens": 200, "total_tokens": 300},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestClientAnalyzeSuccess(t *testing.T) {
	var gotPath, gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("api-key")

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "SRVO-324")
		assert.Equal(t, 0.3, req.Temperature)
		assert.Equal(t, 1000, req.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatReply(wellFormedResponse)))
	}))
	defer srv.Close()

	c := NewClient(Config{
		Endpoint:   srv.URL,
		APIKey:     "secret",
		Deployment: "gpt-4o",
		APIVersion: "2024-12-01-preview",
	}, zap.NewNop())

	a, err := c.Analyze(context.Background(), testEvent(), nil)
	require.NoError(t, err)
	assert.Equal(t, 78, a.RiskScore)
	assert.Equal(t, model.PriorityHigh, a.Priority)

	assert.Equal(t, "/openai/deployments/gpt-4o/chat/completions", gotPath)
	assert.Equal(t, "api-version=2024-12-01-preview", gotQuery)
	assert.Equal(t, "secret", gotKey)
}

func TestClientAnalyzeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Deployment: "d", APIVersion: "v"}, zap.NewNop())

	_, err := c.Analyze(context.Background(), testEvent(), nil)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate limited")
}

func TestClientAnalyzeSingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Deployment: "d", APIVersion: "v"}, zap.NewNop())

	_, err := c.Analyze(context.Background(), testEvent(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a failed request must not be retried")
}

func TestClientAnalyzeMalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("I could not produce a structured report.")))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Deployment: "d", APIVersion: "v"}, zap.NewNop())

	_, err := c.Analyze(context.Background(), testEvent(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no report sections")
}

func TestClientAnalyzeNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Deployment: "d", APIVersion: "v"}, zap.NewNop())

	_, err := c.Analyze(context.Background(), testEvent(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClientAnalyzeContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(chatReply(wellFormedResponse)))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Deployment: "d", APIVersion: "v"}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Analyze(ctx, testEvent(), nil)
	require.Error(t, err)
}
