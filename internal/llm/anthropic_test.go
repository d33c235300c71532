package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestAnthropicClient_Complete verifies the /v1/messages wire shape: the
// system prompt travels as a top-level field, not a message role, and the
// per-call temperature and auth headers are set.
func TestAnthropicClient_Complete(t *testing.T) {
	var lastReq anthropicMessagesRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("anthropic-version = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&lastReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"text": "statement"}},
		})
	}))
	defer ts.Close()

	client := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: ts.URL})

	got, err := client.Complete(context.Background(), "system prompt", "user text", 0.3)
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if got != "statement" {
		t.Errorf("Complete() = %q, want %q", got, "statement")
	}

	if lastReq.System != "system prompt" {
		t.Errorf("system = %q, want top-level system prompt", lastReq.System)
	}
	if lastReq.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", lastReq.Temperature)
	}
	if lastReq.MaxTokens != 1024 {
		t.Errorf("max_tokens = %d, want 1024", lastReq.MaxTokens)
	}
	if len(lastReq.Messages) != 1 ||
		lastReq.Messages[0].Role != "user" || lastReq.Messages[0].Content != "user text" {
		t.Errorf("unexpected messages: %+v", lastReq.Messages)
	}
}

// TestAnthropicClient_HTTPError verifies non-2xx responses surface as APIError
// with the status code preserved for classification.
func TestAnthropicClient_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: ts.URL})

	_, err := client.Complete(context.Background(), "sys", "user", 0)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Complete() = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
	if Classify(err) != CategoryServiceUnavailable {
		t.Errorf("Classify() = %v, want service_unavailable", Classify(err))
	}
}

// TestAnthropicClient_EmptyContent verifies an empty content array is an
// error, not an empty answer.
func TestAnthropicClient_EmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": []}`))
	}))
	defer ts.Close()

	client := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: ts.URL})
	if _, err := client.Complete(context.Background(), "sys", "user", 0); err == nil {
		t.Fatal("Complete() succeeded on empty content")
	}
}
