package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newOpenAITestServer returns a server that records the last request body and
// replies with the given content.
func newOpenAITestServer(t *testing.T, content string, lastReq *openAIChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(lastReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

// TestOpenAIClient_Complete verifies the wire shape: one system message, one
// user message, the per-call temperature, and the configured model.
func TestOpenAIClient_Complete(t *testing.T) {
	var lastReq openAIChatRequest
	ts := newOpenAITestServer(t, "statement", &lastReq)
	defer ts.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	got, err := client.Complete(context.Background(), "system prompt", "user text", 0.3)
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if got != "statement" {
		t.Errorf("Complete() = %q, want %q", got, "statement")
	}

	if lastReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", lastReq.Model)
	}
	if lastReq.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", lastReq.Temperature)
	}
	if len(lastReq.Messages) != 2 ||
		lastReq.Messages[0].Role != "system" || lastReq.Messages[0].Content != "system prompt" ||
		lastReq.Messages[1].Role != "user" || lastReq.Messages[1].Content != "user text" {
		t.Errorf("unexpected messages: %+v", lastReq.Messages)
	}
}

// TestOpenAIClient_HTTPError verifies non-2xx responses surface as APIError
// with the status code preserved for classification.
func TestOpenAIClient_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	_, err := client.Complete(context.Background(), "sys", "user", 0)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Complete() = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", apiErr.StatusCode)
	}
	if Classify(err) != CategoryRateLimited {
		t.Errorf("Classify() = %v, want rate_limited", Classify(err))
	}
}

// TestOpenAIClient_NoChoices verifies an empty choices array is an error, not
// an empty answer.
func TestOpenAIClient_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer ts.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})
	if _, err := client.Complete(context.Background(), "sys", "user", 0); err == nil {
		t.Fatal("Complete() succeeded on empty choices")
	}
}
