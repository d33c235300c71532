package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Categories(t *testing.T) {
	connRefused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}

	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"connection refused", connRefused, CategoryNoConnection},
		{"no such host", fmt.Errorf("failed to send request: dial tcp: lookup api.openai.com: no such host"), CategoryNoConnection},
		{"http 401", &APIError{Provider: "openai", StatusCode: 401, Body: "unauthorized"}, CategoryInvalidAPIKey},
		{"message mentions api key", errors.New("incorrect API key provided"), CategoryInvalidAPIKey},
		{"http 429", &APIError{Provider: "openai", StatusCode: 429, Body: "slow down"}, CategoryRateLimited},
		{"deadline exceeded", context.DeadlineExceeded, CategoryTimeout},
		{"timeout message", errors.New("request timed out"), CategoryTimeout},
		{"http 500", &APIError{Provider: "openai", StatusCode: 500, Body: "boom"}, CategoryServiceUnavailable},
		{"http 503", &APIError{Provider: "ollama", StatusCode: 503, Body: "overloaded"}, CategoryServiceUnavailable},
		{"anything else", errors.New("mystery failure"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

// TestClassify_WrappedErrors verifies classification sees through fmt.Errorf
// wrapping added at the pipeline boundary.
func TestClassify_WrappedErrors(t *testing.T) {
	err := fmt.Errorf("classification failed: %w",
		&APIError{Provider: "openai", StatusCode: 429, Body: "rate limit"})
	assert.Equal(t, CategoryRateLimited, Classify(err))
}

// TestClassify_FirstMatchWins verifies the declared order: a 429 whose body
// mentions the API key is reported as InvalidAPIKey because that check runs
// before the rate-limit check.
func TestClassify_FirstMatchWins(t *testing.T) {
	err := &APIError{Provider: "openai", StatusCode: 429, Body: "invalid api key"}
	assert.Equal(t, CategoryInvalidAPIKey, Classify(err))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t,
		"Rate limited by the model service. Wait a moment and try again.",
		UserMessage(&APIError{Provider: "openai", StatusCode: 429, Body: "x"}))

	// Unknown failures include the raw error so there is something to report.
	msg := UserMessage(errors.New("mystery failure"))
	assert.Contains(t, msg, "mystery failure")
}
