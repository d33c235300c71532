package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Category is the user-facing failure class for a provider error.
// Exactly one category is chosen per failure; Classify checks them in the
// order they are declared here and the first match wins.
type Category string

const (
	CategoryNoConnection       Category = "no_connection"
	CategoryInvalidAPIKey      Category = "invalid_api_key"
	CategoryRateLimited        Category = "rate_limited"
	CategoryTimeout            Category = "timeout"
	CategoryServiceUnavailable Category = "service_unavailable"
	CategoryUnknown            Category = "unknown"
)

// APIError is returned by provider clients for any non-2xx HTTP response.
type APIError struct {
	Provider   string // "openai", "ollama", or "anthropic"
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Classify maps a failure raised by a provider client to a Category.
//
// Order matters: a connection-level failure is reported as NoConnection even
// if its message happens to mention a timeout, and a 429 whose body mentions
// the API key is reported as InvalidAPIKey because the key check runs first.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	msg := strings.ToLower(err.Error())

	var apiErr *APIError
	hasStatus := errors.As(err, &apiErr)

	var netErr net.Error
	if errors.As(err, &netErr) && !netErr.Timeout() {
		return CategoryNoConnection
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return CategoryNoConnection
	}

	if (hasStatus && apiErr.StatusCode == http.StatusUnauthorized) || strings.Contains(msg, "api key") {
		return CategoryInvalidAPIKey
	}

	if hasStatus && apiErr.StatusCode == http.StatusTooManyRequests {
		return CategoryRateLimited
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") {
		return CategoryTimeout
	}

	if hasStatus && apiErr.StatusCode >= http.StatusInternalServerError {
		return CategoryServiceUnavailable
	}

	return CategoryUnknown
}

// UserMessage renders a single user-visible line for a provider failure.
// The Unknown category includes the raw error so the user has something to
// report; all other categories use a fixed message.
func UserMessage(err error) string {
	switch Classify(err) {
	case CategoryNoConnection:
		return "No connection. Check your network and try again."
	case CategoryInvalidAPIKey:
		return "Invalid API key. Check your configuration."
	case CategoryRateLimited:
		return "Rate limited by the model service. Wait a moment and try again."
	case CategoryTimeout:
		return "The request timed out. Try again."
	case CategoryServiceUnavailable:
		return "The model service is unavailable. Try again later."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
