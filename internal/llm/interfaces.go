package llm

import "context"

// Completer is the interface for single-turn LLM chat completion.
// Every pipeline request is one system message plus one user message; the
// temperature varies per request type (0.0 for classification and extraction,
// 0.3 for recall), so it is a call parameter rather than client configuration.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
	GetModel() string
}
