package llm

import (
	"strings"
	"testing"

	"github.com/scrypster/mnemo/pkg/types"
)

// TestClassificationPrompt verifies the classifier is restricted to the two labels.
func TestClassificationPrompt(t *testing.T) {
	p := ClassificationPrompt()
	if !strings.Contains(p, `"question"`) || !strings.Contains(p, `"statement"`) {
		t.Errorf("classification prompt missing labels:\n%s", p)
	}
}

// TestExtractionPrompt verifies the strict-JSON instruction and the explicit
// decline shape are present.
func TestExtractionPrompt(t *testing.T) {
	p := ExtractionPrompt()
	for _, want := range []string{`"Fact"`, "what", "value", "expires", `{"error": "unclear"}`} {
		if !strings.Contains(p, want) {
			t.Errorf("extraction prompt missing %q", want)
		}
	}
}

// TestRecallPrompt verifies every stored pair is enumerated and the model is
// pinned to the enumeration.
func TestRecallPrompt(t *testing.T) {
	memories := []types.Memory{
		{What: "favorite food", Value: "pizza"},
		{What: "favorite color", Value: "blue"},
	}

	p := RecallPrompt(memories, "What is my favorite food?")

	if !strings.Contains(p, "- favorite food: pizza") {
		t.Errorf("recall prompt missing enumerated pair:\n%s", p)
	}
	if !strings.Contains(p, "- favorite color: blue") {
		t.Error("recall prompt missing second pair")
	}
	if !strings.Contains(p, `"What is my favorite food?"`) {
		t.Error("recall prompt missing the question")
	}
	if !strings.Contains(p, `"I don't know."`) {
		t.Error("recall prompt missing the fixed fallback answer")
	}
	if !strings.Contains(p, "NEVER use your general knowledge") {
		t.Error("recall prompt missing the general-knowledge prohibition")
	}
}
