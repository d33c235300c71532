// Package llm provides the prompt templates, provider clients, and response
// parsing for mnemo's three model calls: utterance classification, fact
// extraction, and memory recall. Prompts are strict about output shape so the
// caller can parse responses without heuristics.
package llm

import (
	"fmt"
	"strings"

	"github.com/scrypster/mnemo/pkg/types"
)

// classificationPrompt labels an utterance as a question or a statement.
// The answer is a single lowercase word so the pipeline can branch on it
// after a trim + lowercase normalization.
const classificationPrompt = `You are a classification assistant. Decide whether the user's input is a question or a statement.
Respond with ONLY one lowercase word: "question" or "statement".
Do not explain. Do not add punctuation.`

// extractionPrompt turns a statement into a single structured fact.
// Extraction is memoryless: no stored memories are included.
const extractionPrompt = `You are a memory extraction assistant. Extract a single memory fact from user input.
Return ONLY valid JSON with these exact fields:
- type: "Fact"
- what: brief name of the fact (e.g., "favorite color")
- value: the fact value (e.g., "blue")
- expires: "Never"

Example: "Remember my favorite color is blue"
Output: {"type": "Fact", "what": "favorite color", "value": "blue", "expires": "Never"}

If you cannot extract a clear fact, return: {"error": "unclear"}`

// ClassificationPrompt returns the system prompt for the classification call.
func ClassificationPrompt() string {
	return classificationPrompt
}

// ExtractionPrompt returns the system prompt for the extraction call.
func ExtractionPrompt() string {
	return extractionPrompt
}

// RecallPrompt builds the system prompt for the recall call. It enumerates
// every stored memory as a "- what: value" line and forbids the model from
// answering with anything that is not explicitly in that enumeration.
func RecallPrompt(memories []types.Memory, question string) string {
	var list strings.Builder
	for _, m := range memories {
		fmt.Fprintf(&list, "- %s: %s\n", m.What, m.Value)
	}

	return fmt.Sprintf(`You are a memory recall assistant. You may ONLY answer using information explicitly stored in the user's memories below.

STORED MEMORIES:
%s
CRITICAL RULES:
1. Answer ONLY using information explicitly present in the stored memories above
2. NEVER infer, guess, approximate, extrapolate, or assume anything
3. NEVER use your general knowledge or training data
4. If the exact answer is not in the stored memories, you MUST respond with: "I don't know."
5. Do not provide suggestions, coaching, or unsolicited help
6. Be direct and concise

User question: "%s"

Your answer:`, list.String(), question)
}
