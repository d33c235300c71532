package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidResponse is returned when the extraction response is not
// parseable JSON. The store is never mutated in that case.
var ErrInvalidResponse = errors.New("model returned an unparsable extraction response")

// ErrUnclear is returned when the model explicitly declined to extract a
// fact by responding with {"error": "unclear"}.
var ErrUnclear = errors.New("model could not extract a clear fact")

// FactResponse is the JSON object the extraction prompt elicits.
type FactResponse struct {
	Type    string `json:"type"`
	What    string `json:"what"`
	Value   string `json:"value"`
	Expires string `json:"expires"`
	Error   string `json:"error,omitempty"`
}

// extractJSON extracts the first complete JSON object from a string that may
// contain extra text. LLMs sometimes wrap output in markdown fences or add
// commentary despite instructions; this strips all of that.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // no JSON found, let the parser fail
	}

	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return text // no complete object, let the parser fail
}

// ParseFactResponse parses the extraction call's raw text into a FactResponse.
// It returns ErrInvalidResponse when the payload is not a JSON object and
// ErrUnclear when the model declined with an "error" field.
func ParseFactResponse(raw string) (*FactResponse, error) {
	cleanJSON := extractJSON(raw)

	var resp FactResponse
	if err := json.Unmarshal([]byte(cleanJSON), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnclear, resp.Error)
	}

	return &resp, nil
}
