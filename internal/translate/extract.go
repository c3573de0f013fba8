package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// cleanJSONResponse strips markdown code fences models sometimes wrap
// around their output.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFenceRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixInvalidEscapes re-escapes sequences like \N (the SRT newline
// marker) that are invalid JSON, preserving the literal \N in the
// decoded output.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			switch s[i+1] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(s[i+1])
			default:
				result.WriteString("\\\\")
				result.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		result.WriteByte(s[i])
		i++
	}

	return result.String()
}

// parseResults decodes a model's response text into exactly
// expectedCount results.
func parseResults(responseText string, expectedCount int) ([]Result, error) {
	responseText = cleanJSONResponse(responseText)

	results, err := extractResults(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	if len(results) != expectedCount {
		return nil, fmt.Errorf(
			"expected %d results, got %d",
			expectedCount,
			len(results),
		)
	}

	return results, nil
}

// extractResults finds the translation array anywhere in a model
// response: as a bare array, behind a preamble, or nested in a wrapper
// object under a conventional key.
func extractResults(text string) ([]Result, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if results, ok := tryExtract(raw); ok && len(results) > 0 {
			return results, nil
		}
	}

	return nil, fmt.Errorf("no valid translation JSON found in response")
}

func tryExtract(raw json.RawMessage) ([]Result, bool) {
	var results []Result
	if err := json.Unmarshal(raw, &results); err == nil && hasUsableResult(results) {
		return results, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range []string{"results", "translations", "data", "items"} {
		if field, exists := wrapper[key]; exists {
			var fieldResults []Result
			if err := json.Unmarshal(field, &fieldResults); err == nil && hasUsableResult(fieldResults) {
				return fieldResults, true
			}
		}
	}

	for _, field := range wrapper {
		var fieldResults []Result
		if err := json.Unmarshal(field, &fieldResults); err == nil && hasUsableResult(fieldResults) {
			return fieldResults, true
		}
	}

	return nil, false
}

func hasUsableResult(results []Result) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
