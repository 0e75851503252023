package pattern

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zero-day-ai/strum/parseerr"
)

// JSONMatcher parses input text as a JSON value and succeeds only when the
// top-level value is an object. Arrays, scalars, and invalid JSON all fail
// with a no_match error, which lets a chain fall through to its next entry.
type JSONMatcher struct{}

// JSON returns a matcher for JSON-object input. It is typically placed in a
// chain alongside template patterns:
//
//	chain := pattern.Chain(pattern.JSON(), pattern.MustTemplate("{name} | {age}"))
func JSON() *JSONMatcher {
	return &JSONMatcher{}
}

// Match parses text as JSON and returns the decoded object.
func (m *JSONMatcher) Match(text string) (map[string]any, error) {
	const op = "pattern.JSONMatcher.Match"

	trimmed := strings.TrimSpace(text)

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return nil, parseerr.NoMatch(op, fmt.Errorf("invalid JSON: %w", err)).
			WithContext(map[string]any{"input": text})
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, parseerr.NoMatch(op, fmt.Errorf("JSON value is %T, not an object", value)).
			WithContext(map[string]any{"input": text})
	}

	return obj, nil
}

// String identifies the matcher in diagnostics.
func (m *JSONMatcher) String() string {
	return "<json>"
}
