package pattern

import (
	"errors"
	"strings"

	"github.com/zero-day-ai/strum/parseerr"
)

// ChainMatcher is an ordered sequence of matchers tried strictly left to
// right. The first success wins; later entries are never consulted.
//
// Chains are immutable: Then returns a new chain, and composition preserves
// order, so Chain(a, b).Then(c) tries a, then b, then c.
type ChainMatcher struct {
	entries []Matcher
}

// Chain builds a chain from the given matchers in order. Nested chains are
// flattened, keeping composition associative.
func Chain(matchers ...Matcher) *ChainMatcher {
	c := &ChainMatcher{entries: make([]Matcher, 0, len(matchers))}
	for _, m := range matchers {
		if sub, ok := m.(*ChainMatcher); ok {
			c.entries = append(c.entries, sub.entries...)
			continue
		}
		c.entries = append(c.entries, m)
	}
	return c
}

// Then returns a new chain with m appended after the receiver's entries.
func (c *ChainMatcher) Then(m Matcher) *ChainMatcher {
	entries := make([]Matcher, 0, len(c.entries)+1)
	entries = append(entries, c.entries...)
	return Chain(append(entries, m)...)
}

// Match tries each entry in order and returns the first successful mapping.
//
// When every entry fails the chain reports a chain_exhausted error carrying
// the LAST attempted entry's failure reason. Earlier mismatches are internal
// fallthrough signals and are not surfaced.
func (c *ChainMatcher) Match(text string) (map[string]any, error) {
	const op = "pattern.ChainMatcher.Match"

	if len(c.entries) == 0 {
		return nil, parseerr.Exhausted(op, errors.New("chain has no entries")).
			WithContext(map[string]any{"input": text})
	}

	var last error
	for _, m := range c.entries {
		fields, err := m.Match(text)
		if err == nil {
			return fields, nil
		}
		last = err
	}

	return nil, parseerr.Exhausted(op, last).
		WithContext(map[string]any{"pattern": c.String(), "input": text})
}

// Entries returns a copy of the chain's matchers in try order.
func (c *ChainMatcher) Entries() []Matcher {
	out := make([]Matcher, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries in the chain.
func (c *ChainMatcher) Len() int {
	return len(c.entries)
}

// String renders the chain's entries in try order.
func (c *ChainMatcher) String() string {
	parts := make([]string, len(c.entries))
	for i, m := range c.entries {
		parts[i] = m.String()
	}
	return "chain(" + strings.Join(parts, " | ") + ")"
}
