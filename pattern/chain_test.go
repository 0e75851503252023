package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/strum/parseerr"
)

func TestChainMatch(t *testing.T) {
	t.Run("first success wins", func(t *testing.T) {
		chain := Chain(
			MustTemplate("{name} | {age}"),
			MustTemplate("{name}, {age}"),
		)

		got, err := chain.Match("Dana | 30")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "Dana", "age": "30"}, got)
	})

	t.Run("falls through to later entries", func(t *testing.T) {
		chain := Chain(
			MustTemplate("{name} | {age}"),
			MustTemplate("{name}, {age}"),
		)

		got, err := chain.Match("Dana, 30")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "Dana", "age": "30"}, got)
	})

	t.Run("order is deterministic for overlapping patterns", func(t *testing.T) {
		// Both entries can match this input; the first declared one must win.
		chain := Chain(
			MustTemplate("{a} | {b}"),
			MustTemplate("{a} | {b} | {c?}"),
		)

		got, err := chain.Match("X | Y")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": "X", "b": "Y"}, got)
	})

	t.Run("exhaustion reports the last entry's reason", func(t *testing.T) {
		chain := Chain(
			MustTemplate("{key}={value}"),
			MustRegex(`(?P<num>\d+)`),
		)

		_, err := chain.Match("no match here at all")
		require.Error(t, err)
		assert.True(t, errors.Is(err, parseerr.ErrChainExhausted))
		assert.Equal(t, parseerr.KindChainExhausted, parseerr.KindOf(err))

		// The regex entry failed last, so its reason is the one carried.
		assert.Contains(t, err.Error(), "does not match regex")
		assert.NotContains(t, err.Error(), "does not match pattern \"{key}={value}\"")
	})

	t.Run("empty chain is exhausted immediately", func(t *testing.T) {
		_, err := Chain().Match("anything")
		require.Error(t, err)
		assert.True(t, errors.Is(err, parseerr.ErrChainExhausted))
	})
}

func TestChainComposition(t *testing.T) {
	t.Run("Then preserves order", func(t *testing.T) {
		a := MustTemplate("{a}")
		b := MustTemplate("{b}")
		c := MustTemplate("{c}")

		chain := Chain(a, b).Then(c)
		require.Equal(t, 3, chain.Len())

		entries := chain.Entries()
		assert.Same(t, a, entries[0])
		assert.Same(t, b, entries[1])
		assert.Same(t, c, entries[2])
	})

	t.Run("Then does not mutate the receiver", func(t *testing.T) {
		base := Chain(MustTemplate("{a}"), MustTemplate("{b}"))
		extended := base.Then(MustTemplate("{c}"))

		assert.Equal(t, 2, base.Len())
		assert.Equal(t, 3, extended.Len())
	})

	t.Run("nested chains are flattened", func(t *testing.T) {
		inner := Chain(MustTemplate("{a}"), MustTemplate("{b}"))
		outer := Chain(inner, MustTemplate("{c}"))

		assert.Equal(t, 3, outer.Len())
	})
}

func TestChainString(t *testing.T) {
	chain := Chain(JSON(), MustTemplate("{name} | {age}"))
	assert.Equal(t, "chain(<json> | {name} | {age})", chain.String())
}
