package strum

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/strum/parseerr"
	"github.com/zero-day-ai/strum/pattern"
	"github.com/zero-day-ai/strum/resolve"
	"github.com/zero-day-ai/strum/schema"
)

func personSchema() schema.JSON {
	return schema.Object(map[string]schema.JSON{
		"name": schema.String(),
		"age":  schema.Int(),
		"city": schema.String(),
	}, "name", "age", "city")
}

func personParser(t *testing.T, opts ...Option) *Parser {
	t.Helper()

	opts = append([]Option{
		WithDefaultPattern(pattern.MustTemplate("{name} | {age} | {city}")),
		WithValidator(personSchema()),
	}, opts...)

	p, err := New(nil, opts...)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	t.Run("requires fields or validator", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoFields))
		assert.Equal(t, parseerr.KindConfiguration, parseerr.KindOf(err))
	})

	t.Run("fields alone suffice", func(t *testing.T) {
		_, err := New([]resolve.Field{{Name: "x"}})
		require.NoError(t, err)
	})

	t.Run("validator alone suffices", func(t *testing.T) {
		_, err := New(nil, WithValidator(personSchema()))
		require.NoError(t, err)
	})
}

func TestParse(t *testing.T) {
	ctx := context.Background()

	t.Run("default pattern with coercion", func(t *testing.T) {
		p := personParser(t)

		got, err := p.Parse(ctx, "Dana | 30 | Lisbon")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"name": "Dana",
			"age":  int64(30),
			"city": "Lisbon",
		}, got)
	})

	t.Run("no default pattern configured", func(t *testing.T) {
		p, err := New(nil, WithValidator(personSchema()))
		require.NoError(t, err)

		_, err = p.Parse(ctx, "anything")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoPattern))
	})

	t.Run("mismatch surfaces pattern error", func(t *testing.T) {
		p := personParser(t)

		_, err := p.Parse(ctx, "not matching at all")
		require.Error(t, err)
		assert.True(t, errors.Is(err, parseerr.ErrNoMatch))
	})

	t.Run("validation failure is structural", func(t *testing.T) {
		p := personParser(t)

		_, err := p.Parse(ctx, "Dana | thirty | Lisbon")
		require.Error(t, err)
		assert.True(t, errors.Is(err, parseerr.ErrStructural))
	})
}

func TestParseWith(t *testing.T) {
	ctx := context.Background()
	p := personParser(t)

	t.Run("explicit pattern overrides default", func(t *testing.T) {
		got, err := p.ParseWith(ctx, "Dana, 30, Lisbon",
			pattern.MustTemplate("{name}, {age}, {city}"))
		require.NoError(t, err)
		assert.Equal(t, int64(30), got["age"])
	})

	t.Run("nil pattern is a configuration error", func(t *testing.T) {
		_, err := p.ParseWith(ctx, "x", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoPattern))
	})

	t.Run("chain pattern", func(t *testing.T) {
		chain := pattern.Chain(
			pattern.MustTemplate("{name}; {age}; {city}"),
			pattern.MustTemplate("{name} | {age} | {city}"),
		)

		got, err := p.ParseWith(ctx, "Dana; 30; Lisbon", chain)
		require.NoError(t, err)
		assert.Equal(t, "Dana", got["name"])

		got, err = p.ParseWith(ctx, "Dana | 30 | Lisbon", chain)
		require.NoError(t, err)
		assert.Equal(t, "Dana", got["name"])
	})
}

func TestParseJSON(t *testing.T) {
	ctx := context.Background()
	p := personParser(t)

	got, err := p.ParseJSON(ctx, `{"name": "Dana", "age": 30, "city": "Lisbon"}`)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got["age"])

	_, err = p.ParseJSON(ctx, `[1, 2, 3]`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, parseerr.ErrNoMatch))
}

func TestJSONFirstPrecedence(t *testing.T) {
	ctx := context.Background()
	p := personParser(t, WithJSONFirst())

	t.Run("JSON object bypasses the pattern", func(t *testing.T) {
		got, err := p.Parse(ctx, `{"name": "Dana", "age": 30, "city": "Lisbon"}`)
		require.NoError(t, err)
		assert.Equal(t, int64(30), got["age"])
	})

	t.Run("non-JSON falls to the pattern", func(t *testing.T) {
		got, err := p.Parse(ctx, "Dana | 30 | Lisbon")
		require.NoError(t, err)
		assert.Equal(t, "Dana", got["name"])
	})

	t.Run("JSON-first without pattern accepts only JSON", func(t *testing.T) {
		p, err := New(nil, WithValidator(personSchema()), WithJSONFirst())
		require.NoError(t, err)

		_, err = p.Parse(ctx, "Dana | 30 | Lisbon")
		require.Error(t, err)
		assert.True(t, errors.Is(err, parseerr.ErrNoMatch))
	})
}

func TestResolveMixedInput(t *testing.T) {
	ctx := context.Background()

	fields := []resolve.Field{{
		Name:     "info",
		Strategy: &resolve.Strategy{Pattern: pattern.MustTemplate("{age} | {city}")},
	}}
	infoSchema := schema.Object(map[string]schema.JSON{
		"name": schema.String(),
		"info": schema.Object(map[string]schema.JSON{
			"age":  schema.Int(),
			"city": schema.String(),
		}, "age", "city"),
	}, "name", "info")

	p, err := New(fields, WithValidator(infoSchema))
	require.NoError(t, err)

	got, err := p.Resolve(ctx, map[string]any{
		"name": "Dana",
		"info": "30 | Lisbon",
	})
	require.NoError(t, err)

	info := got["info"].(map[string]any)
	assert.Equal(t, int64(30), info["age"])
	assert.Equal(t, "Lisbon", info["city"])
}

func TestParseWithRecovery(t *testing.T) {
	ctx := context.Background()
	p := personParser(t)

	t.Run("clean parse", func(t *testing.T) {
		result, err := p.ParseWithRecovery(ctx, "Dana | 30 | Lisbon", false)
		require.NoError(t, err)
		assert.True(t, result.OK())
		assert.Equal(t, int64(30), result.Data["age"])
	})

	t.Run("pattern mismatch becomes a record", func(t *testing.T) {
		result, err := p.ParseWithRecovery(ctx, "garbage input", false)
		require.NoError(t, err)

		require.Len(t, result.Errors, 1)
		assert.Equal(t, "pattern", result.Errors[0].Path)
		assert.Equal(t, parseerr.KindNoMatch, result.Errors[0].Kind)
		assert.Equal(t, "garbage input", result.Errors[0].Input)
		assert.Empty(t, result.Data)
	})

	t.Run("partial validation failure", func(t *testing.T) {
		result, err := p.ParseWithRecovery(ctx, "Dana | thirty | Lisbon", false)
		require.NoError(t, err)

		assert.False(t, result.OK())
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "age", result.Errors[0].Path)
		assert.Equal(t, "Dana", result.Data["name"])
		_, present := result.Data["age"]
		assert.False(t, present)
	})

	t.Run("strict mode aborts", func(t *testing.T) {
		_, err := p.ParseWithRecovery(ctx, "garbage input", true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, parseerr.ErrNoMatch))
	})
}

func TestUnmarshal(t *testing.T) {
	ctx := context.Background()
	p := personParser(t)

	type person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
		City string `json:"city"`
	}

	got, err := Unmarshal[person](ctx, p, "Dana | 30 | Lisbon")
	require.NoError(t, err)
	assert.Equal(t, &person{Name: "Dana", Age: 30, City: "Lisbon"}, got)

	_, err = Unmarshal[person](ctx, p, "garbage")
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	got, err := Decode[point](map[string]any{"x": int64(1), "y": int64(2)})
	require.NoError(t, err)
	assert.Equal(t, &point{X: 1, Y: 2}, got)
}
