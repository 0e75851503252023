package resolve

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/strum/parseerr"
	"github.com/zero-day-ai/strum/pattern"
)

// Candidate is one tagged variant of a union-typed field. Each candidate
// carries its own parse strategy and its own structural validator; both must
// succeed for the candidate to be selected.
type Candidate struct {
	// Variant identifies the candidate; the chosen variant's name tags the
	// resolved value.
	Variant string

	// Pattern is the candidate's matcher or chain for string input.
	Pattern pattern.Matcher

	// JSONFirst attempts JSON-object parsing before Pattern.
	JSONFirst bool

	// Nested lists the candidate's own fields, resolved recursively before
	// validation.
	Nested []Field

	// Validator structurally checks the resolved mapping against this
	// candidate's field types. A nil Validator accepts any resolved mapping.
	Validator Validator
}

// Tagged is a union field's resolved value: the validated mapping together
// with the identity of the candidate that produced it.
type Tagged struct {
	Variant string         `json:"variant"`
	Value   map[string]any `json:"value"`
}

// resolveUnion tries candidates in declared order. For each, the candidate's
// own strategy resolves the raw value and its validator structurally checks
// the result; the first candidate where both steps succeed wins and the
// remaining candidates are not tried. Identical input and candidate order
// always select the identical candidate.
//
// When no candidate succeeds, the union_resolution error preserves every
// candidate's individual failure reason - deliberately unlike chain
// exhaustion, which reports only the last attempt.
func (r *Resolver) resolveUnion(ctx context.Context, candidates []Candidate, value any, path string) (any, error) {
	const op = "Resolver.resolveUnion"

	reasons := make([]error, 0, len(candidates))

	for _, c := range candidates {
		mapping, err := r.resolveCandidate(ctx, c, value, path)
		if err != nil {
			reasons = append(reasons, fmt.Errorf("variant %s: %w", c.Variant, err))
			continue
		}

		if c.Validator != nil {
			typed, err := c.Validator.Instantiate(mapping)
			if err != nil {
				reasons = append(reasons, fmt.Errorf("variant %s: %w", c.Variant, err))
				continue
			}
			mapping = typed
		}

		return Tagged{Variant: c.Variant, Value: mapping}, nil
	}

	return nil, parseerr.Union(op, reasons...).
		WithContext(map[string]any{"field": path, "input": value})
}

// resolveCandidate runs the resolution phase for one candidate.
func (r *Resolver) resolveCandidate(ctx context.Context, c Candidate, value any, path string) (map[string]any, error) {
	switch v := value.(type) {
	case map[string]any:
		if len(c.Nested) > 0 {
			return r.resolveFields(ctx, c.Nested, v, path)
		}
		return v, nil

	case string:
		strategy := &Strategy{Pattern: c.Pattern, JSONFirst: c.JSONFirst}
		if strategy.Pattern == nil && !strategy.JSONFirst {
			return nil, parseerr.NoMatch(
				"Resolver.resolveCandidate",
				fmt.Errorf("candidate declares no parse strategy for string input"))
		}

		mapping, err := strategy.match(v)
		if err != nil {
			return nil, err
		}

		if len(c.Nested) > 0 {
			return r.resolveFields(ctx, c.Nested, mapping, path)
		}
		return mapping, nil

	default:
		return nil, parseerr.NoMatch(
			"Resolver.resolveCandidate",
			fmt.Errorf("cannot resolve %T into a mapping", value))
	}
}
