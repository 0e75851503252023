package resolve

import (
	"context"
	"errors"
	"strings"

	"github.com/zero-day-ai/strum/parseerr"
	"github.com/zero-day-ai/strum/schema"
)

// FieldError is one structured error record accumulated in recovery mode.
type FieldError struct {
	// Path is the dotted field path that failed (e.g. "info.age").
	Path string `json:"path"`

	// Message is the failure description.
	Message string `json:"message"`

	// Kind is the parseerr kind of the failure (no_match, chain_exhausted,
	// union_resolution, structural).
	Kind string `json:"kind"`

	// Input is the offending raw value, when available.
	Input any `json:"input,omitempty"`
}

// Result is the outcome of a recovery-mode walk: the partial mapping of
// successfully resolved and validated fields, plus one error record per
// failed field. Failed fields are omitted from Data, never defaulted.
type Result struct {
	Data   map[string]any `json:"data"`
	Errors []FieldError   `json:"errors"`
}

// OK reports whether the walk was fully successful, i.e. no errors were
// collected.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// ResolveWithRecovery walks the field tree over raw input.
//
// With strict=true the behavior is identical to Resolve: the first failure
// aborts and is returned. With strict=false every field is attempted in
// isolation - resolution and structural validation failures append a
// FieldError and omit that field's key from the result, and a failure on one
// field never prevents attempting its siblings.
func (r *Resolver) ResolveWithRecovery(ctx context.Context, raw map[string]any, strict bool) (Result, error) {
	if strict {
		data, err := r.Resolve(ctx, raw)
		if err != nil {
			return Result{}, err
		}
		return Result{Data: data}, nil
	}

	ctx, span := r.startSpan(ctx, "strum.ResolveWithRecovery", len(raw))
	defer span.End()

	resolved := make(map[string]any, len(raw))
	for k, v := range raw {
		resolved[k] = v
	}

	var fieldErrs []FieldError

	for _, f := range r.fields {
		value, ok := raw[f.Name]
		if !ok {
			continue
		}

		rv, err := r.resolveValue(ctx, f, value, f.Name)
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{
				Path:    f.Name,
				Message: err.Error(),
				Kind:    kindOrDefault(err),
				Input:   value,
			})
			delete(resolved, f.Name)
			continue
		}
		resolved[f.Name] = rv
	}

	result := r.validateRecovered(resolved, fieldErrs)

	r.count(ctx, r.failed, int64(len(result.Errors)))
	r.count(ctx, r.resolved, int64(len(result.Data)))
	return result, nil
}

// validateRecovered runs the structural validation phase over the surviving
// fields, converting per-field issues into error records and dropping the
// offending keys. When validation fails partway, the surviving values are
// returned as resolved (pre-coercion), matching the resolution-phase output.
func (r *Resolver) validateRecovered(resolved map[string]any, fieldErrs []FieldError) Result {
	if r.validator == nil {
		return Result{Data: resolved, Errors: fieldErrs}
	}

	typed, err := r.validator.Instantiate(resolved)
	if err == nil {
		return Result{Data: typed, Errors: fieldErrs}
	}

	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		for _, iss := range ve.Issues {
			fieldErrs = append(fieldErrs, FieldError{
				Path:    iss.Path,
				Message: iss.Message,
				Kind:    parseerr.KindStructural,
				Input:   iss.Input,
			})
			delete(resolved, rootKey(iss.Path))
		}
		return Result{Data: resolved, Errors: fieldErrs}
	}

	// Validator with an opaque error shape: record it once at the root.
	fieldErrs = append(fieldErrs, FieldError{
		Message: err.Error(),
		Kind:    parseerr.KindStructural,
	})
	return Result{Data: resolved, Errors: fieldErrs}
}

// kindOrDefault extracts the structured kind from err, defaulting to
// no_match for untyped resolution failures.
func kindOrDefault(err error) string {
	if kind := parseerr.KindOf(err); kind != "" {
		return kind
	}
	return parseerr.KindNoMatch
}

// rootKey returns the top-level key of a dotted or indexed field path:
// "info.age" and "tags[2]" both map to their leading segment.
func rootKey(path string) string {
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i]
	}
	return path
}
