package parseerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common parsing failure conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrPatternSyntax indicates a pattern specification could not be compiled.
	// This is fatal at compile time and never retried.
	ErrPatternSyntax = errors.New("invalid pattern syntax")

	// ErrNoMatch indicates input text did not match a single pattern.
	// Chains recover from this internally by falling through to the next entry.
	ErrNoMatch = errors.New("input does not match pattern")

	// ErrChainExhausted indicates every entry in a pattern chain failed.
	ErrChainExhausted = errors.New("no pattern in chain matched")

	// ErrUnionResolution indicates no tagged-union candidate could be
	// resolved and validated.
	ErrUnionResolution = errors.New("no union candidate matched")

	// ErrStructural indicates the resolved mapping failed structural
	// validation or type coercion.
	ErrStructural = errors.New("structural validation failed")
)

// Error kinds categorize parsing errors by their type.
const (
	// KindPatternSyntax represents malformed pattern specifications.
	KindPatternSyntax = "pattern_syntax"

	// KindNoMatch represents a single matcher's mismatch.
	KindNoMatch = "no_match"

	// KindChainExhausted represents a chain whose entries all failed.
	KindChainExhausted = "chain_exhausted"

	// KindUnionResolution represents a union field with no viable candidate.
	KindUnionResolution = "union_resolution"

	// KindStructural represents type-coercion or schema-conformance failures.
	KindStructural = "structural"

	// KindConfiguration represents errors in parser or registry configuration.
	KindConfiguration = "configuration"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category
// of error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
type Error struct {
	// Op is the operation that failed (e.g., "pattern.Compile", "Resolver.Resolve").
	Op string

	// Kind categorizes the error (e.g., KindNoMatch, KindStructural).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional diagnostic detail (optional).
	// Typical keys: "pattern", "input", "field", "variant".
	Context map[string]any
}

// Error implements the error interface, returning a formatted message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("strum: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("strum: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("strum: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and errors.As()
// to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Error, allowing comparison based on
// the underlying error or a kind-only template Error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the provided context merged in.
func (e *Error) WithContext(ctx map[string]any) *Error {
	clone := *e
	merged := make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	clone.Context = merged
	return &clone
}

// New creates a structured Error with the given operation, kind, and cause.
func New(op, kind string, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Syntax creates an Error with KindPatternSyntax wrapping ErrPatternSyntax.
func Syntax(op string, err error) *Error {
	return &Error{Op: op, Kind: KindPatternSyntax, Err: wrap(ErrPatternSyntax, err)}
}

// NoMatch creates an Error with KindNoMatch wrapping ErrNoMatch.
func NoMatch(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNoMatch, Err: wrap(ErrNoMatch, err)}
}

// Exhausted creates an Error with KindChainExhausted. The last error is the
// failure reason of the final chain entry attempted; earlier mismatches are
// not reported.
func Exhausted(op string, last error) *Error {
	return &Error{Op: op, Kind: KindChainExhausted, Err: wrap(ErrChainExhausted, last)}
}

// Union creates an Error with KindUnionResolution. Unlike chain exhaustion,
// every candidate's failure reason is preserved via errors.Join.
func Union(op string, reasons ...error) *Error {
	return &Error{Op: op, Kind: KindUnionResolution, Err: wrap(ErrUnionResolution, errors.Join(reasons...))}
}

// Structural creates an Error with KindStructural wrapping ErrStructural.
func Structural(op string, err error) *Error {
	return &Error{Op: op, Kind: KindStructural, Err: wrap(ErrStructural, err)}
}

// Configuration creates an Error with KindConfiguration.
func Configuration(op string, err error) *Error {
	return &Error{Op: op, Kind: KindConfiguration, Err: err}
}

// wrap joins a sentinel with a cause so both survive errors.Is checks.
func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// KindOf returns the kind of err if it is (or wraps) a *Error, or an empty
// string otherwise.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
