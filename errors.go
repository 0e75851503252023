package strum

import "errors"

// Sentinel errors for parser configuration problems.
var (
	// ErrNoPattern indicates Parse was called without an explicit pattern
	// on a parser that has no default pattern configured.
	ErrNoPattern = errors.New("no parse pattern provided and no default pattern is configured")

	// ErrNoFields indicates a parser was constructed with neither field
	// strategies nor a validator, so it would have nothing to do.
	ErrNoFields = errors.New("parser requires field strategies or a validator")
)
