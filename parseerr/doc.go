// Package parseerr defines the error model shared by the strum parsing
// pipeline. Errors carry an operation, a kind, and optional context so
// callers can diagnose which pattern, which input, and which field path
// produced a failure.
package parseerr
