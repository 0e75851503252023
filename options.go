package strum

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/strum/pattern"
	"github.com/zero-day-ai/strum/resolve"
)

// Option configures a Parser.
type Option func(*config)

// config holds configuration for a Parser instance.
type config struct {
	validator      resolve.Validator
	defaultPattern pattern.Matcher
	jsonFirst      bool
	logger         *slog.Logger
	tracer         trace.Tracer
	meter          metric.Meter
}

// WithValidator sets the structural validation collaborator invoked after
// field resolution. Typically a schema.JSON value.
func WithValidator(v resolve.Validator) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithDefaultPattern sets the schema-level pattern used by Parse when no
// explicit pattern is supplied. Chains are accepted.
func WithDefaultPattern(m pattern.Matcher) Option {
	return func(c *config) {
		c.defaultPattern = m
	}
}

// WithJSONFirst makes whole-instance parsing attempt JSON-object input
// before the default pattern. The precedence is fixed: the pattern is
// consulted only when the text is not a JSON object.
func WithJSONFirst() Option {
	return func(c *config) {
		c.jsonFirst = true
	}
}

// WithLogger sets a custom structured logger for parse diagnostics.
// If not provided, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for distributed tracing of parse
// and resolve calls.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for counting resolved and failed
// fields.
func WithMeter(meter metric.Meter) Option {
	return func(c *config) {
		c.meter = meter
	}
}
