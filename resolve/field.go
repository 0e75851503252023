package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/strum/parseerr"
	"github.com/zero-day-ai/strum/pattern"
)

// Validator is the structural validation and type-coercion collaborator.
// It is invoked synchronously once per resolved mapping (or once per union
// candidate) after the resolution phase. schema.JSON satisfies it.
type Validator interface {
	// Instantiate validates the mapping, coerces leaf values into their
	// declared types, and returns the typed mapping or a structural error.
	Instantiate(mapping map[string]any) (map[string]any, error)
}

// Field describes one schema field and the strategy used to resolve its raw
// value. A nil Strategy passes the value through unchanged for the validator
// to interpret directly.
type Field struct {
	Name     string
	Strategy *Strategy
}

// Strategy declares how a field's raw string value becomes a mapping.
//
// Exactly one of Union or the Pattern/JSONFirst/Nested combination is
// normally used. When JSONFirst is set together with Pattern, JSON parsing
// is attempted first and the chain is consulted only if the text is not a
// JSON object - a fixed precedence rule, not an artifact of iteration order.
type Strategy struct {
	// Pattern is the matcher or chain tried against string values.
	Pattern pattern.Matcher

	// JSONFirst attempts JSON-object parsing before Pattern.
	JSONFirst bool

	// Nested lists the fields of the produced mapping, resolved recursively.
	Nested []Field

	// Union lists tagged candidate schemas tried in declared order.
	// When set, the other strategy members are ignored.
	Union []Candidate
}

// Resolver walks a field list over raw input mappings. Construct with New;
// the zero value is not usable.
type Resolver struct {
	fields    []Field
	validator Validator
	logger    *slog.Logger
	tracer    trace.Tracer
	resolved  metric.Int64Counter
	failed    metric.Int64Counter
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithValidator sets the structural validation collaborator invoked after
// the resolution phase. Without one, Resolve returns the resolved mapping
// uncoerced and unvalidated.
func WithValidator(v Validator) Option {
	return func(r *Resolver) {
		r.validator = v
	}
}

// WithLogger sets a structured logger for resolution diagnostics.
// If not provided, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer. Each Resolve call then runs
// inside a span recording field counts and failure status.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Resolver) {
		r.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter used to count resolved and failed
// fields.
func WithMeter(meter metric.Meter) Option {
	return func(r *Resolver) {
		// Instrument creation only fails on invalid names, which are fixed
		// strings here.
		r.resolved, _ = meter.Int64Counter("strum.fields.resolved",
			metric.WithDescription("Fields successfully resolved"))
		r.failed, _ = meter.Int64Counter("strum.fields.failed",
			metric.WithDescription("Fields that failed resolution or validation"))
	}
}

// New creates a Resolver for the given field list.
func New(fields []Field, opts ...Option) *Resolver {
	r := &Resolver{fields: fields}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fields returns the resolver's field descriptors in declared order.
func (r *Resolver) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Resolve runs the resolution phase over raw and then, when a validator is
// configured, the structural validation phase. The first failure aborts and
// is returned with field-path context.
//
// Keys in raw without a matching field descriptor are carried through
// untouched. The input mapping is never mutated.
func (r *Resolver) Resolve(ctx context.Context, raw map[string]any) (map[string]any, error) {
	ctx, span := r.startSpan(ctx, "strum.Resolve", len(raw))
	defer span.End()

	resolved, err := r.resolveFields(ctx, r.fields, raw, "")
	if err != nil {
		r.recordFailure(ctx, span, err)
		return nil, err
	}

	if r.validator != nil {
		typed, err := r.validator.Instantiate(resolved)
		if err != nil {
			err = parseerr.Structural("Resolver.Resolve", err)
			r.recordFailure(ctx, span, err)
			return nil, err
		}
		resolved = typed
	}

	r.count(ctx, r.resolved, int64(len(resolved)))
	return resolved, nil
}

// resolveFields applies each field's strategy to its value in raw and
// returns a fresh mapping. Unknown keys pass through unchanged.
func (r *Resolver) resolveFields(ctx context.Context, fields []Field, raw map[string]any, base string) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	for _, f := range fields {
		value, ok := raw[f.Name]
		if !ok {
			continue
		}

		path := joinPath(base, f.Name)
		resolved, err := r.resolveValue(ctx, f, value, path)
		if err != nil {
			return nil, err
		}
		out[f.Name] = resolved
	}

	return out, nil
}

// resolveValue applies one field's strategy to one raw value.
func (r *Resolver) resolveValue(ctx context.Context, f Field, value any, path string) (any, error) {
	if f.Strategy == nil {
		return value, nil
	}

	if len(f.Strategy.Union) > 0 {
		return r.resolveUnion(ctx, f.Strategy.Union, value, path)
	}

	switch v := value.(type) {
	case map[string]any:
		// Already structured: no parsing attempted, but nested fields are
		// still resolved so deeper strategies run.
		if len(f.Strategy.Nested) > 0 {
			return r.resolveFields(ctx, f.Strategy.Nested, v, path)
		}
		return v, nil

	case string:
		if f.Strategy.Pattern == nil && !f.Strategy.JSONFirst {
			return value, nil
		}

		mapping, err := f.Strategy.match(v)
		if err != nil {
			if r.logger != nil {
				r.logger.Debug("field resolution failed",
					"field", path,
					"error", err)
			}
			return nil, annotate(err, path)
		}

		if len(f.Strategy.Nested) > 0 {
			return r.resolveFields(ctx, f.Strategy.Nested, mapping, path)
		}
		return mapping, nil

	default:
		// Non-string scalars have nothing to parse.
		return value, nil
	}
}

// match runs the strategy's matchers against text. JSON precedence is a
// fixed rule: when JSONFirst is set, the chain is consulted only if the
// text is not a JSON object.
func (s *Strategy) match(text string) (map[string]any, error) {
	if s.JSONFirst {
		mapping, jsonErr := pattern.JSON().Match(text)
		if jsonErr == nil {
			return mapping, nil
		}
		if s.Pattern == nil {
			return nil, jsonErr
		}
	}

	return s.Pattern.Match(text)
}

// annotate attaches the field path to a structured error.
func annotate(err error, path string) error {
	if e, ok := err.(*parseerr.Error); ok {
		return e.WithContext(map[string]any{"field": path})
	}
	return fmt.Errorf("field %s: %w", path, err)
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func (r *Resolver) startSpan(ctx context.Context, name string, fields int) (context.Context, trace.Span) {
	if r.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return r.tracer.Start(ctx, name,
		trace.WithAttributes(attribute.Int("strum.input.fields", fields)))
}

func (r *Resolver) recordFailure(ctx context.Context, span trace.Span, err error) {
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, parseerr.KindOf(err))
	}
	r.count(ctx, r.failed, 1)
}

func (r *Resolver) count(ctx context.Context, counter metric.Int64Counter, n int64) {
	if counter != nil {
		counter.Add(ctx, n)
	}
}
