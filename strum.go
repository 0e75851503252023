package strum

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zero-day-ai/strum/parseerr"
	"github.com/zero-day-ai/strum/pattern"
	"github.com/zero-day-ai/strum/resolve"
)

// Parser parses whole instances from strings and resolves mixed-format
// mappings against a schema's field strategies.
//
// A Parser is immutable after New and safe for concurrent use.
type Parser struct {
	resolver       *resolve.Resolver
	defaultPattern pattern.Matcher
	jsonFirst      bool
}

// New creates a Parser for the given field strategies.
//
// The field list drives the resolution phase; a validator supplied via
// WithValidator drives the structural validation phase. At least one of the
// two must be present.
func New(fields []resolve.Field, opts ...Option) (*Parser, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(fields) == 0 && cfg.validator == nil {
		return nil, parseerr.Configuration("strum.New", ErrNoFields)
	}

	resolverOpts := []resolve.Option{}
	if cfg.validator != nil {
		resolverOpts = append(resolverOpts, resolve.WithValidator(cfg.validator))
	}
	if cfg.logger != nil {
		resolverOpts = append(resolverOpts, resolve.WithLogger(cfg.logger))
	}
	if cfg.tracer != nil {
		resolverOpts = append(resolverOpts, resolve.WithTracer(cfg.tracer))
	}
	if cfg.meter != nil {
		resolverOpts = append(resolverOpts, resolve.WithMeter(cfg.meter))
	}

	return &Parser{
		resolver:       resolve.New(fields, resolverOpts...),
		defaultPattern: cfg.defaultPattern,
		jsonFirst:      cfg.jsonFirst,
	}, nil
}

// Parse parses a whole instance from one string using the schema-level
// default pattern, then resolves and validates the extracted fields.
func (p *Parser) Parse(ctx context.Context, text string) (map[string]any, error) {
	if p.defaultPattern == nil && !p.jsonFirst {
		return nil, parseerr.Configuration("Parser.Parse", ErrNoPattern)
	}
	return p.parseWith(ctx, text, p.defaultPattern)
}

// ParseWith parses a whole instance from one string using an explicitly
// supplied pattern, overriding the schema-level default.
func (p *Parser) ParseWith(ctx context.Context, text string, m pattern.Matcher) (map[string]any, error) {
	if m == nil {
		return nil, parseerr.Configuration("Parser.ParseWith", ErrNoPattern)
	}
	return p.parseWith(ctx, text, m)
}

// ParseJSON parses a whole instance from JSON-object text, then resolves
// and validates the extracted fields. Field-level pattern strategies still
// apply to string values inside the object.
func (p *Parser) ParseJSON(ctx context.Context, text string) (map[string]any, error) {
	mapping, err := pattern.JSON().Match(text)
	if err != nil {
		return nil, err
	}
	return p.resolver.Resolve(ctx, mapping)
}

// Resolve is the pre-validation transform hook: it runs the resolution phase
// over an already-assembled mapping (strings, JSON text, or structured
// sub-mappings per field) followed by structural validation. The input is
// never mutated.
func (p *Parser) Resolve(ctx context.Context, raw map[string]any) (map[string]any, error) {
	return p.resolver.Resolve(ctx, raw)
}

// ParseWithRecovery parses a whole instance from one string with error
// recovery. With strict=true it behaves exactly like Parse and the first
// failure is returned. With strict=false a failed top-level match, failed
// field resolutions, and failed validations each become error records in the
// returned Result, and parsing continues for the remaining fields.
func (p *Parser) ParseWithRecovery(ctx context.Context, text string, strict bool) (resolve.Result, error) {
	matcher := p.defaultPattern
	if matcher == nil && !p.jsonFirst {
		return resolve.Result{}, parseerr.Configuration("Parser.ParseWithRecovery", ErrNoPattern)
	}

	mapping, err := p.matchInstance(text, matcher)
	if err != nil {
		if strict {
			return resolve.Result{}, err
		}
		return resolve.Result{Errors: []resolve.FieldError{{
			Path:    "pattern",
			Message: err.Error(),
			Kind:    parseerr.KindOf(err),
			Input:   text,
		}}}, nil
	}

	return p.resolver.ResolveWithRecovery(ctx, mapping, strict)
}

// ResolveWithRecovery resolves and validates a mapping of mixed input with
// error recovery; see Parser.ParseWithRecovery for the strict flag semantics.
func (p *Parser) ResolveWithRecovery(ctx context.Context, raw map[string]any, strict bool) (resolve.Result, error) {
	return p.resolver.ResolveWithRecovery(ctx, raw, strict)
}

func (p *Parser) parseWith(ctx context.Context, text string, m pattern.Matcher) (map[string]any, error) {
	mapping, err := p.matchInstance(text, m)
	if err != nil {
		return nil, err
	}
	return p.resolver.Resolve(ctx, mapping)
}

// matchInstance extracts the top-level field mapping from text. JSON-object
// input takes precedence when the parser is configured JSON-first.
func (p *Parser) matchInstance(text string, m pattern.Matcher) (map[string]any, error) {
	if p.jsonFirst {
		mapping, jsonErr := pattern.JSON().Match(text)
		if jsonErr == nil {
			return mapping, nil
		}
		if m == nil {
			return nil, jsonErr
		}
	}
	return m.Match(text)
}

// Unmarshal parses a whole instance from text and decodes the validated
// mapping into a value of type T via JSON round-tripping.
func Unmarshal[T any](ctx context.Context, p *Parser, text string) (*T, error) {
	data, err := p.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	return Decode[T](data)
}

// Decode converts a resolved mapping into a value of type T via JSON
// round-tripping.
func Decode[T any](mapping map[string]any) (*T, error) {
	raw, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping: %w", err)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode into %T: %w", out, err)
	}
	return &out, nil
}
