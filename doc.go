// Package strum parses unstructured and semi-structured strings into nested,
// typed data structures using declarative patterns.
//
// Integrators often receive mixed-format data: raw delimited strings, JSON
// text, and already-structured mappings, sometimes all for the same field.
// strum lets each field declare one ordered list of formats to try, resolves
// nested fields recursively, and hands the resolved mapping to a structural
// validation layer that coerces values into their declared types.
//
// # Core Concepts
//
//   - Patterns: placeholder templates ("{name} | {age} | {city}") or regular
//     expressions with named groups, compiled once and reused
//   - Chains: ordered pattern sequences tried left to right until one matches
//   - Fields: per-field strategies combining chains, JSON-first parsing,
//     nested schemas, and tagged unions
//   - Recovery mode: walk every field independently and collect per-field
//     errors instead of aborting on the first failure
//
// # Getting Started
//
//	fields := []resolve.Field{
//		{Name: "info", Strategy: &resolve.Strategy{
//			Pattern: pattern.Chain(
//				pattern.MustTemplate("{name} | {age} | {city}"),
//				pattern.MustTemplate("{name} {age} {city}"),
//			),
//			JSONFirst: true,
//		}},
//	}
//
//	sch := schema.Object(map[string]schema.JSON{
//		"id": schema.Int(),
//		"info": schema.Object(map[string]schema.JSON{
//			"name": schema.String(),
//			"age":  schema.Int(),
//			"city": schema.String(),
//		}, "name", "age", "city"),
//	}, "id", "info")
//
//	p, err := strum.New(fields,
//		strum.WithValidator(sch),
//		strum.WithDefaultPattern(pattern.MustTemplate("{id} | {info}")))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	record, err := p.Parse(ctx, "1 | Alice | 30 | New York")
//
// # Error Handling
//
// Failures carry a structured kind (pattern_syntax, no_match,
// chain_exhausted, union_resolution, structural) plus the pattern text,
// offending input, and field path; see the parseerr package. Recovery-mode
// entry points return a resolve.Result with partial data and one error
// record per failed field instead of raising.
//
// # Concurrency
//
// Compiled patterns, chains, and parsers are immutable after construction
// and safe for concurrent use; all working state is allocated per call.
package strum
