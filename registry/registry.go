// Package registry stores named parser definitions: the declarative pattern
// chains, field strategies, union candidates, and validation schema for one
// kind of input.
//
// Definitions are registered programmatically, loaded from YAML files, or
// synchronized from an etcd-backed store so a fleet of services can share
// one set of parse rules. A registered definition compiles into a ready
// strum.Parser via Parser().
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zero-day-ai/strum"
	"github.com/zero-day-ai/strum/parseerr"
	"github.com/zero-day-ai/strum/pattern"
	"github.com/zero-day-ai/strum/resolve"
	"github.com/zero-day-ai/strum/schema"
)

// Definition is the declarative, serializable form of one parser schema.
//
// Pattern entries are placeholder templates by default; entries prefixed
// with "re:" compile as regular expressions, and the literal entry "json"
// inserts the JSON-object matcher at that chain position.
type Definition struct {
	// Name uniquely identifies the definition within a registry.
	Name string `yaml:"name" json:"name"`

	// Pattern lists the schema-level chain entries, tried in order, used by
	// whole-instance parsing.
	Pattern []string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// JSONFirst makes whole-instance parsing attempt JSON-object input
	// before the pattern chain.
	JSONFirst bool `yaml:"json_first,omitempty" json:"json_first,omitempty"`

	// Fields declares per-field resolution strategies.
	Fields []FieldDef `yaml:"fields,omitempty" json:"fields,omitempty"`

	// Schema is the structural validation schema applied after resolution.
	Schema *schema.JSON `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// FieldDef declares one field's resolution strategy.
type FieldDef struct {
	Name string `yaml:"name" json:"name"`

	// Pattern lists the field's chain entries; same syntax as
	// Definition.Pattern.
	Pattern []string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// JSONFirst attempts JSON-object parsing before the chain.
	JSONFirst bool `yaml:"json_first,omitempty" json:"json_first,omitempty"`

	// Fields declares nested field strategies applied to the mapping this
	// field's chain produces.
	Fields []FieldDef `yaml:"fields,omitempty" json:"fields,omitempty"`

	// Union lists tagged candidate schemas tried in declared order. When
	// set, the other strategy members are ignored.
	Union []CandidateDef `yaml:"union,omitempty" json:"union,omitempty"`
}

// CandidateDef declares one tagged union candidate.
type CandidateDef struct {
	Variant   string       `yaml:"variant" json:"variant"`
	Pattern   []string     `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	JSONFirst bool         `yaml:"json_first,omitempty" json:"json_first,omitempty"`
	Fields    []FieldDef   `yaml:"fields,omitempty" json:"fields,omitempty"`
	Schema    *schema.JSON `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// Registry is a thread-safe collection of named parser definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register validates and stores a definition. All patterns are compiled
// eagerly so syntax errors surface at registration time, not at first parse.
// Re-registering a name replaces the previous definition.
func (r *Registry) Register(def Definition) error {
	const op = "registry.Register"

	if def.Name == "" {
		return parseerr.Configuration(op, fmt.Errorf("definition name cannot be empty"))
	}
	if _, _, err := compile(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the named definition.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Remove deletes the named definition. Removing an unknown name is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.defs, name)
}

// Names returns all registered definition names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parser compiles the named definition into a strum.Parser. Additional
// options (logger, tracer, meter) are appended after the definition's own
// configuration.
func (r *Registry) Parser(name string, opts ...strum.Option) (*strum.Parser, error) {
	const op = "registry.Parser"

	def, ok := r.Lookup(name)
	if !ok {
		return nil, parseerr.Configuration(op, fmt.Errorf("definition %q is not registered", name))
	}

	fields, defOpts, err := compile(def)
	if err != nil {
		return nil, err
	}

	return strum.New(fields, append(defOpts, opts...)...)
}

// compile turns a definition into resolver fields and parser options.
func compile(def Definition) ([]resolve.Field, []strum.Option, error) {
	var opts []strum.Option

	if len(def.Pattern) > 0 {
		chain, err := compileChain(def.Pattern, def.Name)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, strum.WithDefaultPattern(chain))
	}
	if def.JSONFirst {
		opts = append(opts, strum.WithJSONFirst())
	}
	if def.Schema != nil {
		opts = append(opts, strum.WithValidator(*def.Schema))
	}

	fields, err := compileFields(def.Fields, def.Name)
	if err != nil {
		return nil, nil, err
	}

	return fields, opts, nil
}

func compileFields(defs []FieldDef, scope string) ([]resolve.Field, error) {
	fields := make([]resolve.Field, 0, len(defs))

	for _, fd := range defs {
		where := scope + "." + fd.Name

		if len(fd.Union) > 0 {
			candidates, err := compileUnion(fd.Union, where)
			if err != nil {
				return nil, err
			}
			fields = append(fields, resolve.Field{
				Name:     fd.Name,
				Strategy: &resolve.Strategy{Union: candidates},
			})
			continue
		}

		if len(fd.Pattern) == 0 && !fd.JSONFirst && len(fd.Fields) == 0 {
			fields = append(fields, resolve.Field{Name: fd.Name})
			continue
		}

		strategy := &resolve.Strategy{JSONFirst: fd.JSONFirst}
		if len(fd.Pattern) > 0 {
			chain, err := compileChain(fd.Pattern, where)
			if err != nil {
				return nil, err
			}
			strategy.Pattern = chain
		}
		if len(fd.Fields) > 0 {
			nested, err := compileFields(fd.Fields, where)
			if err != nil {
				return nil, err
			}
			strategy.Nested = nested
		}

		fields = append(fields, resolve.Field{Name: fd.Name, Strategy: strategy})
	}

	return fields, nil
}

func compileUnion(defs []CandidateDef, scope string) ([]resolve.Candidate, error) {
	candidates := make([]resolve.Candidate, 0, len(defs))

	for _, cd := range defs {
		if cd.Variant == "" {
			return nil, parseerr.Configuration("registry.compile",
				fmt.Errorf("%s: union candidate requires a variant name", scope))
		}

		c := resolve.Candidate{Variant: cd.Variant, JSONFirst: cd.JSONFirst}

		if len(cd.Pattern) > 0 {
			chain, err := compileChain(cd.Pattern, scope+"/"+cd.Variant)
			if err != nil {
				return nil, err
			}
			c.Pattern = chain
		}
		if len(cd.Fields) > 0 {
			nested, err := compileFields(cd.Fields, scope+"/"+cd.Variant)
			if err != nil {
				return nil, err
			}
			c.Nested = nested
		}
		if cd.Schema != nil {
			c.Validator = *cd.Schema
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

// compileChain builds an ordered chain from pattern source entries.
func compileChain(entries []string, scope string) (pattern.Matcher, error) {
	matchers := make([]pattern.Matcher, 0, len(entries))

	for _, entry := range entries {
		switch {
		case entry == "json":
			matchers = append(matchers, pattern.JSON())

		case strings.HasPrefix(entry, "re:"):
			re, err := pattern.CompileRegex(strings.TrimPrefix(entry, "re:"))
			if err != nil {
				return nil, annotateScope(err, scope)
			}
			matchers = append(matchers, re)

		default:
			tmpl, err := pattern.CompileTemplate(entry)
			if err != nil {
				return nil, annotateScope(err, scope)
			}
			matchers = append(matchers, tmpl)
		}
	}

	if len(matchers) == 1 {
		return matchers[0], nil
	}
	return pattern.Chain(matchers...), nil
}

func annotateScope(err error, scope string) error {
	if e, ok := err.(*parseerr.Error); ok {
		return e.WithContext(map[string]any{"definition": scope})
	}
	return fmt.Errorf("%s: %w", scope, err)
}
