package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zero-day-ai/strum/parseerr"
)

// Regex is a compiled regular-expression pattern. Every field it extracts
// comes from a named group, so the expression must declare at least one
// (e.g. `(?P<key>\w+)=(?P<value>.*)`).
//
// Matching is anchored to the full (trimmed) input. Named groups that do not
// participate in the match are omitted from the result mapping rather than
// set to empty strings.
type Regex struct {
	src string
	re  *regexp.Regexp
}

// CompileRegex compiles a regular-expression pattern specification.
// It fails with a pattern_syntax error when the expression is invalid or
// declares no named groups.
func CompileRegex(expr string) (*Regex, error) {
	const op = "pattern.CompileRegex"

	re, err := regexp.Compile(`\A(?:` + expr + `)\z`)
	if err != nil {
		return nil, parseerr.Syntax(op, err).WithContext(map[string]any{"pattern": expr})
	}

	named := 0
	for _, name := range re.SubexpNames() {
		if name != "" {
			named++
		}
	}
	if named == 0 {
		return nil, parseerr.Syntax(op,
			fmt.Errorf("regex pattern must contain named groups (e.g. (?P<name>...)) to map to fields")).
			WithContext(map[string]any{"pattern": expr})
	}

	return &Regex{src: expr, re: re}, nil
}

// MustRegex is like CompileRegex but panics on error.
func MustRegex(expr string) *Regex {
	r, err := CompileRegex(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// Match parses text against the regular expression and returns the values of
// all participating named groups, trimmed.
func (r *Regex) Match(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)

	idx := r.re.FindStringSubmatchIndex(trimmed)
	if idx == nil {
		return nil, parseerr.NoMatch("pattern.Regex.Match",
			fmt.Errorf("input %q does not match regex %q", text, r.src)).
			WithContext(map[string]any{"pattern": r.src, "input": text})
	}

	out := make(map[string]any)
	for i, name := range r.re.SubexpNames() {
		if name == "" {
			continue
		}
		start, end := idx[2*i], idx[2*i+1]
		if start < 0 {
			continue
		}
		out[name] = strings.TrimSpace(trimmed[start:end])
	}

	return out, nil
}

// String returns the original regular-expression source.
func (r *Regex) String() string {
	return r.src
}
