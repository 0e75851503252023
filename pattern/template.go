package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zero-day-ai/strum/parseerr"
)

// Template is a compiled placeholder pattern such as "{name} | {age} | {city}".
//
// Literal text between captures must appear verbatim in the input, but the
// whitespace surrounding each literal boundary is tolerated and consumed.
// Captured values are trimmed. A capture written "{field?}" is optional: when
// it is absent from the input (with the surrounding literals still aligned)
// the resulting mapping omits that key entirely.
//
// Templates compile to a single anchored RE2 regexp, so matching cost is
// linear in input and pattern length.
type Template struct {
	src      string
	re       *regexp.Regexp
	fields   []string
	optional map[string]bool
}

var captureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type segment struct {
	literal  string // set for literal segments
	name     string // set for capture segments
	optional bool
	capture  bool
}

// CompileTemplate compiles a placeholder pattern specification.
//
// It fails with a pattern_syntax error when a placeholder is unterminated,
// a capture name is empty or not a valid identifier, or a stray "}" appears
// outside a placeholder. "{{" and "}}" escape literal braces.
func CompileTemplate(spec string) (*Template, error) {
	const op = "pattern.CompileTemplate"

	segs, err := scanTemplate(spec)
	if err != nil {
		return nil, parseerr.Syntax(op, err).WithContext(map[string]any{"pattern": spec})
	}

	var (
		chunks   []string
		fields   []string
		optional = make(map[string]bool)
	)

	// prevLiteral tracks whether the chunk preceding index i came from a
	// plain literal segment, so a trailing optional capture can fold it
	// into its group.
	prevLiteral := false

	for i := 0; i < len(segs); {
		s := segs[i]
		switch {
		case !s.capture:
			chunks = append(chunks, literalExpr(s.literal))
			prevLiteral = true
			i++

		case !s.optional:
			fields = append(fields, s.name)
			chunks = append(chunks, captureExpr(s.name))
			prevLiteral = false
			i++

		case i+1 < len(segs) && !segs[i+1].capture:
			// Optional capture followed by a literal: the capture and its
			// trailing delimiter stand or fall together.
			fields = append(fields, s.name)
			optional[s.name] = true
			chunks = append(chunks, "(?:"+captureExpr(s.name)+literalExpr(segs[i+1].literal)+")?")
			prevLiteral = false
			i += 2

		case prevLiteral:
			// Trailing optional capture: fold the preceding delimiter into
			// the optional group so both may be absent together.
			fields = append(fields, s.name)
			optional[s.name] = true
			chunks[len(chunks)-1] = "(?:" + chunks[len(chunks)-1] + captureExpr(s.name) + ")?"
			prevLiteral = false
			i++

		default:
			// No adjacent literal to anchor the optional capture on; it
			// behaves like a required capture that may match empty text.
			fields = append(fields, s.name)
			optional[s.name] = true
			chunks = append(chunks, captureExpr(s.name))
			prevLiteral = false
			i++
		}
	}

	expr := `(?s)\A\s*` + strings.Join(chunks, "") + `\s*\z`
	re, err := regexp.Compile(expr)
	if err != nil {
		// Duplicate capture names surface here.
		return nil, parseerr.Syntax(op, err).WithContext(map[string]any{"pattern": spec})
	}

	return &Template{src: spec, re: re, fields: fields, optional: optional}, nil
}

// MustTemplate is like CompileTemplate but panics on error. It simplifies
// declaring patterns as package-level variables.
func MustTemplate(spec string) *Template {
	t, err := CompileTemplate(spec)
	if err != nil {
		panic(err)
	}
	return t
}

// scanTemplate splits a spec into literal and capture segments.
func scanTemplate(spec string) ([]segment, error) {
	var (
		segs    []segment
		literal strings.Builder
	)

	flush := func() {
		if literal.Len() > 0 {
			segs = append(segs, segment{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(spec); {
		switch spec[i] {
		case '{':
			if i+1 < len(spec) && spec[i+1] == '{' {
				literal.WriteByte('{')
				i += 2
				continue
			}

			end := strings.IndexByte(spec[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder at offset %d", i)
			}

			name := spec[i+1 : i+end]
			opt := strings.HasSuffix(name, "?")
			if opt {
				name = strings.TrimSuffix(name, "?")
			}
			if !captureName.MatchString(name) {
				return nil, fmt.Errorf("invalid capture name %q at offset %d", name, i)
			}

			flush()
			segs = append(segs, segment{name: name, optional: opt, capture: true})
			i += end + 1

		case '}':
			if i+1 < len(spec) && spec[i+1] == '}' {
				literal.WriteByte('}')
				i += 2
				continue
			}
			return nil, fmt.Errorf("unexpected '}' at offset %d", i)

		default:
			literal.WriteByte(spec[i])
			i++
		}
	}
	flush()

	return segs, nil
}

// literalExpr renders a literal segment as a whitespace-tolerant regexp
// fragment. Whitespace-only literals require at least one whitespace
// character; everything else matches the trimmed literal verbatim with
// optional whitespace on both sides.
func literalExpr(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return `\s+`
	}
	return `\s*` + regexp.QuoteMeta(trimmed) + `\s*`
}

func captureExpr(name string) string {
	return "(?P<" + name + ">.*?)"
}

// Match parses text against the template and returns the captured fields.
// Absent optional captures are omitted from the mapping; present captures
// are trimmed of surrounding whitespace.
func (t *Template) Match(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)

	idx := t.re.FindStringSubmatchIndex(trimmed)
	if idx == nil {
		return nil, parseerr.NoMatch("pattern.Template.Match",
			fmt.Errorf("input %q does not match pattern %q", text, t.src)).
			WithContext(map[string]any{"pattern": t.src, "input": text})
	}

	out := make(map[string]any, len(t.fields))
	for i, name := range t.re.SubexpNames() {
		if name == "" {
			continue
		}
		start, end := idx[2*i], idx[2*i+1]
		if start < 0 {
			// Optional capture did not participate in the match.
			continue
		}
		out[name] = strings.TrimSpace(trimmed[start:end])
	}

	return out, nil
}

// Fields returns the capture names in declared order.
func (t *Template) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// Optional reports whether the named capture is optional.
func (t *Template) Optional(name string) bool {
	return t.optional[name]
}

// String returns the original pattern specification.
func (t *Template) String() string {
	return t.src
}
