package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// FieldIssue describes one structural problem found during validation or
// instantiation.
type FieldIssue struct {
	// Path is the dotted field path from the root object (e.g. "info.age",
	// "tags[2]"). Empty for problems with the root value itself.
	Path string `json:"path"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Input is the offending value, when available.
	Input any `json:"input,omitempty"`
}

// ValidationError enumerates every per-field problem found in one pass.
// It is returned by Validate and Instantiate instead of aborting at the
// first mismatch.
type ValidationError struct {
	Issues []FieldIssue
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "schema: " + e.Issues[0].describe()
	}

	parts := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		parts[i] = iss.describe()
	}
	return fmt.Sprintf("schema: %d problems: %s", len(e.Issues), strings.Join(parts, "; "))
}

func (iss FieldIssue) describe() string {
	if iss.Path == "" {
		return iss.Message
	}
	return iss.Path + ": " + iss.Message
}

// Validate checks that value already conforms to the schema. No coercion is
// performed: a string "30" does not satisfy an integer property.
func (s JSON) Validate(value any) error {
	return s.ValidateIn(nil, value)
}

// ValidateIn is Validate with a Definitions set for resolving $ref schemas.
func (s JSON) ValidateIn(defs Definitions, value any) error {
	w := &walker{defs: defs, visited: make(map[string]bool)}
	w.walk(s, value, "")
	return w.err()
}

// walker performs one validation or instantiation pass, accumulating issues.
// In coerce mode it also rewrites leaf values into their declared types.
type walker struct {
	defs    Definitions
	coerce  bool
	visited map[string]bool
	issues  []FieldIssue
}

func (w *walker) err() error {
	if len(w.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: w.issues}
}

func (w *walker) problem(path, format string, args ...any) {
	w.issues = append(w.issues, FieldIssue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (w *walker) problemWithInput(path string, input any, format string, args ...any) {
	w.issues = append(w.issues, FieldIssue{Path: path, Message: fmt.Sprintf(format, args...), Input: input})
}

// walk validates value against s at path and returns the (possibly coerced)
// value. The returned value is only meaningful when no issue was recorded
// for this subtree.
func (w *walker) walk(s JSON, value any, path string) any {
	if s.Ref != "" {
		target, err := resolveRef(s.Ref, w.defs, w.visited)
		if err != nil {
			w.problem(path, "%v", err)
			return value
		}
		w.visited[s.Ref] = true
		defer delete(w.visited, s.Ref)
		return w.walk(target, value, path)
	}

	if value == nil {
		if s.Type != "" {
			w.problem(path, "expected type %s, got nil", s.Type)
		}
		return nil
	}

	if len(s.Enum) > 0 {
		return w.walkEnum(s, value, path)
	}

	switch s.Type {
	case "":
		return value
	case "string":
		return w.walkString(s, value, path)
	case "integer":
		return w.walkInteger(s, value, path)
	case "number":
		return w.walkNumber(s, value, path)
	case "boolean":
		return w.walkBoolean(value, path)
	case "array":
		return w.walkArray(s, value, path)
	case "object":
		return w.walkObject(s, value, path)
	default:
		w.problem(path, "unknown schema type %q", s.Type)
		return value
	}
}

func (w *walker) walkEnum(s JSON, value any, path string) any {
	for _, allowed := range s.Enum {
		if reflect.DeepEqual(value, allowed) {
			return value
		}
	}
	w.problemWithInput(path, value, "value %v is not one of the allowed values: %v", value, s.Enum)
	return value
}

func (w *walker) walkString(s JSON, value any, path string) any {
	str, ok := value.(string)
	if !ok {
		w.problemWithInput(path, value, "expected string, got %T", value)
		return value
	}

	if s.MinLength != nil && len(str) < *s.MinLength {
		w.problemWithInput(path, str, "string length %d is less than minimum %d", len(str), *s.MinLength)
	}
	if s.MaxLength != nil && len(str) > *s.MaxLength {
		w.problemWithInput(path, str, "string length %d is greater than maximum %d", len(str), *s.MaxLength)
	}
	if s.Pattern != "" {
		matched, err := regexp.MatchString(s.Pattern, str)
		if err != nil {
			w.problem(path, "invalid schema pattern: %v", err)
		} else if !matched {
			w.problemWithInput(path, str, "string does not match pattern %s", s.Pattern)
		}
	}

	return str
}

func (w *walker) walkInteger(s JSON, value any, path string) any {
	n, err := toInt(value, w.coerce)
	if err != nil {
		w.problemWithInput(path, value, "%v", err)
		return value
	}

	w.checkBounds(s, float64(n), path)
	return n
}

func (w *walker) walkNumber(s JSON, value any, path string) any {
	f, err := toFloat(value, w.coerce)
	if err != nil {
		w.problemWithInput(path, value, "%v", err)
		return value
	}

	w.checkBounds(s, f, path)
	return f
}

func (w *walker) checkBounds(s JSON, num float64, path string) {
	if s.Minimum != nil && num < *s.Minimum {
		w.problem(path, "value %v is less than minimum %v", num, *s.Minimum)
	}
	if s.Maximum != nil && num > *s.Maximum {
		w.problem(path, "value %v is greater than maximum %v", num, *s.Maximum)
	}
}

func (w *walker) walkBoolean(value any, path string) any {
	b, err := toBool(value, w.coerce)
	if err != nil {
		w.problemWithInput(path, value, "%v", err)
		return value
	}
	return b
}

func (w *walker) walkArray(s JSON, value any, path string) any {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		w.problemWithInput(path, value, "expected array, got %T", value)
		return value
	}

	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i).Interface()
		if s.Items != nil {
			out[i] = w.walk(*s.Items, item, fmt.Sprintf("%s[%d]", path, i))
		} else {
			out[i] = item
		}
	}
	return out
}

func (w *walker) walkObject(s JSON, value any, path string) any {
	obj, ok := value.(map[string]any)
	if !ok {
		w.problemWithInput(path, value, "expected object, got %T", value)
		return value
	}

	for _, req := range s.Required {
		if _, exists := obj[req]; !exists {
			w.problem(joinPath(path, req), "required field is missing")
		}
	}

	out := make(map[string]any, len(obj))
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		if propSchema, exists := s.Properties[key]; exists {
			out[key] = w.walk(propSchema, val, joinPath(path, key))
		} else {
			out[key] = val
		}
	}
	return out
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// sortedKeys keeps issue ordering deterministic across runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
