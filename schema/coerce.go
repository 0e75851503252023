package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Instantiate validates the mapping against the schema, coercing leaf
// strings into their declared types, and returns the typed mapping.
//
// Pattern matching only ever extracts strings; this is the step that turns
// "30" into int64(30) for an integer property, "3.14" into float64 for a
// number, and "true" into bool. JSON-sourced float64 values are accepted for
// integer properties when they carry no fractional part. Nested objects and
// array items are coerced recursively.
//
// The input mapping is never mutated; a new tree is returned. On failure the
// error is a *ValidationError enumerating every per-field problem.
func (s JSON) Instantiate(mapping map[string]any) (map[string]any, error) {
	return s.InstantiateIn(nil, mapping)
}

// InstantiateIn is Instantiate with a Definitions set for resolving $ref
// schemas.
func (s JSON) InstantiateIn(defs Definitions, mapping map[string]any) (map[string]any, error) {
	w := &walker{defs: defs, coerce: true, visited: make(map[string]bool)}

	coerced := w.walk(s, mapping, "")
	if err := w.err(); err != nil {
		return nil, err
	}

	obj, ok := coerced.(map[string]any)
	if !ok {
		return nil, &ValidationError{Issues: []FieldIssue{{
			Message: fmt.Sprintf("instantiated value is %T, not an object", coerced),
			Input:   mapping,
		}}}
	}

	if s.Constraint != "" {
		if err := evalConstraint(s.Constraint, obj); err != nil {
			return nil, &ValidationError{Issues: []FieldIssue{{
				Message: err.Error(),
				Input:   obj,
			}}}
		}
	}

	return obj, nil
}

// FromJSON parses text as a JSON object and instantiates it against the
// schema. It is the direct entry point for callers whose whole input is
// already JSON.
func (s JSON) FromJSON(text string) (map[string]any, error) {
	var value any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &value); err != nil {
		return nil, &ValidationError{Issues: []FieldIssue{{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Input:   text,
		}}}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &ValidationError{Issues: []FieldIssue{{
			Message: fmt.Sprintf("JSON value is %T, not an object", value),
			Input:   text,
		}}}
	}

	return s.Instantiate(obj)
}

// toInt converts value to int64. In coerce mode strings are parsed and
// integral floats accepted; otherwise only integer kinds conform.
func toInt(value any, coerce bool) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("expected integer, got float with decimal: %v", v)
		}
		return int64(v), nil
	case float32:
		f := float64(v)
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("expected integer, got float with decimal: %v", v)
		}
		return int64(f), nil
	case json.Number:
		return v.Int64()
	case string:
		if !coerce {
			return 0, fmt.Errorf("expected integer, got string")
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

// toFloat converts value to float64, parsing strings in coerce mode.
func toFloat(value any, coerce bool) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		if !coerce {
			return 0, fmt.Errorf("expected number, got string")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot coerce %q to number", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

// toBool converts value to bool, parsing strings in coerce mode.
func toBool(value any, coerce bool) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		if !coerce {
			return false, fmt.Errorf("expected boolean, got string")
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("cannot coerce %q to boolean", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", value)
	}
}
