package schema

import (
	"fmt"
	"strings"
)

// JSON represents a JSON Schema definition.
// It provides a structured way to define and validate mapping trees produced
// by pattern-based field resolution.
type JSON struct {
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Properties  map[string]JSON `json:"properties,omitempty"`
	Required    []string        `json:"required,omitempty"`
	Items       *JSON           `json:"items,omitempty"`
	Enum        []any           `json:"enum,omitempty"`
	Default     any             `json:"default,omitempty"`
	Minimum     *float64        `json:"minimum,omitempty"`
	Maximum     *float64        `json:"maximum,omitempty"`
	MinLength   *int            `json:"minLength,omitempty"`
	MaxLength   *int            `json:"maxLength,omitempty"`
	Pattern     string          `json:"pattern,omitempty"`
	Format      string          `json:"format,omitempty"`
	Ref         string          `json:"$ref,omitempty"`

	// Constraint is an optional CEL expression evaluated against the fully
	// instantiated object, bound as "self". It expresses invariants the
	// structural vocabulary cannot, such as cross-field rules.
	Constraint string `json:"constraint,omitempty"`
}

// Definitions maps definition names to schemas for resolving local
// "#/definitions/X" references.
type Definitions map[string]JSON

// Any creates a JSON schema that accepts any type.
// This is useful for dynamic or unstructured data.
func Any() JSON {
	return JSON{}
}

// String creates a JSON schema for a string type.
func String() JSON {
	return JSON{Type: "string"}
}

// StringWithDesc creates a JSON schema for a string type with a description.
func StringWithDesc(desc string) JSON {
	return JSON{Type: "string", Description: desc}
}

// Int creates a JSON schema for an integer type.
func Int() JSON {
	return JSON{Type: "integer"}
}

// Number creates a JSON schema for a number type.
func Number() JSON {
	return JSON{Type: "number"}
}

// Bool creates a JSON schema for a boolean type.
func Bool() JSON {
	return JSON{Type: "boolean"}
}

// Array creates a JSON schema for an array type with the specified item schema.
func Array(items JSON) JSON {
	return JSON{Type: "array", Items: &items}
}

// Object creates a JSON schema for an object type with the specified
// properties and required fields.
func Object(properties map[string]JSON, required ...string) JSON {
	return JSON{Type: "object", Properties: properties, Required: required}
}

// Enum creates a JSON schema with enumerated values.
func Enum(values ...any) JSON {
	return JSON{Enum: values}
}

// Ref creates a JSON schema referencing a named definition.
func Ref(name string) JSON {
	return JSON{Ref: "#/definitions/" + name}
}

// WithConstraint returns a copy of the schema with the given CEL constraint
// attached. This method is immutable - it does not modify the receiver.
func (s JSON) WithConstraint(expr string) JSON {
	result := s
	result.Constraint = expr
	return result
}

// resolveRef follows a local "#/definitions/X" reference through defs,
// guarding against unknown names and cycles.
func resolveRef(ref string, defs Definitions, visited map[string]bool) (JSON, error) {
	if !strings.HasPrefix(ref, "#/definitions/") {
		return JSON{}, fmt.Errorf("unsupported $ref format: %s (only #/definitions/X is supported)", ref)
	}

	name := strings.TrimPrefix(ref, "#/definitions/")
	if visited[ref] {
		return JSON{}, fmt.Errorf("circular $ref detected: %s", ref)
	}
	if defs == nil {
		return JSON{}, fmt.Errorf("$ref %s cannot be resolved: no definitions provided", ref)
	}

	target, ok := defs[name]
	if !ok {
		return JSON{}, fmt.Errorf("$ref %s cannot be resolved: definition not found", ref)
	}

	return target, nil
}
