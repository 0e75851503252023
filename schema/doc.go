// Package schema provides the structural validation and type-coercion layer
// that resolved field mappings are handed to.
//
// A schema.JSON value describes the expected shape of a mapping using a
// JSON-Schema-style vocabulary (type, properties, required, items, enum,
// numeric and string bounds, $ref). Two operations consume it:
//
//   - Validate reports whether a value already conforms to the schema.
//   - Instantiate additionally coerces leaf strings produced by pattern
//     matching into their declared types ("30" becomes int64(30) for an
//     integer property) and returns the typed mapping.
//
// Both enumerate every per-field problem they find as a *ValidationError
// rather than stopping at the first.
//
// # Basic Usage
//
//	userSchema := schema.Object(map[string]schema.JSON{
//		"name":  schema.StringWithDesc("User's full name"),
//		"age":   schema.Int(),
//		"email": schema.String(),
//	}, "name", "email") // name and email are required
//
//	typed, err := userSchema.Instantiate(map[string]any{
//		"name":  "Alice",
//		"age":   "30", // coerced to int64(30)
//		"email": "alice@example.com",
//	})
//
// # Constraints
//
// Structural bounds use the JSON Schema vocabulary:
//
//	minLen := 3
//	constrained := schema.JSON{Type: "string", MinLength: &minLen, Pattern: "^[a-z]+$"}
//
// Cross-field invariants and range rules beyond the structural vocabulary can
// be attached as CEL expressions via the Constraint field; they are evaluated
// against the fully instantiated object:
//
//	order := schema.Object(map[string]schema.JSON{
//		"min": schema.Int(),
//		"max": schema.Int(),
//	}, "min", "max")
//	order.Constraint = "self.min <= self.max"
package schema
