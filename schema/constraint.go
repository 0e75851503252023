package schema

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// evalConstraint evaluates a CEL expression against the instantiated object,
// bound as "self". The expression must produce a boolean; false means the
// constraint is violated.
//
// Constraints express the semantic rules the structural vocabulary cannot:
// cross-field invariants ("self.min <= self.max"), conditional requirements,
// arithmetic range rules. They run after coercion, so numeric fields carry
// their typed values.
func evalConstraint(expr string, obj map[string]any) error {
	env, err := cel.NewEnv(cel.Variable("self", cel.DynType))
	if err != nil {
		return fmt.Errorf("constraint environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid constraint %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return fmt.Errorf("constraint program %q: %w", expr, err)
	}

	out, _, err := prg.Eval(map[string]any{"self": obj})
	if err != nil {
		return fmt.Errorf("constraint %q: %w", expr, err)
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		return fmt.Errorf("constraint %q evaluated to %T, not bool", expr, out.Value())
	}
	if !ok {
		return fmt.Errorf("constraint %q violated", expr)
	}

	return nil
}
