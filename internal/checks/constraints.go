// Package checks builds the per-profile validation model: one check
// closure per profile field, compiled once at profile load and reused
// across record validations.
package checks

import (
	"fmt"
	"math"
	"regexp"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/wbcheck-dev/wbcheck/internal/schema"
)

// constraintFunc tests one comparable scalar. A nil return means the
// constraint holds.
type constraintFunc func(scalar any) error

// compiledConstraint pairs a constraint spec with its compiled test.
type compiledConstraint struct {
	spec schema.ConstraintSpec
	test constraintFunc
}

// compileConstraint translates a constraint spec into a test function.
// Unknown names and invalid patterns or expressions are profile errors.
func compileConstraint(spec schema.ConstraintSpec) (constraintFunc, error) {
	if spec.Expr != "" {
		return compileExprConstraint(spec.Expr)
	}

	switch spec.Name {
	case "integer_only":
		return integerOnly, nil
	case "non_negative":
		return nonNegative, nil
	case "non_empty":
		return nonEmpty, nil
	case "pattern":
		return compilePatternConstraint(spec.Pattern)
	default:
		return nil, fmt.Errorf("unknown constraint: %q", spec.Name)
	}
}

func integerOnly(scalar any) error {
	f, ok := asFloat(scalar)
	if !ok {
		return fmt.Errorf("value %v is not numeric", scalar)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("value %v is not an integer", scalar)
	}
	return nil
}

func nonNegative(scalar any) error {
	f, ok := asFloat(scalar)
	if !ok {
		return fmt.Errorf("value %v is not numeric", scalar)
	}
	if f < 0 {
		return fmt.Errorf("value %v is negative", scalar)
	}
	return nil
}

func nonEmpty(scalar any) error {
	s, ok := scalar.(string)
	if !ok {
		return fmt.Errorf("value %v is not a string", scalar)
	}
	if s == "" {
		return fmt.Errorf("value is empty")
	}
	return nil
}

// compilePatternConstraint compiles the regular expression once at model
// build time.
func compilePatternConstraint(pattern string) (constraintFunc, error) {
	if pattern == "" {
		return nil, fmt.Errorf("pattern constraint requires a pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return func(scalar any) error {
		s, ok := scalar.(string)
		if !ok {
			return fmt.Errorf("value %v is not a string", scalar)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("value %q does not match pattern %s", s, pattern)
		}
		return nil
	}, nil
}

// compileExprConstraint compiles a boolean expression evaluated with the
// statement's comparable scalar bound to "value".
func compileExprConstraint(source string) (constraintFunc, error) {
	program, err := expr.Compile(source, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid constraint expression %q: %w", source, err)
	}
	return func(scalar any) error {
		return runExprConstraint(program, source, scalar)
	}, nil
}

func runExprConstraint(program *vm.Program, source string, scalar any) error {
	output, err := expr.Run(program, map[string]any{"value": scalar})
	if err != nil {
		return fmt.Errorf("expression %q failed: %v", source, err)
	}
	ok, isBool := output.(bool)
	if !isBool {
		return fmt.Errorf("expression %q did not return a boolean", source)
	}
	if !ok {
		return fmt.Errorf("value %v rejected by expression %q", scalar, source)
	}
	return nil
}

// asFloat converts any numeric representation to float64.
func asFloat(scalar any) (float64, bool) {
	switch v := scalar.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
