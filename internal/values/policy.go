package values

import (
	"fmt"
	"strings"
)

// Policy is the global enforcement mode requested for a validation run.
// Under PolicyStrict every rule violation is a hard error. Under
// PolicyLenient violations on fields declared allow_existing_nonconforming
// are demoted to warnings.
type Policy string

const (
	// PolicyStrict promotes every violation to a hard error
	PolicyStrict Policy = "strict"
	// PolicyLenient defers to the per-field declared policy
	PolicyLenient Policy = "lenient"
)

// NewPolicy parses a policy from a string.
func NewPolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return PolicyStrict, nil
	case "lenient":
		return PolicyLenient, nil
	default:
		return "", fmt.Errorf("invalid policy: %q (expected strict or lenient)", s)
	}
}

// IsStrict returns true if this is the strict policy
func (p Policy) IsStrict() bool {
	return p == PolicyStrict
}

// String returns the string representation
func (p Policy) String() string {
	return string(p)
}
