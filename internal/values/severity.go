// Package values contains domain value objects that encapsulate
// primitive types with validation.
package values

import "fmt"

// Severity classifies a validation issue.
type Severity string

const (
	// SeverityError indicates a violation that blocks publication
	SeverityError Severity = "error"
	// SeverityWarning indicates an advisory issue that is safe to publish past
	SeverityWarning Severity = "warning"
)

// IsError returns true if this severity blocks publication
func (s Severity) IsError() bool {
	return s == SeverityError
}

// Validate returns an error if the severity value is invalid
func (s Severity) Validate() error {
	switch s {
	case SeverityError, SeverityWarning:
		return nil
	default:
		return fmt.Errorf("invalid severity: %s", s)
	}
}
