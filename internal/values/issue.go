package values

import "fmt"

// Issue is a single validation finding attributed to a profile field.
// Issues flow through two channels: normalization issues (structural
// problems in the raw record) and semantic violations (profile-rule
// non-compliance). Both share this shape.
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	FieldID  string   `json:"field_id" yaml:"field_id"`
	Property string   `json:"property,omitempty" yaml:"property,omitempty"`
}

// NewError creates an error-severity issue.
func NewError(fieldID, property, message string) Issue {
	return Issue{Severity: SeverityError, Message: message, FieldID: fieldID, Property: property}
}

// NewWarning creates a warning-severity issue.
func NewWarning(fieldID, property, message string) Issue {
	return Issue{Severity: SeverityWarning, Message: message, FieldID: fieldID, Property: property}
}

// String returns a human-readable representation.
func (i Issue) String() string {
	if i.Property != "" {
		return fmt.Sprintf("[%s] %s (%s): %s", i.Severity, i.FieldID, i.Property, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.FieldID, i.Message)
}
