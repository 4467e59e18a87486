package validate

import (
	"time"

	"github.com/wbcheck-dev/wbcheck/internal/values"
)

// Report wraps a ValidationResult with run identity and summary counts
// for output formatting.
type Report struct {
	RunID          values.RunID      `json:"run_id" yaml:"run_id"`
	ProfileName    string            `json:"profile_name" yaml:"profile_name"`
	ProfileVersion string            `json:"profile_version" yaml:"profile_version"`
	Source         string            `json:"source,omitempty" yaml:"source,omitempty"`
	Policy         values.Policy     `json:"policy" yaml:"policy"`
	StartTime      time.Time         `json:"start_time" yaml:"start_time"`
	Duration       time.Duration     `json:"duration_ms" yaml:"duration_ms"`
	Result         *ValidationResult `json:"result" yaml:"result"`
	Summary        Summary           `json:"summary" yaml:"summary"`
}

// Summary provides aggregate statistics about one validation run.
type Summary struct {
	OK         bool `json:"ok" yaml:"ok"`
	Errors     int  `json:"errors" yaml:"errors"`
	Warnings   int  `json:"warnings" yaml:"warnings"`
	Fields     int  `json:"fields" yaml:"fields"`
	Statements int  `json:"statements" yaml:"statements"`
}

// summarize computes summary counts from a result.
func summarize(result *ValidationResult) Summary {
	statements := 0
	for _, list := range result.Normalized {
		statements += len(list)
	}
	return Summary{
		OK:         result.OK,
		Errors:     len(result.Errors),
		Warnings:   len(result.Warnings),
		Fields:     len(result.Normalized),
		Statements: statements,
	}
}
