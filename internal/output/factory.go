// Package output provides formatters for validation reports.
package output

import (
	"fmt"
	"io"

	"github.com/wbcheck-dev/wbcheck/internal/validate"
)

// Formatter writes a validation report to an output stream.
type Formatter interface {
	Format(report *validate.Report) error
}

// NewFormatter returns a formatter for the given format name.
func NewFormatter(format string, writer io.Writer) (Formatter, error) {
	switch format {
	case "table":
		return NewTableFormatter(writer), nil
	case "json":
		return NewJSONFormatter(writer, true), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: %v)", format, SupportedFormats())
	}
}

// SupportedFormats returns the list of available format names.
func SupportedFormats() []string {
	return []string{"table", "json", "yaml", "sarif"}
}
