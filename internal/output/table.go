package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wbcheck-dev/wbcheck/internal/validate"
	"github.com/wbcheck-dev/wbcheck/internal/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// TableFormatter formats validation reports as a human-readable table.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the validation report as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(report *validate.Report) error {
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintf(f.writer, "Profile: %s (v%s)\n", f.colorize(report.ProfileName, colorBold), report.ProfileVersion)
	if report.Source != "" {
		fmt.Fprintf(f.writer, "Record:  %s\n", report.Source)
	}
	fmt.Fprintf(f.writer, "Policy:  %s\n", report.Policy)
	fmt.Fprintf(f.writer, "Run:     %s\n", report.RunID)
	fmt.Fprintf(f.writer, "Started: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	f.formatIssues("Errors", report.Result.Errors, colorRed)
	f.formatIssues("Warnings", report.Result.Warnings, colorYellow)

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	f.formatSummary(report.Summary)
	return nil
}

// formatIssues prints one issue section.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatIssues(title string, issues []values.Issue, color string) {
	if len(issues) == 0 {
		return
	}

	fmt.Fprintln(f.writer, f.colorize(title+":", colorBold))
	for _, issue := range issues {
		symbol := "✗"
		if issue.Severity == values.SeverityWarning {
			symbol = "!"
		}
		location := issue.FieldID
		if issue.Property != "" {
			location = fmt.Sprintf("%s (%s)", issue.FieldID, issue.Property)
		}
		fmt.Fprintf(f.writer, "  %s %s: %s\n",
			f.colorize(symbol, color), f.colorize(location, color), issue.Message)
	}
	fmt.Fprintln(f.writer)
}

// formatSummary prints the aggregate line.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(summary validate.Summary) {
	verdict := f.colorize("OK", colorGreen)
	if !summary.OK {
		verdict = f.colorize("NOT OK", colorRed)
	}
	fmt.Fprintf(f.writer, "Result: %s  (%d errors, %d warnings, %d statements across %d fields)\n",
		verdict, summary.Errors, summary.Warnings, summary.Statements, summary.Fields)
}
