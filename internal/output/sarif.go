package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/wbcheck-dev/wbcheck/internal/validate"
	"github.com/wbcheck-dev/wbcheck/internal/values"
	"github.com/wbcheck-dev/wbcheck/internal/version"
)

// SARIFFormatter formats validation reports as SARIF 2.1.0 JSON.
// Profile fields map to SARIF rules and issues to results.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(writer io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: writer}
}

// Format writes the validation report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *validate.Report) error {
	sarifReport := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("wbcheck", "https://github.com/wbcheck-dev/wbcheck")
	toolVersion := version.Get().Version
	run.Tool.Driver.Version = &toolVersion

	f.addRules(run, report)
	f.addResults(run, report)
	f.addProperties(run, report)

	sarifReport.AddRun(run)

	if err := sarifReport.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}
	_, err := f.writer.Write([]byte("\n"))
	return err
}

// addRules creates one SARIF rule per profile field that produced issues.
func (f *SARIFFormatter) addRules(run *sarif.Run, report *validate.Report) {
	seen := make(map[string]bool)
	for _, issue := range f.allIssues(report) {
		if seen[issue.FieldID] {
			continue
		}
		seen[issue.FieldID] = true

		description := issue.FieldID
		if issue.Property != "" {
			description = fmt.Sprintf("Profile field %s (%s)", issue.FieldID, issue.Property)
		}
		rule := sarif.NewReportingDescriptor().WithID(issue.FieldID)
		rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &description})
		run.Tool.Driver.AddRule(rule)
	}
}

// addResults converts issues to SARIF results.
func (f *SARIFFormatter) addResults(run *sarif.Run, report *validate.Report) {
	for _, issue := range f.allIssues(report) {
		result := sarif.NewRuleResult(issue.FieldID)
		result.Level = f.mapSeverityToLevel(issue.Severity)
		result.Message = sarif.NewTextMessage(issue.Message)

		props := sarif.NewPropertyBag()
		if issue.Property != "" {
			props.Add("property", issue.Property)
		}
		if report.Source != "" {
			props.Add("source", report.Source)
		}
		result.WithProperties(props)

		run.AddResult(result)
	}
}

// addProperties attaches run identity and summary counts.
func (f *SARIFFormatter) addProperties(run *sarif.Run, report *validate.Report) {
	props := sarif.NewPropertyBag()
	props.Add("run_id", report.RunID.String())
	props.Add("profile", report.ProfileName)
	props.Add("profile_version", report.ProfileVersion)
	props.Add("policy", report.Policy.String())
	props.Add("ok", report.Summary.OK)
	run.WithProperties(props)
}

// allIssues returns errors followed by warnings.
func (f *SARIFFormatter) allIssues(report *validate.Report) []values.Issue {
	issues := make([]values.Issue, 0, len(report.Result.Errors)+len(report.Result.Warnings))
	issues = append(issues, report.Result.Errors...)
	issues = append(issues, report.Result.Warnings...)
	return issues
}

// mapSeverityToLevel maps issue severity to a SARIF level.
func (f *SARIFFormatter) mapSeverityToLevel(severity values.Severity) string {
	if severity.IsError() {
		return "error"
	}
	return "warning"
}
