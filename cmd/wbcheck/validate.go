package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wbcheck-dev/wbcheck/internal/config"
	"github.com/wbcheck-dev/wbcheck/internal/output"
	"github.com/wbcheck-dev/wbcheck/internal/validate"
	"github.com/wbcheck-dev/wbcheck/internal/values"
	"github.com/wbcheck-dev/wbcheck/internal/wire"
)

var (
	profilePath string
	policyName  string
	format      string
	outFile     string
	parallelism int
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <record.json> [record.json...]",
	Short: "Validate entity records against a profile",
	Long: `Load an entity profile and validate one or more wire-format entity
records against its rules.

Policies:
  strict    Every rule violation is a hard error.
  lenient   Violations on fields declared allow_existing_nonconforming
            are reported as warnings instead of errors.

A record that produces any error must not be published; warnings are
advisory and safe to publish past.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidateAction(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile YAML file (required)")
	validateCmd.Flags().StringVar(&policyName, "policy", "", "Validation policy: strict, lenient (default: strict)")
	validateCmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, yaml, sarif")
	validateCmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file path (default: stdout)")
	validateCmd.Flags().IntVar(&parallelism, "parallel", runtime.NumCPU(), "Maximum records validated concurrently")
	_ = validateCmd.MarkFlagRequired("profile")
}

// runValidateAction implements the core logic for the validate command
func runValidateAction(ctx context.Context, recordPaths []string) error {
	policy, err := resolvePolicy()
	if err != nil {
		return err
	}

	slog.Info("loading profile", "path", profilePath)
	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	slog.Info("profile loaded",
		"name", profile.Metadata.Name,
		"version", profile.Metadata.Version,
		"fields", profile.FieldCount())

	validator, err := validate.New(profile)
	if err != nil {
		return err
	}

	items, err := readRecords(recordPaths)
	if err != nil {
		return err
	}

	reports, err := validator.ValidateBatch(ctx, items, policy, parallelism)
	if err != nil {
		return err
	}

	writer, closeWriter, err := openOutput()
	if err != nil {
		return err
	}
	defer closeWriter()

	formatter, err := output.NewFormatter(format, writer)
	if err != nil {
		return err
	}

	rejected := 0
	for _, report := range reports {
		if err := formatter.Format(report); err != nil {
			return fmt.Errorf("failed to format report: %w", err)
		}
		if !report.Summary.OK {
			rejected++
		}
	}

	if rejected > 0 {
		return fmt.Errorf("validation failed: %d of %d records rejected", rejected, len(reports))
	}
	slog.Info("validation passed", "records", len(reports))
	return nil
}

// resolvePolicy reads the policy from the flag, falling back to the
// config file, then to strict.
func resolvePolicy() (values.Policy, error) {
	name := policyName
	if name == "" {
		name = viper.GetString("policy")
	}
	if name == "" {
		return values.PolicyStrict, nil
	}
	return values.NewPolicy(name)
}

// readRecords parses each record file into a validation item.
func readRecords(paths []string) ([]validate.Item, error) {
	items := make([]validate.Item, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %s: %w", path, err)
		}
		record, err := wire.ParseRecord(data)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", path, err)
		}
		items = append(items, validate.Item{Source: path, Record: record})
	}
	return items, nil
}

// openOutput returns the report writer and its cleanup function.
func openOutput() (io.Writer, func(), error) {
	if outFile == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(outFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
