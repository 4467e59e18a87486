package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wbcheck-dev/wbcheck/internal/config"
	"github.com/wbcheck-dev/wbcheck/internal/validate"
)

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint <profile.yaml>",
	Short: "Validate a profile document without validating any record",
	Long: `Load a profile and run every pre-flight check: YAML parsing, JSON
Schema validation of the document, structural validation of the model,
and constraint compilation. Useful in CI for profile authors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runLintAction(args[0])
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

// runLintAction implements the core logic for the lint command
func runLintAction(path string) error {
	slog.Info("linting profile", "path", path)

	profile, err := config.LoadProfile(path)
	if err != nil {
		return err
	}

	// Building the validator compiles every constraint
	if _, err := validate.New(profile); err != nil {
		return err
	}

	fmt.Printf("profile %s (v%s) is valid: %d fields\n",
		profile.Metadata.Name, profile.Metadata.Version, profile.FieldCount())
	return nil
}
