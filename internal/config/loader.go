// Package config provides infrastructure for loading entity profiles.
// It handles YAML parsing, JSON Schema validation of the profile document,
// and structural validation of the decoded model.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/wbcheck-dev/wbcheck/internal/schema"
)

// LoadProfile loads and parses a profile from a YAML file.
// The document is validated against the embedded JSON Schema before
// decoding, then structurally validated.
func LoadProfile(path string) (*schema.ProfileDefinition, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return LoadProfileFromReader(file)
}

// LoadProfileFromReader loads and parses a profile from an io.Reader.
// This is useful for testing with in-memory YAML data.
func LoadProfileFromReader(r io.Reader) (*schema.ProfileDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	// Validate the raw document shape before committing to the typed model
	var document any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if err := ValidateDocument(document); err != nil {
		return nil, err
	}

	var profile schema.ProfileDefinition
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile YAML: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return &profile, nil
}
