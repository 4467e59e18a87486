package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed profile_schema.json
var profileSchemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// profileSchema compiles the embedded JSON Schema once.
func profileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("profile_schema.json", bytes.NewReader(profileSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to add profile schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("profile_schema.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile profile schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateDocument validates a decoded profile document against the
// embedded JSON Schema. The document is the YAML decoded into generic
// maps and lists, before the typed model is built.
func ValidateDocument(document any) error {
	schema, err := profileSchema()
	if err != nil {
		return err
	}

	if err := schema.Validate(document); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("profile document validation failed: %w", err)
	}
	return nil
}

// formatSchemaValidationError formats a JSON Schema validation error into
// a readable message.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return fmt.Errorf("profile document validation failed")
	}
	return fmt.Errorf("profile document validation failed:\n    - %s", strings.Join(messages, "\n    - "))
}
