package normalize

import (
	"fmt"

	"github.com/wbcheck-dev/wbcheck/internal/schema"
	"github.com/wbcheck-dev/wbcheck/internal/values"
	"github.com/wbcheck-dev/wbcheck/internal/wire"
)

// StatementData is one normalized statement: its parsed main value plus
// the parsed qualifier and reference snaks. Instances form a strict tree
// and are discarded after validation.
type StatementData struct {
	Value      StatementValue              `json:"value"`
	Qualifiers map[string][]StatementValue `json:"qualifiers,omitempty"`
	References []ReferenceData             `json:"references,omitempty"`
}

// QualifierValues returns the parsed values for a qualifier property.
func (s *StatementData) QualifierValues(property string) []StatementValue {
	return s.Qualifiers[property]
}

// ReferenceData is one normalized reference block.
type ReferenceData struct {
	Snaks map[string][]StatementValue `json:"snaks,omitempty"`
}

// HasProperty returns true if the reference block carries the property.
func (r *ReferenceData) HasProperty(property string) bool {
	return len(r.Snaks[property]) > 0
}

// Result holds the normalized statements keyed by profile field id,
// alongside the issues found while parsing the raw record.
type Result struct {
	Data   map[string][]StatementData
	Issues []values.Issue
}

// Normalizer converts raw entity records into typed statement data using
// the profile's field definitions for property lookup. A Normalizer is
// read-only after construction and safe for concurrent use.
type Normalizer struct {
	profile *schema.ProfileDefinition
}

// New creates a normalizer for the given profile.
func New(profile *schema.ProfileDefinition) *Normalizer {
	return &Normalizer{profile: profile}
}

// Normalize parses the record's statements for every profile field.
// Every field maps to a list, empty when the record has no statements for
// the field's property. Statements whose main value cannot be parsed are
// skipped with a warning; the relative order of surviving statements
// matches the raw record.
func (n *Normalizer) Normalize(record wire.EntityRecord) *Result {
	result := &Result{
		Data: make(map[string][]StatementData, len(n.profile.Fields)),
	}

	for i := range n.profile.Fields {
		field := &n.profile.Fields[i]
		result.Data[field.ID] = n.normalizeField(field, record, result)
	}

	return result
}

// normalizeField parses all statements for one field.
func (n *Normalizer) normalizeField(field *schema.FieldDefinition, record wire.EntityRecord, result *Result) []StatementData {
	statements, ok := record.Statements(field.Property)
	if !ok {
		result.warn(field.ID, field.Property,
			fmt.Sprintf("statements for property %s are not a list", field.Property))
		return []StatementData{}
	}

	normalized := make([]StatementData, 0, len(statements))
	for _, statement := range statements {
		value := SnakValue(statement.Mainsnak)
		if value == nil {
			result.warn(field.ID, field.Property, "statement missing value")
			continue
		}

		data := StatementData{Value: *value}
		data.Qualifiers = n.normalizeQualifiers(field, statement.Qualifiers, result)
		data.References = n.normalizeReferences(field, statement.References, result)
		normalized = append(normalized, data)
	}
	return normalized
}

// normalizeQualifiers parses each qualifier snak individually. A property
// with zero successfully parsed values is omitted from the mapping.
func (n *Normalizer) normalizeQualifiers(field *schema.FieldDefinition, qualifiers map[string][]wire.Snak, result *Result) map[string][]StatementValue {
	if len(qualifiers) == 0 {
		return nil
	}

	parsed := make(map[string][]StatementValue, len(qualifiers))
	for property, snaks := range qualifiers {
		var qualifierValues []StatementValue
		for _, snak := range snaks {
			value := SnakValue(snak)
			if value == nil {
				result.warn(field.ID, property,
					fmt.Sprintf("qualifier %s missing value", property))
				continue
			}
			qualifierValues = append(qualifierValues, *value)
		}
		if len(qualifierValues) > 0 {
			parsed[property] = qualifierValues
		}
	}
	if len(parsed) == 0 {
		return nil
	}
	return parsed
}

// normalizeReferences parses each reference block's snaks individually.
// A failed snak drops only that snak, never the block or the statement.
func (n *Normalizer) normalizeReferences(field *schema.FieldDefinition, references []wire.Reference, result *Result) []ReferenceData {
	if len(references) == 0 {
		return nil
	}

	parsed := make([]ReferenceData, 0, len(references))
	for _, reference := range references {
		block := ReferenceData{Snaks: make(map[string][]StatementValue, len(reference.Snaks))}
		for property, snaks := range reference.Snaks {
			var snakValues []StatementValue
			for _, snak := range snaks {
				value := SnakValue(snak)
				if value == nil {
					result.warn(field.ID, property,
						fmt.Sprintf("reference value for %s missing", property))
					continue
				}
				snakValues = append(snakValues, *value)
			}
			if len(snakValues) > 0 {
				block.Snaks[property] = snakValues
			}
		}
		parsed = append(parsed, block)
	}
	return parsed
}

// warn records a warning-severity normalization issue.
func (r *Result) warn(fieldID, property, message string) {
	r.Issues = append(r.Issues, values.NewWarning(fieldID, property, message))
}
