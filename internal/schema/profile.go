// Package schema provides the typed model of an entity profile.
// A profile declares which statements, qualifiers, and references are
// permitted or required for one entity type. The model is immutable after
// load and safe for concurrent reuse across validations.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Field IDs must be alphanumeric with dashes and underscores
var fieldIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// External property IDs follow the Wikibase convention, e.g. "P31"
var propertyIDPattern = regexp.MustCompile(`^P[0-9]+$`)

// ProfileDefinition represents a complete entity profile.
// Profiles define the statements an entity record must carry before it
// may be published to the knowledge base.
type ProfileDefinition struct {
	Metadata ProfileMetadata   `yaml:"profile"`
	Fields   []FieldDefinition `yaml:"fields"`
}

// ProfileMetadata contains metadata about the profile.
type ProfileMetadata struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
}

// FieldDefinition declares the rules for one profile field: the external
// property it maps to, cardinality, value shape, qualifier rules, and
// reference rules.
type FieldDefinition struct {
	ID         string                `yaml:"id"`
	Label      string                `yaml:"label,omitempty"`
	Property   string                `yaml:"property"`
	Required   bool                  `yaml:"required,omitempty"`
	MaxCount   *int                  `yaml:"max_count,omitempty"`
	Policy     FieldPolicy           `yaml:"policy,omitempty"`
	Value      ValueDefinition       `yaml:"value"`
	Qualifiers []QualifierDefinition `yaml:"qualifiers,omitempty"`
	References *ReferenceDefinition  `yaml:"references,omitempty"`
}

// FieldPolicy is the enforcement policy declared on a field or on its
// reference rules. It overrides the global request policy per the
// promotion rule: a violation becomes a hard error iff the global policy
// is strict OR the governing declared policy is strict.
type FieldPolicy string

const (
	// FieldPolicyStrict promotes violations on this field to errors
	// regardless of the global policy. The empty policy means strict.
	FieldPolicyStrict FieldPolicy = "strict"
	// FieldPolicyAllowNonconforming demotes violations to warnings under
	// a lenient global policy. Intended for grandfathering existing
	// imperfect data.
	FieldPolicyAllowNonconforming FieldPolicy = "allow_existing_nonconforming"
)

// IsStrict returns true if the policy is strict. An unset policy is strict.
func (p FieldPolicy) IsStrict() bool {
	return p != FieldPolicyAllowNonconforming
}

// Validate returns an error if the policy value is invalid
func (p FieldPolicy) Validate() error {
	switch p {
	case "", FieldPolicyStrict, FieldPolicyAllowNonconforming:
		return nil
	default:
		return fmt.Errorf("invalid policy: %s", p)
	}
}

// ValueType identifies the shape of a statement value.
type ValueType string

const (
	ValueItem        ValueType = "item"
	ValueURL         ValueType = "url"
	ValueString      ValueType = "string"
	ValueQuantity    ValueType = "quantity"
	ValueTime        ValueType = "time"
	ValueMonolingual ValueType = "monolingualtext"
	ValueGlobeCoord  ValueType = "globecoordinate"
)

// declaredValueTypes are the types a profile may declare for a field value.
// Monolingual text and coordinates appear in records but are not declarable.
var declaredValueTypes = map[ValueType]bool{
	ValueItem:     true,
	ValueURL:      true,
	ValueString:   true,
	ValueQuantity: true,
	ValueTime:     true,
}

// ValueDefinition declares the shape and content rules for a value.
type ValueDefinition struct {
	Type        ValueType        `yaml:"type"`
	Fixed       any              `yaml:"fixed,omitempty"`
	Constraints []ConstraintSpec `yaml:"constraints,omitempty"`
}

// ConstraintSpec names a content rule applied to each statement value.
// Either Name selects a built-in rule (integer_only, non_negative,
// non_empty, pattern) or Expr carries a boolean expression evaluated
// against the value.
type ConstraintSpec struct {
	Name    string `yaml:"name,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
	Expr    string `yaml:"expr,omitempty"`
}

// Describe returns a short identifier for the constraint, used in messages.
func (c ConstraintSpec) Describe() string {
	if c.Name != "" {
		return c.Name
	}
	return "expr"
}

// QualifierDefinition declares the rules for a qualifier on a field.
type QualifierDefinition struct {
	ID       string          `yaml:"id"`
	Property string          `yaml:"property"`
	Required bool            `yaml:"required,omitempty"`
	MinCount *int            `yaml:"min_count,omitempty"`
	MaxCount *int            `yaml:"max_count,omitempty"`
	Value    ValueDefinition `yaml:"value"`
}

// EffectiveMinCount returns the minimum number of qualifier values.
// A required qualifier without an explicit min_count defaults to 1.
func (q *QualifierDefinition) EffectiveMinCount() int {
	if q.MinCount != nil {
		return *q.MinCount
	}
	if q.Required {
		return 1
	}
	return 0
}

// ReferenceDefinition declares the provenance rules for a field.
type ReferenceDefinition struct {
	Required bool                        `yaml:"required,omitempty"`
	MinCount *int                        `yaml:"min_count,omitempty"`
	Policy   FieldPolicy                 `yaml:"policy,omitempty"`
	Allowed  []ReferenceTargetDefinition `yaml:"allowed,omitempty"`
	Target   *ReferenceTargetDefinition  `yaml:"target,omitempty"`
}

// EffectiveMinCount returns the minimum number of reference blocks.
// A required reference without an explicit min_count defaults to 1.
func (r *ReferenceDefinition) EffectiveMinCount() int {
	if r.MinCount != nil {
		return *r.MinCount
	}
	if r.Required {
		return 1
	}
	return 0
}

// ReferenceTargetDefinition identifies a property a reference block may or
// must carry. When ValueSource is "statement_value" the reference's value
// for the property must equal the parent statement's main value.
type ReferenceTargetDefinition struct {
	ID          string    `yaml:"id"`
	Property    string    `yaml:"property"`
	Type        ValueType `yaml:"type,omitempty"`
	ValueSource string    `yaml:"value_source,omitempty"`
}

// ValueSourceStatement marks a reference target whose value must equal the
// parent statement's main value.
const ValueSourceStatement = "statement_value"

// FieldByID returns the field with the given internal id, or nil.
func (p *ProfileDefinition) FieldByID(id string) *FieldDefinition {
	for i := range p.Fields {
		if p.Fields[i].ID == id {
			return &p.Fields[i]
		}
	}
	return nil
}

// FieldByProperty returns the field mapped to the given external property
// id, or nil.
func (p *ProfileDefinition) FieldByProperty(property string) *FieldDefinition {
	for i := range p.Fields {
		if p.Fields[i].Property == property {
			return &p.Fields[i]
		}
	}
	return nil
}

// FieldCount returns the number of fields in the profile.
func (p *ProfileDefinition) FieldCount() int {
	return len(p.Fields)
}

// Validate checks the profile structure and content.
func (p *ProfileDefinition) Validate() error {
	var errs []string

	if err := p.validateMetadata(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := p.validateFields(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("profile validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (p *ProfileDefinition) validateMetadata() error {
	var errs []string

	if p.Metadata.Name == "" {
		errs = append(errs, "profile name is required")
	}
	if p.Metadata.Version == "" {
		errs = append(errs, "profile version is required")
	} else if _, err := semver.NewVersion(p.Metadata.Version); err != nil {
		errs = append(errs, fmt.Sprintf("profile version %q is not valid semver: %v", p.Metadata.Version, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("profile metadata: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (p *ProfileDefinition) validateFields() error {
	if len(p.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}

	fieldIDs := make(map[string]bool)
	properties := make(map[string]bool)

	var errs []string
	for i, field := range p.Fields {
		if err := field.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("field %d: %s", i, err.Error()))
		}
		if fieldIDs[field.ID] {
			errs = append(errs, fmt.Sprintf("duplicate field ID: %s", field.ID))
		}
		fieldIDs[field.ID] = true
		if properties[field.Property] {
			errs = append(errs, fmt.Sprintf("duplicate property: %s", field.Property))
		}
		properties[field.Property] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("fields validation:\n    - %s", strings.Join(errs, "\n    - "))
	}
	return nil
}

// Validate checks the consistency of a single field definition.
func (f *FieldDefinition) Validate() error {
	var errs []string

	if f.ID == "" {
		errs = append(errs, "field ID is required")
	} else if !fieldIDPattern.MatchString(f.ID) {
		errs = append(errs, fmt.Sprintf("field ID %q is invalid (must be alphanumeric with dashes/underscores)", f.ID))
	}
	if f.Property == "" {
		errs = append(errs, "property is required")
	} else if !propertyIDPattern.MatchString(f.Property) {
		errs = append(errs, fmt.Sprintf("property %q is invalid (expected format: P123)", f.Property))
	}
	if f.MaxCount != nil && *f.MaxCount < 1 {
		errs = append(errs, "max_count must be at least 1")
	}
	if err := f.Policy.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := f.Value.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("value: %s", err.Error()))
	}

	for j, qual := range f.Qualifiers {
		if err := qual.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("qualifier %d: %s", j, err.Error()))
		}
	}
	if f.References != nil {
		if err := f.References.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("references: %s", err.Error()))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a value definition.
func (v *ValueDefinition) Validate() error {
	var errs []string

	if v.Type == "" {
		errs = append(errs, "value type is required")
	} else if !declaredValueTypes[v.Type] {
		errs = append(errs, fmt.Sprintf("value type %q is invalid (expected item, url, string, quantity, or time)", v.Type))
	}
	for j, c := range v.Constraints {
		if c.Name == "" && c.Expr == "" {
			errs = append(errs, fmt.Sprintf("constraint %d: name or expr is required", j))
		}
		if c.Name != "" && c.Expr != "" {
			errs = append(errs, fmt.Sprintf("constraint %d: name and expr are mutually exclusive", j))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a qualifier definition.
func (q *QualifierDefinition) Validate() error {
	var errs []string

	if q.ID == "" {
		errs = append(errs, "qualifier ID is required")
	}
	if q.Property == "" {
		errs = append(errs, "property is required")
	} else if !propertyIDPattern.MatchString(q.Property) {
		errs = append(errs, fmt.Sprintf("property %q is invalid (expected format: P123)", q.Property))
	}
	if q.MinCount != nil && *q.MinCount < 0 {
		errs = append(errs, "min_count cannot be negative")
	}
	if q.MaxCount != nil && q.MinCount != nil && *q.MaxCount < *q.MinCount {
		errs = append(errs, "max_count cannot be below min_count")
	}
	if err := q.Value.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("value: %s", err.Error()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a reference definition.
func (r *ReferenceDefinition) Validate() error {
	var errs []string

	if err := r.Policy.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if r.MinCount != nil && *r.MinCount < 0 {
		errs = append(errs, "min_count cannot be negative")
	}
	if r.Target != nil {
		if err := r.Target.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("target: %s", err.Error()))
		}
	}
	for j, allowed := range r.Allowed {
		if err := allowed.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("allowed %d: %s", j, err.Error()))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a reference target definition.
func (t *ReferenceTargetDefinition) Validate() error {
	var errs []string

	if t.Property == "" {
		errs = append(errs, "property is required")
	} else if !propertyIDPattern.MatchString(t.Property) {
		errs = append(errs, fmt.Sprintf("property %q is invalid (expected format: P123)", t.Property))
	}
	if t.ValueSource != "" && t.ValueSource != ValueSourceStatement {
		errs = append(errs, fmt.Sprintf("value_source %q is invalid (expected %q)", t.ValueSource, ValueSourceStatement))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
