package checks

import (
	"fmt"
	"strings"

	"github.com/wbcheck-dev/wbcheck/internal/normalize"
	"github.com/wbcheck-dev/wbcheck/internal/schema"
	"github.com/wbcheck-dev/wbcheck/internal/values"
)

// Category routes a violation to its governing declared policy: field
// violations are governed by the field's policy, reference violations by
// the policy declared on the field's reference rules.
type Category string

const (
	// CategoryField covers cardinality, value-shape, fixed-value,
	// constraint, and qualifier violations
	CategoryField Category = "field"
	// CategoryReference covers provenance violations
	CategoryReference Category = "reference"
)

// Violation is one profile-rule non-compliance found on a field, before
// policy promotion decides whether it is an error or a warning.
type Violation struct {
	Category Category
	Message  string
}

// fieldChecker is the check closure for one profile field, bound to its
// definition and compiled constraints at model build time.
type fieldChecker struct {
	def         *schema.FieldDefinition
	constraints []compiledConstraint
}

// Model is the validation model generated for one profile: an ordered set
// of per-field checks plus the field-to-property alias map. A Model is
// built once per profile load and is safe for concurrent reuse; each
// Apply call is a pure function of its inputs.
type Model struct {
	fields     []fieldChecker
	properties map[string]string
}

// NewModel builds the validation model for a profile, compiling every
// field's constraints. Compilation failures are profile errors.
func NewModel(profile *schema.ProfileDefinition) (*Model, error) {
	model := &Model{
		fields:     make([]fieldChecker, 0, len(profile.Fields)),
		properties: make(map[string]string, len(profile.Fields)),
	}

	for i := range profile.Fields {
		def := &profile.Fields[i]

		compiled := make([]compiledConstraint, 0, len(def.Value.Constraints))
		for _, spec := range def.Value.Constraints {
			test, err := compileConstraint(spec)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", def.ID, err)
			}
			compiled = append(compiled, compiledConstraint{spec: spec, test: test})
		}

		model.fields = append(model.fields, fieldChecker{def: def, constraints: compiled})
		model.properties[def.ID] = def.Property
	}

	return model, nil
}

// Property returns the external property id aliased to a field id.
func (m *Model) Property(fieldID string) string {
	return m.properties[fieldID]
}

// Apply evaluates normalized data under the requested global policy.
//
// Every field's violations are computed once by the shared evaluator and
// split at this call site: promoted violations are joined into one error
// issue per field, the rest surface individually as policy-downgraded
// warnings. A violation is promoted iff the global policy is strict OR
// its category's governing declared policy is strict.
func (m *Model) Apply(data map[string][]normalize.StatementData, policy values.Policy) (errors, warnings []values.Issue) {
	for i := range m.fields {
		checker := &m.fields[i]
		def := checker.def

		var promoted []string
		for _, violation := range checker.evaluate(data[def.ID]) {
			if Promoted(def, violation.Category, policy) {
				promoted = append(promoted, violation.Message)
			} else {
				warnings = append(warnings, values.NewWarning(def.ID, def.Property, violation.Message))
			}
		}
		if len(promoted) > 0 {
			errors = append(errors, values.NewError(def.ID, def.Property, strings.Join(promoted, "; ")))
		}
	}
	return errors, warnings
}

// Evaluate returns the raw, un-promoted violations per field id.
func (m *Model) Evaluate(data map[string][]normalize.StatementData) map[string][]Violation {
	violations := make(map[string][]Violation, len(m.fields))
	for i := range m.fields {
		checker := &m.fields[i]
		if found := checker.evaluate(data[checker.def.ID]); len(found) > 0 {
			violations[checker.def.ID] = found
		}
	}
	return violations
}

// Promoted reports whether a violation category becomes a hard error.
func Promoted(def *schema.FieldDefinition, category Category, policy values.Policy) bool {
	if policy.IsStrict() {
		return true
	}
	governing := def.Policy
	if category == CategoryReference && def.References != nil {
		governing = def.References.Policy
	}
	return governing.IsStrict()
}

// evaluate runs the full per-field check algorithm over the field's
// normalized statements.
func (c *fieldChecker) evaluate(statements []normalize.StatementData) []Violation {
	var violations []Violation

	if c.def.Required && len(statements) == 0 {
		violations = append(violations, fieldViolation("required statement missing"))
	}
	if c.def.MaxCount != nil && len(statements) > *c.def.MaxCount {
		violations = append(violations, fieldViolation(
			fmt.Sprintf("max_count exceeded (%d > %d)", len(statements), *c.def.MaxCount)))
	}

	for i := range statements {
		violations = append(violations, c.evaluateStatement(i, &statements[i])...)
	}
	return violations
}

// evaluateStatement checks one statement's value, qualifiers, and
// references.
func (c *fieldChecker) evaluateStatement(index int, statement *normalize.StatementData) []Violation {
	var violations []Violation

	if statement.Value.Type != c.def.Value.Type {
		violations = append(violations, fieldViolation(fmt.Sprintf(
			"statement %d: value type mismatch (got %s, want %s)",
			index, statement.Value.Type, c.def.Value.Type)))
	}

	if c.def.Value.Fixed != nil && !statement.Value.EqualsScalar(c.def.Value.Fixed) {
		violations = append(violations, fieldViolation(fmt.Sprintf(
			"statement %d: value %v does not match fixed value %v",
			index, statement.Value.Scalar(), c.def.Value.Fixed)))
	}

	scalar := statement.Value.Scalar()
	for _, constraint := range c.constraints {
		if err := constraint.test(scalar); err != nil {
			violations = append(violations, fieldViolation(fmt.Sprintf(
				"statement %d: constraint %s failed: %v",
				index, constraint.spec.Describe(), err)))
		}
	}

	for j := range c.def.Qualifiers {
		violations = append(violations, evaluateQualifier(index, &c.def.Qualifiers[j], statement)...)
	}

	if c.def.References != nil {
		violations = append(violations, evaluateReferences(index, c.def.References, statement)...)
	}
	return violations
}

// evaluateQualifier checks one declared qualifier's cardinality and fixed
// value against the statement's qualifier mapping.
func evaluateQualifier(index int, qualifier *schema.QualifierDefinition, statement *normalize.StatementData) []Violation {
	var violations []Violation

	qualifierValues := statement.QualifierValues(qualifier.Property)
	count := len(qualifierValues)

	if minCount := qualifier.EffectiveMinCount(); count < minCount {
		violations = append(violations, fieldViolation(fmt.Sprintf(
			"statement %d: qualifier %s below min_count (%d < %d)",
			index, qualifier.Property, count, minCount)))
	}
	if qualifier.MaxCount != nil && count > *qualifier.MaxCount {
		violations = append(violations, fieldViolation(fmt.Sprintf(
			"statement %d: qualifier %s above max_count (%d > %d)",
			index, qualifier.Property, count, *qualifier.MaxCount)))
	}

	if qualifier.Value.Fixed != nil {
		for _, value := range qualifierValues {
			if !value.EqualsScalar(qualifier.Value.Fixed) {
				violations = append(violations, fieldViolation(fmt.Sprintf(
					"statement %d: qualifier %s value %v does not match fixed value %v",
					index, qualifier.Property, value.Scalar(), qualifier.Value.Fixed)))
			}
		}
	}
	return violations
}

// evaluateReferences checks the statement's reference blocks against the
// field's provenance rules. All violations here carry the reference
// category.
func evaluateReferences(index int, rules *schema.ReferenceDefinition, statement *normalize.StatementData) []Violation {
	var violations []Violation

	total := len(statement.References)
	if rules.Required && total == 0 {
		violations = append(violations, referenceViolation(fmt.Sprintf(
			"statement %d: required reference missing", index)))
	} else if minCount := rules.EffectiveMinCount(); total < minCount {
		violations = append(violations, referenceViolation(fmt.Sprintf(
			"statement %d: references below min_count (%d < %d)",
			index, total, minCount)))
	}

	if rules.Target != nil {
		violations = append(violations, evaluateReferenceTarget(index, rules.Target, statement)...)
	}

	if len(rules.Allowed) > 0 {
		allowed := make(map[string]bool, len(rules.Allowed))
		for _, target := range rules.Allowed {
			allowed[target.Property] = true
		}
		for r := range statement.References {
			if !intersectsAllowed(&statement.References[r], allowed) {
				violations = append(violations, referenceViolation(fmt.Sprintf(
					"statement %d: reference %d carries no allowed property", index, r)))
			}
		}
	}
	return violations
}

// evaluateReferenceTarget requires every reference block to carry the
// target property and, when the target's value source is the statement
// value, to match the statement's main value.
func evaluateReferenceTarget(index int, target *schema.ReferenceTargetDefinition, statement *normalize.StatementData) []Violation {
	var violations []Violation

	for r := range statement.References {
		reference := &statement.References[r]
		if !reference.HasProperty(target.Property) {
			violations = append(violations, referenceViolation(fmt.Sprintf(
				"statement %d: reference %d missing required property %s",
				index, r, target.Property)))
			continue
		}
		if target.ValueSource != schema.ValueSourceStatement {
			continue
		}
		for _, value := range reference.Snaks[target.Property] {
			if !value.EqualsScalar(statement.Value.Scalar()) {
				violations = append(violations, referenceViolation(fmt.Sprintf(
					"statement %d: reference %d value %v for %s does not match statement value %v",
					index, r, value.Scalar(), target.Property, statement.Value.Scalar())))
			}
		}
	}
	return violations
}

// intersectsAllowed reports whether a reference block carries any allowed
// property.
func intersectsAllowed(reference *normalize.ReferenceData, allowed map[string]bool) bool {
	for property := range reference.Snaks {
		if allowed[property] {
			return true
		}
	}
	return false
}

func fieldViolation(message string) Violation {
	return Violation{Category: CategoryField, Message: message}
}

func referenceViolation(message string) Violation {
	return Violation{Category: CategoryReference, Message: message}
}
