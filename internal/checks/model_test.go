package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbcheck-dev/wbcheck/internal/normalize"
	"github.com/wbcheck-dev/wbcheck/internal/schema"
	"github.com/wbcheck-dev/wbcheck/internal/values"
)

func intPtr(n int) *int { return &n }

func itemStatement(id string) normalize.StatementData {
	return normalize.StatementData{
		Value: normalize.StatementValue{Value: id, Type: schema.ValueItem},
	}
}

func quantityStatement(amount float64) normalize.StatementData {
	return normalize.StatementData{
		Value: normalize.StatementValue{Value: amount, Type: schema.ValueQuantity},
	}
}

func singleFieldProfile(field schema.FieldDefinition) *schema.ProfileDefinition {
	return &schema.ProfileDefinition{
		Metadata: schema.ProfileMetadata{Name: "test", Version: "1.0.0"},
		Fields:   []schema.FieldDefinition{field},
	}
}

func TestNewModel_CompilesConstraints(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "member_count", Property: "P2124",
		Value: schema.ValueDefinition{
			Type:        schema.ValueQuantity,
			Constraints: []schema.ConstraintSpec{{Name: "integer_only"}},
		},
	})

	model, err := NewModel(profile)
	require.NoError(t, err)
	assert.Equal(t, "P2124", model.Property("member_count"))
}

func TestNewModel_UnknownConstraint(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "member_count", Property: "P2124",
		Value: schema.ValueDefinition{
			Type:        schema.ValueQuantity,
			Constraints: []schema.ConstraintSpec{{Name: "prime_only"}},
		},
	})

	_, err := NewModel(profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "member_count")
}

func TestApply_RequiredStatementMissing(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "instance_of", Property: "P31", Required: true,
		Value: schema.ValueDefinition{Type: schema.ValueItem},
	})
	model, err := NewModel(profile)
	require.NoError(t, err)

	errors, warnings := model.Apply(map[string][]normalize.StatementData{}, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, "instance_of", errors[0].FieldID)
	assert.Equal(t, "P31", errors[0].Property)
	assert.Contains(t, errors[0].Message, "required statement missing")
}

func TestApply_MaxCountExceeded(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "instance_of", Property: "P31", MaxCount: intPtr(1),
		Value: schema.ValueDefinition{Type: schema.ValueItem},
	})
	model, err := NewModel(profile)
	require.NoError(t, err)

	data := map[string][]normalize.StatementData{
		"instance_of": {itemStatement("Q1"), itemStatement("Q2")},
	}
	errors, _ := model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "max_count exceeded (2 > 1)")
}

func TestApply_ValueTypeMismatch(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "instance_of", Property: "P31",
		Value: schema.ValueDefinition{Type: schema.ValueItem},
	})
	model, err := NewModel(profile)
	require.NoError(t, err)

	data := map[string][]normalize.StatementData{
		"instance_of": {quantityStatement(12)},
	}
	errors, _ := model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "value type mismatch")
}

func TestApply_FixedValue(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "instance_of", Property: "P31",
		Value: schema.ValueDefinition{Type: schema.ValueItem, Fixed: "Q33506"},
	})
	model, err := NewModel(profile)
	require.NoError(t, err)

	// Matching value passes
	data := map[string][]normalize.StatementData{"instance_of": {itemStatement("Q33506")}}
	errors, _ := model.Apply(data, values.PolicyStrict)
	assert.Empty(t, errors)

	// Mismatch is flagged
	data = map[string][]normalize.StatementData{"instance_of": {itemStatement("Q42")}}
	errors, _ = model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "fixed value")
}

func TestApply_ConstraintViolation(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "member_count", Property: "P2124",
		Value: schema.ValueDefinition{
			Type:        schema.ValueQuantity,
			Constraints: []schema.ConstraintSpec{{Name: "integer_only"}},
		},
	})
	model, err := NewModel(profile)
	require.NoError(t, err)

	data := map[string][]normalize.StatementData{"member_count": {quantityStatement(12.5)}}
	errors, _ := model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "integer_only")
}

func TestApply_Qualifiers(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "member_count", Property: "P2124",
		Value: schema.ValueDefinition{Type: schema.ValueQuantity},
		Qualifiers: []schema.QualifierDefinition{
			{ID: "point_in_time", Property: "P585", Required: true, MaxCount: intPtr(1),
				Value: schema.ValueDefinition{Type: schema.ValueTime}},
			{ID: "determination", Property: "P459",
				Value: schema.ValueDefinition{Type: schema.ValueItem, Fixed: "Q791801"}},
		},
	})
	model, err := NewModel(profile)
	require.NoError(t, err)

	timeValue := normalize.StatementValue{
		Value: map[string]any{"time": "+2023-01-01T00:00:00Z"},
		Type:  schema.ValueTime,
	}

	// Missing required qualifier
	data := map[string][]normalize.StatementData{"member_count": {quantityStatement(12)}}
	errors, _ := model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "qualifier P585 below min_count (0 < 1)")

	// Too many values
	statement := quantityStatement(12)
	statement.Qualifiers = map[string][]normalize.StatementValue{"P585": {timeValue, timeValue}}
	data = map[string][]normalize.StatementData{"member_count": {statement}}
	errors, _ = model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "above max_count")

	// Fixed qualifier value mismatch
	statement = quantityStatement(12)
	statement.Qualifiers = map[string][]normalize.StatementValue{
		"P585": {timeValue},
		"P459": {{Value: "Q42", Type: schema.ValueItem}},
	}
	data = map[string][]normalize.StatementData{"member_count": {statement}}
	errors, _ = model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "qualifier P459")
}

func referenceProfile(policy schema.FieldPolicy) *schema.ProfileDefinition {
	return singleFieldProfile(schema.FieldDefinition{
		ID: "instance_of", Property: "P31",
		Value: schema.ValueDefinition{Type: schema.ValueItem},
		References: &schema.ReferenceDefinition{
			Required: true,
			Policy:   policy,
			Target: &schema.ReferenceTargetDefinition{
				ID: "stated_in", Property: "P248", ValueSource: schema.ValueSourceStatement,
			},
		},
	})
}

func TestApply_References(t *testing.T) {
	model, err := NewModel(referenceProfile(""))
	require.NoError(t, err)

	// No references at all
	data := map[string][]normalize.StatementData{"instance_of": {itemStatement("Q33506")}}
	errors, _ := model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "required reference missing")

	// Reference block lacking the target property
	statement := itemStatement("Q33506")
	statement.References = []normalize.ReferenceData{{Snaks: map[string][]normalize.StatementValue{
		"P854": {{Value: "https://example.org", Type: schema.ValueURL}},
	}}}
	data = map[string][]normalize.StatementData{"instance_of": {statement}}
	errors, _ = model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "missing required property P248")

	// Target value must equal the statement's main value
	statement = itemStatement("Q33506")
	statement.References = []normalize.ReferenceData{{Snaks: map[string][]normalize.StatementValue{
		"P248": {{Value: "Q404", Type: schema.ValueItem}},
	}}}
	data = map[string][]normalize.StatementData{"instance_of": {statement}}
	errors, _ = model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "does not match statement value")

	// Conforming reference passes
	statement = itemStatement("Q33506")
	statement.References = []normalize.ReferenceData{{Snaks: map[string][]normalize.StatementValue{
		"P248": {{Value: "Q33506", Type: schema.ValueItem}},
	}}}
	data = map[string][]normalize.StatementData{"instance_of": {statement}}
	errors, _ = model.Apply(data, values.PolicyStrict)
	assert.Empty(t, errors)
}

func TestApply_AllowedReferences(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "instance_of", Property: "P31",
		Value: schema.ValueDefinition{Type: schema.ValueItem},
		References: &schema.ReferenceDefinition{
			Allowed: []schema.ReferenceTargetDefinition{
				{ID: "stated_in", Property: "P248"},
				{ID: "reference_url", Property: "P854"},
			},
		},
	})
	model, err := NewModel(profile)
	require.NoError(t, err)

	statement := itemStatement("Q33506")
	statement.References = []normalize.ReferenceData{
		{Snaks: map[string][]normalize.StatementValue{"P854": {{Value: "https://example.org", Type: schema.ValueURL}}}},
		{Snaks: map[string][]normalize.StatementValue{"P813": {{Value: "x", Type: schema.ValueString}}}},
	}
	data := map[string][]normalize.StatementData{"instance_of": {statement}}
	errors, _ := model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "reference 1 carries no allowed property")
}

func TestApply_PromotionRule(t *testing.T) {
	field := schema.FieldDefinition{
		ID: "member_count", Property: "P2124",
		Policy: schema.FieldPolicyAllowNonconforming,
		Value: schema.ValueDefinition{
			Type:        schema.ValueQuantity,
			Constraints: []schema.ConstraintSpec{{Name: "integer_only"}},
		},
	}
	model, err := NewModel(singleFieldProfile(field))
	require.NoError(t, err)

	data := map[string][]normalize.StatementData{"member_count": {quantityStatement(12.5)}}

	// Strict global policy promotes regardless of the field policy
	errors, warnings := model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Empty(t, warnings)

	// Lenient global policy demotes to a warning
	errors, warnings = model.Apply(data, values.PolicyLenient)
	assert.Empty(t, errors)
	require.Len(t, warnings, 1)
	assert.Equal(t, values.SeverityWarning, warnings[0].Severity)
	assert.Contains(t, warnings[0].Message, "integer_only")
}

func TestApply_ReferencePolicyGovernsReferenceCategory(t *testing.T) {
	// Field policy strict, reference policy lenient: under a lenient global
	// policy only the reference violation is demoted.
	model, err := NewModel(referenceProfile(schema.FieldPolicyAllowNonconforming))
	require.NoError(t, err)

	data := map[string][]normalize.StatementData{"instance_of": {itemStatement("Q33506")}}

	errors, warnings := model.Apply(data, values.PolicyLenient)
	assert.Empty(t, errors)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "required reference missing")

	errors, warnings = model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Empty(t, warnings)
}

func TestApply_JoinsPromotedMessages(t *testing.T) {
	profile := singleFieldProfile(schema.FieldDefinition{
		ID: "member_count", Property: "P2124", Required: true, MaxCount: intPtr(1),
		Value: schema.ValueDefinition{Type: schema.ValueQuantity, Fixed: float64(10)},
	})
	model, err := NewModel(profile)
	require.NoError(t, err)

	data := map[string][]normalize.StatementData{
		"member_count": {quantityStatement(11), quantityStatement(12)},
	}
	errors, _ := model.Apply(data, values.PolicyStrict)
	require.Len(t, errors, 1)
	assert.Contains(t, errors[0].Message, "max_count exceeded")
	assert.Contains(t, errors[0].Message, "statement 0")
	assert.Contains(t, errors[0].Message, "statement 1")
	assert.Contains(t, errors[0].Message, "; ")
}

func TestEvaluate_RawViolations(t *testing.T) {
	model, err := NewModel(referenceProfile(""))
	require.NoError(t, err)

	data := map[string][]normalize.StatementData{"instance_of": {itemStatement("Q33506")}}
	violations := model.Evaluate(data)
	require.Len(t, violations["instance_of"], 1)
	assert.Equal(t, CategoryReference, violations["instance_of"][0].Category)
}

func TestPromoted(t *testing.T) {
	field := schema.FieldDefinition{
		ID: "f", Property: "P1",
		Policy:     schema.FieldPolicyAllowNonconforming,
		References: &schema.ReferenceDefinition{Policy: schema.FieldPolicyStrict},
	}

	// Strict global always promotes
	assert.True(t, Promoted(&field, CategoryField, values.PolicyStrict))
	assert.True(t, Promoted(&field, CategoryReference, values.PolicyStrict))

	// Lenient global defers to the governing declared policy
	assert.False(t, Promoted(&field, CategoryField, values.PolicyLenient))
	assert.True(t, Promoted(&field, CategoryReference, values.PolicyLenient))
}
