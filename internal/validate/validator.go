// Package validate orchestrates profile validation: it runs the
// normalizer, applies the generated validation model under a requested
// policy, and merges both issue streams into a single result. The engine
// is pure and read-only; it never mutates or submits data.
package validate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wbcheck-dev/wbcheck/internal/checks"
	"github.com/wbcheck-dev/wbcheck/internal/normalize"
	"github.com/wbcheck-dev/wbcheck/internal/schema"
	"github.com/wbcheck-dev/wbcheck/internal/values"
	"github.com/wbcheck-dev/wbcheck/internal/wire"
)

// ValidationResult is the outcome of validating one entity record.
// OK is true iff Errors is empty; a result with only warnings is still OK.
// Normalized is exposed for downstream reuse by a publishing pipeline.
type ValidationResult struct {
	OK         bool                                 `json:"ok" yaml:"ok"`
	Errors     []values.Issue                       `json:"errors" yaml:"errors"`
	Warnings   []values.Issue                       `json:"warnings" yaml:"warnings"`
	Normalized map[string][]normalize.StatementData `json:"normalized,omitempty" yaml:"normalized,omitempty"`
}

// Validator validates entity records against one profile. It is built
// once per profile and safe for concurrent use: every call allocates its
// own normalized tree and retains no state.
type Validator struct {
	profile    *schema.ProfileDefinition
	normalizer *normalize.Normalizer
	model      *checks.Model
}

// New builds a validator for the profile, generating its validation
// model. Constraint compilation failures are returned as profile errors.
func New(profile *schema.ProfileDefinition) (*Validator, error) {
	model, err := checks.NewModel(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation model: %w", err)
	}
	return &Validator{
		profile:    profile,
		normalizer: normalize.New(profile),
		model:      model,
	}, nil
}

// Profile returns the profile this validator was built for.
func (v *Validator) Profile() *schema.ProfileDefinition {
	return v.profile
}

// ValidateItem validates one record under the requested global policy.
//
// Normalization issues are copied into the result by severity. Semantic
// violations are split by the promotion rule: promoted violations become
// errors attributed to the originating field, the remainder surface as
// policy-downgraded warnings under the lenient policy.
func (v *Validator) ValidateItem(record wire.EntityRecord, policy values.Policy) *ValidationResult {
	result := &ValidationResult{
		Errors:   []values.Issue{},
		Warnings: []values.Issue{},
	}

	normalized := v.normalizer.Normalize(record)
	for _, issue := range normalized.Issues {
		if issue.Severity.IsError() {
			result.Errors = append(result.Errors, issue)
		} else {
			result.Warnings = append(result.Warnings, issue)
		}
	}

	errors, warnings := v.model.Apply(normalized.Data, policy)
	result.Errors = append(result.Errors, errors...)
	result.Warnings = append(result.Warnings, warnings...)

	result.Normalized = normalized.Data
	result.OK = len(result.Errors) == 0
	return result
}

// ValidateRecord validates one record and wraps the result in a report
// with run identity, timing, and summary counts.
func (v *Validator) ValidateRecord(source string, record wire.EntityRecord, policy values.Policy) *Report {
	start := time.Now()
	result := v.ValidateItem(record, policy)

	return &Report{
		RunID:          values.NewRunID(),
		ProfileName:    v.profile.Metadata.Name,
		ProfileVersion: v.profile.Metadata.Version,
		Source:         source,
		Policy:         policy,
		StartTime:      start,
		Duration:       time.Since(start),
		Result:         result,
		Summary:        summarize(result),
	}
}

// Item pairs a record with the source it was read from.
type Item struct {
	Source string
	Record wire.EntityRecord
}

// ValidateBatch validates independent records in parallel. Each record is
// validated on its own goroutine with no coordination; parallelism bounds
// the number of concurrent validations (0 means unbounded). Reports are
// returned in input order.
func (v *Validator) ValidateBatch(ctx context.Context, items []Item, policy values.Policy, parallelism int) ([]*Report, error) {
	reports := make([]*Report, len(items))

	group, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		group.SetLimit(parallelism)
	}

	for i := range items {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = v.ValidateRecord(items[i].Source, items[i].Record, policy)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
