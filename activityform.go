package activityform

import (
	"context"
	"errors"

	"github.com/goliatone/go-activityform/pkg/activity"
	"github.com/goliatone/go-activityform/pkg/backend"
	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/submission"
	"github.com/goliatone/go-activityform/pkg/validation"
)

// Entry is one submitted form field; alias exported via the root package for
// convenience.
type Entry = formdata.Entry

// Record is the validated activity forwarded to the backend.
type Record = activity.Record

// Issue is a field-level validation message.
type Issue = validation.Issue

// Outcome is the terminal result of one activity submission.
type Outcome = submission.Outcome[activity.Record]

// Orchestrator runs activity submissions.
type Orchestrator = submission.Orchestrator[activity.Record]

// Forwarder adapts the backend client to the submission pipeline.
func Forwarder(client *backend.Client) submission.Forwarder[Record] {
	return submission.ForwarderFunc[Record](func(ctx context.Context, credential string, record Record) (string, error) {
		return client.CreateActivity(ctx, credential, record)
	})
}

// NewOrchestrator wires validator and the backend client into an
// orchestrator for activity submissions.
func NewOrchestrator(validator validation.Validator[Record], client *backend.Client, options ...submission.Option) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("activityform: backend client is required")
	}
	return submission.New[Record](validator, Forwarder(client), options...)
}

// NewValidator exposes the activity validator constructor from the top-level
// module.
func NewValidator(ctx context.Context, options ...activity.Option) (*activity.Validator, error) {
	return activity.NewValidator(ctx, options...)
}

// Report is the result of checking entries without forwarding them.
type Report struct {
	Tree   *formdata.Value `json:"tree"`
	Record *Record         `json:"record,omitempty"`
	Issues []Issue         `json:"issues,omitempty"`
}

// OK reports whether the entries would be forwarded.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Check reconstructs and validates entries the way a submission does but
// stops before forwarding. Reconstruction errors are reported as issues at
// their entry paths alongside validator issues.
func Check(ctx context.Context, validator validation.Validator[Record], entries []Entry, options ...formdata.Option) Report {
	tree, err := formdata.Reconstruct(entries, options...)
	issues := submission.StructuralIssues(err)

	result := validator.Validate(ctx, tree)
	issues = validation.Dedupe(append(issues, result.Issues...))

	report := Report{Tree: tree, Issues: issues}
	if len(issues) == 0 {
		record := result.Value
		report.Record = &record
	}
	return report
}
