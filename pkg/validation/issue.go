package validation

import (
	"context"

	"github.com/goliatone/go-activityform/pkg/formdata"
)

// Issue is one validation failure tied to a dotted field path. An empty path
// marks a form-level issue.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the outcome of validating one reconstructed tree: the typed value
// when no issues were found, or every issue otherwise.
type Result[T any] struct {
	Value  T
	Issues []Issue
}

// OK reports whether validation produced no issues.
func (r Result[T]) OK() bool { return len(r.Issues) == 0 }

// Validator turns a reconstructed tree into a typed value or a list of
// issues. Implementations must report every issue they find rather than
// stopping at the first one.
type Validator[T any] interface {
	Validate(ctx context.Context, value *formdata.Value) Result[T]
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc[T any] func(ctx context.Context, value *formdata.Value) Result[T]

// Validate calls f.
func (f ValidatorFunc[T]) Validate(ctx context.Context, value *formdata.Value) Result[T] {
	return f(ctx, value)
}

// Reject builds a failed result.
func Reject[T any](issues ...Issue) Result[T] {
	return Result[T]{Issues: issues}
}

// Accept builds a successful result.
func Accept[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Dedupe drops repeated path/message pairs while preserving order.
func Dedupe(issues []Issue) []Issue {
	if len(issues) == 0 {
		return nil
	}
	seen := make(map[Issue]struct{}, len(issues))
	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		if _, ok := seen[issue]; ok {
			continue
		}
		seen[issue] = struct{}{}
		out = append(out, issue)
	}
	return out
}
