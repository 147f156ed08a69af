package validation

import (
	"strings"

	"github.com/goliatone/go-activityform/pkg/formdata"
)

// DefaultMessagePrefix marks messages produced by server-side validation.
const DefaultMessagePrefix = "伺服器驗證錯誤訊息: "

// DefaultAggregateFields lists fields whose element-level issues are reported
// once at the field itself.
var DefaultAggregateFields = []string{"cover"}

// CollapseOptions configures Collapse.
type CollapseOptions struct {
	// AggregateFields rewrites any issue whose first path segment matches to
	// that segment alone. Nil uses DefaultAggregateFields.
	AggregateFields []string
	// MessagePrefix is prepended to every message. Nil uses
	// DefaultMessagePrefix; point at an empty string to disable.
	MessagePrefix *string
}

// Collapse rewrites validator issues for display. Issues under an aggregate
// field (for example "cover.2") are reported at the field ("cover") so the UI
// can anchor a single message; all other paths pass through unchanged.
// Every message gets the configured prefix. Order is preserved.
func Collapse(issues []Issue, opts CollapseOptions) []Issue {
	if len(issues) == 0 {
		return nil
	}

	aggregate := opts.AggregateFields
	if aggregate == nil {
		aggregate = DefaultAggregateFields
	}
	fields := make(map[string]struct{}, len(aggregate))
	for _, name := range aggregate {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			fields[trimmed] = struct{}{}
		}
	}

	prefix := DefaultMessagePrefix
	if opts.MessagePrefix != nil {
		prefix = *opts.MessagePrefix
	}

	out := make([]Issue, 0, len(issues))
	for _, issue := range issues {
		path := issue.Path
		if first := formdata.FirstSegment(path); first != "" {
			if _, ok := fields[first]; ok {
				path = first
			}
		}
		out = append(out, Issue{
			Path:    path,
			Message: prefix + issue.Message,
		})
	}
	return out
}
