package activity

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from submitted text. Rich text keeps the user
// generated content allow-list; plain fields keep no markup at all.
type Sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

// NewSanitizer builds the default policies.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		rich:  bluemonday.UGCPolicy(),
		plain: bluemonday.StrictPolicy(),
	}
}

// Rich sanitises HTML produced by the details editor.
func (s *Sanitizer) Rich(input string) string {
	return strings.TrimSpace(s.rich.Sanitize(input))
}

// Plain removes every tag and returns unescaped text so "Rock & Roll" stays
// readable.
func (s *Sanitizer) Plain(input string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(input)))
}
