package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var tagMessages = map[string]string{
	"required":    "is required",
	"required_if": "is required",
	"email":       "must be a valid email address",
	"url":         "must be a valid URL",
	"http_url":    "must be a valid http(s) URL",
	"max":         "must be at most %s",
	"min":         "must be at least %s",
	"gt":          "must be greater than %s",
	"gte":         "must be greater than or equal to %s",
	"lt":          "must be less than %s",
	"lte":         "must be less than or equal to %s",
	"len":         "must have length %s",
	"oneof":       "must be one of [%s]",
	"gtfield":     "must be after %s",
	"gtefield":    "must not be before %s",
	"dive":        "contains an invalid item",
}

// StructOption configures a StructValidator.
type StructOption func(*StructValidator)

// WithStructLevel registers a struct-level rule for the given types.
func WithStructLevel(fn validator.StructLevelFunc, types ...any) StructOption {
	return func(v *StructValidator) {
		v.validate.RegisterStructValidation(fn, types...)
	}
}

// WithMessage adds or overrides the message used for a validation tag. The
// message may contain one %s verb for the tag parameter.
func WithMessage(tag, message string) StructOption {
	return func(v *StructValidator) {
		v.messages[strings.TrimSpace(tag)] = message
	}
}

// StructValidator checks typed records with go-playground/validator struct
// tags. Issue paths use JSON field names.
type StructValidator struct {
	validate *validator.Validate
	messages map[string]string
}

// NewStructValidator constructs a validator that reports JSON field names.
func NewStructValidator(options ...StructOption) *StructValidator {
	v := &StructValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		messages: make(map[string]string, len(tagMessages)),
	}
	for tag, msg := range tagMessages {
		v.messages[tag] = msg
	}
	v.validate.RegisterTagNameFunc(jsonFieldName)

	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Instance exposes the underlying validator for custom registrations.
func (v *StructValidator) Instance() *validator.Validate { return v.validate }

// Check validates record and converts failures into issues.
func (v *StructValidator) Check(record any) []Issue {
	err := v.validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Message: strings.TrimSpace(err.Error())}}
	}

	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{
			Path:    NormalizePath(dropRoot(fe.Namespace())),
			Message: v.message(fe),
		})
	}
	return issues
}

func (v *StructValidator) message(fe validator.FieldError) string {
	tmpl, ok := v.messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
	if strings.Contains(tmpl, "%s") {
		param := fe.Param()
		if fe.Tag() == "oneof" {
			param = strings.Join(strings.Fields(param), ", ")
		}
		return fmt.Sprintf(tmpl, param)
	}
	return tmpl
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
