package activity

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/validation"
)

// SchemaName is the component schema that describes the raw form.
const SchemaName = "ActivityForm"

//go:embed schema/activity.yaml
var defaultSchema []byte

// DefaultSchema returns a copy of the embedded OpenAPI document.
func DefaultSchema() []byte {
	out := make([]byte, len(defaultSchema))
	copy(out, defaultSchema)
	return out
}

// Option customises a Validator.
type Option func(*config)

type config struct {
	document   []byte
	schemaName string
	location   *time.Location
}

// WithSchemaDocument replaces the embedded OpenAPI document. name selects the
// component schema; empty keeps SchemaName.
func WithSchemaDocument(raw []byte, name string) Option {
	return func(cfg *config) {
		if len(raw) > 0 {
			cfg.document = raw
		}
		if name != "" {
			cfg.schemaName = name
		}
	}
}

// WithLocation sets the zone used for date-times without an offset.
func WithLocation(loc *time.Location) Option {
	return func(cfg *config) {
		if loc != nil {
			cfg.location = loc
		}
	}
}

// Validator checks a reconstructed activity form in three passes: the raw
// shape against the OpenAPI schema, scalar decoding, then typed rules on the
// decoded Record.
type Validator struct {
	schema  *validation.SchemaValidator
	decoder *Decoder
	rules   *validation.StructValidator
}

var _ validation.Validator[Record] = (*Validator)(nil)

// NewValidator loads the schema and prepares the decoder and rule set.
func NewValidator(ctx context.Context, options ...Option) (*Validator, error) {
	cfg := &config{
		document:   defaultSchema,
		schemaName: SchemaName,
		location:   DefaultLocation,
	}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	schema, err := validation.NewSchemaValidator(ctx, cfg.document, cfg.schemaName)
	if err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}

	return &Validator{
		schema:  schema,
		decoder: NewDecoder(cfg.location),
		rules:   newRules(),
	}, nil
}

// Validate implements validation.Validator. Shape issues short-circuit the
// typed passes so users see one message per broken field.
func (v *Validator) Validate(ctx context.Context, tree *formdata.Value) validation.Result[Record] {
	if err := ctx.Err(); err != nil {
		return validation.Reject[Record](validation.Issue{Message: err.Error()})
	}
	if tree == nil || tree.Kind != formdata.KindMapping {
		return validation.Reject[Record](validation.Issue{Message: "表單內容不可為空"})
	}

	normalized := Normalize(tree)
	if issues := v.schema.Check(normalized); len(issues) > 0 {
		return validation.Reject[Record](issues...)
	}

	rec, issues := v.decoder.Decode(normalized)
	issues = append(issues, v.rules.Check(rec)...)
	if len(issues) > 0 {
		return validation.Reject[Record](validation.Dedupe(issues)...)
	}
	return validation.Accept(rec)
}
