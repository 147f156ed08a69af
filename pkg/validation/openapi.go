package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-activityform/pkg/formdata"
)

// MessageExtension lets a schema override the validator's message for a
// property, e.g. `x-message: 請輸入活動名稱`.
const MessageExtension = "x-message"

// SchemaValidator checks reconstructed trees against one component schema of
// an OpenAPI 3 document.
type SchemaValidator struct {
	name   string
	schema *openapi3.Schema
}

// NewSchemaValidator loads an OpenAPI document (JSON or YAML) and selects the
// component schema called name.
func NewSchemaValidator(ctx context.Context, raw []byte, name string) (*SchemaValidator, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi validation: document payload is empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("openapi validation: schema name is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi validation: load document: %w", err)
	}
	if doc.Components == nil {
		return nil, errors.New("openapi validation: document has no components")
	}

	ref := doc.Components.Schemas[name]
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("openapi validation: schema %q not found", name)
	}
	if err := ref.Value.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi validation: schema %q: %w", name, err)
	}

	return &SchemaValidator{name: name, schema: ref.Value}, nil
}

// Name returns the component schema name.
func (v *SchemaValidator) Name() string { return v.name }

// Check validates the JSON form of value and returns every issue found.
func (v *SchemaValidator) Check(value *formdata.Value) []Issue {
	if v == nil || v.schema == nil {
		return []Issue{{Message: "schema validator is not configured"}}
	}
	err := v.schema.VisitJSON(value.JSON(), openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return Dedupe(issuesFromError(err))
}

func issuesFromError(err error) []Issue {
	switch typed := err.(type) {
	case nil:
		return nil
	case openapi3.MultiError:
		var out []Issue
		for _, inner := range typed {
			out = append(out, issuesFromError(inner)...)
		}
		return out
	case *openapi3.SchemaError:
		return []Issue{issueFromSchemaError(typed)}
	default:
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) {
			return []Issue{issueFromSchemaError(schemaErr)}
		}
		return []Issue{{Message: strings.TrimSpace(err.Error())}}
	}
}

func issueFromSchemaError(err *openapi3.SchemaError) Issue {
	path := NormalizePath(strings.Join(err.JSONPointer(), "/"))

	msg := strings.TrimSpace(err.Reason)
	if custom := customMessage(err); custom != "" {
		msg = custom
	}
	if msg == "" {
		msg = "invalid value"
	}
	return Issue{Path: path, Message: msg}
}

// customMessage reads the message extension from the failing schema. For a
// missing required property the failing schema is the parent object, so the
// extension is read from the property schema instead.
func customMessage(err *openapi3.SchemaError) string {
	schema := err.Schema
	if schema == nil {
		return ""
	}
	if err.SchemaField == "required" {
		pointer := err.JSONPointer()
		if len(pointer) == 0 {
			return ""
		}
		prop := schema.Properties[pointer[len(pointer)-1]]
		if prop == nil || prop.Value == nil {
			return ""
		}
		schema = prop.Value
	}
	custom, _ := schema.Extensions[MessageExtension].(string)
	return strings.TrimSpace(custom)
}
