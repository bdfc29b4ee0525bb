// Package openapi adapts kin-openapi schemas to the form schema contract.
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// ErrComponentNotFound is returned when a document lacks the requested schema
// component.
var ErrComponentNotFound = errors.New("openapi: schema component not found")

// Adapter validates form values against an OpenAPI schema object.
type Adapter struct {
	schema  *openapi3.Schema
	formats bool
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithFormatValidation enables "format" checks (email, date, uuid).
func WithFormatValidation() Option {
	return func(a *Adapter) {
		a.formats = true
	}
}

var _ validate.SchemaAdapter = (*Adapter)(nil)

// New wraps an already-built schema.
func New(s *openapi3.Schema, opts ...Option) *Adapter {
	a := &Adapter{schema: s}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// FromBytes builds an adapter from a schema object encoded as JSON or YAML.
func FromBytes(data []byte, opts ...Option) (*Adapter, error) {
	raw, err := toJSON(data)
	if err != nil {
		return nil, err
	}
	s := openapi3.NewSchema()
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("openapi: decode schema: %w", err)
	}
	return New(s, opts...), nil
}

// FromDocument loads an OpenAPI document and builds an adapter from one of
// its schema components, with references resolved.
func FromDocument(ctx context.Context, data []byte, component string, opts ...Option) (*Adapter, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Components == nil {
		return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, component)
	}
	return New(ref.Value, opts...), nil
}

// Schema exposes the wrapped schema.
func (a *Adapter) Schema() *openapi3.Schema {
	return a.schema
}

// ValidateSchema coerces the form values to the types the schema declares,
// applies schema defaults and validates. Every failing field is reported
// unless opts.AbortEarly is set.
func (a *Adapter) ValidateSchema(ctx context.Context, values map[string]any, opts validate.SchemaOptions) (validate.SchemaResult, error) {
	if err := ctx.Err(); err != nil {
		return validate.SchemaResult{}, err
	}
	if a == nil || a.schema == nil {
		return validate.SchemaResult{}, errors.New("openapi: schema is not configured")
	}

	normalized, err := normalize(values)
	if err != nil {
		return validate.SchemaResult{}, err
	}
	coerced, _ := coerce(a.schema, normalized).(map[string]any)
	if coerced == nil {
		coerced = map[string]any{}
	}

	visitOpts := []openapi3.SchemaValidationOption{
		openapi3.VisitAsRequest(),
		openapi3.DefaultsSet(func() {}),
	}
	if !opts.AbortEarly {
		visitOpts = append(visitOpts, openapi3.MultiErrors())
	}
	if a.formats {
		visitOpts = append(visitOpts, openapi3.EnableFormatValidation())
	}

	result := validate.SchemaResult{FieldErrors: validate.Errors{}, Values: coerced}
	if err := a.schema.VisitJSON(coerced, visitOpts...); err != nil {
		if !collect(result.FieldErrors, err) {
			return validate.SchemaResult{}, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return result, nil
}

// collect flattens kin-openapi errors into per-field records and reports
// whether err was a validation failure.
func collect(errs validate.Errors, err error) bool {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		ok := true
		for _, item := range multi {
			ok = collect(errs, item) && ok
		}
		return ok
	}
	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		return false
	}
	name := schema.FieldFromSegments(schemaErr.JSONPointer())
	schema.Add(errs, name, validate.Error{
		Type:    schema.KindFromKeyword(schemaErr.SchemaField),
		Message: schemaErr.Reason,
	})
	return true
}

func toJSON(data []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, errors.New("openapi: schema payload is empty")
	}
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("openapi: decode yaml schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: convert yaml schema: %w", err)
	}
	return raw, nil
}

// normalize turns arbitrary Go values into the JSON value space
// (map[string]any, []any, float64, string, bool, nil) the validator walks.
func normalize(values map[string]any) (map[string]any, error) {
	if values == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode values: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("openapi: decode values: %w", err)
	}
	return out, nil
}

// coerce converts string form values into the scalar types the schema
// declares. Empty strings for non-string properties are dropped so the
// required rule, not a type error, reports them.
func coerce(s *openapi3.Schema, value any) any {
	if s == nil {
		return value
	}
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			ref, ok := s.Properties[key]
			if !ok || ref == nil || ref.Value == nil {
				continue
			}
			if str, isString := item.(string); isString && str == "" && !hasType(ref.Value, "string") {
				delete(v, key)
				continue
			}
			v[key] = coerce(ref.Value, item)
		}
		return v
	case []any:
		if s.Items == nil || s.Items.Value == nil {
			return v
		}
		for i, item := range v {
			v[i] = coerce(s.Items.Value, item)
		}
		return v
	case string:
		switch {
		case hasType(s, "integer"):
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return float64(n)
			}
		case hasType(s, "number"):
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		case hasType(s, "boolean"):
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b
			}
		}
		return v
	default:
		return v
	}
}

func hasType(s *openapi3.Schema, want string) bool {
	if s == nil || s.Type == nil {
		return false
	}
	for _, typ := range s.Type.Slice() {
		if typ == want {
			return true
		}
	}
	return false
}
