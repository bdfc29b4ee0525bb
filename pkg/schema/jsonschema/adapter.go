// Package jsonschema adapts JSON Schema (draft 2020-12) documents to the form
// schema contract using santhosh-tekuri/jsonschema.
package jsonschema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/validate"
)

const resourceURL = "form.schema.json"

// Adapter validates form values against a compiled JSON Schema.
type Adapter struct {
	compiled *jsonschema.Schema
}

var _ validate.SchemaAdapter = (*Adapter)(nil)

// Option customises compilation.
type Option func(*jsonschema.Compiler)

// WithFormatAssertions makes "format" keywords fail validation instead of
// being annotations only.
func WithFormatAssertions() Option {
	return func(c *jsonschema.Compiler) {
		c.AssertFormat = true
	}
}

// Compile builds an adapter from a JSON or YAML schema document.
func Compile(data []byte, opts ...Option) (*Adapter, error) {
	raw, err := toJSON(data)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	for _, opt := range opts {
		if opt != nil {
			opt(compiler)
		}
	}
	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("jsonschema: add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: compile schema: %w", err)
	}
	return &Adapter{compiled: compiled}, nil
}

// MustCompile panics if the schema cannot be compiled. Useful for tests.
func MustCompile(data []byte, opts ...Option) *Adapter {
	adapter, err := Compile(data, opts...)
	if err != nil {
		panic(err)
	}
	return adapter
}

// ValidateSchema coerces string values to the declared scalar types and
// validates. Each leaf failure is attributed to the field at its instance
// location; the first failure per field wins.
func (a *Adapter) ValidateSchema(ctx context.Context, values map[string]any, opts validate.SchemaOptions) (validate.SchemaResult, error) {
	if err := ctx.Err(); err != nil {
		return validate.SchemaResult{}, err
	}
	if a == nil || a.compiled == nil {
		return validate.SchemaResult{}, errors.New("jsonschema: schema is not configured")
	}

	normalized, err := normalize(values)
	if err != nil {
		return validate.SchemaResult{}, err
	}
	coerce(a.compiled, normalized)

	result := validate.SchemaResult{FieldErrors: validate.Errors{}, Values: normalized}
	err = a.compiled.Validate(normalized)
	if err == nil {
		return result, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return validate.SchemaResult{}, fmt.Errorf("jsonschema: validate: %w", err)
	}
	collect(result.FieldErrors, verr)
	if opts.AbortEarly {
		result.FieldErrors = firstOnly(result.FieldErrors)
	}
	return result, nil
}

func collect(errs validate.Errors, verr *jsonschema.ValidationError) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			collect(errs, cause)
		}
		return
	}

	keyword := lastSegment(verr.KeywordLocation)
	base := schema.FieldFromPointer(verr.InstanceLocation)
	if keyword == "required" {
		for _, prop := range missingProperties(verr.Message) {
			name := prop
			if base != "" {
				name = base + "." + prop
			}
			schema.Add(errs, name, validate.Error{Type: validate.KindRequired, Message: "is required"})
		}
		return
	}
	schema.Add(errs, base, validate.Error{
		Type:    schema.KindFromKeyword(keyword),
		Message: verr.Message,
	})
}

// firstOnly keeps the alphabetically first field error.
func firstOnly(errs validate.Errors) validate.Errors {
	names := errs.Names()
	if len(names) == 0 {
		return errs
	}
	return validate.Errors{names[0]: errs[names[0]]}
}

// missingProperties extracts the names from "missing properties: 'a', 'b'".
func missingProperties(message string) []string {
	_, list, ok := strings.Cut(message, ":")
	if !ok {
		return nil
	}
	var out []string
	for _, item := range strings.Split(list, ",") {
		item = strings.Trim(strings.TrimSpace(item), `'"`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func lastSegment(pointer string) string {
	idx := strings.LastIndex(pointer, "/")
	if idx < 0 {
		return pointer
	}
	return pointer[idx+1:]
}

// coerce converts string form values in place into the scalar types the
// schema declares, descending into objects and arrays. Empty strings for
// non-string properties are dropped.
func coerce(s *jsonschema.Schema, value map[string]any) {
	s = resolve(s)
	if s == nil {
		return
	}
	for key, item := range value {
		prop := resolve(s.Properties[key])
		if prop == nil {
			continue
		}
		if v, ok := item.(string); ok && v == "" && len(prop.Types) > 0 && !hasType(prop, "string") {
			delete(value, key)
			continue
		}
		value[key] = coerceValue(prop, item)
	}
}

func coerceValue(s *jsonschema.Schema, value any) any {
	switch v := value.(type) {
	case map[string]any:
		coerce(s, v)
	case []any:
		for i, item := range v {
			if items := itemSchema(s, i); items != nil {
				v[i] = coerceValue(items, item)
			}
		}
	case string:
		return coerceScalar(s, v)
	}
	return value
}

// itemSchema returns the schema of the i-th array element: prefixItems
// first, then items (2020-12 or the older array and single forms).
func itemSchema(s *jsonschema.Schema, i int) *jsonschema.Schema {
	if i < len(s.PrefixItems) {
		return resolve(s.PrefixItems[i])
	}
	if s.Items2020 != nil {
		return resolve(s.Items2020)
	}
	switch items := s.Items.(type) {
	case *jsonschema.Schema:
		return resolve(items)
	case []*jsonschema.Schema:
		if i < len(items) {
			return resolve(items[i])
		}
	}
	return nil
}

func coerceScalar(s *jsonschema.Schema, v string) any {
	trimmed := strings.TrimSpace(v)
	switch {
	case hasType(s, "string"):
		return v
	case hasType(s, "integer"):
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return float64(n)
		}
	case hasType(s, "number"):
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case hasType(s, "boolean"):
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return b
		}
	}
	return v
}

func resolve(s *jsonschema.Schema) *jsonschema.Schema {
	for depth := 0; s != nil && s.Ref != nil && depth < 16; depth++ {
		s = s.Ref
	}
	return s
}

func hasType(s *jsonschema.Schema, want string) bool {
	for _, typ := range s.Types {
		if typ == want {
			return true
		}
	}
	return false
}

func toJSON(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("jsonschema: schema payload is empty")
	}
	if json.Valid(trimmed) {
		return trimmed, nil
	}
	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("jsonschema: decode yaml schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: convert yaml schema: %w", err)
	}
	return raw, nil
}

func normalize(values map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if values == nil {
		return out, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: encode values: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("jsonschema: decode values: %w", err)
	}
	return out, nil
}
