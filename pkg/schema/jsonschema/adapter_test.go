package jsonschema_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/schema/jsonschema"
	"github.com/goliatone/go-formstate/pkg/validate"
)

const signupSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["email", "age"],
  "properties": {
    "email": {"type": "string", "minLength": 3},
    "age": {"type": "integer", "minimum": 18},
    "owner": {"$ref": "#/$defs/owner"}
  },
  "$defs": {
    "owner": {
      "type": "object",
      "required": ["name"],
      "properties": {"name": {"type": "string", "pattern": "^[A-Z]"}}
    }
  }
}`

func kinds(errs validate.Errors) map[string]string {
	out := map[string]string{}
	for name, err := range errs {
		out[name] = err.Type
	}
	return out
}

func TestValidateSchemaRedistributesLeafErrors(t *testing.T) {
	adapter := jsonschema.MustCompile([]byte(signupSchema))

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"email": "a",
		"age":   "12",
		"owner": map[string]any{"name": "ada"},
	}, validate.SchemaOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	want := map[string]string{
		"email":      validate.KindMinLength,
		"age":        validate.KindMin,
		"owner.name": validate.KindPattern,
	}
	if diff := cmp.Diff(want, kinds(result.FieldErrors)); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSchemaReportsMissingProperties(t *testing.T) {
	adapter := jsonschema.MustCompile([]byte(signupSchema))

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"age":   "",
		"owner": map[string]any{},
	}, validate.SchemaOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	want := map[string]string{
		"email":      validate.KindRequired,
		"age":        validate.KindRequired,
		"owner.name": validate.KindRequired,
	}
	if diff := cmp.Diff(want, kinds(result.FieldErrors)); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSchemaCleanValues(t *testing.T) {
	adapter := jsonschema.MustCompile([]byte(`
type: object
properties:
  age:
    type: integer
  subscribed:
    type: boolean
`))

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"age":        "40",
		"subscribed": "true",
	}, validate.SchemaOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(result.FieldErrors) != 0 {
		t.Fatalf("expected no errors, got %v", result.FieldErrors)
	}
	want := map[string]any{"age": float64(40), "subscribed": true}
	if diff := cmp.Diff(want, result.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

const orderSchema = `{
  "type": "object",
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {"qty": {"type": "integer", "minimum": 1}}
      }
    },
    "flags": {"type": "array", "items": {"type": "boolean"}}
  }
}`

func TestValidateSchemaCoercesArrayItems(t *testing.T) {
	adapter := jsonschema.MustCompile([]byte(orderSchema))

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"items": []any{map[string]any{"qty": "3"}, map[string]any{"qty": "0"}},
		"flags": []string{"true", "false"},
	}, validate.SchemaOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if diff := cmp.Diff(map[string]string{"items[1].qty": validate.KindMin}, kinds(result.FieldErrors)); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{
		"items": []any{map[string]any{"qty": float64(3)}, map[string]any{"qty": float64(0)}},
		"flags": []any{true, false},
	}
	if diff := cmp.Diff(want, result.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSchemaAbortEarly(t *testing.T) {
	adapter := jsonschema.MustCompile([]byte(signupSchema))

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{}, validate.SchemaOptions{AbortEarly: true})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"age": validate.KindRequired}, kinds(result.FieldErrors)); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileRejectsInvalidSchema(t *testing.T) {
	if _, err := jsonschema.Compile([]byte(`{"type": 12}`)); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := jsonschema.Compile(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
