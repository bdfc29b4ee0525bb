package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/schema/openapi"
	"github.com/goliatone/go-formstate/pkg/validate"
)

const signupSchema = `
type: object
required: [email, age]
properties:
  email:
    type: string
    minLength: 3
  age:
    type: integer
    minimum: 18
  newsletter:
    type: boolean
    default: false
  owner:
    type: object
    properties:
      name:
        type: string
        maxLength: 4
`

func kinds(errs validate.Errors) map[string]string {
	out := map[string]string{}
	for name, err := range errs {
		out[name] = err.Type
	}
	return out
}

func TestValidateSchemaReportsEveryField(t *testing.T) {
	adapter, err := openapi.FromBytes([]byte(signupSchema))
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"email": "a",
		"age":   "12",
		"owner": map[string]any{"name": "Augusta"},
	}, validate.SchemaOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	want := map[string]string{
		"email":      validate.KindMinLength,
		"age":        validate.KindMin,
		"owner.name": validate.KindMaxLength,
	}
	if diff := cmp.Diff(want, kinds(result.FieldErrors)); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSchemaCoercesAndAppliesDefaults(t *testing.T) {
	adapter, err := openapi.FromBytes([]byte(signupSchema))
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"email": "ada@example.com",
		"age":   "36",
	}, validate.SchemaOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(result.FieldErrors) != 0 {
		t.Fatalf("expected no errors, got %v", result.FieldErrors)
	}

	want := map[string]any{"email": "ada@example.com", "age": float64(36), "newsletter": false}
	if diff := cmp.Diff(want, result.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateSchemaEmptyNumberIsRequired(t *testing.T) {
	adapter, err := openapi.FromBytes([]byte(signupSchema))
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"email": "ada@example.com",
		"age":   "",
	}, validate.SchemaOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	got, ok := result.FieldErrors["age"]
	if !ok || got.Type != validate.KindRequired {
		t.Fatalf("expected required error for age, got %v", result.FieldErrors)
	}
}

func TestFromDocumentResolvesComponent(t *testing.T) {
	doc := []byte(`{
  "openapi": "3.0.3",
  "info": {"title": "Signup", "version": "1.0.0"},
  "paths": {},
  "components": {
    "schemas": {
      "Owner": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}},
      "Signup": {
        "type": "object",
        "properties": {"owner": {"$ref": "#/components/schemas/Owner"}}
      }
    }
  }
}`)
	adapter, err := openapi.FromDocument(context.Background(), doc, "Signup")
	if err != nil {
		t.Fatalf("from document: %v", err)
	}

	result, err := adapter.ValidateSchema(context.Background(), map[string]any{
		"owner": map[string]any{},
	}, validate.SchemaOptions{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"owner.name": validate.KindRequired}, kinds(result.FieldErrors)); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	if _, err := openapi.FromDocument(context.Background(), doc, "Missing"); !errors.Is(err, openapi.ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
}

func TestValidateSchemaHonoursCancellation(t *testing.T) {
	adapter, err := openapi.FromBytes([]byte(signupSchema))
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := adapter.ValidateSchema(ctx, nil, validate.SchemaOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFromBytesRejectsEmptyPayload(t *testing.T) {
	if _, err := openapi.FromBytes([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
