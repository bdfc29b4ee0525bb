package validate_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/validate"
)

var ignoreRef = cmpopts.IgnoreFields(validate.Error{}, "Ref")

func TestFieldBuiltInRules(t *testing.T) {
	tests := []struct {
		name   string
		target validate.Target
		want   validate.Errors
	}{
		{
			name:   "required empty string",
			target: validate.Target{Name: "email", Type: element.TypeEmail, Value: "", Rules: field.Required("email is required")},
			want:   validate.Errors{"email": {Type: validate.KindRequired, Message: "email is required"}},
		},
		{
			name:   "required unchecked checkbox",
			target: validate.Target{Name: "terms", Type: element.TypeCheckbox, Value: false, Rules: field.Required("")},
			want:   validate.Errors{"terms": {Type: validate.KindRequired}},
		},
		{
			name:   "required empty selection",
			target: validate.Target{Name: "tags", Type: element.TypeSelectMultiple, Value: []string{}, Rules: field.Required("")},
			want:   validate.Errors{"tags": {Type: validate.KindRequired}},
		},
		{
			name:   "optional empty skips bounds",
			target: validate.Target{Name: "age", Type: element.TypeNumber, Value: "", Rules: field.Rules{Min: &field.Limit{Value: 18}}},
			want:   validate.Errors{},
		},
		{
			name:   "min",
			target: validate.Target{Name: "age", Type: element.TypeNumber, Value: "12", Rules: field.Rules{Min: &field.Limit{Value: 18, Message: "too young"}}},
			want:   validate.Errors{"age": {Type: validate.KindMin, Message: "too young"}},
		},
		{
			name:   "max",
			target: validate.Target{Name: "age", Type: element.TypeNumber, Value: 130, Rules: field.Rules{Max: &field.Limit{Value: 120}}},
			want:   validate.Errors{"age": {Type: validate.KindMax}},
		},
		{
			name:   "min length counts runes",
			target: validate.Target{Name: "nick", Type: element.TypeText, Value: "éé", Rules: field.Rules{MinLength: &field.Length{Value: 3}}},
			want:   validate.Errors{"nick": {Type: validate.KindMinLength}},
		},
		{
			name:   "max length",
			target: validate.Target{Name: "nick", Type: element.TypeText, Value: "abcdef", Rules: field.Rules{MaxLength: &field.Length{Value: 5, Message: "too long"}}},
			want:   validate.Errors{"nick": {Type: validate.KindMaxLength, Message: "too long"}},
		},
		{
			name:   "pattern",
			target: validate.Target{Name: "zip", Type: element.TypeText, Value: "12a", Rules: field.Rules{Pattern: &field.Pattern{Expr: regexp.MustCompile(`^\d+$`)}}},
			want:   validate.Errors{"zip": {Type: validate.KindPattern}},
		},
		{
			name:   "valid",
			target: validate.Target{Name: "zip", Type: element.TypeText, Value: "123", Rules: field.Rules{Pattern: &field.Pattern{Expr: regexp.MustCompile(`^\d+$`)}}},
			want:   validate.Errors{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := validate.Field(context.Background(), tc.target, validate.Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got, ignoreRef); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldCustomValidators(t *testing.T) {
	var order []string
	rules := field.Rules{
		Validate: func(_ context.Context, value any) error {
			order = append(order, "validate")
			return nil
		},
		Validations: map[string]field.Validator{
			"unique": func(_ context.Context, _ any) error {
				order = append(order, "unique")
				return errors.New("already taken")
			},
			"available": func(_ context.Context, _ any) error {
				order = append(order, "available")
				return nil
			},
		},
	}

	got, err := validate.Field(context.Background(), validate.Target{Name: "user", Type: element.TypeText, Value: "ada", Rules: rules}, validate.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := validate.Errors{"user": {Type: "unique", Message: "already taken"}}
	if diff := cmp.Diff(want, got, ignoreRef); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"validate", "available", "unique"}, order); diff != "" {
		t.Fatalf("validator order mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldValidateKind(t *testing.T) {
	rules := field.Rules{Validate: func(_ context.Context, value any) error {
		if value == "root" {
			return errors.New("reserved")
		}
		return nil
	}}
	got, err := validate.Field(context.Background(), validate.Target{Name: "user", Value: "root", Rules: rules}, validate.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["user"].Type != validate.KindValidate || got["user"].Message != "reserved" {
		t.Fatalf("unexpected error record: %+v", got["user"])
	}
}

func TestFieldCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rules := field.Rules{Validate: func(ctx context.Context, _ any) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}}
	_, err := validate.Field(ctx, validate.Target{Name: "user", Value: "ada", Rules: rules}, validate.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFieldNativeValidation(t *testing.T) {
	in := element.NewInput("email", element.TypeEmail, element.WithValidity(func(in *element.Input) (string, string) {
		if in.Value() == "" {
			return validate.KindRequired, "Please fill out this field."
		}
		return "", ""
	}))
	reg := field.NewRegistry()
	entry, _, _ := reg.Add(in, field.Rules{})
	target := validate.Snapshot(entry)

	got, err := validate.Field(context.Background(), target, validate.Options{NativeValidation: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["email"].Type != validate.KindRequired {
		t.Fatalf("expected native required error, got %+v", got)
	}
	if got["email"].Ref != element.Element(in) {
		t.Fatalf("expected error to reference the element")
	}
}
