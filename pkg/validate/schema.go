package validate

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/paths"
)

// SchemaOptions is passed through to schema adapters untouched by the core.
type SchemaOptions struct {
	// AbortEarly stops at the first failing rule instead of collecting every
	// field error.
	AbortEarly bool
	// Context carries adapter-specific settings.
	Context map[string]any
}

// SchemaResult is the outcome of validating a whole value set.
type SchemaResult struct {
	// FieldErrors is keyed by dot/bracket field names.
	FieldErrors Errors
	// Values is the validated, possibly coerced, value set.
	Values map[string]any
}

// SchemaAdapter validates the combined, nested value set of a form.
// Validation failures are reported through FieldErrors; a non-nil error is
// reserved for adapter failures.
type SchemaAdapter interface {
	ValidateSchema(ctx context.Context, values map[string]any, opts SchemaOptions) (SchemaResult, error)
}

// SchemaFunc adapts a function to SchemaAdapter.
type SchemaFunc func(ctx context.Context, values map[string]any, opts SchemaOptions) (SchemaResult, error)

// ValidateSchema calls fn.
func (fn SchemaFunc) ValidateSchema(ctx context.Context, values map[string]any, opts SchemaOptions) (SchemaResult, error) {
	return fn(ctx, values, opts)
}

// Narrow keeps only the schema errors that belong to the requested names,
// re-keyed by the requested name.
func Narrow(fieldErrors Errors, names []string) Errors {
	out := Errors{}
	for _, name := range names {
		if err, ok := fieldErrors.Lookup(name); ok {
			out[name] = err
		}
	}
	return out
}

// MergeSchema folds a schema pass into current for the requested names:
// errors for those names are adopted and names that validated clean are
// positively cleared. Errors for other names are left untouched.
func MergeSchema(current, fieldErrors Errors, names []string) Errors {
	out := current.Clone()
	narrowed := Narrow(fieldErrors, names)
	for _, name := range names {
		if err, ok := narrowed[name]; ok {
			out[name] = err
			continue
		}
		delete(out, name)
		canonical := paths.Canonical(name)
		for key := range out {
			if paths.Canonical(key) == canonical {
				delete(out, key)
			}
		}
	}
	return out
}
