// Package definition loads declarative form definitions (JSON or YAML) and
// turns them into elements, rules and controller configuration.
package definition

import "github.com/goliatone/go-formstate/pkg/schema"

// Form is a parsed form definition.
type Form struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Mode             string         `json:"mode,omitempty" yaml:"mode,omitempty"`
	NativeValidation bool           `json:"nativeValidation,omitempty" yaml:"nativeValidation,omitempty"`
	SubmitFocusError *bool          `json:"submitFocusError,omitempty" yaml:"submitFocusError,omitempty"`
	SanitizeMessages bool           `json:"sanitizeMessages,omitempty" yaml:"sanitizeMessages,omitempty"`
	ValidationFields []string       `json:"validationFields,omitempty" yaml:"validationFields,omitempty"`
	DefaultValues    map[string]any `json:"defaultValues,omitempty" yaml:"defaultValues,omitempty"`

	Schema *SchemaConfig `json:"schema,omitempty" yaml:"schema,omitempty"`
	Fields []Field       `json:"fields" yaml:"fields"`

	source string
	origin schema.Source
}

// Source returns the location the definition was parsed from.
func (f *Form) Source() string {
	return f.source
}

// Schema kinds.
const (
	SchemaOpenAPI    = "openapi"
	SchemaJSONSchema = "jsonschema"
)

// SchemaConfig points at the whole-form schema.
type SchemaConfig struct {
	// Kind is "openapi" or "jsonschema".
	Kind string `json:"kind" yaml:"kind"`
	// Ref locates the schema document, relative to the definition.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
	// Component names the schema inside an OpenAPI document. Empty means
	// Ref holds a bare schema object.
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
	// Inline carries the schema object directly.
	Inline     map[string]any `json:"inline,omitempty" yaml:"inline,omitempty"`
	AbortEarly bool           `json:"abortEarly,omitempty" yaml:"abortEarly,omitempty"`
	// Formats enables format assertions (email, date, uuid).
	Formats bool `json:"formats,omitempty" yaml:"formats,omitempty"`
}

// Field declares one named element. Radio fields expand into one element
// per option.
type Field struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Help        string   `json:"help,omitempty" yaml:"help,omitempty"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	Value       any      `json:"value,omitempty" yaml:"value,omitempty"`
	Checked     bool     `json:"checked,omitempty" yaml:"checked,omitempty"`
	CheckedWith string   `json:"checkedValue,omitempty" yaml:"checkedValue,omitempty"`
	Rules       Rules    `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// DisplayLabel falls back to the field name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Rules is the declarative rule set. Messages are keyed by rule kind
// (required, min, max, minLength, maxLength, pattern).
type Rules struct {
	Required  bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Min       *float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64          `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength *int              `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Messages  map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
}
