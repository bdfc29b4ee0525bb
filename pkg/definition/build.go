package definition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/schema/jsonschema"
	"github.com/goliatone/go-formstate/pkg/schema/openapi"
	"github.com/goliatone/go-formstate/pkg/trigger"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// Field returns the declaration for name.
func (f *Form) Field(name string) (Field, bool) {
	for _, fd := range f.Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

// FieldRules converts the declarative rules into field rules. Patterns were
// checked by Parse.
func (fd Field) FieldRules() field.Rules {
	r := fd.Rules
	msg := func(kind string) string {
		return r.Messages[kind]
	}

	var out field.Rules
	if r.Required {
		out.Required = field.Requirement{Enabled: true, Message: msg(validate.KindRequired)}
	}
	if r.Min != nil {
		out.Min = &field.Limit{Value: *r.Min, Message: msg(validate.KindMin)}
	}
	if r.Max != nil {
		out.Max = &field.Limit{Value: *r.Max, Message: msg(validate.KindMax)}
	}
	if r.MinLength != nil {
		out.MinLength = &field.Length{Value: *r.MinLength, Message: msg(validate.KindMinLength)}
	}
	if r.MaxLength != nil {
		out.MaxLength = &field.Length{Value: *r.MaxLength, Message: msg(validate.KindMaxLength)}
	}
	if r.Pattern != "" {
		out.Pattern = &field.Pattern{Expr: regexp.MustCompile(r.Pattern), Message: msg(validate.KindPattern)}
	}
	return out
}

// Elements builds the in-memory elements for the definition, in declaration
// order. Radio fields yield one element per option.
func (f *Form) Elements() []*element.Input {
	out := make([]*element.Input, 0, len(f.Fields))
	for _, fd := range f.Fields {
		switch fd.Type {
		case element.TypeRadio:
			for _, option := range fd.Options {
				opts := []element.InputOption{element.WithValue(option)}
				if fmt.Sprint(fd.Value) == option {
					opts = append(opts, element.WithChecked(true))
				}
				out = append(out, element.NewInput(fd.Name, element.TypeRadio, opts...))
			}
		case element.TypeSelectMultiple:
			out = append(out, element.NewInput(fd.Name, fd.Type,
				element.WithSelectOptions(fd.Options...),
				element.WithSelected(fd.Value)))
		case element.TypeSelectOne:
			opts := []element.InputOption{element.WithSelectOptions(fd.Options...)}
			if fd.Value != nil {
				opts = append(opts, element.WithValue(fmt.Sprint(fd.Value)))
			}
			out = append(out, element.NewInput(fd.Name, fd.Type, opts...))
		case element.TypeCheckbox:
			opts := []element.InputOption{element.WithChecked(fd.Checked)}
			if fd.CheckedWith != "" {
				opts = append(opts, element.WithValueAttribute(fd.CheckedWith))
			}
			out = append(out, element.NewInput(fd.Name, element.TypeCheckbox, opts...))
		case "":
			out = append(out, element.NewLogical(fd.Name))
		default:
			var opts []element.InputOption
			if fd.Value != nil {
				opts = append(opts, element.WithValue(fmt.Sprint(fd.Value)))
			}
			out = append(out, element.NewInput(fd.Name, fd.Type, opts...))
		}
	}
	return out
}

// Bind registers elements on c with the rules declared for their names.
func (f *Form) Bind(c *form.Controller, elements []*element.Input) {
	for _, el := range elements {
		fd, ok := f.Field(el.Name())
		if !ok {
			c.Register(el)
			continue
		}
		c.Register(el, fd.FieldRules())
	}
}

// Options returns the controller options the definition declares. A schema
// is not included; see Adapter.
func (f *Form) Options() []form.Option {
	cfg := form.DefaultConfig()
	if f.Mode != "" {
		cfg.Mode = trigger.ParseMode(f.Mode)
	}
	if f.SubmitFocusError != nil {
		cfg.SubmitFocusError = *f.SubmitFocusError
	}
	cfg.NativeValidation = f.NativeValidation
	cfg.SanitizeMessages = f.SanitizeMessages
	cfg.ValidationFields = append([]string(nil), f.ValidationFields...)
	cfg.DefaultValues = f.DefaultValues
	return []form.Option{form.WithConfig(cfg)}
}

// Adapter builds the schema adapter the definition points at, or returns
// nil when no schema is declared. Relative refs resolve against the
// definition's own location.
func (f *Form) Adapter(ctx context.Context, l schema.Loader) (validate.SchemaAdapter, error) {
	if f.Schema == nil {
		return nil, nil
	}
	cfg := f.Schema

	var data []byte
	if len(cfg.Inline) > 0 {
		raw, err := json.Marshal(cfg.Inline)
		if err != nil {
			return nil, fmt.Errorf("definition: encode inline schema: %w", err)
		}
		data = raw
	} else {
		if l == nil {
			return nil, errors.New("definition: loader is nil")
		}
		base := f.origin
		if base == nil && f.source != "" {
			base = schema.SourceFromFile(f.source)
		}
		src, err := schema.Resolve(base, cfg.Ref)
		if err != nil {
			return nil, fmt.Errorf("definition: schema ref: %w", err)
		}
		doc, err := l.Load(ctx, src)
		if err != nil {
			return nil, err
		}
		data = doc.Raw()
	}

	switch cfg.Kind {
	case SchemaOpenAPI:
		var opts []openapi.Option
		if cfg.Formats {
			opts = append(opts, openapi.WithFormatValidation())
		}
		if cfg.Component != "" {
			return openapi.FromDocument(ctx, data, cfg.Component, opts...)
		}
		return openapi.FromBytes(data, opts...)
	case SchemaJSONSchema:
		var opts []jsonschema.Option
		if cfg.Formats {
			opts = append(opts, jsonschema.WithFormatAssertions())
		}
		return jsonschema.Compile(data, opts...)
	default:
		return nil, fmt.Errorf("%w: schema kind %q", ErrInvalid, cfg.Kind)
	}
}

// NewController builds a controller for the definition, registers fresh
// elements on it and returns both. The elements are appended to doc when doc
// is non-nil so removal detection works.
func (f *Form) NewController(ctx context.Context, l schema.Loader, doc *element.Document, opts ...form.Option) (*form.Controller, []*element.Input, error) {
	adapter, err := f.Adapter(ctx, l)
	if err != nil {
		return nil, nil, err
	}

	all := f.Options()
	if adapter != nil {
		all = append(all, form.WithSchema(adapter, validate.SchemaOptions{AbortEarly: f.Schema.AbortEarly}))
	}
	elements := f.Elements()
	if doc != nil {
		for _, el := range elements {
			doc.Append(el)
		}
		all = append(all, form.WithDocument(doc))
	}
	all = append(all, opts...)

	c := form.New(all...)
	f.Bind(c, elements)
	return c, elements, nil
}
