package definition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/trigger"
)

var (
	// ErrUnknownType is returned for a field type no element supports.
	ErrUnknownType = errors.New("definition: unknown field type")
	// ErrInvalid wraps structural problems in a definition.
	ErrInvalid = errors.New("definition: invalid definition")
)

var knownTypes = map[string]bool{
	"":                         true,
	element.TypeRadio:          true,
	element.TypeCheckbox:       true,
	element.TypeSelectMultiple: true,
	element.TypeSelectOne:      true,
	element.TypeText:           true,
	element.TypeEmail:          true,
	element.TypePassword:       true,
	element.TypeNumber:         true,
	element.TypeTextArea:       true,
	element.TypeHidden:         true,
}

// Parse decodes a JSON or YAML definition and checks it. source is used in
// error messages and to resolve relative schema references.
func Parse(data []byte, source string) (*Form, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalid, source)
	}

	var f Form
	if err := json.Unmarshal(data, &f); err != nil {
		f = Form{}
		if yerr := yaml.Unmarshal(data, &f); yerr != nil {
			return nil, fmt.Errorf("definition: parse %s: %w", source, yerr)
		}
	}
	f.source = source
	f.DefaultValues = normaliseMap(f.DefaultValues)
	if f.Schema != nil {
		f.Schema.Inline = normaliseMap(f.Schema.Inline)
	}
	for i := range f.Fields {
		f.Fields[i].Value = normaliseValue(f.Fields[i].Value)
	}

	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load fetches and parses the definition at src.
func Load(ctx context.Context, l schema.Loader, src schema.Source) (*Form, error) {
	if l == nil {
		return nil, errors.New("definition: loader is nil")
	}
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	f, err := Parse(doc.Raw(), doc.Location())
	if err != nil {
		return nil, err
	}
	f.origin = src
	return f, nil
}

func (f *Form) check() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("%w: %s has no id", ErrInvalid, f.source)
	}
	if f.Mode != "" && !strings.EqualFold(string(trigger.ParseMode(f.Mode)), f.Mode) {
		return fmt.Errorf("%w: %s has unknown mode %q", ErrInvalid, f.source, f.Mode)
	}

	seen := make(map[string]bool, len(f.Fields))
	for idx, fd := range f.Fields {
		name := strings.TrimSpace(fd.Name)
		if name == "" {
			return fmt.Errorf("%w: %s field %d has no name", ErrInvalid, f.source, idx)
		}
		if seen[name] {
			return fmt.Errorf("%w: %s defines field %q twice", ErrInvalid, f.source, name)
		}
		seen[name] = true

		typ := strings.ToLower(fd.Type)
		if !knownTypes[typ] {
			return fmt.Errorf("%w: %q (field %q)", ErrUnknownType, fd.Type, name)
		}
		f.Fields[idx].Type = typ
		if (typ == element.TypeRadio || typ == element.TypeSelectOne || typ == element.TypeSelectMultiple) && len(fd.Options) == 0 {
			return fmt.Errorf("%w: %s field %q needs options", ErrInvalid, f.source, name)
		}
		if fd.Rules.Pattern != "" {
			if _, err := regexp.Compile(fd.Rules.Pattern); err != nil {
				return fmt.Errorf("%w: %s field %q pattern: %v", ErrInvalid, f.source, name, err)
			}
		}
	}

	if f.Schema != nil {
		switch f.Schema.Kind {
		case SchemaOpenAPI, SchemaJSONSchema:
		default:
			return fmt.Errorf("%w: %s schema kind %q", ErrInvalid, f.source, f.Schema.Kind)
		}
		if f.Schema.Ref == "" && len(f.Schema.Inline) == 0 {
			return fmt.Errorf("%w: %s schema needs ref or inline", ErrInvalid, f.source)
		}
	}
	return nil
}

// normaliseMap converts YAML-decoded nested maps into map[string]any so the
// values survive JSON encoding.
func normaliseMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normaliseValue(v)
	}
	return out
}

func normaliseValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return normaliseMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[fmt.Sprint(k)] = normaliseValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normaliseValue(item)
		}
		return out
	default:
		return v
	}
}
