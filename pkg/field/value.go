package field

import (
	"fmt"

	"github.com/goliatone/go-formstate/pkg/element"
)

// ValueOf extracts the semantic value of an entry:
//   - radio groups yield the checked option value, or "" when none is checked
//   - multi-selects yield the selected option values in order
//   - checkboxes yield true/false, or their explicit value attribute when
//     checked and one was declared
//   - everything else yields the raw element value
func ValueOf(f *Field) any {
	if f == nil {
		return ""
	}
	if f.Kind == KindRadioGroup {
		return radioValue(f.Options)
	}
	if f.Kind == KindLogical {
		if f.Ref == nil {
			return nil
		}
		return safeRead(f.Ref.Value, nil)
	}
	return extract(f.Ref)
}

func radioValue(options []*Option) any {
	for _, opt := range options {
		if opt == nil || opt.Ref == nil {
			continue
		}
		if safeRead(func() any { return opt.Ref.Checked() }, false) == true {
			value := safeRead(opt.Ref.Value, "")
			if value == nil {
				return ""
			}
			if s, ok := value.(string); ok {
				return s
			}
			return fmt.Sprint(value)
		}
	}
	return ""
}

func extract(ref element.Element) any {
	switch ref.Type() {
	case "":
		return safeRead(ref.Value, nil)
	case element.TypeSelectMultiple:
		return multiSelectValue(ref)
	case element.TypeCheckbox:
		return checkboxValue(ref)
	}
	value := safeRead(ref.Value, "")
	if value == nil {
		return ""
	}
	return value
}

func multiSelectValue(ref element.Element) any {
	if ms, ok := ref.(element.MultiSelector); ok {
		selected := safeRead(func() any { return ms.SelectedValues() }, []string{})
		if list, ok := selected.([]string); ok && list != nil {
			return list
		}
		return []string{}
	}
	switch v := safeRead(ref.Value, nil).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{}
	}
}

func checkboxValue(ref element.Element) any {
	if safeRead(func() any { return ref.Checked() }, false) != true {
		return false
	}
	attr, ok := ref.(element.ValueAttributer)
	if !ok {
		return true
	}
	raw, declared := attr.ValueAttribute()
	if !declared || raw == "" || raw == element.DefaultCheckboxValue {
		return true
	}
	return raw
}

// safeRead shields extraction from host elements that panic on access; a
// malformed element yields the fallback instead.
func safeRead(read func() any, fallback any) (value any) {
	defer func() {
		if recover() != nil {
			value = fallback
		}
	}()
	return read()
}
