// Package field holds the field registry of a form: one entry per name, each
// a logical-only field, a single element, or a radio group of options.
package field

import (
	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/watcher"
)

// Kind tags the shape of a registry entry. It is decided at registration
// time from the element type.
type Kind int

const (
	// KindLogical entries have no backing element type and are driven only by
	// programmatic value sets.
	KindLogical Kind = iota
	// KindSingle entries wrap one element.
	KindSingle
	// KindRadioGroup entries share one name across several radio options.
	KindRadioGroup
)

func (k Kind) String() string {
	switch k {
	case KindLogical:
		return "logical"
	case KindSingle:
		return "single"
	case KindRadioGroup:
		return "radio-group"
	default:
		return "unknown"
	}
}

// KindOf classifies an element.
func KindOf(el element.Element) Kind {
	if el == nil {
		return KindLogical
	}
	switch el.Type() {
	case "":
		return KindLogical
	case element.TypeRadio:
		return KindRadioGroup
	default:
		return KindSingle
	}
}

// Option is one radio input inside a group.
type Option struct {
	Ref       element.Element
	Watch     *watcher.Handle
	Listeners []element.Listener
}

// Dispose detaches listeners and stops removal observation.
func (o *Option) Dispose() {
	if o == nil {
		return
	}
	o.Watch.Dispose()
	for _, l := range o.Listeners {
		l.Remove()
	}
	o.Listeners = nil
}

// Field is a registry entry.
type Field struct {
	Name  string
	Kind  Kind
	Rules Rules
	// Ref is the backing element; nil for radio groups, whose elements live in
	// Options.
	Ref       element.Element
	Options   []*Option
	Watch     *watcher.Handle
	Listeners []element.Listener
}

// Type reports the element type of the entry.
func (f *Field) Type() string {
	switch f.Kind {
	case KindRadioGroup:
		return element.TypeRadio
	case KindSingle:
		return f.Ref.Type()
	default:
		return ""
	}
}

// FocusTarget returns the element that should receive focus when the field
// is invalid, if any supports it.
func (f *Field) FocusTarget() element.Focuser {
	if f.Kind == KindRadioGroup {
		for _, opt := range f.Options {
			if focuser, ok := opt.Ref.(element.Focuser); ok {
				return focuser
			}
		}
		return nil
	}
	if focuser, ok := f.Ref.(element.Focuser); ok {
		return focuser
	}
	return nil
}

// ErrorRef returns the element an error record should point at.
func (f *Field) ErrorRef() element.Element {
	if f.Kind == KindRadioGroup {
		if len(f.Options) > 0 {
			return f.Options[0].Ref
		}
		return nil
	}
	return f.Ref
}

// Elements returns every backing element of the entry.
func (f *Field) Elements() []element.Element {
	if f.Kind == KindRadioGroup {
		out := make([]element.Element, 0, len(f.Options))
		for _, opt := range f.Options {
			out = append(out, opt.Ref)
		}
		return out
	}
	if f.Ref == nil {
		return nil
	}
	return []element.Element{f.Ref}
}

// Dispose detaches every listener and removal watcher held by the entry and
// its options.
func (f *Field) Dispose() {
	if f == nil {
		return
	}
	f.Watch.Dispose()
	for _, l := range f.Listeners {
		l.Remove()
	}
	f.Listeners = nil
	for _, opt := range f.Options {
		opt.Dispose()
	}
}

func (f *Field) optionIndex(ref element.Element) int {
	for i, opt := range f.Options {
		if opt.Ref == ref {
			return i
		}
	}
	return -1
}

func (f *Field) hasOptionValue(value any) bool {
	for _, opt := range f.Options {
		if sameValue(opt.Ref.Value(), value) {
			return true
		}
	}
	return false
}
