package field

import (
	"reflect"

	"github.com/goliatone/go-formstate/pkg/element"
)

// Removal describes the outcome of a detachment cleanup.
type Removal int

const (
	// NoMatch means the candidate matched nothing; registry state is
	// unchanged.
	NoMatch Removal = iota
	// OptionRemoved means a radio option left its group and the group
	// survives.
	OptionRemoved
	// FieldRemoved means the whole entry was deleted.
	FieldRemoved
)

// Registry maps field names to entries and preserves registration order.
// It is not safe for concurrent use; the owning controller serialises access.
type Registry struct {
	fields map[string]*Field
	order  []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{fields: make(map[string]*Field)}
}

// Len reports the number of entries.
func (r *Registry) Len() int {
	return len(r.fields)
}

// Get returns the entry registered under name.
func (r *Registry) Get(name string) (*Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// Names returns entry names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Fields returns entries in registration order.
func (r *Registry) Fields() []*Field {
	out := make([]*Field, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.fields[name])
	}
	return out
}

// Add stores ref under its name. Duplicate registrations (an existing
// non-radio entry, or a radio option whose value is already in the group)
// are ignored and report added=false. For radio inputs the returned option
// is the newly appended one.
func (r *Registry) Add(ref element.Element, rules Rules) (entry *Field, option *Option, added bool) {
	if ref == nil || ref.Name() == "" {
		return nil, nil, false
	}
	name := ref.Name()
	kind := KindOf(ref)
	existing := r.fields[name]

	if kind != KindRadioGroup {
		if existing != nil {
			return existing, nil, false
		}
		entry = &Field{Name: name, Kind: kind, Ref: ref, Rules: rules}
		r.put(entry)
		return entry, nil, true
	}

	if existing != nil {
		if existing.Kind != KindRadioGroup || existing.hasOptionValue(ref.Value()) {
			return existing, nil, false
		}
		mergeGroupRules(&existing.Rules, rules)
	} else {
		existing = &Field{Name: name, Kind: KindRadioGroup, Rules: rules}
		r.put(existing)
	}

	option = &Option{Ref: ref}
	existing.Options = append(existing.Options, option)
	return existing, option, true
}

func mergeGroupRules(dst *Rules, src Rules) {
	if src.Validate != nil {
		dst.Validate = src.Validate
	}
	if len(src.Validations) > 0 {
		merged := make(map[string]Validator, len(dst.Validations)+len(src.Validations))
		for k, v := range dst.Validations {
			merged[k] = v
		}
		for k, v := range src.Validations {
			merged[k] = v
		}
		dst.Validations = merged
	}
}

// Delete removes the entry registered under name, disposing its listeners
// and watchers, regardless of whether its elements are still attached.
func (r *Registry) Delete(name string) (*Field, bool) {
	f, ok := r.fields[name]
	if !ok {
		return nil, false
	}
	f.Dispose()
	r.drop(name)
	return f, true
}

// Detach runs the removal cleanup for a candidate element reported as
// detached. Logical-only references never match.
func (r *Registry) Detach(ref element.Element) (string, Removal) {
	if ref == nil || ref.Type() == "" {
		return "", NoMatch
	}
	name := ref.Name()
	f, ok := r.fields[name]
	if !ok {
		return name, NoMatch
	}

	switch f.Kind {
	case KindRadioGroup:
		idx := f.optionIndex(ref)
		if idx < 0 {
			return name, NoMatch
		}
		f.Options[idx].Dispose()
		f.Options = append(f.Options[:idx], f.Options[idx+1:]...)
		if len(f.Options) > 0 {
			return name, OptionRemoved
		}
		f.Dispose()
		r.drop(name)
		return name, FieldRemoved
	case KindSingle:
		if f.Ref != ref {
			return name, NoMatch
		}
		f.Dispose()
		r.drop(name)
		return name, FieldRemoved
	default:
		return name, NoMatch
	}
}

// Owns reports whether entry is still the live entry for its name and, when
// option is non-nil, whether option is still one of its options.
func (r *Registry) Owns(entry *Field, option *Option) bool {
	if entry == nil || r.fields[entry.Name] != entry {
		return false
	}
	if option == nil {
		return true
	}
	for _, opt := range entry.Options {
		if opt == option {
			return true
		}
	}
	return false
}

// Value extracts the semantic value of ref. Radio refs resolve through their
// group entry.
func (r *Registry) Value(ref element.Element) any {
	if ref == nil {
		return ""
	}
	if ref.Type() == element.TypeRadio {
		f, ok := r.fields[ref.Name()]
		if !ok || f.Kind != KindRadioGroup {
			return ""
		}
		return radioValue(f.Options)
	}
	return extract(ref)
}

// Values returns the extracted value of every entry keyed by name.
func (r *Registry) Values() map[string]any {
	out := make(map[string]any, len(r.fields))
	for _, name := range r.order {
		out[name] = ValueOf(r.fields[name])
	}
	return out
}

// Clear disposes and removes every entry.
func (r *Registry) Clear() []*Field {
	removed := r.Fields()
	for _, f := range removed {
		f.Dispose()
	}
	r.fields = make(map[string]*Field)
	r.order = nil
	return removed
}

func (r *Registry) put(f *Field) {
	r.fields[f.Name] = f
	r.order = append(r.order, f.Name)
}

func (r *Registry) drop(name string) {
	delete(r.fields, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func sameValue(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
