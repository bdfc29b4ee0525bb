package element

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotAttached is returned by ResetForm when the input is not part of a
// Document.
var ErrNotAttached = errors.New("element: input is not attached to a document")

// SelectOption is a single entry of a select input.
type SelectOption struct {
	Value    string
	Selected bool
}

// InputOption configures an Input at construction time.
type InputOption func(*Input)

// WithValue seeds the input value.
func WithValue(value any) InputOption {
	return func(in *Input) {
		in.value = value
	}
}

// WithChecked seeds the checked state of checkbox and radio inputs.
func WithChecked(checked bool) InputOption {
	return func(in *Input) {
		in.checked = checked
	}
}

// WithValueAttribute declares an explicit value attribute, as checkbox
// inputs do with value="...".
func WithValueAttribute(value string) InputOption {
	return func(in *Input) {
		v := value
		in.valueAttr = &v
		if in.value == nil {
			in.value = value
		}
	}
}

// WithSelectOptions seeds the option list of select inputs.
func WithSelectOptions(values ...string) InputOption {
	return func(in *Input) {
		in.options = make([]SelectOption, 0, len(values))
		for _, v := range values {
			in.options = append(in.options, SelectOption{Value: v})
		}
	}
}

// WithSelected marks options as selected. Apply it after WithSelectOptions.
func WithSelected(value any) InputOption {
	return func(in *Input) {
		wanted := make(map[string]struct{})
		for _, v := range stringList(value) {
			wanted[v] = struct{}{}
		}
		for i := range in.options {
			_, ok := wanted[in.options[i].Value]
			in.options[i].Selected = ok
		}
	}
}

// WithValidity installs a native constraint check.
func WithValidity(fn func(*Input) (kind, message string)) InputOption {
	return func(in *Input) {
		in.validity = fn
	}
}

// Input is an in-memory element used by hosts that own their widgets (the
// terminal and HTTP hosts) and by tests.
type Input struct {
	mu sync.Mutex

	name      string
	typ       string
	value     any
	checked   bool
	valueAttr *string
	options   []SelectOption

	initialValue   any
	initialChecked bool
	initialOptions []SelectOption

	focused     bool
	constraints map[string]string
	validity    func(*Input) (string, string)

	listeners map[EventKind][]*listener
	doc       *Document
}

var (
	_ Element           = (*Input)(nil)
	_ Focuser           = (*Input)(nil)
	_ MultiSelector     = (*Input)(nil)
	_ ValueAttributer   = (*Input)(nil)
	_ FormResetter      = (*Input)(nil)
	_ EventTarget       = (*Input)(nil)
	_ ConstraintSetter  = (*Input)(nil)
	_ ConstraintChecker = (*Input)(nil)
)

// NewInput builds an input with the given name and type.
func NewInput(name, typ string, options ...InputOption) *Input {
	in := &Input{
		name:      name,
		typ:       typ,
		listeners: make(map[EventKind][]*listener),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(in)
	}
	if in.value == nil && typ != "" && typ != TypeSelectMultiple {
		in.value = ""
	}
	in.initialValue = in.value
	in.initialChecked = in.checked
	in.initialOptions = append([]SelectOption(nil), in.options...)
	return in
}

// NewLogical builds a logical-only field reference: it has no type, is never
// observed for removal and never receives listeners.
func NewLogical(name string) *Input {
	return NewInput(name, "")
}

// Name returns the field name the input registers under.
func (in *Input) Name() string {
	return in.name
}

// Type returns the input type; "" marks a logical-only reference.
func (in *Input) Type() string {
	return in.typ
}

func (in *Input) Value() any {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.typ == TypeSelectMultiple {
		return in.selectedLocked()
	}
	return in.value
}

// SetValue writes the value. Multi-select inputs accept []string or []any and
// select the matching options.
func (in *Input) SetValue(value any) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.typ == TypeSelectMultiple {
		wanted := make(map[string]struct{})
		for _, v := range stringList(value) {
			wanted[v] = struct{}{}
		}
		for i := range in.options {
			_, ok := wanted[in.options[i].Value]
			in.options[i].Selected = ok
		}
		return
	}
	in.value = value
}

func (in *Input) Checked() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.checked
}

func (in *Input) SetChecked(checked bool) {
	in.mu.Lock()
	in.checked = checked
	in.mu.Unlock()
}

// SelectedValues returns the selected option values in option order.
func (in *Input) SelectedValues() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.selectedLocked()
}

func (in *Input) selectedLocked() []string {
	out := make([]string, 0, len(in.options))
	for _, opt := range in.options {
		if opt.Selected {
			out = append(out, opt.Value)
		}
	}
	return out
}

// Options returns a copy of the select options.
func (in *Input) Options() []SelectOption {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]SelectOption(nil), in.options...)
}

func (in *Input) ValueAttribute() (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.valueAttr == nil {
		return "", false
	}
	return *in.valueAttr, true
}

func (in *Input) Focus() {
	in.mu.Lock()
	in.focused = true
	in.mu.Unlock()
}

// Focused reports whether Focus was called since the last Blur.
func (in *Input) Focused() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.focused
}

func (in *Input) SetConstraint(attr, value string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.constraints == nil {
		in.constraints = make(map[string]string)
	}
	in.constraints[attr] = value
}

// Constraint returns a native constraint attribute set through
// SetConstraint.
func (in *Input) Constraint(attr string) (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	v, ok := in.constraints[attr]
	return v, ok
}

func (in *Input) CheckValidity() (string, string) {
	if in.validity == nil {
		return "", ""
	}
	return in.validity(in)
}

// ResetForm restores every input of the owning document to its initial
// state.
func (in *Input) ResetForm() error {
	in.mu.Lock()
	doc := in.doc
	in.mu.Unlock()
	if doc == nil {
		return ErrNotAttached
	}
	doc.Reset()
	return nil
}

func (in *Input) restore() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.value = in.initialValue
	in.checked = in.initialChecked
	in.options = append([]SelectOption(nil), in.initialOptions...)
}

func (in *Input) setDocument(doc *Document) {
	in.mu.Lock()
	in.doc = doc
	in.mu.Unlock()
}

type listener struct {
	once  sync.Once
	input *Input
	kind  EventKind
	fn    func(Event)
}

func (l *listener) Remove() {
	l.once.Do(func() {
		l.input.removeListener(l)
	})
}

func (in *Input) AddEventListener(kind EventKind, fn func(Event)) Listener {
	l := &listener{input: in, kind: kind, fn: fn}
	in.mu.Lock()
	in.listeners[kind] = append(in.listeners[kind], l)
	in.mu.Unlock()
	return l
}

func (in *Input) removeListener(target *listener) {
	in.mu.Lock()
	defer in.mu.Unlock()
	current := in.listeners[target.kind]
	kept := current[:0]
	for _, l := range current {
		if l != target {
			kept = append(kept, l)
		}
	}
	in.listeners[target.kind] = kept
}

// ListenerCount reports how many listeners are attached for kind.
func (in *Input) ListenerCount(kind EventKind) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.listeners[kind])
}

// Dispatch delivers an event of the given kind to the attached listeners,
// synchronously and in attachment order.
func (in *Input) Dispatch(kind EventKind) {
	in.mu.Lock()
	snapshot := append([]*listener(nil), in.listeners[kind]...)
	if kind == EventBlur {
		in.focused = false
	}
	in.mu.Unlock()

	ev := Event{Kind: kind, Target: in}
	for _, l := range snapshot {
		l.fn(ev)
	}
}

// Change writes value and dispatches a change event, the way a user edit
// would.
func (in *Input) Change(value any) {
	in.SetValue(value)
	in.Dispatch(EventChange)
}

// Check sets the checked state and dispatches a change event.
func (in *Input) Check(checked bool) {
	in.SetChecked(checked)
	in.Dispatch(EventChange)
}

// Select marks the given option values as selected and dispatches a change
// event.
func (in *Input) Select(values ...string) {
	in.SetValue(values)
	in.Dispatch(EventChange)
}

// Blur dispatches a blur event.
func (in *Input) Blur() {
	in.Dispatch(EventBlur)
}

func (in *Input) String() string {
	return fmt.Sprintf("%s[%s]", in.name, in.typ)
}

func stringList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return []string{fmt.Sprint(v)}
	}
}
