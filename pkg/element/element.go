package element

// Input types the form core treats specially. Any other non-empty type is a
// single-value input; an empty type marks a logical-only field.
const (
	TypeRadio          = "radio"
	TypeCheckbox       = "checkbox"
	TypeSelectMultiple = "select-multiple"
	TypeSelectOne      = "select-one"
	TypeText           = "text"
	TypeEmail          = "email"
	TypePassword       = "password"
	TypeNumber         = "number"
	TypeTextArea       = "textarea"
	TypeHidden         = "hidden"
)

// DefaultCheckboxValue is the value attribute hosts report for checkboxes
// that never declared one.
const DefaultCheckboxValue = "on"

// EventKind names the interaction that reached a listener.
type EventKind string

const (
	EventChange EventKind = "change"
	EventBlur   EventKind = "blur"
)

// Event is delivered to listeners attached through EventTarget.
type Event struct {
	Kind   EventKind
	Target Element
}

// Element is the element-like collaborator the form core registers. Reads
// and writes must be safe to call from the goroutine delivering events.
type Element interface {
	Name() string
	// Type returns the input type; "" marks a logical-only field driven
	// purely by programmatic value sets.
	Type() string
	Value() any
	SetValue(value any)
	Checked() bool
	SetChecked(checked bool)
}

// Focuser is implemented by elements that can receive input focus.
type Focuser interface {
	Focus()
}

// MultiSelector is implemented by multi-select elements.
type MultiSelector interface {
	SelectedValues() []string
}

// ValueAttributer reports an explicitly declared value attribute.
type ValueAttributer interface {
	ValueAttribute() (string, bool)
}

// FormResetter is implemented by elements that can reset the enclosing form.
type FormResetter interface {
	ResetForm() error
}

// Listener is the handle returned when a listener is attached. Remove is
// idempotent.
type Listener interface {
	Remove()
}

// EventTarget is implemented by elements that deliver interaction events.
type EventTarget interface {
	AddEventListener(kind EventKind, fn func(Event)) Listener
}

// ConstraintSetter receives validation rules as native constraint attributes.
type ConstraintSetter interface {
	SetConstraint(attr, value string)
}

// ConstraintChecker runs host-native constraint validation. An empty kind
// means the element is valid.
type ConstraintChecker interface {
	CheckValidity() (kind string, message string)
}

// Observation is the handle returned by an attachment observer.
type Observation interface {
	Disconnect()
}
