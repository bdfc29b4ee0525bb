// Package trigger decides, per interaction event, whether a field should be
// validated and whether the form must re-render.
package trigger

import (
	"strings"

	"github.com/goliatone/go-formstate/pkg/element"
)

// Mode selects when validation runs.
type Mode string

const (
	OnChange Mode = "onChange"
	OnBlur   Mode = "onBlur"
	OnSubmit Mode = "onSubmit"
)

// ParseMode maps a configuration string to a Mode. Matching ignores case;
// unknown values fall back to OnSubmit.
func ParseMode(raw string) Mode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "onchange", "change":
		return OnChange
	case "onblur", "blur":
		return OnBlur
	default:
		return OnSubmit
	}
}

func (m Mode) String() string { return string(m) }

// Outcome is the decision computed for one event.
type Outcome int

const (
	// Skip means nothing changed and nothing should run.
	Skip Outcome = iota
	// RenderOnly means bookkeeping changed but validation must not run.
	RenderOnly
	// Validate means the field should be validated; a render follows if the
	// result changes state.
	Validate
)

func (o Outcome) String() string {
	switch o {
	case Skip:
		return "skip"
	case RenderOnly:
		return "render-only"
	case Validate:
		return "validate"
	default:
		return "unknown"
	}
}

// Context is the per-event input of the state machine.
type Context struct {
	Mode      Mode
	Event     element.EventKind
	Submitted bool
}

// ValidationDisabled reports whether validation must not run for this event:
// submit-only mode before the first submit.
func (c Context) ValidationDisabled() bool {
	return c.Mode == OnSubmit && !c.Submitted
}

// ModePermits reports whether the mode allows an update on this event: any
// change-mode event, or a blur event in blur mode.
func (c Context) ModePermits() bool {
	switch c.Mode {
	case OnChange:
		return true
	case OnBlur:
		return c.Event == element.EventBlur
	default:
		return false
	}
}

// Plan computes the outcome of an event. allowed is false when the field is
// outside the validation allow-list; stateChanged reports whether touched or
// dirty bookkeeping changed while handling the event.
func Plan(c Context, allowed, stateChanged bool) Outcome {
	if !allowed {
		return Skip
	}
	if c.ValidationDisabled() {
		if stateChanged {
			return RenderOnly
		}
		return Skip
	}
	return Validate
}

// ShouldUpdateField reports whether a per-field validation result should be
// merged into the error store. changed reports whether the field's error
// record differs from the stored one. Modes that permit an update on this
// event always merge; otherwise only a changed result is merged, and never
// for a non-blur event in blur mode.
func ShouldUpdateField(c Context, changed bool) bool {
	if c.ModePermits() {
		return true
	}
	if c.ValidationDisabled() || (c.Mode == OnBlur && c.Event != element.EventBlur) {
		return false
	}
	return changed
}

// ShouldUpdateSchema reports whether a schema pass result for one field
// should be committed: the field must be erroring now or have been erroring
// before, and the mode must permit an update or the form must have been
// submitted.
func ShouldUpdateSchema(c Context, hadError, hasError bool) bool {
	if !hadError && !hasError {
		return false
	}
	return c.ModePermits() || c.Submitted
}
