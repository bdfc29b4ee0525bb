// Package validate evaluates field rules and schema adapters and defines the
// error records the form core stores per field.
package validate

import (
	"sort"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/paths"
)

// Error kinds.
const (
	KindRequired  = "required"
	KindMin       = "min"
	KindMax       = "max"
	KindMinLength = "minLength"
	KindMaxLength = "maxLength"
	KindPattern   = "pattern"
	KindValidate  = "validate"
	KindManual    = "manual"
)

// Error is the record kept for an invalid field.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	// Ref points at the offending element for focus targeting.
	Ref element.Element `json:"-"`
	// Manual marks errors set by the caller rather than by validation.
	Manual bool `json:"manual,omitempty"`
}

// Same reports whether e carries the given kind and message.
func (e Error) Same(kind, message string) bool {
	return e.Type == kind && e.Message == message
}

// Errors maps field names to error records.
type Errors map[string]Error

// Clone returns a shallow copy; nil stays nil-safe.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Names returns the field names with errors, sorted.
func (e Errors) Names() []string {
	out := make([]string, 0, len(e))
	for name := range e {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup finds the error recorded for name, matching "a[0].b" against
// "a.0.b" style keys.
func (e Errors) Lookup(name string) (Error, bool) {
	if err, ok := e[name]; ok {
		return err, true
	}
	canonical := paths.Canonical(name)
	for key, err := range e {
		if paths.Canonical(key) == canonical {
			return err, true
		}
	}
	return Error{}, false
}

// Messages flattens the errors into name -> message pairs; empty messages
// fall back to the error kind.
func (e Errors) Messages() map[string]string {
	out := make(map[string]string, len(e))
	for name, err := range e {
		msg := err.Message
		if msg == "" {
			msg = err.Type
		}
		out[name] = msg
	}
	return out
}
