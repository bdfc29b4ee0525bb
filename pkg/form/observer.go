package form

import "time"

// Observer receives controller activity. Methods are called with the
// controller lock held and must not call back into the controller.
type Observer interface {
	FieldValidated(name string, valid bool)
	FormSubmitted(valid bool, elapsed time.Duration)
	FieldRemoved(name string)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) FieldValidated(string, bool)       {}
func (NopObserver) FormSubmitted(bool, time.Duration) {}
func (NopObserver) FieldRemoved(string)               {}
