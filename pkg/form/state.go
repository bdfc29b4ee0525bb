package form

import (
	"sort"

	"github.com/goliatone/go-formstate/pkg/trigger"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// State is a read-only snapshot of the form state.
type State struct {
	Errors       validate.Errors `json:"errors"`
	Dirty        bool            `json:"dirty"`
	DirtyFields  []string        `json:"dirtyFields"`
	Touched      []string        `json:"touched"`
	IsSubmitted  bool            `json:"isSubmitted"`
	IsSubmitting bool            `json:"isSubmitting"`
	SubmitCount  int             `json:"submitCount"`
	IsValid      bool            `json:"isValid"`
}

// FormState returns a snapshot of the current state.
func (c *Controller) FormState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Errors:       c.errors.Clone(),
		Dirty:        len(c.dirty) > 0,
		DirtyFields:  sortedNames(c.dirty),
		Touched:      sortedNames(c.touched),
		IsSubmitted:  c.submitted,
		IsSubmitting: c.submitting,
		SubmitCount:  c.submitCount,
		IsValid:      c.isValid(),
	}
}

// isValid derives aggregate validity:
//   - submit-only mode: no errors recorded
//   - schema mode: the schema ran at least once and reported no errors
//   - fields with rules: every one of them is in the valid set
//   - otherwise: at least one field is registered
func (c *Controller) isValid() bool {
	if c.cfg.Mode == trigger.OnSubmit {
		return len(c.errors) == 0
	}
	if c.cfg.Schema != nil {
		return c.schemaTriggered && len(c.schemaErrors) == 0
	}
	if len(c.withValidation) > 0 {
		return c.reg.Len() > 0 && len(c.valid) >= len(c.withValidation)
	}
	return c.reg.Len() > 0
}

func sortedNames(set nameSet) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
