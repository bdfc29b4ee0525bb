package form

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/paths"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// SubmitFunc receives the nested values of a valid form.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// HandleSubmit returns a submit handler bound to fn, for hosts that wire
// submission to a button or request.
func (c *Controller) HandleSubmit(fn SubmitFunc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return c.Submit(ctx, fn)
	}
}

type submitTarget struct {
	name   string
	entry  *field.Field
	target validate.Target
}

// Submit validates the form and calls fn with the nested values when there
// are no errors; otherwise the collected errors are adopted. The submit
// counter and flags flip whether or not the form was valid. A controller
// closed while the submit is in flight drops the outcome and returns nil.
// The error returned by fn is propagated after the state flips.
func (c *Controller) Submit(ctx context.Context, fn SubmitFunc) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	started := time.Now()
	c.submitting = true
	c.needsRender = true

	var (
		fieldErrors validate.Errors
		values      map[string]any
		err         error
		aborted     bool
	)
	if c.cfg.Schema != nil {
		fieldErrors, values, aborted, err = c.submitSchema(ctx)
	} else {
		fieldErrors, values, aborted, err = c.submitFields(ctx)
	}
	// Both paths return with the lock held.
	if aborted {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.finishSubmit(false, started)
		c.mu.Unlock()
		return err
	}

	var callbackErr error
	if len(fieldErrors) == 0 {
		c.errors = validate.Errors{}
		c.mu.Unlock()
		if fn != nil {
			callbackErr = fn(ctx, values)
		}
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return callbackErr
		}
	} else {
		c.errors = fieldErrors
	}

	c.finishSubmit(len(fieldErrors) == 0, started)
	c.mu.Unlock()
	return callbackErr
}

func (c *Controller) finishSubmit(valid bool, started time.Time) {
	c.submitted = true
	c.submitCount++
	c.submitting = false
	c.needsRender = true
	c.observer.FormSubmitted(valid, time.Since(started))
}

// submitSchema is entered and left with the lock held.
func (c *Controller) submitSchema(ctx context.Context) (validate.Errors, map[string]any, bool, error) {
	schema, opts := c.cfg.Schema, c.cfg.SchemaOptions
	values := paths.Combine(c.reg.Values())
	c.mu.Unlock()

	res, err := schema.ValidateSchema(ctx, values, opts)

	c.mu.Lock()
	if c.closed {
		return nil, nil, true, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("form: submit: schema validation: %w", err)
	}
	fieldErrors := c.cleanErrors(res.FieldErrors)
	if fieldErrors == nil {
		fieldErrors = validate.Errors{}
	}
	c.schemaErrors = fieldErrors
	c.schemaTriggered = true
	if res.Values != nil {
		values = paths.Combine(res.Values)
	}
	return fieldErrors.Clone(), values, false, nil
}

// submitFields folds over the fields to validate, one at a time, releasing
// the lock around each validator. It is entered and left with the lock
// held.
func (c *Controller) submitFields(ctx context.Context) (validate.Errors, map[string]any, bool, error) {
	targets := c.submitTargets()
	opts := validate.Options{NativeValidation: c.cfg.NativeValidation}
	focus := c.cfg.SubmitFocusError
	c.mu.Unlock()

	fieldErrors := validate.Errors{}
	flat := map[string]any{}
	focused := false
	for _, t := range targets {
		result, err := validate.Field(ctx, t.target, opts)

		c.mu.Lock()
		if c.closed {
			return nil, nil, true, nil
		}
		if err != nil {
			return nil, nil, false, fmt.Errorf("form: submit: validate %q: %w", t.name, err)
		}
		if !c.current(t.name, t.entry) {
			c.mu.Unlock()
			continue
		}
		if fieldErr, bad := result[t.name]; bad {
			if focus && !focused {
				if target := t.entry.FocusTarget(); target != nil {
					target.Focus()
					focused = true
				}
			}
			fieldErrors[t.name] = fieldErr
		} else {
			flat[t.name] = field.ValueOf(t.entry)
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	if c.closed {
		return nil, nil, true, nil
	}
	return c.cleanErrors(fieldErrors), paths.Combine(flat), false, nil
}

func (c *Controller) submitTargets() []submitTarget {
	names := c.reg.Names()
	if c.cfg.ValidationFields != nil {
		names = c.cfg.ValidationFields
	}
	out := make([]submitTarget, 0, len(names))
	for _, name := range names {
		entry, ok := c.reg.Get(name)
		if !ok {
			continue
		}
		out = append(out, submitTarget{name: name, entry: entry, target: validate.Snapshot(entry)})
	}
	return out
}
