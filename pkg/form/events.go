package form

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/paths"
	"github.com/goliatone/go-formstate/pkg/trigger"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// HandleEvent runs the per-interaction state machine for name. Listeners
// installed on registered elements call it; hosts that deliver events
// themselves may call it directly. Events for names outside the allow-list
// or not registered are ignored.
func (c *Controller) HandleEvent(ctx context.Context, name string, kind element.EventKind) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	entry, ok := c.reg.Get(name)
	if !ok || !c.isAllowed(name) {
		c.mu.Unlock()
		return nil
	}

	tc := trigger.Context{Mode: c.cfg.Mode, Event: kind, Submitted: c.submitted}
	stateChanged := c.watchAll || c.watched[name]
	if c.setDirty(name) {
		stateChanged = true
	}
	if !c.touched.has(name) {
		c.touched[name] = struct{}{}
		stateChanged = true
	}

	switch trigger.Plan(tc, true, stateChanged) {
	case trigger.Skip:
		c.mu.Unlock()
		return nil
	case trigger.RenderOnly:
		c.needsRender = true
		c.mu.Unlock()
		return nil
	}

	if c.cfg.Schema != nil {
		return c.handleSchemaEvent(ctx, name, entry, tc, stateChanged)
	}
	return c.handleFieldEvent(ctx, name, entry, tc, stateChanged)
}

// handleSchemaEvent is entered with the lock held and releases it.
func (c *Controller) handleSchemaEvent(ctx context.Context, name string, entry *field.Field, tc trigger.Context, stateChanged bool) error {
	schema, opts := c.cfg.Schema, c.cfg.SchemaOptions
	values := paths.Combine(c.reg.Values())
	c.mu.Unlock()

	res, err := schema.ValidateSchema(ctx, values, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if err != nil {
		if stateChanged {
			c.needsRender = true
		}
		return fmt.Errorf("form: schema validation: %w", err)
	}
	if !c.current(name, entry) {
		return nil
	}

	c.schemaErrors = c.cleanErrors(res.FieldErrors)
	c.schemaTriggered = true
	fieldErr, has := c.schemaErrors.Lookup(name)
	_, had := c.errors[name]
	c.observer.FieldValidated(name, !has)

	if trigger.ShouldUpdateSchema(tc, had, has) {
		if has {
			c.errors[name] = fieldErr
		} else {
			delete(c.errors, name)
		}
		c.needsRender = true
		return nil
	}
	if stateChanged {
		c.needsRender = true
	}
	return nil
}

// handleFieldEvent is entered with the lock held and releases it.
func (c *Controller) handleFieldEvent(ctx context.Context, name string, entry *field.Field, tc trigger.Context, stateChanged bool) error {
	target := validate.Snapshot(entry)
	opts := validate.Options{NativeValidation: c.cfg.NativeValidation}
	c.mu.Unlock()

	result, err := validate.Field(ctx, target, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if err != nil {
		if stateChanged {
			c.needsRender = true
		}
		return fmt.Errorf("form: validate %q: %w", name, err)
	}
	if !c.current(name, entry) {
		return nil
	}

	result = c.cleanErrors(result)
	prev, had := c.errors[name]
	next, has := result[name]
	changed := had != has || (has && !prev.Same(next.Type, next.Message))
	c.observer.FieldValidated(name, !has)

	if trigger.ShouldUpdateField(tc, changed) {
		if c.recordResult(name, had, result) {
			return nil
		}
	}
	if stateChanged {
		c.needsRender = true
	}
	return nil
}
