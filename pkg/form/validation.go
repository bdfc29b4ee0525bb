package form

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/paths"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// Payload names a field to validate, optionally assigning a value first.
type Payload struct {
	Name   string
	Value  any
	Assign bool
}

// TriggerValidation validates the named fields, or every registered field
// when no payload is given, and reports whether all of them are valid. In
// schema mode a single schema pass covers every name and only the requested
// names are updated.
func (c *Controller) TriggerValidation(ctx context.Context, payload ...Payload) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if len(payload) == 0 {
		for _, name := range c.reg.Names() {
			payload = append(payload, Payload{Name: name})
		}
	}
	for _, p := range payload {
		if p.Assign {
			c.setValueLocked(p.Name, p.Value)
		}
	}
	names := make([]string, 0, len(payload))
	for _, p := range payload {
		names = append(names, p.Name)
	}

	if c.cfg.Schema != nil {
		return c.validateSchemaNames(ctx, names)
	}
	c.mu.Unlock()

	allValid := true
	for _, name := range names {
		ok, err := c.validateOne(ctx, name)
		if err != nil {
			return false, err
		}
		if !ok {
			allValid = false
		}
	}

	c.mu.Lock()
	if !c.closed {
		c.needsRender = true
	}
	c.mu.Unlock()
	return allValid, nil
}

// validateSchemaNames is entered with the lock held and releases it.
func (c *Controller) validateSchemaNames(ctx context.Context, names []string) (bool, error) {
	schema, opts := c.cfg.Schema, c.cfg.SchemaOptions
	values := paths.Combine(c.reg.Values())
	c.mu.Unlock()

	res, err := schema.ValidateSchema(ctx, values, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	if err != nil {
		return false, fmt.Errorf("form: trigger validation: %w", err)
	}
	c.schemaErrors = c.cleanErrors(res.FieldErrors)
	c.schemaTriggered = true
	c.errors = validate.MergeSchema(c.errors, c.schemaErrors, names)
	for _, name := range names {
		_, bad := c.errors[name]
		c.observer.FieldValidated(name, !bad)
	}
	c.needsRender = true
	return len(c.errors) == 0, nil
}

// validateOne validates a single registered field. Unknown names report
// false.
func (c *Controller) validateOne(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	entry, ok := c.reg.Get(name)
	if !ok {
		c.mu.Unlock()
		return false, nil
	}
	target := validate.Snapshot(entry)
	opts := validate.Options{NativeValidation: c.cfg.NativeValidation}
	c.mu.Unlock()

	result, err := validate.Field(ctx, target, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	if err != nil {
		return false, fmt.Errorf("form: validate %q: %w", name, err)
	}
	if !c.current(name, entry) {
		return false, nil
	}
	_, had := c.errors[name]
	result = c.cleanErrors(result)
	c.recordResult(name, had, result)
	_, bad := result[name]
	c.observer.FieldValidated(name, !bad)
	return !bad, nil
}

// SetError records a manual error. Setting the same kind and message again
// is a no-op.
func (c *Controller) SetError(name, kind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	message = c.cleanMessage(message)
	if existing, ok := c.errors[name]; ok && existing.Same(kind, message) {
		return
	}
	var ref element.Element
	if entry, ok := c.reg.Get(name); ok {
		ref = entry.ErrorRef()
	}
	c.errors[name] = validate.Error{Type: kind, Message: message, Ref: ref, Manual: true}
	c.needsRender = true
}

// ClearError removes the errors of names, or every error when none is
// given.
func (c *Controller) ClearError(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if len(names) == 0 {
		c.errors = validate.Errors{}
	} else {
		for _, name := range names {
			delete(c.errors, name)
		}
	}
	c.needsRender = true
}

// Errors returns a copy of the current error store.
func (c *Controller) Errors() validate.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors.Clone()
}

// applyConstraints copies rules onto an element as native constraint
// attributes.
func applyConstraints(el element.Element, rules field.Rules) {
	setter, ok := el.(element.ConstraintSetter)
	if !ok {
		return
	}
	if rules.Required.Enabled {
		setter.SetConstraint("required", "")
	}
	if rules.Min != nil {
		setter.SetConstraint("min", strconv.FormatFloat(rules.Min.Value, 'f', -1, 64))
	}
	if rules.Max != nil {
		setter.SetConstraint("max", strconv.FormatFloat(rules.Max.Value, 'f', -1, 64))
	}
	if rules.MinLength != nil {
		setter.SetConstraint("minLength", strconv.Itoa(rules.MinLength.Value))
	}
	if rules.MaxLength != nil {
		setter.SetConstraint("maxLength", strconv.Itoa(rules.MaxLength.Value))
	}
	if rules.Pattern != nil && rules.Pattern.Expr != nil {
		setter.SetConstraint("pattern", rules.Pattern.Expr.String())
	}
}
