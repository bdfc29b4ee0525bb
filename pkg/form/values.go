package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/paths"
	"github.com/goliatone/go-formstate/pkg/trigger"
)

// Watch returns the live value of name and subscribes the form to it, so
// events on it always request a render. Nested names ("items" when
// "items[0].label" is registered) resolve against the combined values.
// Missing or nil values fall back to def, then to the form default values.
func (c *Controller) Watch(name string, def ...any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := c.reg.Values()
	if value, ok := c.watchLocked(values, name); ok && value != nil {
		return value
	}
	if len(def) > 0 {
		return def[0]
	}
	value, _ := paths.Lookup(c.cfg.DefaultValues, name)
	return value
}

// WatchMany resolves several names at once. Each name starts from the form
// default value; when nothing is registered yet, defaults supplies the
// fallback, otherwise live values win.
func (c *Controller) WatchMany(names []string, defaults map[string]any) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := c.reg.Values()
	out := make(map[string]any, len(names))
	for _, name := range names {
		value, _ := paths.Lookup(c.cfg.DefaultValues, name)
		if c.reg.Len() == 0 && defaults != nil {
			value = defaults[name]
		} else if live, ok := c.watchLocked(values, name); ok && live != nil {
			value = live
		}
		out[name] = value
	}
	return out
}

// WatchAll returns every live value and makes every later state change
// request a render. With nothing registered, the form default values are
// returned.
func (c *Controller) WatchAll() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchAll = true
	values := c.reg.Values()
	if len(values) > 0 {
		return values
	}
	return cloneMap(c.cfg.DefaultValues)
}

func (c *Controller) watchLocked(values map[string]any, name string) (any, bool) {
	c.watched[name] = true
	if value, ok := values[name]; ok {
		return value, true
	}
	value, ok := paths.Lookup(paths.Combine(values), name)
	if !ok {
		return nil, false
	}
	for key := range values {
		if paths.HasPrefix(key, name) {
			c.watched[key] = true
		}
	}
	return value, true
}

// GetValues returns the live values keyed by field name, or reconstructed
// into nested maps and slices when nest is true. With nothing registered
// the form default values are returned.
func (c *Controller) GetValues(nest bool) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := c.reg.Values()
	if len(values) == 0 {
		return cloneMap(c.cfg.DefaultValues)
	}
	if nest {
		return paths.Combine(values)
	}
	return values
}

// SetValue writes value into the field, marks it touched, recomputes its
// dirty flag and requests a render. With shouldValidate the field is
// validated afterwards and the result reports whether it is valid;
// otherwise the result is true.
func (c *Controller) SetValue(ctx context.Context, name string, value any, shouldValidate bool) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	c.setValueLocked(name, value)
	c.mu.Unlock()

	if !shouldValidate {
		return true, nil
	}
	return c.TriggerValidation(ctx, Payload{Name: name})
}

// SetValues writes every registered field found in values, which may be
// flat (dot/bracket keys) or nested. Fields absent from values are left
// alone. No validation runs.
func (c *Controller) SetValues(values map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	for _, name := range c.reg.Names() {
		value, ok := paths.Lookup(values, name)
		if !ok {
			continue
		}
		c.setValueLocked(name, value)
	}
	return nil
}

func (c *Controller) setValueLocked(name string, value any) {
	if _, ok := c.reg.Get(name); !ok {
		return
	}
	c.setFieldValue(name, value)
	c.touched[name] = struct{}{}
	c.setDirty(name)
	c.needsRender = true
}

// Reset restores the form. The host's native form reset is attempted first
// (best effort), every piece of bookkeeping is cleared, and when values is
// given each registered field is set from it ("" when absent). Default-value
// baselines are re-captured from the resulting live values.
func (c *Controller) Reset(values map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.nativeReset()
	c.resetState()

	if values != nil {
		for _, name := range c.reg.Names() {
			value, ok := paths.Lookup(values, name)
			if !ok {
				value = ""
			}
			c.setFieldValue(name, value)
		}
	}
	for _, entry := range c.reg.Fields() {
		c.baseline[entry.Name] = field.ValueOf(entry)
		if c.cfg.Mode != trigger.OnSubmit && !entry.Rules.IsZero() {
			c.withValidation[entry.Name] = struct{}{}
		}
	}
	c.needsRender = true
}

func (c *Controller) nativeReset() {
	for _, entry := range c.reg.Fields() {
		for _, el := range entry.Elements() {
			resetter, ok := el.(element.FormResetter)
			if !ok {
				continue
			}
			if err := resetter.ResetForm(); err != nil {
				c.logger.Debug("form: native reset failed", "field", entry.Name, "error", err)
				continue
			}
			return
		}
	}
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// truthy decides the checked state a checkbox takes for a programmatic
// value.
func truthy(el element.Element, value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		if attr, ok := el.(element.ValueAttributer); ok {
			if raw, declared := attr.ValueAttribute(); declared && raw == v {
				return true
			}
		}
		s := strings.TrimSpace(strings.ToLower(v))
		return s != "" && s != "false" && s != "off" && s != "0"
	default:
		return true
	}
}
