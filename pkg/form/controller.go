// Package form implements the form controller: it registers elements,
// mirrors their values, runs validation at the configured trigger and
// exposes derived state (errors, dirty and touched fields, submit progress)
// to the host that renders the form.
//
// Mutators never render by themselves. They mark the controller as needing a
// render and the host calls Flush once per event-loop turn.
package form

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"

	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/paths"
	"github.com/goliatone/go-formstate/pkg/trigger"
	"github.com/goliatone/go-formstate/pkg/validate"
	"github.com/goliatone/go-formstate/pkg/watcher"
)

// ErrClosed is returned by operations on a controller that has been torn
// down.
var ErrClosed = errors.New("form: controller closed")

type nameSet map[string]struct{}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

// Controller owns the field registry and every piece of form state. It is
// safe for concurrent use; validators run without the lock held.
type Controller struct {
	mu sync.Mutex

	cfg      Config
	notify   func()
	observer Observer
	logger   *slog.Logger
	doc      watcher.Observer
	sanitize func(string) string

	ctx    context.Context
	cancel context.CancelFunc
	// listener is installed on every element; one value per controller.
	listener func(element.Event)

	reg            *field.Registry
	errors         validate.Errors
	schemaErrors   validate.Errors
	touched        nameSet
	dirty          nameSet
	withValidation nameSet
	valid          nameSet
	baseline       map[string]any
	watched        map[string]bool
	allowed        nameSet

	watchAll        bool
	submitCount     int
	submitting      bool
	submitted       bool
	schemaTriggered bool
	needsRender     bool
	closed          bool
}

// New builds a controller applying opts over DefaultConfig.
func New(opts ...Option) *Controller {
	c := &Controller{
		cfg:      DefaultConfig(),
		observer: NopObserver{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.cfg.Mode == "" {
		c.cfg.Mode = trigger.OnSubmit
	}
	if c.cfg.ValidationFields != nil {
		c.allowed = make(nameSet, len(c.cfg.ValidationFields))
		for _, name := range c.cfg.ValidationFields {
			c.allowed[name] = struct{}{}
		}
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.listener = c.onElementEvent
	c.reg = field.NewRegistry()
	c.resetState()
	return c
}

// Config returns a copy of the effective configuration.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

func (c *Controller) resetState() {
	c.errors = validate.Errors{}
	c.schemaErrors = validate.Errors{}
	c.touched = nameSet{}
	c.dirty = nameSet{}
	c.withValidation = nameSet{}
	c.valid = nameSet{}
	c.baseline = map[string]any{}
	c.watched = map[string]bool{}
	c.watchAll = false
	c.submitCount = 0
	c.submitted = false
	c.schemaTriggered = false
}

// Register adds el to the registry with optional rules. Registering a name
// twice (or a radio option value twice) is a no-op. Elements without a name
// are ignored with a warning.
func (c *Controller) Register(el element.Element, rules ...field.Rules) {
	var r field.Rules
	if len(rules) > 0 {
		r = rules[0]
	}
	c.register(el, r)
}

// RegisterWith returns a binder that registers elements with rules when
// they become available. Nil elements are ignored.
func (c *Controller) RegisterWith(rules field.Rules) func(element.Element) {
	return func(el element.Element) {
		c.register(el, rules)
	}
}

func (c *Controller) register(el element.Element, rules field.Rules) {
	if el == nil || isNilElement(el) {
		return
	}
	entry, option, watch := c.add(el, rules)
	if !watch {
		return
	}

	// The observer may report el detached from inside Observe, which
	// re-enters the controller, so the watch starts without the lock held.
	h := watcher.Watch(c.doc, el, func() { c.removeDetached(el) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.reg.Owns(entry, option) {
		h.Dispose()
		return
	}
	if option != nil {
		option.Watch = h
		return
	}
	entry.Watch = h
}

// add records el under the lock and reports whether it needs a removal
// watch.
func (c *Controller) add(el element.Element, rules field.Rules) (*field.Field, *field.Option, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, false
	}
	if c.cfg.Static {
		c.logger.Warn("form: registration outside a live document", "field", el.Name(), "type", el.Type())
		return nil, nil, false
	}
	name := el.Name()
	if name == "" {
		c.logger.Warn("form: missing field name", "type", el.Type())
		return nil, nil, false
	}

	entry, option, added := c.reg.Add(el, rules)
	if !added {
		return nil, nil, false
	}
	if c.cfg.Mode != trigger.OnSubmit && !rules.IsZero() {
		c.withValidation[name] = struct{}{}
	}

	if def, ok := paths.Lookup(c.cfg.DefaultValues, name); ok {
		c.setFieldValue(name, def)
	}
	// A radio group captured before any option was checked is re-captured,
	// so a default applied to a later option becomes the baseline.
	if prev, ok := c.baseline[name]; !ok || (entry.Kind == field.KindRadioGroup && prev == "") {
		c.baseline[name] = field.ValueOf(entry)
	}

	if entry.Kind == field.KindLogical {
		return nil, nil, false
	}
	if option != nil {
		option.Listeners = c.attach(el, rules, option.Listeners)
	} else {
		entry.Listeners = c.attach(el, rules, entry.Listeners)
	}
	return entry, option, true
}

func isNilElement(el element.Element) bool {
	v := reflect.ValueOf(el)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// attach wires listeners, or native constraints when native validation is
// on. Elements already carrying listeners are left alone.
func (c *Controller) attach(el element.Element, rules field.Rules, existing []element.Listener) []element.Listener {
	if c.cfg.NativeValidation {
		applyConstraints(el, rules)
		return existing
	}
	if len(existing) > 0 {
		return existing
	}
	target, ok := el.(element.EventTarget)
	if !ok {
		return existing
	}
	return []element.Listener{
		target.AddEventListener(element.EventChange, c.listener),
		target.AddEventListener(element.EventBlur, c.listener),
	}
}

func (c *Controller) onElementEvent(ev element.Event) {
	if ev.Target == nil {
		return
	}
	if err := c.HandleEvent(c.ctx, ev.Target.Name(), ev.Kind); err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled) {
		c.logger.Error("form: event handling failed", "field", ev.Target.Name(), "event", string(ev.Kind), "error", err)
	}
}

// Names returns the registered field names in registration order.
func (c *Controller) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.Names()
}

// Unregister removes names and all their bookkeeping regardless of whether
// their elements are still attached.
func (c *Controller) Unregister(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, name := range names {
		if _, ok := c.reg.Delete(name); ok {
			c.needsRender = true
		}
		c.purge(name)
	}
}

// removeDetached runs the removal cleanup for an element reported detached
// by the document observer.
func (c *Controller) removeDetached(el element.Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	name, removal := c.reg.Detach(el)
	switch removal {
	case field.FieldRemoved:
		c.purge(name)
		c.needsRender = true
		c.observer.FieldRemoved(name)
		c.logger.Debug("form: field removed", "field", name)
	case field.OptionRemoved:
		c.setDirty(name)
		c.needsRender = true
		c.logger.Debug("form: radio option removed", "field", name)
	}
}

func (c *Controller) purge(name string) {
	delete(c.watched, name)
	delete(c.errors, name)
	delete(c.baseline, name)
	delete(c.touched, name)
	delete(c.dirty, name)
	delete(c.withValidation, name)
	delete(c.valid, name)
}

// Close tears the controller down: every listener and watcher is disposed,
// the registry is purged and pending validations are dropped on return.
// Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.reg.Clear()
	c.needsRender = false
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Flush invokes the notifier once if state changed since the last flush and
// reports whether it did.
func (c *Controller) Flush() bool {
	c.mu.Lock()
	if c.closed || !c.needsRender {
		c.mu.Unlock()
		return false
	}
	c.needsRender = false
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
	return true
}

// Pending reports whether a render has been requested and not yet flushed.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsRender
}

func (c *Controller) isAllowed(name string) bool {
	return c.allowed == nil || c.allowed.has(name)
}

// setDirty recomputes the dirty flag of name and reports whether it
// changed.
func (c *Controller) setDirty(name string) bool {
	entry, ok := c.reg.Get(name)
	if !ok {
		return false
	}
	isDirty := !reflect.DeepEqual(c.baseline[name], field.ValueOf(entry))
	was := c.dirty.has(name)
	if isDirty {
		c.dirty[name] = struct{}{}
	} else {
		delete(c.dirty, name)
	}
	return was != isDirty
}

// setFieldValue writes value into the live elements of name.
func (c *Controller) setFieldValue(name string, value any) {
	entry, ok := c.reg.Get(name)
	if !ok {
		return
	}
	switch {
	case entry.Kind == field.KindRadioGroup:
		want := stringify(value)
		for _, opt := range entry.Options {
			opt.Ref.SetChecked(stringify(opt.Ref.Value()) == want)
		}
	case entry.Ref.Type() == element.TypeCheckbox:
		entry.Ref.SetChecked(truthy(entry.Ref, value))
	default:
		entry.Ref.SetValue(value)
	}
}

// recordResult stores the outcome of a per-field validation and keeps the
// valid set current. It reports whether anything changed.
func (c *Controller) recordResult(name string, had bool, result validate.Errors) bool {
	next, has := result[name]
	if has {
		c.errors[name] = next
		delete(c.valid, name)
		c.needsRender = true
		return true
	}
	if had {
		delete(c.errors, name)
		c.valid[name] = struct{}{}
		c.needsRender = true
		return true
	}
	if c.cfg.Mode != trigger.OnSubmit && !c.valid.has(name) {
		c.valid[name] = struct{}{}
		c.needsRender = true
		return true
	}
	return false
}

// current re-fetches the registry entry for name and reports whether it is
// still the one a validation was started against.
func (c *Controller) current(name string, started *field.Field) bool {
	entry, ok := c.reg.Get(name)
	return ok && entry == started
}
