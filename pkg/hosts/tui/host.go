// Package tui drives a form controller from an interactive terminal session.
package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/muesli/termenv"

	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/validate"
)

const defaultAttempts = 3

// Host prompts for each field of a definition, feeds the answers into the
// controller as change and blur events and submits.
type Host struct {
	driver      PromptDriver
	logger      *slog.Logger
	profile     termenv.Profile
	maxAttempts int
}

// Option configures the Host.
type Option func(*Host)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(h *Host) {
		if driver != nil {
			h.driver = driver
		}
	}
}

// WithLogger sets the logger used for host failures.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithColorProfile overrides the detected terminal color profile.
func WithColorProfile(profile termenv.Profile) Option {
	return func(h *Host) {
		h.profile = profile
	}
}

// WithMaxAttempts bounds how often a field is re-prompted and how often the
// form is resubmitted.
func WithMaxAttempts(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.maxAttempts = n
		}
	}
}

// New builds a Host backed by survey prompts unless overridden.
func New(opts ...Option) *Host {
	h := &Host{
		logger:      logging.NewNop(),
		profile:     termenv.ColorProfile(),
		maxAttempts: defaultAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.driver == nil {
		h.driver = NewSurveyDriver(nil)
	}
	return h
}

// Run prompts for every field, then submits. Invalid fields are reported
// and asked again until the form submits or the attempts run out. It
// returns the submitted nested values.
func (h *Host) Run(ctx context.Context, def *definition.Form, c *form.Controller, elements []*element.Input) (map[string]any, error) {
	groups, names := group(elements)

	if def.Title != "" {
		if err := h.driver.Info(ctx, def.Title); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		if err := h.ask(ctx, def, c, name, groups[name]); err != nil {
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		var (
			submitted map[string]any
			done      bool
		)
		err := c.Submit(ctx, func(_ context.Context, values map[string]any) error {
			submitted, done = values, true
			return nil
		})
		if err != nil {
			h.logger.Error("tui: submit failed", "form", def.ID, "err", err)
			return nil, err
		}
		c.Flush()
		if done {
			return submitted, nil
		}

		errs := c.Errors()
		if err := h.report(ctx, errs); err != nil {
			return nil, err
		}
		if attempt >= h.maxAttempts {
			return nil, fmt.Errorf("%w: form %q still invalid after %d submits", ErrTooManyAttempts, def.ID, attempt)
		}
		for _, name := range names {
			if _, bad := errs[name]; !bad {
				continue
			}
			if err := h.ask(ctx, def, c, name, groups[name]); err != nil {
				return nil, err
			}
		}
	}
}

// ask prompts for one field and re-prompts while the controller reports an
// error for it.
func (h *Host) ask(ctx context.Context, def *definition.Form, c *form.Controller, name string, els []*element.Input) error {
	fd, ok := def.Field(name)
	if !ok {
		fd = definition.Field{Name: name, Type: els[0].Type()}
	}
	for try := 0; try < h.maxAttempts; try++ {
		if err := h.prompt(ctx, fd, els); err != nil {
			return err
		}
		c.Flush()
		fieldErr, bad := c.Errors()[name]
		if !bad {
			return nil
		}
		if err := h.report(ctx, validate.Errors{name: fieldErr}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) prompt(ctx context.Context, fd definition.Field, els []*element.Input) error {
	el := els[0]
	q := Question{Field: fd.Name, Message: fd.DisplayLabel(), Help: fd.Help}

	switch el.Type() {
	case "":
		return nil
	case element.TypeRadio:
		for i, opt := range els {
			q.Options = append(q.Options, fmt.Sprint(opt.Value()))
			if opt.Checked() {
				q.Selected = []int{i}
			}
		}
		idx, err := h.driver.Select(ctx, q)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(els) {
			return nil
		}
		for i, opt := range els {
			if i != idx {
				opt.SetChecked(false)
			}
		}
		el = els[idx]
		el.Check(true)
	case element.TypeSelectOne:
		q.Options = optionValues(el)
		if i := indexOf(q.Options, fmt.Sprint(el.Value())); i >= 0 {
			q.Selected = []int{i}
		}
		idx, err := h.driver.Select(ctx, q)
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(q.Options) {
			el.Change(q.Options[idx])
		}
	case element.TypeSelectMultiple:
		q.Options = optionValues(el)
		q.Selected = indicesOf(q.Options, el.SelectedValues())
		indices, err := h.driver.MultiSelect(ctx, q)
		if err != nil {
			return err
		}
		el.Select(pick(q.Options, indices)...)
	case element.TypeCheckbox:
		q.Checked = el.Checked()
		answer, err := h.driver.Confirm(ctx, q)
		if err != nil {
			return err
		}
		el.Check(answer)
	case element.TypePassword:
		answer, err := h.driver.Password(ctx, q)
		if err != nil {
			return err
		}
		el.Change(answer)
	case element.TypeTextArea:
		q.Default = fmt.Sprint(el.Value())
		answer, err := h.driver.TextArea(ctx, q)
		if err != nil {
			return err
		}
		el.Change(answer)
	default:
		q.Default = fmt.Sprint(el.Value())
		answer, err := h.driver.Input(ctx, q)
		if err != nil {
			return err
		}
		el.Change(answer)
	}
	el.Blur()
	return nil
}

func (h *Host) report(ctx context.Context, errs validate.Errors) error {
	for _, name := range errs.Names() {
		msg := errs[name].Message
		if msg == "" {
			msg = errs[name].Type
		}
		line := fmt.Sprintf("! %s: %s", name, msg)
		styled := h.profile.String(line).Foreground(h.profile.Color("#f87171")).String()
		if err := h.driver.Info(ctx, styled); err != nil {
			return err
		}
	}
	return nil
}

// group collects elements by name, keeping first-seen order.
func group(elements []*element.Input) (map[string][]*element.Input, []string) {
	groups := make(map[string][]*element.Input)
	var names []string
	for _, el := range elements {
		if _, ok := groups[el.Name()]; !ok {
			names = append(names, el.Name())
		}
		groups[el.Name()] = append(groups[el.Name()], el)
	}
	return groups, names
}

func optionValues(el *element.Input) []string {
	opts := el.Options()
	out := make([]string, len(opts))
	for i, opt := range opts {
		out[i] = opt.Value
	}
	return out
}
