package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Question is one prompt for a form field. Which of Default, Checked and
// Selected apply depends on the prompt kind.
type Question struct {
	Field   string
	Message string
	Help    string
	Default string
	Checked bool
	Options []string
	// Selected holds indices into Options; Select uses the first one.
	Selected []int
}

// PromptDriver is the terminal seam of the host. Tests replace it with
// scripted answers.
type PromptDriver interface {
	Input(ctx context.Context, q Question) (string, error)
	Password(ctx context.Context, q Question) (string, error)
	Confirm(ctx context.Context, q Question) (bool, error)
	Select(ctx context.Context, q Question) (int, error)
	MultiSelect(ctx context.Context, q Question) ([]int, error)
	TextArea(ctx context.Context, q Question) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

// NewSurveyDriver returns the interactive driver. Info lines go to out,
// stdout when nil; opts are passed to every survey prompt.
func NewSurveyDriver(out io.Writer, opts ...survey.AskOpt) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out, opts: opts}
}

// askOne runs prompt unless ctx is already done and maps a Ctrl+C to
// ErrAborted.
func askOne[T any](ctx context.Context, d *surveyDriver, field string, prompt survey.Prompt) (T, error) {
	var answer T
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	if err := survey.AskOne(prompt, &answer, d.opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return answer, fmt.Errorf("%w while asking for %q", ErrAborted, field)
		}
		return answer, err
	}
	return answer, nil
}

func (d *surveyDriver) Input(ctx context.Context, q Question) (string, error) {
	return askOne[string](ctx, d, q.Field, &survey.Input{Message: q.Message, Help: q.Help, Default: q.Default})
}

func (d *surveyDriver) Password(ctx context.Context, q Question) (string, error) {
	return askOne[string](ctx, d, q.Field, &survey.Password{Message: q.Message, Help: q.Help})
}

func (d *surveyDriver) TextArea(ctx context.Context, q Question) (string, error) {
	return askOne[string](ctx, d, q.Field, &survey.Multiline{Message: q.Message, Help: q.Help, Default: q.Default})
}

func (d *surveyDriver) Confirm(ctx context.Context, q Question) (bool, error) {
	return askOne[bool](ctx, d, q.Field, &survey.Confirm{Message: q.Message, Help: q.Help, Default: q.Checked})
}

func (d *surveyDriver) Select(ctx context.Context, q Question) (int, error) {
	prompt := &survey.Select{Message: q.Message, Help: q.Help, Options: q.Options}
	if chosen := pick(q.Options, q.Selected); len(chosen) > 0 {
		prompt.Default = chosen[0]
	}
	answer, err := askOne[string](ctx, d, q.Field, prompt)
	if err != nil {
		return -1, err
	}
	return indexOf(q.Options, answer), nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, q Question) ([]int, error) {
	prompt := &survey.MultiSelect{Message: q.Message, Help: q.Help, Options: q.Options}
	if chosen := pick(q.Options, q.Selected); len(chosen) > 0 {
		prompt.Default = chosen
	}
	answer, err := askOne[[]string](ctx, d, q.Field, prompt)
	if err != nil {
		return nil, err
	}
	return indicesOf(q.Options, answer), nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

// indicesOf maps values to their positions in options, in option order.
func indicesOf(options, values []string) []int {
	var out []int
	for i, option := range options {
		if indexOf(values, option) >= 0 {
			out = append(out, i)
		}
	}
	return out
}

func pick(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
