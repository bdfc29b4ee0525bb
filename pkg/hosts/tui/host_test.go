package tui_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/muesli/termenv"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/hosts/tui"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	abort        bool
	asked        []string
}

func (s *stubDriver) Input(_ context.Context, q tui.Question) (string, error) {
	s.asked = append(s.asked, q.Field)
	if s.abort {
		return "", tui.ErrAborted
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(ctx context.Context, q tui.Question) (string, error) {
	return s.Input(ctx, q)
}

func (s *stubDriver) Confirm(_ context.Context, q tui.Question) (bool, error) {
	s.asked = append(s.asked, q.Field)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, q tui.Question) (int, error) {
	s.asked = append(s.asked, q.Field)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, q tui.Question) ([]int, error) {
	s.asked = append(s.asked, q.Field)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(ctx context.Context, q tui.Question) (string, error) {
	return s.Input(ctx, q)
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

const signup = `
id: signup
fields:
  - name: email
    type: email
    rules:
      required: true
      messages:
        required: email is required
  - name: plan
    type: radio
    options: [free, pro]
  - name: terms
    type: checkbox
  - name: tags
    type: select-multiple
    options: [go, math]
`

func setup(t *testing.T, driver *stubDriver, opts ...tui.Option) (*tui.Host, func() (map[string]any, error)) {
	t.Helper()
	def, err := definition.Parse([]byte(signup), "signup.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c, elements, err := def.NewController(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	t.Cleanup(c.Close)

	all := append([]tui.Option{tui.WithPromptDriver(driver), tui.WithColorProfile(termenv.Ascii)}, opts...)
	host := tui.New(all...)
	return host, func() (map[string]any, error) {
		return host.Run(context.Background(), def, c, elements)
	}
}

func TestRunRepromptsInvalidFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "ada@example.com"},
		selectIdx: []int{1},
		confirm:   []bool{true},
		multiIdx:  [][]int{{0}},
	}
	_, run := setup(t, driver)

	values, err := run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := map[string]any{
		"email": "ada@example.com",
		"plan":  "pro",
		"terms": true,
		"tags":  []string{"go"},
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! email: email is required"}, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"email", "plan", "terms", "tags", "email"}, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "", ""},
		selectIdx: []int{0},
		confirm:   []bool{false},
		multiIdx:  [][]int{nil},
	}
	_, run := setup(t, driver, tui.WithMaxAttempts(2))

	if _, err := run(); !errors.Is(err, tui.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestRunPropagatesAbort(t *testing.T) {
	_, run := setup(t, &stubDriver{abort: true})

	if _, err := run(); !errors.Is(err, tui.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}
