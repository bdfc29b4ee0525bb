package element_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/element"
)

func TestInputDefaults(t *testing.T) {
	text := element.NewInput("email", element.TypeEmail)
	if got := text.Value(); got != "" {
		t.Fatalf("expected empty string default, got %#v", got)
	}
	multi := element.NewInput("tags", element.TypeSelectMultiple, element.WithSelectOptions("go", "math"))
	if diff := cmp.Diff([]string{}, multi.Value()); diff != "" {
		t.Fatalf("multi value mismatch (-want +got):\n%s", diff)
	}
	if got := element.NewLogical("token").Type(); got != "" {
		t.Fatalf("expected logical input to have no type, got %q", got)
	}
}

func TestInputSelectAndSelected(t *testing.T) {
	multi := element.NewInput("tags", element.TypeSelectMultiple,
		element.WithSelectOptions("go", "math", "poetry"),
		element.WithSelected([]any{"math"}))
	if diff := cmp.Diff([]string{"math"}, multi.SelectedValues()); diff != "" {
		t.Fatalf("initial selection mismatch (-want +got):\n%s", diff)
	}

	multi.Select("poetry", "go")
	if diff := cmp.Diff([]string{"go", "poetry"}, multi.SelectedValues()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestInputListenersDispatchInOrder(t *testing.T) {
	in := element.NewInput("name", element.TypeText)
	var got []string
	first := in.AddEventListener(element.EventChange, func(ev element.Event) {
		got = append(got, "first:"+string(ev.Kind))
	})
	in.AddEventListener(element.EventChange, func(ev element.Event) {
		got = append(got, "second:"+ev.Target.Name())
	})

	in.Change("Ada")
	first.Remove()
	first.Remove()
	in.Change("Grace")

	want := []string{"first:change", "second:name", "second:name"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dispatch mismatch (-want +got):\n%s", diff)
	}
	if n := in.ListenerCount(element.EventChange); n != 1 {
		t.Fatalf("expected one listener left, got %d", n)
	}
	if got := in.Value(); got != "Grace" {
		t.Fatalf("expected latest value, got %v", got)
	}
}

func TestInputFocusAndBlur(t *testing.T) {
	in := element.NewInput("name", element.TypeText)
	in.Focus()
	if !in.Focused() {
		t.Fatalf("expected focus")
	}
	in.Blur()
	if in.Focused() {
		t.Fatalf("expected blur to clear focus")
	}
}

func TestInputResetFormNeedsDocument(t *testing.T) {
	in := element.NewInput("name", element.TypeText, element.WithValue("Ada"))
	if err := in.ResetForm(); !errors.Is(err, element.ErrNotAttached) {
		t.Fatalf("expected ErrNotAttached, got %v", err)
	}

	doc := element.NewDocument()
	other := element.NewInput("terms", element.TypeCheckbox)
	doc.Append(in, other)
	in.SetValue("Grace")
	other.SetChecked(true)

	if err := in.ResetForm(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := in.Value(); got != "Ada" {
		t.Fatalf("expected initial value, got %v", got)
	}
	if other.Checked() {
		t.Fatalf("expected sibling to be reset")
	}
}
