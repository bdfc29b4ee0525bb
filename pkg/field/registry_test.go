package field_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/field"
	"github.com/goliatone/go-formstate/pkg/watcher"
)

func TestRegistryLogicalDuplicateIsNoop(t *testing.T) {
	reg := field.NewRegistry()

	if _, _, added := reg.Add(element.NewLogical("token"), field.Rules{}); !added {
		t.Fatalf("expected first registration to be added")
	}
	if _, _, added := reg.Add(element.NewLogical("token"), field.Required("")); added {
		t.Fatalf("expected duplicate registration to be ignored")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected registry size 1, got %d", reg.Len())
	}
	entry, _ := reg.Get("token")
	if entry.Kind != field.KindLogical {
		t.Fatalf("expected logical kind, got %s", entry.Kind)
	}
	if entry.Rules.Required.Enabled {
		t.Fatalf("duplicate registration must not overwrite rules")
	}
}

func TestRegistryRadioGroup(t *testing.T) {
	reg := field.NewRegistry()
	red := element.NewInput("color", element.TypeRadio, element.WithValue("red"))
	blue := element.NewInput("color", element.TypeRadio, element.WithValue("blue"))
	blueAgain := element.NewInput("color", element.TypeRadio, element.WithValue("blue"))

	reg.Add(red, field.Required("pick one"))
	reg.Add(blue, field.Rules{})
	if _, _, added := reg.Add(blueAgain, field.Rules{}); added {
		t.Fatalf("expected duplicate option value to be ignored")
	}

	if reg.Len() != 1 {
		t.Fatalf("expected one registry entry, got %d", reg.Len())
	}
	group, _ := reg.Get("color")
	if group.Kind != field.KindRadioGroup || len(group.Options) != 2 {
		t.Fatalf("expected radio group with two options, got %s/%d", group.Kind, len(group.Options))
	}
	if !group.Rules.Required.Enabled {
		t.Fatalf("expected group rules from first registration")
	}
}

func TestRegistryRadioMergesValidate(t *testing.T) {
	reg := field.NewRegistry()
	reg.Add(element.NewInput("size", element.TypeRadio, element.WithValue("s")), field.Rules{})
	reg.Add(element.NewInput("size", element.TypeRadio, element.WithValue("m")), field.Rules{
		Validate: func(_ context.Context, _ any) error { return nil },
	})

	group, _ := reg.Get("size")
	if group.Rules.Validate == nil {
		t.Fatalf("expected group validate rule to be merged")
	}
}

func TestRegistryDetachNoMatch(t *testing.T) {
	reg := field.NewRegistry()
	email := element.NewInput("email", element.TypeEmail)
	reg.Add(email, field.Rules{})
	reg.Add(element.NewInput("color", element.TypeRadio, element.WithValue("red")), field.Rules{})

	stranger := element.NewInput("color", element.TypeRadio, element.WithValue("green"))
	if _, removal := reg.Detach(stranger); removal != field.NoMatch {
		t.Fatalf("expected no match for foreign radio option, got %v", removal)
	}
	impostor := element.NewInput("email", element.TypeEmail)
	if _, removal := reg.Detach(impostor); removal != field.NoMatch {
		t.Fatalf("expected no match for a different element with the same name, got %v", removal)
	}
	if _, removal := reg.Detach(element.NewLogical("email")); removal != field.NoMatch {
		t.Fatalf("expected logical refs never to match, got %v", removal)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected registry to be unchanged, got %d entries", reg.Len())
	}
}

func TestRegistryDetachLastRadioOptionDropsGroup(t *testing.T) {
	doc := element.NewDocument()
	red := element.NewInput("color", element.TypeRadio, element.WithValue("red"))
	blue := element.NewInput("color", element.TypeRadio, element.WithValue("blue"))
	doc.Append(red, blue)

	reg := field.NewRegistry()
	_, redOpt, _ := reg.Add(red, field.Rules{})
	redOpt.Watch = watcher.Watch(doc, red, func() {})
	_, blueOpt, _ := reg.Add(blue, field.Rules{})
	blueOpt.Watch = watcher.Watch(doc, blue, func() {})

	if _, removal := reg.Detach(red); removal != field.OptionRemoved {
		t.Fatalf("expected option removal, got %v", removal)
	}
	if redOpt.Watch.Active() {
		t.Fatalf("expected removed option watcher to be disposed")
	}
	group, ok := reg.Get("color")
	if !ok || len(group.Options) != 1 {
		t.Fatalf("expected group to survive with one option")
	}

	if _, removal := reg.Detach(blue); removal != field.FieldRemoved {
		t.Fatalf("expected whole group removal, got %v", removal)
	}
	if _, ok := reg.Get("color"); ok {
		t.Fatalf("expected group entry to be deleted")
	}
}

func TestRegistryDeleteDisposesListeners(t *testing.T) {
	reg := field.NewRegistry()
	in := element.NewInput("name", element.TypeText)
	entry, _, _ := reg.Add(in, field.Rules{})
	entry.Listeners = append(entry.Listeners, in.AddEventListener(element.EventChange, func(element.Event) {}))

	if _, ok := reg.Delete("name"); !ok {
		t.Fatalf("expected delete to find the entry")
	}
	if in.ListenerCount(element.EventChange) != 0 {
		t.Fatalf("expected listeners to be removed")
	}
	if _, ok := reg.Delete("name"); ok {
		t.Fatalf("expected second delete to report missing entry")
	}
}

func TestRegistryOrder(t *testing.T) {
	reg := field.NewRegistry()
	for _, name := range []string{"b", "a", "c"} {
		reg.Add(element.NewInput(name, element.TypeText), field.Rules{})
	}
	reg.Delete("a")
	if diff := cmp.Diff([]string{"b", "c"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
