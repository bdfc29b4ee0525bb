package trigger_test

import (
	"testing"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/trigger"
)

func TestParseMode(t *testing.T) {
	tests := map[string]trigger.Mode{
		"onChange": trigger.OnChange,
		"ONBLUR":   trigger.OnBlur,
		"onSubmit": trigger.OnSubmit,
		"":         trigger.OnSubmit,
		"eager":    trigger.OnSubmit,
	}
	for raw, want := range tests {
		if got := trigger.ParseMode(raw); got != want {
			t.Fatalf("ParseMode(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name         string
		ctx          trigger.Context
		allowed      bool
		stateChanged bool
		want         trigger.Outcome
	}{
		{"outside allow-list", trigger.Context{Mode: trigger.OnChange}, false, true, trigger.Skip},
		{"submit mode before submit renders", trigger.Context{Mode: trigger.OnSubmit}, true, true, trigger.RenderOnly},
		{"submit mode before submit idle", trigger.Context{Mode: trigger.OnSubmit}, true, false, trigger.Skip},
		{"submit mode after submit", trigger.Context{Mode: trigger.OnSubmit, Submitted: true}, true, false, trigger.Validate},
		{"change mode", trigger.Context{Mode: trigger.OnChange, Event: element.EventChange}, true, false, trigger.Validate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := trigger.Plan(tc.ctx, tc.allowed, tc.stateChanged); got != tc.want {
				t.Fatalf("Plan = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestShouldUpdateField(t *testing.T) {
	blurMode := trigger.Context{Mode: trigger.OnBlur, Event: element.EventChange}
	if trigger.ShouldUpdateField(blurMode, true) {
		t.Fatalf("blur mode must not update on change events")
	}
	blurMode.Event = element.EventBlur
	if !trigger.ShouldUpdateField(blurMode, false) {
		t.Fatalf("blur mode must update on blur events")
	}
	submitted := trigger.Context{Mode: trigger.OnSubmit, Event: element.EventChange, Submitted: true}
	if !trigger.ShouldUpdateField(submitted, true) {
		t.Fatalf("expected changed result to update after submit")
	}
	if trigger.ShouldUpdateField(submitted, false) {
		t.Fatalf("expected unchanged result to be dropped after submit")
	}
}

func TestShouldUpdateSchema(t *testing.T) {
	change := trigger.Context{Mode: trigger.OnChange, Event: element.EventChange}
	if trigger.ShouldUpdateSchema(change, false, false) {
		t.Fatalf("clean field that was clean must not update")
	}
	if !trigger.ShouldUpdateSchema(change, true, false) {
		t.Fatalf("newly clean field must update")
	}
	blur := trigger.Context{Mode: trigger.OnBlur, Event: element.EventChange}
	if trigger.ShouldUpdateSchema(blur, false, true) {
		t.Fatalf("blur mode must wait for a blur event")
	}
	blur.Submitted = true
	if !trigger.ShouldUpdateSchema(blur, false, true) {
		t.Fatalf("submitted form must update on any event")
	}
}
