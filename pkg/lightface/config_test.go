package lightface

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
)

func TestExtentJSON(t *testing.T) {
	cases := []struct {
		in   string
		want Extent
		err  bool
	}{
		{`"auto"`, Auto, false},
		{`"AUTO"`, Auto, false},
		{`40`, 40, false},
		{`0`, Auto, false},
		{`"wide"`, 0, true},
		{`true`, 0, true},
	}
	for _, tc := range cases {
		var e Extent
		err := json.Unmarshal([]byte(tc.in), &e)
		if (err != nil) != tc.err {
			t.Errorf("Unmarshal(%s) error = %v, want error %v", tc.in, err, tc.err)
			continue
		}
		if !tc.err && e != tc.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tc.in, e, tc.want)
		}
	}

	out, err := json.Marshal(struct {
		W Extent `json:"w"`
		H Extent `json:"h"`
	}{W: Auto, H: 12})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"w":"auto","h":12}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if !c.Width.IsAuto() || !c.Height.IsAuto() {
		t.Error("default extents should be auto")
	}
	if c.FadeDuration != 400*time.Millisecond || c.FadeDelay != 400*time.Millisecond {
		t.Errorf("fade timings = %v / %v", c.FadeDuration, c.FadeDelay)
	}
	if !c.ResetOnScroll || c.Constrain || c.OverlayAll || c.Draggable {
		t.Error("unexpected default flags")
	}
	if c.ZIndex != 9001 {
		t.Errorf("ZIndex = %d", c.ZIndex)
	}
	if len(c.KeyBindings) != 1 || c.KeyBindings[0].Binding.Keys()[0] != "esc" {
		t.Errorf("default bindings = %+v", c.KeyBindings)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	c := DefaultConfig()
	c.FadeDuration = -1
	c.FadeDelay = -1
	c.Pad = -2
	c.KeyBindings = []KeyBinding{
		{Binding: key.NewBinding(key.WithKeys("q"))},
		{Action: CloseAction},
	}

	err := c.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("expected joined errors, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 5 {
		t.Errorf("expected 5 errors, got %d: %v", n, err)
	}
}

func TestWithDefaultsKeepsExplicitEmptyBindings(t *testing.T) {
	c := Config{KeyBindings: []KeyBinding{}}.withDefaults()
	if len(c.KeyBindings) != 0 {
		t.Error("explicit empty bindings should stay empty")
	}
	if c.FrameRate != DefaultFrameRate || c.Scheduler == nil || c.Logger == nil {
		t.Error("zero-meaning fields should be defaulted")
	}

	c = Config{}.withDefaults()
	if len(c.KeyBindings) != 1 {
		t.Error("nil bindings should default to escape")
	}
}
