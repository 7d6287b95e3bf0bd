package lightface

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Extent is a width or height in cells. Auto sizes from content.
type Extent int

// Auto lets content decide the extent.
const Auto Extent = 0

// IsAuto reports whether the extent is content driven.
func (e Extent) IsAuto() bool { return e <= 0 }

func (e Extent) String() string {
	if e.IsAuto() {
		return "auto"
	}
	return fmt.Sprintf("%d", int(e))
}

// MarshalJSON writes "auto" or the number of cells.
func (e Extent) MarshalJSON() ([]byte, error) {
	if e.IsAuto() {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(int(e))
}

// UnmarshalJSON accepts "auto" or a number of cells.
func (e *Extent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.EqualFold(s, "auto") || s == "" {
			*e = Auto
			return nil
		}
		return fmt.Errorf("invalid extent %q", s)
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid extent %s: %w", string(data), err)
	}
	*e = Extent(n)
	return nil
}

// Action is run on behalf of a dialog by a button click or a key binding.
type Action func(d *Dialog) tea.Cmd

// CloseAction closes the dialog with a normal fade.
func CloseAction(d *Dialog) tea.Cmd {
	return d.Close(false)
}

// ButtonSpec describes a button to add.
type ButtonSpec struct {
	Label   string
	OnClick Action // nil closes the dialog
	Style   string // "", "red"/"danger", "blue"/"primary"
}

// KeyBinding maps keys to an action while the dialog has focus.
type KeyBinding struct {
	Binding key.Binding
	Action  Action
}

// DefaultKeyBindings returns the escape-to-close binding.
func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{{
		Binding: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Action:  CloseAction,
	}}
}

// Config is the construction-time description of a dialog. Start from
// DefaultConfig and override fields; the zero values of FadeDuration,
// FadeDelay and ResetOnScroll are meaningful and are not defaulted by New.
type Config struct {
	Width  Extent
	Height Extent // message region height

	Draggable bool

	Title   string
	Content string
	Buttons []ButtonSpec

	FadeDuration time.Duration
	FadeDelay    time.Duration

	ZIndex        int
	Pad           int
	OverlayAll    bool
	Constrain     bool
	ResetOnScroll bool

	// KeyBindings are checked in order; nil means DefaultKeyBindings.
	KeyBindings []KeyBinding

	// Markdown renders content through glamour.
	Markdown bool
	// LegacyOverlay sizes the overlay to the box instead of the viewport,
	// for terminals that cannot repaint the full screen behind a dialog.
	LegacyOverlay bool
	// ShowHints renders a key hint line under the buttons.
	ShowHints bool

	FrameRate int
	Scheduler Scheduler
	Logger    *slog.Logger
}

// Defaults.
const (
	DefaultFadeDuration = 400 * time.Millisecond
	DefaultFadeDelay    = 400 * time.Millisecond
	DefaultZIndex       = 9001
	DefaultPad          = 4
	DefaultFrameRate    = 30
	DefaultContent      = "Message not specified."
)

// DefaultConfig returns a Config with every documented default set.
func DefaultConfig() Config {
	return Config{
		Width:         Auto,
		Height:        Auto,
		Content:       DefaultContent,
		FadeDuration:  DefaultFadeDuration,
		FadeDelay:     DefaultFadeDelay,
		ZIndex:        DefaultZIndex,
		Pad:           DefaultPad,
		ResetOnScroll: true,
		KeyBindings:   DefaultKeyBindings(),
		FrameRate:     DefaultFrameRate,
	}
}

// ConfigError describes one invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid dialog config: %s: %s", e.Field, e.Reason)
}

// Validate reports every invalid field, joined.
func (c Config) Validate() error {
	var errs []error
	if c.FadeDuration < 0 {
		errs = append(errs, &ConfigError{Field: "FadeDuration", Reason: "must not be negative"})
	}
	if c.FadeDelay < 0 {
		errs = append(errs, &ConfigError{Field: "FadeDelay", Reason: "must not be negative"})
	}
	if c.FrameRate < 0 {
		errs = append(errs, &ConfigError{Field: "FrameRate", Reason: "must not be negative"})
	}
	if c.Pad < 0 {
		errs = append(errs, &ConfigError{Field: "Pad", Reason: "must not be negative"})
	}
	for i, kb := range c.KeyBindings {
		if len(kb.Binding.Keys()) == 0 {
			errs = append(errs, &ConfigError{Field: fmt.Sprintf("KeyBindings[%d]", i), Reason: "no keys"})
		}
		if kb.Action == nil {
			errs = append(errs, &ConfigError{Field: fmt.Sprintf("KeyBindings[%d]", i), Reason: "no action"})
		}
	}
	return errors.Join(errs...)
}

// withDefaults fills fields whose zero value has no meaning.
func (c Config) withDefaults() Config {
	if c.FrameRate == 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.KeyBindings == nil {
		c.KeyBindings = DefaultKeyBindings()
	}
	if c.Scheduler == nil {
		c.Scheduler = TickScheduler{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// frameInterval is the delay between tween frames.
func (c Config) frameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}
