package lightface

import (
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/lightface/pkg/eventbus"
)

type scheduled struct {
	delay time.Duration
	msg   tea.Msg
}

// fakeScheduler records continuations instead of starting timers so tests
// decide when time passes.
type fakeScheduler struct {
	pending []scheduled
}

func (s *fakeScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	s.pending = append(s.pending, scheduled{delay: d, msg: msg})
	return nil
}

// run delivers every pending message, including ones scheduled while
// running, until nothing is left.
func (s *fakeScheduler) run(d *Dialog) {
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		d.Update(next.msg)
	}
}

// step delivers at most n pending messages.
func (s *fakeScheduler) step(d *Dialog, n int) {
	for i := 0; i < n && len(s.pending) > 0; i++ {
		next := s.pending[0]
		s.pending = s.pending[1:]
		d.Update(next.msg)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDialog(t *testing.T, mutate func(*Config)) (*Dialog, *eventbus.Bus, *fakeScheduler) {
	t.Helper()
	bus := eventbus.New()
	bus.Dispatch(tea.WindowSizeMsg{Width: 80, Height: 24})

	sched := &fakeScheduler{}
	cfg := DefaultConfig()
	cfg.Scheduler = sched
	cfg.Logger = testLogger()
	if mutate != nil {
		mutate(&cfg)
	}

	d, err := New(cfg, bus)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, bus, sched
}

// openFocused opens d and lets the fade and focus timers run.
func openFocused(t *testing.T, d *Dialog, sched *fakeScheduler) {
	t.Helper()
	d.Open(false)
	sched.run(d)
	if !d.Focused() {
		t.Fatal("expected dialog to be focused after timers ran")
	}
}

func labels(d *Dialog) []string {
	var out []string
	for _, b := range d.Buttons() {
		out = append(out, b.Label())
	}
	return out
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
