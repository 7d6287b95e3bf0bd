package lightface

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler turns a delayed continuation into a command. The message it
// delivers must reach the dialog's Update on the program's update loop.
type Scheduler interface {
	After(d time.Duration, msg tea.Msg) tea.Cmd
}

// TickScheduler schedules with tea.Tick.
type TickScheduler struct{}

// After delivers msg once d has elapsed.
func (TickScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

// Timer messages. Each carries the dialog id and the generation tag that was
// current when it was scheduled; a mismatch on delivery means the state it
// was scheduled for no longer holds and the message is dropped.
type (
	frameMsg struct {
		dialog int
		node   nodeKind
		tag    int
	}

	focusMsg struct {
		dialog int
		tag    int
	}

	fadeMsg struct {
		dialog int
		tag    int
		level  float64
	}

	unfadeMsg struct {
		dialog int
		tag    int
	}
)
