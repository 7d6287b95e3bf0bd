// Package eventbus routes host-level terminal events (keys, window resizes,
// page scrolls and mouse input) to listeners that subscribe and unsubscribe
// through explicit handles.
//
// The host program owns a single Bus and feeds every message it receives into
// Dispatch. Components such as dialogs subscribe only while they need events
// and release exactly the handles they were given, so repeated
// subscribe/unsubscribe cycles never leak listeners.
package eventbus

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Kind identifies a class of events.
type Kind int

const (
	KindKey Kind = iota
	KindResize
	KindScroll
	KindMouse
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindResize:
		return "resize"
	case KindScroll:
		return "scroll"
	case KindMouse:
		return "mouse"
	default:
		return "unknown"
	}
}

// ScrollMsg reports the host page's scroll offset. Hosts that scroll their
// own content (a pager, a long table) send it whenever the offset changes.
// A host that always draws one screen-sized page never sends it, and the
// offset stays at zero. Scrolling a list inside such a page is not a page
// scroll.
type ScrollMsg struct {
	X, Y int
}

// Handler receives a dispatched message and may return a command.
type Handler func(msg tea.Msg) tea.Cmd

// Handle is an opaque reference to a bound subscription. The zero Handle is
// never bound.
type Handle struct {
	kind Kind
	id   uint64
}

// Kind returns the event class the handle was bound to.
func (h Handle) Kind() Kind { return h.kind }

// Valid reports whether the handle was issued by a Bus.
func (h Handle) Valid() bool { return h.id != 0 }

type subscription struct {
	id uint64
	fn Handler
}

// Bus holds subscriptions per event kind. It is not safe for concurrent use;
// like the rest of a bubbletea program it lives on the update goroutine.
type Bus struct {
	next uint64
	subs map[Kind][]subscription

	width, height    int
	scrollX, scrollY int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[Kind][]subscription)}
}

// Subscribe binds fn to events of the given kind.
func (b *Bus) Subscribe(kind Kind, fn Handler) Handle {
	b.next++
	b.subs[kind] = append(b.subs[kind], subscription{id: b.next, fn: fn})
	return Handle{kind: kind, id: b.next}
}

// Unsubscribe removes the subscription behind h. It reports false when h is
// not currently bound, which makes a second unsubscribe harmless.
func (b *Bus) Unsubscribe(h Handle) bool {
	if !h.Valid() {
		return false
	}
	list := b.subs[h.kind]
	for i, s := range list {
		if s.id == h.id {
			b.subs[h.kind] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of listeners bound to kind.
func (b *Bus) Count(kind Kind) int {
	return len(b.subs[kind])
}

// Size returns the last window size seen by Dispatch.
func (b *Bus) Size() (width, height int) {
	return b.width, b.height
}

// Scroll returns the last page scroll offset seen by Dispatch.
func (b *Bus) Scroll() (x, y int) {
	return b.scrollX, b.scrollY
}

// Total returns the number of listeners across all kinds.
func (b *Bus) Total() int {
	n := 0
	for _, list := range b.subs {
		n += len(list)
	}
	return n
}

// Classify maps a bubbletea message to its event kind.
func Classify(msg tea.Msg) (Kind, bool) {
	switch msg.(type) {
	case tea.KeyMsg:
		return KindKey, true
	case tea.WindowSizeMsg:
		return KindResize, true
	case ScrollMsg:
		return KindScroll, true
	case tea.MouseMsg:
		return KindMouse, true
	}
	return 0, false
}

// Dispatch delivers msg to every listener of its kind in subscription order
// and batches the returned commands. Handlers may subscribe or unsubscribe
// while being dispatched; the listener set is snapshotted first. Window size
// and scroll offset are recorded even when nobody listens.
func (b *Bus) Dispatch(msg tea.Msg) tea.Cmd {
	kind, ok := Classify(msg)
	if !ok {
		return nil
	}
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = m.Width, m.Height
	case ScrollMsg:
		b.scrollX, b.scrollY = m.X, m.Y
	}
	list := b.subs[kind]
	if len(list) == 0 {
		return nil
	}
	snapshot := make([]subscription, len(list))
	copy(snapshot, list)

	var cmds []tea.Cmd
	for _, s := range snapshot {
		if !b.bound(kind, s.id) {
			continue
		}
		if cmd := s.fn(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// bound reports whether id is still subscribed, so a handler removed earlier
// in the same dispatch is skipped.
func (b *Bus) bound(kind Kind, id uint64) bool {
	for _, s := range b.subs[kind] {
		if s.id == id {
			return true
		}
	}
	return false
}
