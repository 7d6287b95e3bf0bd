package lightface

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/lightface/pkg/eventbus"
	"github.com/marcus/lightface/pkg/mouse"
)

const (
	// overlayOpacity is the backdrop opacity of an open dialog.
	overlayOpacity = 0.4
	// focusSlack is added to the fade duration before focus is taken so the
	// focus change lands after the fade has finished.
	focusSlack = 10 * time.Millisecond
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Event names a dialog notification.
type Event int

const (
	EventOpened Event = iota
	EventClosed
	EventContentLoaded
	EventFadeStarted
	EventUnfadeStarted
)

func (e Event) String() string {
	switch e {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventContentLoaded:
		return "content-loaded"
	case EventFadeStarted:
		return "fade-started"
	case EventUnfadeStarted:
		return "unfade-started"
	default:
		return "unknown"
	}
}

// Subscription identifies an observer registered with On.
type Subscription struct {
	event Event
	id    int
}

type observer struct {
	id int
	fn func(*Dialog)
}

// Dialog is a modal dialog over a bubbletea page. All methods must be called
// from the program's update loop.
type Dialog struct {
	id    int
	cfg   Config
	bus   *eventbus.Bus
	log   *slog.Logger
	sched Scheduler

	isOpen       bool
	destroyed    bool
	resizeOnOpen bool

	title        string
	titleVisible bool
	content      string

	box     node
	overlay node

	body     viewport.Model
	rendered renderedContent
	help     help.Model

	buttons       []*Button
	footerVisible bool
	focusIndex    int

	listeners []eventbus.Handle
	focused   bool
	focusTag  int

	mouse      *mouse.Handler
	dragOrigin [2]int

	observers  map[Event][]observer
	observerID int
}

// New builds a dialog from cfg and allocates its layout. Listeners are bound
// on bus only while the dialog is open. A nil bus gets a private one, which
// is only useful when the caller dispatches to Bus().
func New(cfg Config, bus *eventbus.Bus) (*Dialog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if bus == nil {
		bus = eventbus.New()
	}

	d := &Dialog{
		id:           nextID(),
		cfg:          cfg,
		bus:          bus,
		sched:        cfg.Scheduler,
		resizeOnOpen: true,
		content:      cfg.Content,
		body:         viewport.New(0, 0),
		help:         help.New(),
		focusIndex:   -1,
		mouse:        mouse.NewHandler(),
		observers:    make(map[Event][]observer),
	}
	d.log = cfg.Logger.With("dialog", d.id)
	d.setTitle(cfg.Title)
	d.box.park()
	d.overlay.visible = false

	for _, b := range cfg.Buttons {
		d.AddButton(b.Label, b.OnClick, b.Style)
	}
	d.refreshBody()

	d.log.Debug("dialog created", "title", d.title, "buttons", len(d.buttons))
	return d, nil
}

// ID returns the dialog's process-unique id.
func (d *Dialog) ID() int { return d.id }

// Bus returns the event bus listeners are bound on.
func (d *Dialog) Bus() *eventbus.Bus { return d.bus }

// Config returns the configuration the dialog was built with.
func (d *Dialog) Config() Config { return d.cfg }

// IsOpen reports the lifecycle state. It flips immediately on Open and
// Close; fades finish later.
func (d *Dialog) IsOpen() bool { return d.isOpen }

// IsDestroyed reports whether Destroy has been called.
func (d *Dialog) IsDestroyed() bool { return d.destroyed }

// Focused reports whether the dialog has taken keyboard focus.
func (d *Dialog) Focused() bool { return d.focused }

// Title returns the current title.
func (d *Dialog) Title() string { return d.title }

// TitleVisible reports whether the title bar is shown.
func (d *Dialog) TitleVisible() bool { return d.titleVisible }

// Content returns the current message body source.
func (d *Dialog) Content() string { return d.content }

// BoxOpacity returns the current box opacity in [0, 1].
func (d *Dialog) BoxOpacity() float64 { return d.box.opacity }

// OverlayOpacity returns the current overlay opacity in [0, 1].
func (d *Dialog) OverlayOpacity() float64 { return d.overlay.opacity }

// OverlayVisible reports whether the overlay takes part in rendering.
func (d *Dialog) OverlayVisible() bool { return d.overlay.visible }

// BoxRect returns the box position and size in page coordinates.
func (d *Dialog) BoxRect() mouse.Rect { return d.box.rect }

// OverlayRect returns the overlay rectangle.
func (d *Dialog) OverlayRect() mouse.Rect { return d.overlay.rect }

// BoxParked reports whether the box has been moved off-screen after fading
// out.
func (d *Dialog) BoxParked() bool { return d.box.parked() }

// Open reveals the dialog. It is a no-op when already open. With fast the
// opacities are set at once instead of faded.
func (d *Dialog) Open(fast bool) tea.Cmd {
	d.mustLive("Open")
	if d.isOpen {
		return nil
	}

	var cmds []tea.Cmd
	cmds = append(cmds, d.tweenTo(nodeOverlay, overlayOpacity, fast))
	d.overlay.visible = true
	cmds = append(cmds, d.tweenTo(nodeBox, 1, fast))

	if d.resizeOnOpen {
		d.Resize()
		d.resizeOnOpen = false
	} else {
		d.Position()
	}

	d.attachEvents()

	d.focusTag++
	cmds = append(cmds, d.sched.After(d.cfg.FadeDuration+focusSlack, focusMsg{dialog: d.id, tag: d.focusTag}))

	d.isOpen = true
	d.log.Debug("dialog opened", "fast", fast, "listeners", len(d.listeners))
	d.notify(EventOpened)
	return tea.Batch(cmds...)
}

// Close hides the dialog. It is a no-op when already closed. The state flips
// to closed before Close returns; the fade-out finishes asynchronously.
func (d *Dialog) Close(fast bool) tea.Cmd {
	d.mustLive("Close")
	if !d.isOpen {
		return nil
	}

	cmds := []tea.Cmd{
		d.tweenTo(nodeBox, 0, fast),
		d.tweenTo(nodeOverlay, 0, fast),
	}
	d.notify(EventClosed)
	d.detachEvents()

	d.focused = false
	d.focusTag++
	d.mouse.EndDrag()
	d.isOpen = false
	d.log.Debug("dialog closed", "fast", fast)
	return tea.Batch(cmds...)
}

// Destroy releases the dialog's listeners and buttons. The dialog must not
// be used afterwards.
func (d *Dialog) Destroy() {
	d.mustLive("Destroy")
	d.detachEvents()
	for _, b := range d.buttons {
		b.detach()
	}
	d.buttons = nil
	d.footerVisible = false
	d.mouse.Clear()
	d.observers = nil
	d.isOpen = false
	d.focused = false
	d.box.tween.cancel()
	d.overlay.tween.cancel()
	d.box.park()
	d.overlay.visible = false
	d.destroyed = true
	d.log.Debug("dialog destroyed")
}

// Update handles the dialog's own timer messages. Messages for other dialogs
// and host events are ignored; host events reach the dialog through the bus.
func (d *Dialog) Update(msg tea.Msg) tea.Cmd {
	if d.destroyed {
		return nil
	}
	switch msg := msg.(type) {
	case frameMsg:
		if msg.dialog == d.id {
			return d.handleFrame(msg)
		}
	case focusMsg:
		if msg.dialog == d.id {
			d.handleFocus(msg)
		}
	case fadeMsg:
		if msg.dialog == d.id {
			d.handleFade(msg)
		}
	case unfadeMsg:
		if msg.dialog == d.id {
			return d.handleUnfade(msg)
		}
	}
	return nil
}

func (d *Dialog) handleFocus(msg focusMsg) {
	if !d.isOpen || msg.tag != d.focusTag {
		return
	}
	d.focused = true
	d.focusIndex = -1
	d.log.Debug("dialog focused")
}

// On registers fn for event. Observers run synchronously, in registration
// order.
func (d *Dialog) On(event Event, fn func(*Dialog)) Subscription {
	d.mustLive("On")
	d.observerID++
	d.observers[event] = append(d.observers[event], observer{id: d.observerID, fn: fn})
	return Subscription{event: event, id: d.observerID}
}

// Off removes an observer. Unknown subscriptions are ignored.
func (d *Dialog) Off(s Subscription) {
	d.mustLive("Off")
	list := d.observers[s.event]
	for i, o := range list {
		if o.id == s.id {
			d.observers[s.event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

func (d *Dialog) notify(event Event) {
	list := d.observers[event]
	if len(list) == 0 {
		return
	}
	snapshot := make([]observer, len(list))
	copy(snapshot, list)
	for _, o := range snapshot {
		o.fn(d)
	}
}

// mustLive panics when the dialog has been destroyed. Using a destroyed
// dialog is a programming error.
func (d *Dialog) mustLive(op string) {
	if d.destroyed {
		panic(fmt.Sprintf("lightface: %s called on destroyed dialog %d", op, d.id))
	}
}
