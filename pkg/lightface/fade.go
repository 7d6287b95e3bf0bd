package lightface

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/lightface/pkg/mouse"
)

// offscreen is where a faded-out box is parked so it cannot be hit.
const offscreen = -9000

// parkThreshold is the opacity below which a finished box fade parks the box.
const parkThreshold = 0.2

type nodeKind int

const (
	nodeBox nodeKind = iota
	nodeOverlay
)

func (k nodeKind) String() string {
	if k == nodeOverlay {
		return "overlay"
	}
	return "box"
}

// tween animates a node's opacity one frame at a time. tag is bumped every
// time the node's opacity is taken over by someone else, which orphans any
// frame or delayed message still in flight.
type tween struct {
	from, to float64
	step     int
	steps    int
	running  bool
	tag      int
}

func (t *tween) cancel() {
	t.running = false
	t.tag++
}

type node struct {
	rect    mouse.Rect
	opacity float64
	visible bool
	tween   tween
}

func (n *node) park() {
	n.rect.X, n.rect.Y = offscreen, offscreen
}

func (n *node) parked() bool {
	return n.rect.X == offscreen && n.rect.Y == offscreen
}

func (d *Dialog) node(kind nodeKind) *node {
	if kind == nodeOverlay {
		return &d.overlay
	}
	return &d.box
}

// easeInOutSine matches the default sine in-out transition of the fades.
func easeInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// tweenTo moves a node's opacity to target, instantly when fast or when
// fades are disabled. Any tween already running on the node is superseded.
func (d *Dialog) tweenTo(kind nodeKind, target float64, fast bool) tea.Cmd {
	n := d.node(kind)
	n.tween.cancel()

	if fast || d.cfg.FadeDuration <= 0 {
		n.opacity = target
		d.tweenComplete(kind)
		return nil
	}

	frame := d.cfg.frameInterval()
	steps := int(math.Ceil(float64(d.cfg.FadeDuration) / float64(frame)))
	if steps < 1 {
		steps = 1
	}
	n.tween = tween{
		from:    n.opacity,
		to:      target,
		steps:   steps,
		running: true,
		tag:     n.tween.tag,
	}
	return d.sched.After(frame, frameMsg{dialog: d.id, node: kind, tag: n.tween.tag})
}

func (d *Dialog) handleFrame(msg frameMsg) tea.Cmd {
	n := d.node(msg.node)
	if !n.tween.running || msg.tag != n.tween.tag {
		return nil
	}

	n.tween.step++
	if n.tween.step >= n.tween.steps {
		n.opacity = n.tween.to
		n.tween.running = false
		d.tweenComplete(msg.node)
		return nil
	}

	p := easeInOutSine(float64(n.tween.step) / float64(n.tween.steps))
	n.opacity = n.tween.from + (n.tween.to-n.tween.from)*p
	return d.sched.After(d.cfg.frameInterval(), msg)
}

// tweenComplete finalizes visuals once a node reaches its target. A nearly
// transparent box is parked off-screen so it cannot intercept the mouse; a
// transparent overlay is hidden.
func (d *Dialog) tweenComplete(kind nodeKind) {
	switch kind {
	case nodeBox:
		if d.box.opacity < parkThreshold {
			d.box.park()
			d.log.Debug("box parked")
		}
	case nodeOverlay:
		if d.overlay.opacity == 0 {
			d.overlay.visible = false
		}
	}
}

// Fade sets the overlay opacity to level (1 when level <= 0) after delay,
// leaving the dialog's buttons and listeners alone. A zero delay applies the
// change immediately. Use it to dim a dialog while work it started is in
// flight. Fading a closed dialog has no effect.
func (d *Dialog) Fade(level float64, delay time.Duration) tea.Cmd {
	d.mustLive("Fade")
	if level <= 0 {
		level = 1
	}
	d.legacySize()

	var cmd tea.Cmd
	if delay <= 0 {
		d.setOverlayOpacity(level)
	} else {
		cmd = d.sched.After(delay, fadeMsg{dialog: d.id, tag: d.overlay.tween.tag, level: level})
	}
	d.notify(EventFadeStarted)
	return cmd
}

// Unfade fades the overlay out after delay (FadeDelay when delay <= 0).
func (d *Dialog) Unfade(delay time.Duration) tea.Cmd {
	d.mustLive("Unfade")
	if delay <= 0 {
		delay = d.cfg.FadeDelay
	}

	var cmd tea.Cmd
	if delay <= 0 {
		cmd = d.tweenTo(nodeOverlay, 0, false)
	} else {
		cmd = d.sched.After(delay, unfadeMsg{dialog: d.id, tag: d.overlay.tween.tag})
	}
	d.notify(EventUnfadeStarted)
	return cmd
}

// setOverlayOpacity takes over the overlay. A closed dialog keeps its
// fade-out so the overlay still ends hidden.
func (d *Dialog) setOverlayOpacity(level float64) {
	if !d.isOpen {
		d.log.Debug("fade ignored on closed dialog", "level", level)
		return
	}
	d.overlay.tween.cancel()
	d.overlay.opacity = level
}

func (d *Dialog) handleFade(msg fadeMsg) {
	if msg.tag != d.overlay.tween.tag {
		return
	}
	d.setOverlayOpacity(msg.level)
}

func (d *Dialog) handleUnfade(msg unfadeMsg) tea.Cmd {
	if msg.tag != d.overlay.tween.tag {
		return nil
	}
	return d.tweenTo(nodeOverlay, 0, false)
}
