package lightface

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Box geometry in cells.
const (
	frameWidth    = 4 // rounded border plus one column of padding per side
	frameHeight   = 2
	titleRows     = 2 // title line and a spacer
	footerRows    = 2 // spacer and the button row
	hintRows      = 1
	buttonGap     = 1
	minInnerWidth = 20
	maxAutoWidth  = 72

	defaultViewportWidth  = 80
	defaultViewportHeight = 24
)

type renderedContent struct {
	source string
	width  int
	text   string

	md      *glamour.TermRenderer
	mdWidth int
}

// Load replaces the message body when content is non-empty and sets the
// title to title, or the configured title when title is empty; an empty
// result hides the title bar. Load does not resize an open dialog; the next
// Open does, or call Resize.
func (d *Dialog) Load(content, title string) {
	d.mustLive("Load")
	if content != "" {
		d.content = content
		d.resizeOnOpen = true
		d.refreshBody()
	}
	if title == "" {
		title = d.cfg.Title
	}
	d.setTitle(title)
	d.log.Debug("content loaded", "title", d.title, "bytes", len(d.content))
	d.notify(EventContentLoaded)
}

func (d *Dialog) setTitle(title string) {
	if title != d.title {
		d.resizeOnOpen = true
	}
	d.title = title
	d.titleVisible = title != ""
}

// BodyText returns the rendered message body as currently laid out.
func (d *Dialog) BodyText() string {
	return d.rendered.text
}

// refreshBody re-renders content at the current body width.
func (d *Dialog) refreshBody() {
	width := d.body.Width
	if width <= 0 {
		width = d.innerWidth()
	}
	d.body.SetContent(d.renderContent(width))
}

func (d *Dialog) renderContent(width int) string {
	rc := &d.rendered
	if rc.source == d.content && rc.width == width && rc.text != "" {
		return rc.text
	}

	text := ""
	if d.cfg.Markdown {
		out, err := d.renderMarkdown(width)
		if err != nil {
			d.log.Debug("markdown render failed", "err", err)
		} else {
			text = strings.Trim(out, "\n")
		}
	}
	if text == "" {
		text = lipgloss.NewStyle().Width(width).Render(d.content)
	}

	rc.source, rc.width, rc.text = d.content, width, text
	return text
}

func (d *Dialog) renderMarkdown(width int) (string, error) {
	rc := &d.rendered
	if rc.md == nil || rc.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		rc.md, rc.mdWidth = r, width
	}
	return rc.md.Render(d.content)
}

func (d *Dialog) viewportSize() (int, int) {
	w, h := d.bus.Size()
	if w <= 0 {
		w = defaultViewportWidth
	}
	if h <= 0 {
		h = defaultViewportHeight
	}
	return w, h
}

// chromeHeight is the box height minus the message region.
func (d *Dialog) chromeHeight() int {
	h := frameHeight
	if d.titleVisible {
		h += titleRows
	}
	if d.footerVisible {
		h += footerRows
	}
	if d.cfg.ShowHints {
		h += hintRows
	}
	return h
}

func (d *Dialog) buttonsWidth() int {
	w := 0
	for i, b := range d.buttons {
		if i > 0 {
			w += buttonGap
		}
		w += lipgloss.Width(buttonStyleFor(b.style, false, true).Render(b.label))
	}
	return w
}

func (d *Dialog) naturalWidth() int {
	w := ansi.StringWidth(d.title)
	for line := range strings.SplitSeq(d.content, "\n") {
		w = max(w, ansi.StringWidth(line))
	}
	return max(w, d.buttonsWidth())
}

// innerWidth is the width available to the title, body and footer.
func (d *Dialog) innerWidth() int {
	if !d.cfg.Width.IsAuto() {
		return max(int(d.cfg.Width)-frameWidth, minInnerWidth)
	}
	vw, _ := d.viewportSize()
	limit := max(vw-frameWidth, minInnerWidth)
	w := max(d.naturalWidth(), minInnerWidth)
	return min(w, maxAutoWidth, limit)
}

// Resize recomputes the message height, auto heights capped so the box fits
// the viewport minus Pad, then re-centers the box.
func (d *Dialog) Resize() {
	d.mustLive("Resize")
	iw := d.innerWidth()
	text := d.renderContent(iw)
	chrome := d.chromeHeight()

	mh := lipgloss.Height(text)
	if d.cfg.Height.IsAuto() {
		_, vh := d.viewportSize()
		mh = min(mh, vh-d.cfg.Pad-chrome)
	} else {
		mh = int(d.cfg.Height)
	}
	mh = max(mh, 1)

	d.body.Width = iw
	d.body.Height = mh
	d.body.SetContent(text)

	d.box.rect.W = iw + frameWidth
	d.box.rect.H = chrome + mh
	d.Position()
}

// Position centers the box in the viewport at the current scroll offset.
func (d *Dialog) Position() {
	d.mustLive("Position")
	vw, vh := d.viewportSize()
	sx, sy := d.bus.Scroll()

	d.box.rect.X = sx + max((vw-d.box.rect.W)/2, 0)
	d.box.rect.Y = sy + max((vh-d.box.rect.H)/2, 0)

	d.overlay.rect.X = 0
	d.overlay.rect.Y = 0
	if !d.cfg.OverlayAll {
		// Leave the page's header row uncovered.
		d.overlay.rect.Y = 1
	}
	d.overlay.rect.W = vw
	d.overlay.rect.H = vh - d.overlay.rect.Y
	d.legacySize()
}

// legacySize sizes the overlay to the box for terminals that cannot repaint
// the whole screen behind the dialog. The overlay then follows the box in
// page coordinates.
func (d *Dialog) legacySize() {
	if !d.cfg.LegacyOverlay {
		return
	}
	top := 0
	if !d.cfg.OverlayAll && d.titleVisible {
		top = titleRows
	}
	d.overlay.rect.X = d.box.rect.X
	d.overlay.rect.Y = d.box.rect.Y + top
	d.overlay.rect.W = d.box.rect.W
	d.overlay.rect.H = max(d.box.rect.H-top, 0)
}
