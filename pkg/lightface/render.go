package lightface

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// boxLayout records where interactive parts landed inside the rendered box,
// in inner (border and padding excluded) coordinates.
type boxLayout struct {
	titleRow   int
	bodyRow    int
	buttonsRow int
	buttons    []buttonSpan
}

type buttonSpan struct {
	x, w int
}

// View draws the dialog over background, a page rendered for the current
// viewport. Hit regions for the mouse listener are refreshed as a side
// effect, so the regions always match what was last drawn.
func (d *Dialog) View(background string) string {
	if d.destroyed {
		return background
	}
	vw, vh := d.viewportSize()
	sx, sy := d.bus.Scroll()
	lines := normalizeLines(background, vw, vh)

	if d.overlay.visible && d.overlay.opacity > 0 {
		r := d.overlay.rect
		if d.cfg.LegacyOverlay {
			r.X -= sx
			r.Y -= sy
		}
		shade := lipgloss.NewStyle().Foreground(overlayShade(d.overlay.opacity))
		for y := max(r.Y, 0); y < min(r.Y+r.H, vh); y++ {
			lines[y] = shadeSegment(lines[y], r.X, r.W, vw, shade)
		}
	}

	d.mouse.HitMap.Clear()
	if d.box.parked() || d.box.opacity <= 0 {
		return strings.Join(lines, "\n")
	}

	boxLines, lay := d.renderBox()
	x := d.box.rect.X - sx
	y := d.box.rect.Y - sy
	for i, bl := range boxLines {
		row := y + i
		if row < 0 || row >= vh {
			continue
		}
		lines[row] = overlayLine(lines[row], bl, x, vw)
	}

	if d.isOpen {
		d.registerRegions(x, y, len(boxLines), lay)
	}
	return strings.Join(lines, "\n")
}

// Stack draws several dialogs over background in ZIndex order.
func Stack(background string, dialogs ...*Dialog) string {
	sorted := slices.Clone(dialogs)
	slices.SortStableFunc(sorted, func(a, b *Dialog) int {
		return cmp.Compare(a.cfg.ZIndex, b.cfg.ZIndex)
	})
	for _, d := range sorted {
		background = d.View(background)
	}
	return background
}

func (d *Dialog) registerRegions(x, y, height int, lay boxLayout) {
	hm := d.mouse.HitMap
	ix, iy := x+frameWidth/2, y+frameHeight/2

	hm.AddRect(regionBox, x, y, d.box.rect.W, height, nil)
	if lay.titleRow >= 0 {
		hm.AddRect(regionTitle, x, y, d.box.rect.W, iy-y+1, nil)
	}
	hm.AddRect(regionBody, ix, iy+lay.bodyRow, d.body.Width, d.body.Height, nil)
	if lay.buttonsRow >= 0 {
		for i, span := range lay.buttons {
			hm.AddRect(regionButton, ix+span.x, iy+lay.buttonsRow, span.w, 1, i)
		}
	}
}

func (d *Dialog) renderBox() ([]string, boxLayout) {
	iw := d.body.Width
	if iw <= 0 {
		iw = d.innerWidth()
	}
	lay := boxLayout{titleRow: -1, buttonsRow: -1}

	var sections []string
	row := 0
	if d.titleVisible {
		ts := titleStyle
		if d.cfg.Draggable {
			ts = titleDraggableStyle
		}
		sections = append(sections, ts.Render(ansi.Truncate(d.title, iw, "…")), "")
		lay.titleRow = 0
		row += titleRows
	}

	body := d.body.View()
	lay.bodyRow = row
	sections = append(sections, body)
	row += lipgloss.Height(body)

	if d.footerVisible {
		var parts []string
		x := 0
		for i, b := range d.buttons {
			if i > 0 {
				parts = append(parts, strings.Repeat(" ", buttonGap))
				x += buttonGap
			}
			focused := d.focused && i == d.focusIndex
			s := buttonStyleFor(b.style, focused, b.enabled).Render(b.label)
			w := lipgloss.Width(s)
			lay.buttons = append(lay.buttons, buttonSpan{x: x, w: w})
			parts = append(parts, s)
			x += w
		}
		sections = append(sections, "", lipgloss.JoinHorizontal(lipgloss.Top, parts...))
		lay.buttonsRow = row + 1
		row += footerRows
	}

	if d.cfg.ShowHints {
		d.help.Width = iw
		sections = append(sections, hintStyle.Render(d.help.ShortHelpView(d.hintBindings())))
	}

	out := boxStyle.Width(iw + frameWidth - 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	lines := strings.Split(out, "\n")

	if d.box.opacity < 1 {
		faded := lipgloss.NewStyle().Foreground(fadeColor(colorText, d.box.opacity))
		for i, l := range lines {
			lines[i] = faded.Render(ansi.Strip(l))
		}
	}
	return lines, lay
}

func (d *Dialog) hintBindings() []key.Binding {
	bindings := make([]key.Binding, 0, len(d.cfg.KeyBindings)+2)
	for _, kb := range d.cfg.KeyBindings {
		bindings = append(bindings, kb.Binding)
	}
	if len(d.buttons) > 0 {
		bindings = append(bindings,
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		)
	}
	return bindings
}

// normalizeLines pads or truncates background to exactly vw x vh cells.
func normalizeLines(background string, vw, vh int) []string {
	src := strings.Split(background, "\n")
	lines := make([]string, vh)
	for i := range lines {
		line := ""
		if i < len(src) {
			line = src[i]
		}
		w := ansi.StringWidth(line)
		switch {
		case w < vw:
			line += strings.Repeat(" ", vw-w)
		case w > vw:
			line = ansi.Truncate(line, vw, "")
		}
		lines[i] = line
	}
	return lines
}

// shadeSegment redraws cells [x, x+w) of line as plain text in the shade
// style.
func shadeSegment(line string, x, w, vw int, shade lipgloss.Style) string {
	if x < 0 {
		w += x
		x = 0
	}
	end := min(x+w, vw)
	if end <= x {
		return line
	}
	left := ansi.Truncate(line, x, "")
	mid := ansi.Strip(ansi.Cut(line, x, end))
	right := ansi.TruncateLeft(line, end, "")
	return left + ansi.ResetStyle + shade.Render(mid) + right
}

// overlayLine draws fg over bg starting at column x, clipping to vw.
func overlayLine(bg, fg string, x, vw int) string {
	fw := ansi.StringWidth(fg)
	if x < 0 {
		fg = ansi.TruncateLeft(fg, -x, "")
		fw += x
		x = 0
	}
	if fw <= 0 || x >= vw {
		return bg
	}
	if x+fw > vw {
		fg = ansi.Truncate(fg, vw-x, "")
		fw = vw - x
	}
	return ansi.Truncate(bg, x, "") + ansi.ResetStyle + fg + ansi.ResetStyle + ansi.TruncateLeft(bg, x+fw, "")
}

// blend mixes two hex colours; t=0 is from, t=1 is to.
func blend(from, to string, t float64) lipgloss.Color {
	a, err := colorful.Hex(from)
	if err != nil {
		return lipgloss.Color(to)
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return lipgloss.Color(to)
	}
	t = min(max(t, 0), 1)
	return lipgloss.Color(a.BlendRgb(b, t).Clamped().Hex())
}

// fadeColor is hex seen at the given opacity over the backdrop.
func fadeColor(hex string, opacity float64) lipgloss.Color {
	return blend(colorBackdrop, hex, opacity)
}

// overlayShade is the page text colour under an overlay of the given
// opacity.
func overlayShade(opacity float64) lipgloss.Color {
	return blend(colorPageShade, colorBackdrop, opacity*1.5)
}
