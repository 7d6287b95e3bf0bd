package lightface

import tea "github.com/charmbracelet/bubbletea"

// Button is a footer action. Handles stay valid only while the button is in
// the dialog; once cleared a handle is inert.
type Button struct {
	dialog  *Dialog
	label   string
	style   string
	onClick Action
	enabled bool
	removed bool
}

// Label returns the button text.
func (b *Button) Label() string { return b.label }

// Style returns the style tag.
func (b *Button) Style() string { return b.style }

// Enabled reports whether the button accepts clicks.
func (b *Button) Enabled() bool { return b.enabled && !b.removed }

// Click runs the button's action. Disabled or removed buttons do nothing.
func (b *Button) Click() tea.Cmd {
	if !b.Enabled() || b.onClick == nil {
		return nil
	}
	return b.onClick(b.dialog)
}

func (b *Button) detach() {
	b.onClick = nil
	b.removed = true
}

// AddButton appends a button and shows the footer. A nil onClick closes the
// dialog. Like Load, it takes effect on the box size at the next Open.
func (d *Dialog) AddButton(label string, onClick Action, style string) *Button {
	d.mustLive("AddButton")
	if onClick == nil {
		onClick = CloseAction
	}
	b := &Button{
		dialog:  d,
		label:   label,
		style:   style,
		onClick: onClick,
		enabled: true,
	}
	d.buttons = append(d.buttons, b)
	d.footerVisible = true
	d.resizeOnOpen = true
	return b
}

// ClearButtons detaches and removes every button and hides the footer.
func (d *Dialog) ClearButtons() {
	d.mustLive("ClearButtons")
	for _, b := range d.buttons {
		b.detach()
	}
	d.buttons = nil
	d.footerVisible = false
	d.focusIndex = -1
	d.resizeOnOpen = true
}

// SetButtons replaces the buttons with specs, in order. An empty list clears.
func (d *Dialog) SetButtons(specs []ButtonSpec) {
	d.ClearButtons()
	for _, s := range specs {
		d.AddButton(s.Label, s.OnClick, s.Style)
	}
}

// DisableButtons freezes or unfreezes every current button.
func (d *Dialog) DisableButtons(disable bool) {
	d.mustLive("DisableButtons")
	for _, b := range d.buttons {
		b.enabled = !disable
	}
}

// Buttons returns the current buttons in display order.
func (d *Dialog) Buttons() []*Button {
	out := make([]*Button, len(d.buttons))
	copy(out, d.buttons)
	return out
}

// FooterVisible reports whether the button footer is shown.
func (d *Dialog) FooterVisible() bool { return d.footerVisible }

// FocusIndex returns the keyboard-focused button, or -1 when the box itself
// has focus.
func (d *Dialog) FocusIndex() int { return d.focusIndex }

// moveFocus cycles keyboard focus across enabled buttons.
func (d *Dialog) moveFocus(delta int) {
	n := len(d.buttons)
	if n == 0 {
		d.focusIndex = -1
		return
	}
	i := d.focusIndex
	for range n {
		switch {
		case i < 0 && delta > 0:
			i = 0
		case i < 0:
			i = n - 1
		default:
			i = (i + delta + n) % n
		}
		if d.buttons[i].enabled {
			d.focusIndex = i
			return
		}
	}
}

func (d *Dialog) clickButton(i int) tea.Cmd {
	if i < 0 || i >= len(d.buttons) {
		return nil
	}
	return d.buttons[i].Click()
}
