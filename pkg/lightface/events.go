package lightface

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/lightface/pkg/eventbus"
	"github.com/marcus/lightface/pkg/mouse"
)

// Hit region ids registered while rendering.
const (
	regionBox    = "box"
	regionTitle  = "title"
	regionBody   = "body"
	regionButton = "button"
)

// ListenerCount returns the number of bus handles the dialog currently holds.
func (d *Dialog) ListenerCount() int { return len(d.listeners) }

// ListenerSetSize is the number of handles an open dialog holds: key, resize
// and mouse, plus scroll when ResetOnScroll is set.
func (d *Dialog) ListenerSetSize() int {
	if d.cfg.ResetOnScroll {
		return 4
	}
	return 3
}

func (d *Dialog) attachEvents() {
	// Never stack a second set on top of a live one.
	d.detachEvents()

	d.listeners = append(d.listeners,
		d.bus.Subscribe(eventbus.KindKey, d.handleKey),
		d.bus.Subscribe(eventbus.KindResize, d.handleResize),
		d.bus.Subscribe(eventbus.KindMouse, d.handleMouse),
	)
	if d.cfg.ResetOnScroll {
		d.listeners = append(d.listeners, d.bus.Subscribe(eventbus.KindScroll, d.handleScroll))
	}
}

func (d *Dialog) detachEvents() {
	for _, h := range d.listeners {
		d.bus.Unsubscribe(h)
	}
	d.listeners = d.listeners[:0]
}

func (d *Dialog) handleKey(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !d.isOpen || !d.focused {
		return nil
	}

	for _, kb := range d.cfg.KeyBindings {
		if key.Matches(km, kb.Binding) {
			return kb.Action(d)
		}
	}

	switch km.String() {
	case "tab":
		d.moveFocus(1)
		return nil
	case "shift+tab":
		d.moveFocus(-1)
		return nil
	case "enter":
		return d.clickButton(d.focusIndex)
	}

	var cmd tea.Cmd
	d.body, cmd = d.body.Update(km)
	return cmd
}

func (d *Dialog) handleResize(tea.Msg) tea.Cmd {
	if d.cfg.Constrain {
		d.Resize()
	} else {
		d.Position()
	}
	return nil
}

func (d *Dialog) handleScroll(tea.Msg) tea.Cmd {
	d.Position()
	return nil
}

func (d *Dialog) handleMouse(msg tea.Msg) tea.Cmd {
	mm, ok := msg.(tea.MouseMsg)
	if !ok || !d.isOpen {
		return nil
	}

	action := d.mouse.HandleMouse(mm)
	switch action.Type {
	case mouse.ActionDrag, mouse.ActionDragEnd:
		d.box.rect.X = d.dragOrigin[0] + action.DragDX
		d.box.rect.Y = d.dragOrigin[1] + action.DragDY
		d.legacySize()

	case mouse.ActionClick, mouse.ActionDoubleClick:
		if action.Region == nil {
			return nil
		}
		switch action.Region.ID {
		case regionButton:
			if i, ok := action.Region.Data.(int); ok {
				return d.clickButton(i)
			}
		case regionTitle:
			if d.cfg.Draggable {
				d.dragOrigin = [2]int{d.box.rect.X, d.box.rect.Y}
				d.mouse.StartDrag(mm.X, mm.Y, regionTitle, d.box.rect.X)
			}
		}

	case mouse.ActionScrollUp, mouse.ActionScrollDown:
		if action.Region != nil && action.Region.ID == regionBody {
			var cmd tea.Cmd
			d.body, cmd = d.body.Update(mm)
			return cmd
		}
	}
	return nil
}
