// Package lightface provides a modal dialog for bubbletea programs: a box
// with a title bar, a scrollable message region and a footer of action
// buttons, drawn over a dimming overlay.
//
// A dialog is built once and may be opened and closed any number of times.
// While open it holds one listener per event class on an injected
// eventbus.Bus (keys, window resizes, mouse and, optionally, page scrolls)
// and releases them on close, so repeated cycles never leak listeners.
// Fades run as frame messages on the program's update loop; every delayed
// message carries a generation tag and is dropped if the state it was
// scheduled for has changed.
//
// # Quick Start
//
//	bus := eventbus.New()
//	cfg := lightface.DefaultConfig()
//	cfg.Title = "Confirm"
//	cfg.Content = "Delete the repository?"
//	cfg.Buttons = []lightface.ButtonSpec{
//	    {Label: "Yes", Style: "red", OnClick: doDelete},
//	    {Label: "No", Style: "blue"}, // nil OnClick closes
//	}
//	dlg, err := lightface.New(cfg, bus)
//
//	// In Update():
//	cmds = append(cmds, bus.Dispatch(msg), dlg.Update(msg))
//	...
//	return m, dlg.Open(false)
//
//	// In View():
//	return dlg.View(page)
//
// # Lifecycle
//
// Open and Close are idempotent. The open state flips immediately; the
// fade finishes later and a fully faded box is parked off-screen so it
// cannot be hit. Focus is taken FadeDuration+10ms after Open; keys are
// ignored until then. Destroy is terminal and any later call panics.
//
// # Buttons
//
// SetButtons replaces the footer atomically, ClearButtons empties it and
// hides the footer, DisableButtons freezes every button while work is in
// flight.
package lightface
