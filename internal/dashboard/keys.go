package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

type keyMap struct {
	Pull     key.Binding
	Nuke     key.Binding
	Change   key.Binding
	Up       key.Binding
	Down     key.Binding
	Refresh  key.Binding
	Quit     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Complete key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pull:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pull")),
		Nuke:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nuke")),
		Change:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "change")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
	}
}

// ShortHelp implements help.KeyMap for the page.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pull, k.Nuke, k.Change, k.Up, k.Down, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), k.editHelp()}
}

func (k keyMap) editHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Complete, k.Cancel}
}

type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func matches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}

// suggest ranks previously used URLs against the typed text, best first.
func suggest(input string, urls []string, limit int) []string {
	if len(urls) == 0 {
		return nil
	}
	if input == "" {
		return urls[:min(limit, len(urls))]
	}
	found := fuzzy.Find(input, urls)
	out := make([]string, 0, min(limit, len(found)))
	for _, match := range found {
		if match.Str == input {
			continue
		}
		out = append(out, match.Str)
		if len(out) == limit {
			break
		}
	}
	return out
}
