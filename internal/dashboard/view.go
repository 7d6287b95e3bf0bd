package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/lightface/pkg/lightface"
)

const (
	controlPull   = "pull"
	controlNuke   = "nuke"
	controlChange = "change"

	controlsRow = 4
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#005f87")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d0d0d0"))

	controlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#3a3a3a")).
			Padding(0, 1)

	controlDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6c6c6c")).
				Background(lipgloss.Color("#262626")).
				Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5faf5f")).
			Foreground(lipgloss.Color("#afffaf")).
			Padding(0, 1)

	suggestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c6c6c")).PaddingLeft(5)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff"))
)

// View implements tea.Model.
func (m Model) View() string {
	return lightface.Stack(m.page(), m.popbox, m.errbox)
}

func (m Model) page() string {
	lines := []string{
		headerStyle.Width(m.width).Render("lightface · repository dashboard"),
		"",
		m.repoLine(),
		"",
		m.controlsLine(),
		"",
	}

	if m.editing {
		lines = append(lines, "  "+m.input.View())
		for _, s := range m.suggestions {
			lines = append(lines, suggestStyle.Render(s))
		}
		lines = append(lines, "")
	}

	if m.notice != "" {
		box := noticeStyle.Render(m.notice)
		for _, l := range strings.Split(box, "\n") {
			lines = append(lines, "  "+l)
		}
		lines = append(lines, "")
	}

	if m.loadErr != nil {
		lines = append(lines, "  "+errorStyle.Render("Could not load state: "+m.loadErr.Error()), "")
	}

	hint := m.help.View(m.keys)
	if m.editing {
		hint = m.help.View(bindings(m.keys.editHelp()))
	}

	height := max(m.height, 2)
	room := height - len(lines) - 2
	lines = append(lines, "  "+labelStyle.Render("Recent actions"))
	lines = append(lines, m.actionLines(room)...)

	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	lines = append(lines[:height-1], " "+hint)

	for i, l := range lines {
		lines[i] = ansi.Truncate(l, m.width, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) repoLine() string {
	url := m.repo.URL
	if url == "" {
		url = "(none)"
	}
	line := "  " + labelStyle.Render("Repository ") + valueStyle.Render(url)
	if m.repo.URL != "" {
		line += labelStyle.Render(fmt.Sprintf("  revision %d", m.repo.Revision))
	}
	return line
}

// controlsLine renders the control buttons and registers their hit regions.
func (m Model) controlsLine() string {
	m.controls.Clear()
	style := controlStyle
	if m.busy {
		style = controlDisabledStyle
	}

	x := 2
	parts := []string{"  "}
	for _, c := range []struct{ id, label string }{
		{controlPull, "Pull"},
		{controlNuke, "Nuke"},
		{controlChange, "Change"},
	} {
		btn := style.Render(c.label)
		w := ansi.StringWidth(btn)
		if !m.busy {
			m.controls.AddRect(c.id, x, controlsRow, w, 1, nil)
		}
		parts = append(parts, btn, " ")
		x += w + 1
	}
	if m.busy {
		parts = append(parts, " ", m.spinner.View(), labelStyle.Render(" "+m.pending.String()))
	}
	return strings.Join(parts, "")
}

func (m Model) actionLines(room int) []string {
	if room <= 0 {
		return nil
	}
	if len(m.actions) == 0 {
		return []string{"  " + labelStyle.Render("  nothing yet")}
	}
	var out []string
	for _, a := range m.actions[m.offset:] {
		if len(out) == room {
			break
		}
		ts := a.CreatedAt.Local().Format("15:04:05")
		out = append(out, fmt.Sprintf("    %s  %-7s %s", labelStyle.Render(ts), a.Action, valueStyle.Render(a.Detail)))
	}
	return out
}
