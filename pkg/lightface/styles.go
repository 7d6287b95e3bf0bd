package lightface

import "github.com/charmbracelet/lipgloss"

// Colors are hex so that opacity can be blended towards the backdrop.
const (
	colorPrimary   = "#ff87d7"
	colorDanger    = "#ff0000"
	colorInfo      = "#00d7ff"
	colorText      = "#d0d0d0"
	colorTextHi    = "#ffffff"
	colorMuted     = "#626262"
	colorBorder    = "#585858"
	colorButtonBg  = "#444444"
	colorBackdrop  = "#000000"
	colorPageShade = "#c0c0c0"
)

// Button styles keyed by state.
var (
	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText)).
			Background(lipgloss.Color(colorButtonBg)).
			Padding(0, 2)

	buttonFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorTextHi)).
				Background(lipgloss.Color(colorPrimary)).
				Bold(true).
				Padding(0, 2)

	buttonDangerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorTextHi)).
				Background(lipgloss.Color("#af0000")).
				Padding(0, 2)

	buttonDangerFocusedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color(colorTextHi)).
					Background(lipgloss.Color(colorDanger)).
					Bold(true).
					Padding(0, 2)

	buttonPrimaryStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorTextHi)).
				Background(lipgloss.Color("#005f87")).
				Padding(0, 2)

	buttonPrimaryFocusedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color(colorTextHi)).
					Background(lipgloss.Color(colorInfo)).
					Bold(true).
					Padding(0, 2)

	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorMuted)).
				Background(lipgloss.Color("#262626")).
				Padding(0, 2)
)

// Box styles.
var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	titleDraggableStyle = titleStyle.Underline(true)

	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
)

// buttonStyleFor picks the style for a button's tag and state.
func buttonStyleFor(tag string, focused, enabled bool) lipgloss.Style {
	if !enabled {
		return buttonDisabledStyle
	}
	switch tag {
	case "red", "danger":
		if focused {
			return buttonDangerFocusedStyle
		}
		return buttonDangerStyle
	case "blue", "primary":
		if focused {
			return buttonPrimaryFocusedStyle
		}
		return buttonPrimaryStyle
	default:
		if focused {
			return buttonFocusedStyle
		}
		return buttonStyle
	}
}
