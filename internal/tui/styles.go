package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorNavy   = lipgloss.Color("#1B2A41")
	ColorBlue   = lipgloss.Color("#4EA1FF")
	ColorGreen  = lipgloss.Color("#3DDC84")
	ColorYellow = lipgloss.Color("#F5C518")
	ColorOrange = lipgloss.Color("#FF9F1C")
	ColorRed    = lipgloss.Color("#FF4D4F")
	ColorGray   = lipgloss.Color("#8A8F98")
	ColorWhite  = lipgloss.Color("#F2F4F8")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorNavy).
			Padding(0, 1)

	activeSectionStyle = sectionStyle.
				BorderForeground(ColorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorNavy).
			Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 2)

	disabledButtonStyle = buttonStyle.
				Background(ColorGray)

	timerStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true).
			Padding(0, 1)
)

// levelColor maps an insight colour name to the palette.
func levelColor(name string) lipgloss.Color {
	switch name {
	case "success":
		return ColorGreen
	case "info":
		return ColorBlue
	case "warning":
		return ColorOrange
	case "danger":
		return ColorRed
	default:
		return ColorWhite
	}
}

// scoreColor colours a 0-100 score with the feedback tiers.
func scoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 70:
		return ColorGreen
	case score >= 40:
		return ColorYellow
	default:
		return ColorRed
	}
}
