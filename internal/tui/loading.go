package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// renderLoadingPlaceholder centres a spinner and label in the page area.
// The frame follows the wall clock, so any re-render advances it.
func renderLoadingPlaceholder(width, height int, label string) string {
	frame := spinnerFrames[time.Now().UnixMilli()/120%int64(len(spinnerFrames))]
	text := lipgloss.NewStyle().Foreground(ColorGray).Italic(true).Render(frame + " " + label + "…")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}
