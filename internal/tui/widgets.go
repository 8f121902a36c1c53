package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mockview/internal/session"
)

const (
	answerMinRows = 3
	answerMaxRows = 12

	submitLabel = "Submit Answer"
)

// timerDisplay renders the countdown.
type timerDisplay struct {
	text    string
	urgency session.Urgency
}

func (d *timerDisplay) SetText(text string)          { d.text = text }
func (d *timerDisplay) SetUrgency(u session.Urgency) { d.urgency = u }

func (d *timerDisplay) View() string {
	style := timerStyle
	switch d.urgency {
	case session.UrgencyWarning:
		style = style.Foreground(ColorOrange)
	case session.UrgencyDanger:
		style = style.Foreground(ColorRed)
	}
	if d.urgency.Pulses() {
		style = style.Blink(true)
	}
	return style.Render("⏱ " + d.text)
}

// answerField adapts a textarea to session.AnswerField.
type answerField struct {
	ta     textarea.Model
	typing bool
}

func newAnswerField(width int) *answerField {
	ta := textarea.New()
	ta.Placeholder = "Type your answer here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(max(width, 20))
	ta.SetHeight(answerMinRows)
	return &answerField{ta: ta}
}

func (f *answerField) Value() string      { return f.ta.Value() }
func (f *answerField) SetValue(v string)  { f.ta.SetValue(v) }
func (f *answerField) Focus()             { f.ta.Focus() }
func (f *answerField) SetTyping(on bool)  { f.typing = on }
func (f *answerField) SetWidth(width int) { f.ta.SetWidth(max(width, 20)) }

// Resize fits the height to the wrapped content.
func (f *answerField) Resize() {
	width := max(f.ta.Width(), 1)
	rows := 0
	for _, line := range strings.Split(f.ta.Value(), "\n") {
		rows += max(1, (lipgloss.Width(line)+width-1)/width)
	}
	f.ta.SetHeight(min(max(rows, answerMinRows), answerMaxRows))
}

func (f *answerField) View() string {
	indicator := ""
	if f.typing {
		indicator = helpStyle.Render(fmt.Sprintf("✎ %d characters", len([]rune(f.ta.Value()))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, f.ta.View(), indicator)
}

// submitButton adapts the submit button to session.SubmitControl.
type submitButton struct {
	label    string
	disabled bool
	focused  bool
}

func newSubmitButton() *submitButton {
	return &submitButton{label: submitLabel}
}

func (b *submitButton) Disable()              { b.disabled = true }
func (b *submitButton) SetLabel(label string) { b.label = label }

func (b *submitButton) View() string {
	style := buttonStyle
	if b.disabled {
		style = disabledButtonStyle
	} else if b.focused {
		style = style.Underline(true).Bold(true)
	}
	return style.Render(b.label)
}
