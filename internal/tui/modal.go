package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is a self-contained modal that owns its own Update/View lifecycle.
// Modals are managed via a stack on the page; the topmost modal receives
// all key input and renders over the page.
type Modal interface {
	// ID returns a unique identifier used to deduplicate pushes.
	ID() string
	// Update processes a message. Return pop=true to close the modal.
	Update(msg tea.Msg) (pop bool, cmd tea.Cmd)
	// View renders the modal content for the given terminal dimensions.
	View(width, height int) string
}

// modalStack is embedded by pages that show modals.
type modalStack struct {
	modals []Modal
}

// PushModal pushes a modal unless one with the same ID is already open.
func (s *modalStack) PushModal(m Modal) {
	for _, existing := range s.modals {
		if existing.ID() == m.ID() {
			return
		}
	}
	s.modals = append(s.modals, m)
}

// PopModal removes the topmost modal.
func (s *modalStack) PopModal() {
	if len(s.modals) > 0 {
		s.modals = s.modals[:len(s.modals)-1]
	}
}

// RemoveModal removes the modal with the given ID wherever it is.
func (s *modalStack) RemoveModal(id string) {
	for i, m := range s.modals {
		if m.ID() == id {
			s.modals = append(s.modals[:i], s.modals[i+1:]...)
			return
		}
	}
}

// TopModal returns the topmost modal or nil.
func (s *modalStack) TopModal() Modal {
	if len(s.modals) == 0 {
		return nil
	}
	return s.modals[len(s.modals)-1]
}

// HasModal reports whether any modal is open.
func (s *modalStack) HasModal() bool {
	return len(s.modals) > 0
}

// updateTop routes msg to the topmost modal and pops it when asked.
func (s *modalStack) updateTop(msg tea.Msg) tea.Cmd {
	top := s.TopModal()
	if top == nil {
		return nil
	}
	pop, cmd := top.Update(msg)
	if pop {
		s.RemoveModal(top.ID())
	}
	return cmd
}

// renderModalFrame draws a bordered box with a title and a status line,
// centered in the terminal.
func renderModalFrame(title, body, status string, accent lipgloss.Color, width, height int) string {
	boxWidth := min(max(width-8, 20), 72)
	contentWidth := boxWidth - 4

	header := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(accent).
		Bold(true).
		Render(title)

	content := lipgloss.NewStyle().
		Width(contentWidth).
		Padding(1, 0).
		Render(body)

	parts := []string{header, content}
	if status != "" {
		parts = append(parts, helpStyle.Render(status))
	}

	box := lipgloss.NewStyle().
		Width(boxWidth).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// ConfirmModal asks a yes/no question and reports the answer through done.
type ConfirmModal struct {
	id     string
	prompt string
	keys   KeyMap
	done   func(bool)
}

// NewConfirmModal creates a confirmation modal.
func NewConfirmModal(id, prompt string, done func(bool)) *ConfirmModal {
	return &ConfirmModal{id: id, prompt: prompt, keys: DefaultKeyMap(), done: done}
}

func (m *ConfirmModal) ID() string { return m.id }

func (m *ConfirmModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	switch {
	case key.Matches(km, m.keys.Yes):
		m.answer(true)
		return true, nil
	case key.Matches(km, m.keys.No):
		m.answer(false)
		return true, nil
	}
	return false, nil
}

func (m *ConfirmModal) answer(v bool) {
	if m.done != nil {
		done := m.done
		m.done = nil
		done(v)
	}
}

func (m *ConfirmModal) View(width, height int) string {
	return renderModalFrame("Please confirm", m.prompt, "y/enter: yes | n/esc: no", ColorOrange, width, height)
}

// TimeUpModal is the notice shown while the grace period runs.
// Enter submits right away through onEnter.
type TimeUpModal struct {
	onEnter func()
}

const timeUpModalID = "time-up"

func (m *TimeUpModal) ID() string { return timeUpModalID }

func (m *TimeUpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.Type == tea.KeyEnter {
		if m.onEnter != nil {
			m.onEnter()
		}
		return true, nil
	}
	return false, nil
}

func (m *TimeUpModal) View(width, height int) string {
	body := "Your time for this question is over.\nYour answer is being submitted automatically."
	return renderModalFrame("⏰ Time's up!", body, "enter: submit now", ColorRed, width, height)
}

// HelpModal lists the key bindings in a scrollable viewport.
type HelpModal struct {
	vp   viewport.Model
	help help.Model
	keys KeyMap
}

// NewHelpModal creates the help modal.
func NewHelpModal() *HelpModal {
	h := help.New()
	h.ShowAll = true
	return &HelpModal{vp: viewport.New(0, 0), help: h, keys: DefaultKeyMap()}
}

func (m *HelpModal) ID() string { return "help" }

func (m *HelpModal) Update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(km, m.keys.Escape, m.keys.Help, m.keys.Quit) {
			return true, nil
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return false, cmd
}

func (m *HelpModal) View(width, height int) string {
	contentWidth := min(max(width-12, 16), 68)
	m.vp.Width = contentWidth
	m.vp.Height = max(height-10, 3)
	m.help.Width = contentWidth
	m.vp.SetContent(helpText + "\n\n" + m.help.View(m.keys))
	return renderModalFrame("Help", m.vp.View(), "up/down: scroll | ?/esc: close", ColorBlue, width, height)
}

var helpText = strings.TrimSpace(`
Each question has a countdown. At 20 seconds the timer turns amber,
at 10 seconds red. When it reaches zero a notice appears and your
answer is submitted three seconds later.

Your answer is saved locally every few seconds and restored if the
client restarts before you submit.`)
