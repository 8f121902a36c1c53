package tui

import tea "github.com/charmbracelet/bubbletea"

// Page identifiers.
const (
	PageDashboard = "dashboard"
	PageInterview = "interview"
	PageResults   = "results"
	PageHistory   = "history"
)

// Page represents a top-level screen in the TUI (dashboard, interview, etc.).
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// PageNav is returned from Update to request a page switch.
type PageNav struct {
	PageID string
	Params interface{}
}

// ParamReceiver is implemented by pages that take navigation parameters.
// Enter is called instead of Init when the page becomes active.
type ParamReceiver interface {
	Enter(params interface{}) tea.Cmd
}

// LeaveGuard is implemented by pages that may block quitting. GuardLeave
// returns true when the page took over and will run quit itself once the
// user confirms.
type LeaveGuard interface {
	GuardLeave(quit tea.Cmd) bool
}

// navigate returns a command that switches pages from outside Update.
func navigate(pageID string, params interface{}) tea.Cmd {
	return func() tea.Msg { return NavMsg{PageNav{PageID: pageID, Params: params}} }
}

// NavMsg asks the App to switch pages.
type NavMsg struct {
	Nav PageNav
}
