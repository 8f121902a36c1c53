package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mockview/internal/model"
)

type historyLoadedMsg struct {
	rows []model.InterviewSummary
	err  error
}

// HistoryPage lists completed interviews, newest first.
type HistoryPage struct {
	deps Deps
	keys KeyMap

	rows    []model.InterviewSummary
	cursor  int
	loading bool
	err     error
}

// NewHistoryPage creates the history page.
func NewHistoryPage(d Deps) *HistoryPage {
	return &HistoryPage{deps: d.withDefaults(), keys: DefaultKeyMap()}
}

func (p *HistoryPage) ID() string { return PageHistory }

func (p *HistoryPage) Init() tea.Cmd {
	p.loading = true
	api, candidate := p.deps.API, p.deps.Candidate
	return func() tea.Msg {
		rows, err := api.History(candidate)
		return historyLoadedMsg{rows: rows, err: err}
	}
}

func (p *HistoryPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		p.loading = false
		p.rows, p.err = msg.rows, msg.err
		p.cursor = min(p.cursor, max(len(p.rows)-1, 0))
		return nil, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Back):
			return nil, &PageNav{PageID: PageDashboard}
		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)
		case key.Matches(msg, p.keys.Down):
			p.cursor = min(p.cursor+1, max(len(p.rows)-1, 0))
		case key.Matches(msg, p.keys.Enter):
			if len(p.rows) > 0 {
				return nil, &PageNav{PageID: PageResults, Params: p.rows[p.cursor].ID}
			}
		}
	}
	return nil, nil
}

func (p *HistoryPage) View(width, height int) string {
	if p.loading {
		return renderLoadingPlaceholder(width, height, "Loading history")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Interview history"))
	b.WriteString("\n\n")
	switch {
	case p.err != nil:
		b.WriteString(errorStyle.Render("Error: " + p.err.Error()))
	case len(p.rows) == 0:
		b.WriteString(helpStyle.Render("No completed interviews yet."))
	default:
		b.WriteString(renderSummaries(p.rows, p.cursor))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓: choose | enter: results | b/esc: back | q: quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
