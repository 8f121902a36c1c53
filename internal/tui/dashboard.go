package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mockview/internal/model"
)

type dashboardLoadedMsg struct {
	roles  []model.Role
	dash   model.Dashboard
	resume *model.CurrentQuestion
	err    error
}

type startedMsg struct {
	q   model.CurrentQuestion
	err error
}

// DashboardPage lets the candidate pick a role and shows their record.
type DashboardPage struct {
	deps Deps
	keys KeyMap

	roles   []model.Role
	dash    model.Dashboard
	resume  *model.CurrentQuestion
	cursor  int
	loading bool
	err     error
}

// NewDashboardPage creates the landing page.
func NewDashboardPage(d Deps) *DashboardPage {
	return &DashboardPage{deps: d.withDefaults(), keys: DefaultKeyMap()}
}

func (p *DashboardPage) ID() string { return PageDashboard }

func (p *DashboardPage) Init() tea.Cmd {
	p.loading = true
	api, candidate := p.deps.API, p.deps.Candidate
	return func() tea.Msg {
		var msg dashboardLoadedMsg
		if msg.roles, msg.err = api.Roles(); msg.err != nil {
			return msg
		}
		if msg.dash, msg.err = api.Dashboard(candidate); msg.err != nil {
			return msg
		}
		q, err := api.Resume(candidate)
		switch {
		case err == nil:
			msg.resume = &q
		case !errors.Is(err, model.ErrNotFound):
			msg.err = err
		}
		return msg
	}
}

func (p *DashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		p.loading = false
		p.err = msg.err
		if msg.err == nil {
			p.roles, p.dash, p.resume = msg.roles, msg.dash, msg.resume
			p.cursor = min(p.cursor, max(len(p.roles)-1, 0))
		}
		return nil, nil

	case startedMsg:
		p.loading = false
		if msg.err != nil {
			p.err = msg.err
			return nil, nil
		}
		return nil, &PageNav{PageID: PageInterview, Params: msg.q}

	case tea.KeyMsg:
		if p.loading {
			return nil, nil
		}
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)
		case key.Matches(msg, p.keys.Down):
			p.cursor = min(p.cursor+1, max(len(p.roles)-1, 0))
		case key.Matches(msg, p.keys.Enter):
			return p.start(), nil
		case msg.String() == "c" && p.resume != nil:
			return nil, &PageNav{PageID: PageInterview, Params: *p.resume}
		case key.Matches(msg, p.keys.History):
			return nil, &PageNav{PageID: PageHistory}
		case key.Matches(msg, p.keys.Refresh):
			return p.Init(), nil
		}
	}
	return nil, nil
}

func (p *DashboardPage) start() tea.Cmd {
	if len(p.roles) == 0 {
		return nil
	}
	p.loading = true
	p.err = nil
	api, candidate, role := p.deps.API, p.deps.Candidate, p.roles[p.cursor].Key
	return func() tea.Msg {
		q, err := api.Start(candidate, role)
		return startedMsg{q: q, err: err}
	}
}

func (p *DashboardPage) View(width, height int) string {
	if p.loading {
		return renderLoadingPlaceholder(width, height, "Loading roles")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Mock Interview Practice"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Signed in as " + p.deps.Candidate))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Interviews completed: %d    Average score: %.2f%%",
		p.dash.TotalInterviews, p.dash.AverageScore)
	b.WriteString(sectionStyle.Render(stats))
	b.WriteString("\n\n")

	if p.resume != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(ColorYellow).Render(
			fmt.Sprintf("An interview is in progress (question %d of %d). Press c to continue.",
				p.resume.Number, p.resume.Total)))
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render("Choose a role"))
	b.WriteString("\n")
	for i, r := range p.roles {
		line := "  " + r.Label
		if i == p.cursor {
			line = selectedStyle.Render("▸ " + r.Label)
		}
		b.WriteString(line + "\n")
	}

	if len(p.dash.Recent) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Recent interviews"))
		b.WriteString("\n")
		b.WriteString(renderSummaries(p.dash.Recent, -1))
	}

	if p.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + p.err.Error()))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: choose | enter: start | c: continue | h: history | r: refresh | q: quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// renderSummaries renders interview rows, highlighting row selected.
func renderSummaries(rows []model.InterviewSummary, selected int) string {
	var b strings.Builder
	for i, s := range rows {
		score := lipgloss.NewStyle().Foreground(scoreColor(s.TotalScore)).Render(fmt.Sprintf("%6.2f%%", s.TotalScore))
		line := fmt.Sprintf("%-20s %s  %s", roleTitle(s.Role), score, s.CompletedAt.Local().Format("2006-01-02 15:04"))
		if i == selected {
			line = selectedStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func roleTitle(role string) string {
	words := strings.Split(role, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
