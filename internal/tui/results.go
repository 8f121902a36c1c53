package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mockview/internal/model"
)

type resultsLoadedMsg struct {
	id  string
	res model.Results
	err error
}

// ResultsPage shows the report of a completed interview.
type ResultsPage struct {
	deps Deps
	keys KeyMap
	vp   viewport.Model

	id      string
	res     *model.Results
	loading bool
	err     error
}

// NewResultsPage creates the report page.
func NewResultsPage(d Deps) *ResultsPage {
	return &ResultsPage{deps: d.withDefaults(), keys: DefaultKeyMap(), vp: viewport.New(0, 0)}
}

func (p *ResultsPage) ID() string    { return PageResults }
func (p *ResultsPage) Init() tea.Cmd { return nil }

// Enter loads the results of the interview whose id is passed as params.
func (p *ResultsPage) Enter(params interface{}) tea.Cmd {
	id, _ := params.(string)
	if id == "" {
		return navigate(PageDashboard, nil)
	}
	p.id = id
	p.res = nil
	p.err = nil
	p.loading = true
	api, candidate := p.deps.API, p.deps.Candidate
	return func() tea.Msg {
		res, err := api.Results(id, candidate)
		return resultsLoadedMsg{id: id, res: res, err: err}
	}
}

func (p *ResultsPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case resultsLoadedMsg:
		if msg.id != p.id {
			return nil, nil
		}
		p.loading = false
		p.err = msg.err
		if msg.err == nil {
			res := msg.res
			p.res = &res
		}
		p.vp.GotoTop()
		return nil, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Back):
			return nil, &PageNav{PageID: PageDashboard}
		case key.Matches(msg, p.keys.History):
			return nil, &PageNav{PageID: PageHistory}
		}
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd, nil
}

func (p *ResultsPage) View(width, height int) string {
	if p.loading {
		return renderLoadingPlaceholder(width, height, "Scoring interview")
	}
	footer := helpStyle.Render("↑/↓/pgup/pgdn: scroll | b/esc: dashboard | h: history | q: quit")
	p.vp.Width = width
	p.vp.Height = max(height-1, 1)

	if p.err != nil {
		p.vp.SetContent(errorStyle.Render("Could not load results: " + p.err.Error()))
	} else if p.res != nil {
		p.vp.SetContent(renderResults(*p.res, max(width-4, 30)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.vp.View(), footer)
}

func renderResults(r model.Results, width int) string {
	ins := r.Insights
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s interview results", roleTitle(r.Interview.Role))))
	b.WriteString("\n\n")
	level := lipgloss.NewStyle().Foreground(levelColor(ins.PerformanceColor)).Bold(true).Render(ins.PerformanceLevel)
	b.WriteString(fmt.Sprintf("Overall score: %.2f%%   Performance: %s\n", r.Interview.TotalScore, level))
	b.WriteString(fmt.Sprintf("Strong answers: %d   Weak answers: %d\n\n", ins.HighPerforming, ins.LowPerforming))

	b.WriteString(renderScoreChart(r.Answers, width))
	b.WriteString("\n\n")

	if len(ins.Strengths) > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(ColorGreen).Bold(true).Render("Strengths"))
		b.WriteString("\n")
		for _, s := range ins.Strengths {
			b.WriteString("  ✓ " + s + "\n")
		}
		b.WriteString("\n")
	}
	if len(ins.Weaknesses) > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(ColorOrange).Bold(true).Render("Areas to improve"))
		b.WriteString("\n")
		for _, s := range ins.Weaknesses {
			b.WriteString("  • " + s + "\n")
		}
		b.WriteString("\n")
	}

	for i, a := range r.Answers {
		score := lipgloss.NewStyle().Foreground(scoreColor(a.Answer.Score)).Render(fmt.Sprintf("%.2f%%", a.Answer.Score))
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Q%d. %s", i+1, a.Question.Text)),
			"Your answer: "+a.Answer.Text,
			"Score: "+score,
			a.Answer.Feedback,
			helpStyle.Render("Model answer: "+a.Question.ModelAnswer),
		)
		b.WriteString(sectionStyle.Width(width).Render(body))
		b.WriteString("\n")
	}

	if len(ins.Resources) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Suggested resources"))
		b.WriteString("\n")
		for _, res := range ins.Resources {
			b.WriteString(fmt.Sprintf("  %s  %s\n", res.Name, helpStyle.Render(res.URL)))
		}
	}
	return b.String()
}

// renderScoreChart draws one bar per answered question on a 0-100 scale.
func renderScoreChart(answers []model.AnswerDetail, width int) string {
	if len(answers) == 0 {
		return helpStyle.Render("No answers recorded")
	}
	barWidth := 3
	chartWidth := min(width, len(answers)*(barWidth+1)+2)
	bc := barchart.New(chartWidth, 8,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
		barchart.WithMaxValue(100),
	)
	for i, a := range answers {
		color := scoreColor(a.Answer.Score)
		bc.Push(barchart.BarData{
			Label: fmt.Sprintf("Q%d", i+1),
			Values: []barchart.BarValue{{
				Name:  fmt.Sprintf("Q%d", i+1),
				Value: a.Answer.Score,
				Style: lipgloss.NewStyle().Foreground(color).Background(color),
			}},
		})
	}
	bc.Draw()
	return lipgloss.JoinVertical(lipgloss.Left, helpStyle.Render("Score per question"), bc.View())
}
