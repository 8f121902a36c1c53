package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/mockview/internal/model"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

func newTestApp(api *fakeAPI) (*App, *tickRig) {
	rig := &tickRig{}
	return NewApp(NewPages(newTestDeps(api, rig))...), rig
}

func TestAppStartsOnDashboard(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(&fakeAPI{})
	if app.ActivePage() != PageDashboard {
		t.Fatalf("active page=%q, want dashboard", app.ActivePage())
	}
}

func TestAppNavMsgSwitchesPage(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(&fakeAPI{})
	app.Update(NavMsg{Nav: PageNav{PageID: PageHistory}})
	if app.ActivePage() != PageHistory {
		t.Fatalf("active page=%q, want history", app.ActivePage())
	}
	app.Update(NavMsg{Nav: PageNav{PageID: "missing"}})
	if app.ActivePage() != PageHistory {
		t.Fatal("unknown page changed the active page")
	}
}

func TestAppCtrlCQuitsWithoutGuard(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(&fakeAPI{})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !hasQuit(runCmd(cmd)) {
		t.Fatal("ctrl+c did not quit")
	}
}

func TestAppCtrlCAsksOnUnsavedAnswer(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(&fakeAPI{})
	app.Update(NavMsg{Nav: PageNav{PageID: PageInterview, Params: question("iv-1", 1, 2)}})
	app.Update(keyRunes("draft"))

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if hasQuit(runCmd(cmd)) {
		t.Fatal("ctrl+c quit despite an unsaved answer")
	}
	if !contains(app.View(), "unsaved answer") {
		t.Fatal("leave confirmation not shown")
	}
}

func TestAppInterviewWithoutParamsReturnsToDashboard(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(&fakeAPI{})
	_, cmd := app.Update(NavMsg{Nav: PageNav{PageID: PageInterview}})
	for _, msg := range runCmd(cmd) {
		app.Update(msg)
	}
	if app.ActivePage() != PageDashboard {
		t.Fatalf("active page=%q, want dashboard", app.ActivePage())
	}
}

func TestDashboardStartsInterview(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{roles: []model.Role{
		{Key: "python_developer", Label: "Python Developer"},
		{Key: "data_engineer", Label: "Data Engineer"},
	}}
	p := NewDashboardPage(newTestDeps(api, &tickRig{}))
	for _, msg := range runCmd(p.Init()) {
		p.Update(msg)
	}
	if p.resume != nil {
		t.Fatal("resume offered without an open interview")
	}

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	var nav *PageNav
	for _, msg := range runCmd(cmd) {
		_, nav = p.Update(msg)
	}
	if len(api.started) != 1 || api.started[0] != "ada/data_engineer" {
		t.Fatalf("started=%v", api.started)
	}
	if nav == nil || nav.PageID != PageInterview {
		t.Fatalf("nav=%+v, want interview", nav)
	}
}

func TestDashboardOffersResume(t *testing.T) {
	t.Parallel()

	open := question("iv-9", 2, 5)
	api := &fakeAPI{resume: &open}
	p := NewDashboardPage(newTestDeps(api, &tickRig{}))
	for _, msg := range runCmd(p.Init()) {
		p.Update(msg)
	}
	if !contains(p.View(100, 40), "question 2 of 5") {
		t.Fatal("resume hint not rendered")
	}
	_, nav := p.Update(keyRunes("c"))
	if nav == nil || nav.PageID != PageInterview {
		t.Fatalf("nav=%+v, want interview", nav)
	}
	if q, ok := nav.Params.(model.CurrentQuestion); !ok || q.InterviewID != "iv-9" {
		t.Fatalf("params=%+v", nav.Params)
	}
}

func TestHistoryOpensResults(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{history: []model.InterviewSummary{
		{ID: "iv-2", Role: "web_developer", TotalScore: 80},
		{ID: "iv-1", Role: "data_engineer", TotalScore: 30},
	}}
	p := NewHistoryPage(newTestDeps(api, &tickRig{}))
	for _, msg := range runCmd(p.Init()) {
		p.Update(msg)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, nav := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if nav == nil || nav.PageID != PageResults || nav.Params != "iv-1" {
		t.Fatalf("nav=%+v, want results for iv-1", nav)
	}
}

func TestResultsRender(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{results: model.Results{
		Interview: model.Interview{ID: "iv-1", Role: "python_developer", TotalScore: 72.5, Completed: true},
		Answers: []model.AnswerDetail{
			{Answer: model.Answer{Text: "a", Score: 90, Feedback: "Excellent answer!"}, Question: model.Question{Text: "What is a decorator?"}},
			{Answer: model.Answer{Text: "b", Score: 20, Feedback: "Needs work."}, Question: model.Question{Text: "What is the GIL?"}},
		},
		Insights: model.Insights{
			PerformanceLevel: "Good",
			PerformanceColor: "info",
			Strengths:        []string{"Strong technical knowledge"},
			Resources:        []model.Resource{{Name: "Python Docs", URL: "https://docs.python.org"}},
		},
	}}
	p := NewResultsPage(newTestDeps(api, &tickRig{}))
	for _, msg := range runCmd(p.Enter("iv-1")) {
		p.Update(msg)
	}
	out := p.View(120, 200)
	for _, want := range []string{"72.50%", "Good", "What is a decorator?", "Python Docs", "Strong technical knowledge"} {
		if !contains(out, want) {
			t.Fatalf("results view missing %q", want)
		}
	}
}

func TestConfirmModalAnswersOnce(t *testing.T) {
	t.Parallel()

	var answers []bool
	m := NewConfirmModal("c", "sure?", func(ok bool) { answers = append(answers, ok) })
	if pop, _ := m.Update(keyRunes("x")); pop {
		t.Fatal("unrelated key closed the modal")
	}
	if pop, _ := m.Update(keyRunes("y")); !pop {
		t.Fatal("yes did not close the modal")
	}
	m.Update(keyRunes("n"))
	if len(answers) != 1 || !answers[0] {
		t.Fatalf("answers=%v, want [true]", answers)
	}
}
