package tui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/mockview/internal/model"
	"github.com/tinytelemetry/mockview/internal/session"
)

// submittedMsg carries the service's answer to a submission.
type submittedMsg struct {
	sub model.Submission
	res model.SubmitResult
	err error
}

// InterviewPage shows one timed question at a time.
type InterviewPage struct {
	modalStack

	deps Deps
	keys KeyMap
	help help.Model

	current model.CurrentQuestion
	sched   *Scheduler
	ctl     *session.Controller
	display *timerDisplay
	field   *answerField
	button  *submitButton
	bar     progress.Model
	body    viewport.Model

	width, height  int
	scrollPending  bool
	questionOffset int

	queued   []tea.Cmd
	lastSub  *model.Submission
	feedback string
	err      error
}

// NewInterviewPage creates the question page.
func NewInterviewPage(d Deps) *InterviewPage {
	d = d.withDefaults()
	return &InterviewPage{
		deps: d,
		keys: DefaultKeyMap(),
		help: help.New(),
		bar:  progress.New(progress.WithDefaultGradient()),
		body: viewport.New(0, 0),
	}
}

func (p *InterviewPage) ID() string    { return PageInterview }
func (p *InterviewPage) Init() tea.Cmd { return nil }

// Enter starts the page on the given model.CurrentQuestion.
func (p *InterviewPage) Enter(params interface{}) tea.Cmd {
	q, ok := params.(model.CurrentQuestion)
	if !ok {
		return navigate(PageDashboard, nil)
	}
	p.load(q)
	return tea.Batch(textarea.Blink, p.flush())
}

// Controller exposes the running controller, nil before Enter.
func (p *InterviewPage) Controller() *session.Controller {
	return p.ctl
}

func (p *InterviewPage) load(q model.CurrentQuestion) {
	p.teardown()

	p.current = q
	p.err = nil
	p.lastSub = nil
	p.modals = nil
	p.display = &timerDisplay{}
	p.field = newAnswerField(p.fieldWidth())
	p.button = newSubmitButton()
	p.sched = p.deps.newScheduler()

	deps := session.Deps{
		Scheduler: p.sched,
		Display:   p.display,
		Field:     p.field,
		Control:   p.button,
		Form:      pageForm{p},
		Modal:     pageModal{p},
		Confirmer: pageConfirmer{p},
		Viewport:  pageViewport{p},
		Drafts:    p.deps.Drafts,
	}
	p.ctl = session.New(p.deps.Session, deps)
	p.ctl.Start()
}

func (p *InterviewPage) teardown() {
	if p.ctl != nil {
		p.ctl.Stop()
	}
	if p.sched != nil {
		p.sched.CancelAll()
	}
}

func (p *InterviewPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.bar.Width = max(msg.Width-24, 10)
		if p.field != nil {
			p.field.SetWidth(p.fieldWidth())
			p.field.Resize()
		}
		return nil, nil

	case schedTickMsg:
		if p.sched != nil {
			p.sched.Handle(msg)
		}
		return p.flush(), nil

	case submittedMsg:
		return p.handleSubmitted(msg)

	case tea.KeyMsg:
		if p.ctl == nil {
			return nil, nil
		}
		if p.HasModal() {
			cmd := p.updateTop(msg)
			return tea.Batch(cmd, p.flush()), nil
		}
		return tea.Batch(p.handleKey(msg), p.flush()), nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		p.body, cmd = p.body.Update(msg)
		return cmd, nil
	}

	if p.field != nil {
		var cmd tea.Cmd
		p.field.ta, cmd = p.field.ta.Update(msg)
		return cmd, nil
	}
	return nil, nil
}

func (p *InterviewPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Submit):
		p.ctl.HandleShortcut(session.ShortcutSubmit)
		return nil
	case key.Matches(msg, p.keys.Skip):
		p.ctl.HandleShortcut(session.ShortcutSkip)
		return nil
	case key.Matches(msg, p.keys.Help):
		p.PushModal(NewHelpModal())
		return nil
	case key.Matches(msg, p.keys.PageUp, p.keys.PageDown):
		var cmd tea.Cmd
		p.body, cmd = p.body.Update(msg)
		return cmd
	case msg.Type == tea.KeyTab:
		p.toggleFocus()
		return nil
	case msg.Type == tea.KeyEnter && p.button.focused:
		p.ctl.Submit(model.TriggerManual)
		return nil
	case msg.String() == "r" && p.err != nil && p.lastSub != nil:
		return p.send(*p.lastSub)
	}

	if p.ctl.Submitted() {
		return nil
	}
	before := p.field.Value()
	var cmd tea.Cmd
	p.field.ta, cmd = p.field.ta.Update(msg)
	if p.field.Value() != before {
		p.ctl.OnInput()
	}
	return cmd
}

func (p *InterviewPage) toggleFocus() {
	if p.ctl.Submitted() {
		return
	}
	p.button.focused = !p.button.focused
	if p.button.focused {
		p.field.ta.Blur()
	} else {
		p.field.ta.Focus()
	}
}

// flush returns the commands produced by the controller since the last call.
func (p *InterviewPage) flush() tea.Cmd {
	cmds := p.queued
	p.queued = nil
	if p.sched != nil {
		cmds = append(cmds, p.sched.Drain())
	}
	return tea.Batch(cmds...)
}

func (p *InterviewPage) send(sub model.Submission) tea.Cmd {
	p.lastSub = &sub
	p.err = nil
	submit := p.deps.Submit
	return func() tea.Msg {
		res, err := submit(sub)
		return submittedMsg{sub: sub, res: res, err: err}
	}
}

func (p *InterviewPage) handleSubmitted(msg submittedMsg) (tea.Cmd, *PageNav) {
	if msg.sub.InterviewID != p.current.InterviewID {
		return nil, nil
	}
	if msg.err != nil {
		log.Printf("tui: submit %s: %v", msg.sub.ID, msg.err)
		p.err = msg.err
		return nil, nil
	}
	p.feedback = fmt.Sprintf("Last answer scored %.0f%%", msg.res.Score)
	if msg.res.Completed || msg.res.Next == nil {
		p.teardown()
		return nil, &PageNav{PageID: PageResults, Params: p.current.InterviewID}
	}
	p.load(*msg.res.Next)
	return tea.Batch(textarea.Blink, p.flush()), nil
}

// GuardLeave asks for confirmation when an unsaved answer would be lost.
func (p *InterviewPage) GuardLeave(quit tea.Cmd) bool {
	if p.ctl == nil || !p.ctl.BeforeLeave() {
		return false
	}
	p.PushModal(NewConfirmModal("confirm-leave", session.LeavePrompt, func(ok bool) {
		if ok {
			p.teardown()
			p.queued = append(p.queued, quit)
		}
	}))
	return true
}

func (p *InterviewPage) fieldWidth() int {
	return max(min(p.width-6, 100), 20)
}

func (p *InterviewPage) View(width, height int) string {
	if top := p.TopModal(); top != nil {
		return top.View(width, height)
	}
	if p.ctl == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpStyle.Render("No interview in progress"))
	}

	q := p.current
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(fmt.Sprintf("Question %d of %d", q.Number, q.Total)),
		"  ",
		p.bar.ViewAs(q.Progress/100),
		"  ",
		p.display.View(),
	)

	card := sectionStyle.Width(max(width-4, 20)).Render(lipgloss.JoinVertical(lipgloss.Left,
		helpStyle.Render(strings.ReplaceAll(q.Question.Role, "_", " ")+" · "+q.Question.Difficulty),
		lipgloss.NewStyle().Bold(true).Render(q.Question.Text),
	))

	status := p.feedback
	if p.err != nil {
		status = errorStyle.Render("Submission failed: "+p.err.Error()) + helpStyle.Render("  r: retry (saved locally)")
	}

	top := lipgloss.JoinVertical(lipgloss.Left, header, "")
	p.questionOffset = lipgloss.Height(top)
	content := lipgloss.JoinVertical(lipgloss.Left,
		top,
		card,
		"",
		p.field.View(),
		p.button.View(),
		"",
		status,
	)

	footer := p.help.ShortHelpView(p.keys.ShortHelp())
	p.body.Width = width
	p.body.Height = max(height-lipgloss.Height(footer), 1)
	p.body.SetContent(content)
	if p.scrollPending {
		p.scrollPending = false
		p.body.SetYOffset(p.questionOffset)
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.body.View(), footer)
}

// Collaborator adapters. They all run inside Update.

type pageForm struct{ p *InterviewPage }

func (f pageForm) Submit(sub model.Submission) {
	p := f.p
	sub.ID = p.deps.newID()
	sub.InterviewID = p.current.InterviewID
	sub.Candidate = p.deps.Candidate
	p.queued = append(p.queued, p.send(sub))
}

type pageModal struct{ p *InterviewPage }

func (m pageModal) Show() {
	p := m.p
	p.PushModal(&TimeUpModal{onEnter: func() {
		p.ctl.Submit(model.TriggerExpiry)
	}})
}

func (m pageModal) Hide() { m.p.RemoveModal(timeUpModalID) }

type pageConfirmer struct{ p *InterviewPage }

func (c pageConfirmer) Confirm(prompt string, done func(bool)) {
	c.p.PushModal(NewConfirmModal("confirm:"+prompt, prompt, done))
}

type pageViewport struct{ p *InterviewPage }

func (v pageViewport) Width() int        { return v.p.width }
func (v pageViewport) ScrollToQuestion() { v.p.scrollPending = true }
