package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/mockview/internal/model"
)

type fakeAPI struct {
	roles   []model.Role
	dash    model.Dashboard
	resume  *model.CurrentQuestion
	history []model.InterviewSummary
	results model.Results

	next      []model.CurrentQuestion
	submitErr error
	subs      []model.Submission
	started   []string
}

func (f *fakeAPI) Roles() ([]model.Role, error) { return f.roles, nil }

func (f *fakeAPI) Start(candidate, role string) (model.CurrentQuestion, error) {
	f.started = append(f.started, candidate+"/"+role)
	return question("iv-1", 1, 3), nil
}

func (f *fakeAPI) Resume(string) (model.CurrentQuestion, error) {
	if f.resume == nil {
		return model.CurrentQuestion{}, model.ErrNotFound
	}
	return *f.resume, nil
}

func (f *fakeAPI) Current(id, _ string) (model.CurrentQuestion, error) {
	return question(id, 1, 3), nil
}

func (f *fakeAPI) Submit(sub model.Submission) (model.SubmitResult, error) {
	f.subs = append(f.subs, sub)
	if f.submitErr != nil {
		return model.SubmitResult{}, f.submitErr
	}
	if len(f.next) == 0 {
		return model.SubmitResult{Score: 10, Completed: true}, nil
	}
	n := f.next[0]
	f.next = f.next[1:]
	return model.SubmitResult{Score: 42, Next: &n}, nil
}

func (f *fakeAPI) Results(string, string) (model.Results, error) { return f.results, nil }

func (f *fakeAPI) History(string) ([]model.InterviewSummary, error) { return f.history, nil }

func (f *fakeAPI) Dashboard(candidate string) (model.Dashboard, error) {
	d := f.dash
	d.Candidate = candidate
	return d, nil
}

func question(id string, number, total int) model.CurrentQuestion {
	return model.CurrentQuestion{
		InterviewID: id,
		Question: model.Question{
			ID:         int64(number),
			Role:       "python_developer",
			Text:       fmt.Sprintf("Question number %d?", number),
			Difficulty: "medium",
		},
		Number:   number,
		Total:    total,
		Progress: float64(number) / float64(total) * 100,
	}
}

// runCmd executes cmd and every command batched inside it, returning the
// non-nil messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func submissions(msgs []tea.Msg) []submittedMsg {
	var out []submittedMsg
	for _, m := range msgs {
		if s, ok := m.(submittedMsg); ok {
			out = append(out, s)
		}
	}
	return out
}

func hasQuit(msgs []tea.Msg) bool {
	for _, m := range msgs {
		if _, ok := m.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// tickRig hands out schedulers whose ticks are recorded instead of timed.
type tickRig struct {
	ticks *fakeTicks
	sched *Scheduler
}

func (r *tickRig) newScheduler() *Scheduler {
	r.sched, r.ticks = newTestScheduler()
	return r.sched
}

func newTestDeps(api *fakeAPI, rig *tickRig) Deps {
	n := 0
	return Deps{
		API:       api,
		Candidate: "ada",
		newID: func() string {
			n++
			return fmt.Sprintf("sub-%d", n)
		},
		newScheduler: rig.newScheduler,
	}
}

// advance delivers every armed tick to p once and returns the messages
// produced by the resulting commands.
func advance(p *InterviewPage, rig *tickRig) []tea.Msg {
	armed := rig.ticks.armed
	rig.ticks.armed = nil
	var out []tea.Msg
	for _, m := range armed {
		cmd, _ := p.Update(m)
		out = append(out, runCmd(cmd)...)
	}
	return out
}
