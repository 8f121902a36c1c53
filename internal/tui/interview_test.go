package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/mockview/internal/model"
)

func startInterview(t *testing.T, api *fakeAPI) (*InterviewPage, *tickRig) {
	t.Helper()
	rig := &tickRig{}
	p := NewInterviewPage(newTestDeps(api, rig))
	p.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	runCmd(p.Enter(question("iv-1", 1, 3)))
	if p.Controller() == nil {
		t.Fatal("controller not started")
	}
	return p, rig
}

func TestInterviewExpirySubmitsTimeoutAnswer(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	p, rig := startInterview(t, api)

	var subs []submittedMsg
	for i := 0; i < 30; i++ {
		subs = append(subs, submissions(advance(p, rig))...)
	}
	if len(subs) != 0 {
		t.Fatalf("submitted before the grace period: %+v", subs)
	}
	if p.Controller().SecondsRemaining() != 0 {
		t.Fatalf("seconds remaining=%d, want 0", p.Controller().SecondsRemaining())
	}
	if _, ok := p.TopModal().(*TimeUpModal); !ok {
		t.Fatalf("top modal=%T, want *TimeUpModal", p.TopModal())
	}

	subs = submissions(advance(p, rig))
	if len(subs) != 1 {
		t.Fatalf("submissions after grace=%d, want 1", len(subs))
	}
	got := subs[0].sub
	if got.Answer != model.TimeoutAnswer || got.Trigger != model.TriggerExpiry {
		t.Fatalf("submission=%+v, want timeout answer via expiry", got)
	}
	if got.InterviewID != "iv-1" || got.Candidate != "ada" || got.ID == "" {
		t.Fatalf("submission identity not filled: %+v", got)
	}
	if p.HasModal() {
		t.Fatal("time's up modal still open after the grace period")
	}
}

func TestInterviewShortcutSubmitsTypedAnswerOnce(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	p, _ := startInterview(t, api)

	p.Update(keyRunes("decorators wrap functions"))
	cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	subs := submissions(runCmd(cmd))
	if len(subs) != 1 {
		t.Fatalf("submissions=%d, want 1", len(subs))
	}
	if subs[0].sub.Answer != "decorators wrap functions" || subs[0].sub.Trigger != model.TriggerShortcut {
		t.Fatalf("submission=%+v", subs[0].sub)
	}

	cmd, _ = p.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if n := len(submissions(runCmd(cmd))); n != 0 {
		t.Fatalf("second shortcut produced %d submissions", n)
	}
	if p.button.label != "Submitting..." || !p.button.disabled {
		t.Fatalf("button=%+v, want disabled Submitting...", *p.button)
	}
}

func TestInterviewEscapeConfirmsSkip(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	p, _ := startInterview(t, api)

	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := p.TopModal().(*ConfirmModal); !ok {
		t.Fatalf("top modal=%T, want *ConfirmModal", p.TopModal())
	}
	cmd, _ := p.Update(keyRunes("n"))
	if n := len(submissions(runCmd(cmd))); n != 0 || p.Controller().Submitted() {
		t.Fatal("declining the skip submitted the answer")
	}
	if p.HasModal() {
		t.Fatal("confirm modal still open after declining")
	}

	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	cmd, _ = p.Update(keyRunes("y"))
	subs := submissions(runCmd(cmd))
	if len(subs) != 1 {
		t.Fatalf("submissions=%d, want 1", len(subs))
	}
	if !subs[0].sub.Skipped || subs[0].sub.Answer != model.SkippedAnswer {
		t.Fatalf("submission=%+v, want skipped", subs[0].sub)
	}
}

func TestInterviewEnterOnTimeUpSubmitsImmediately(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	p, rig := startInterview(t, api)
	for i := 0; i < 30; i++ {
		advance(p, rig)
	}

	cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if n := len(submissions(runCmd(cmd))); n != 1 {
		t.Fatalf("enter on time's up produced %d submissions, want 1", n)
	}
	if n := len(submissions(advance(p, rig))); n != 0 {
		t.Fatalf("grace timer submitted again: %d", n)
	}
}

func TestInterviewAdvancesAndCompletes(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{next: []model.CurrentQuestion{question("iv-1", 2, 2)}}
	p, _ := startInterview(t, api)

	cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	subs := submissions(runCmd(cmd))
	if len(subs) != 1 {
		t.Fatalf("submissions=%d, want 1", len(subs))
	}
	_, nav := p.Update(subs[0])
	if nav != nil {
		t.Fatalf("navigated away after first question: %+v", nav)
	}
	if p.current.Number != 2 || p.Controller().Submitted() {
		t.Fatalf("page did not load the next question: number=%d", p.current.Number)
	}

	cmd, _ = p.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	subs = submissions(runCmd(cmd))
	if len(subs) != 1 {
		t.Fatalf("second question submissions=%d, want 1", len(subs))
	}
	_, nav = p.Update(subs[0])
	if nav == nil || nav.PageID != PageResults || nav.Params != "iv-1" {
		t.Fatalf("nav=%+v, want results for iv-1", nav)
	}
}

func TestInterviewRetriesFailedSubmission(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{submitErr: errors.New("connection refused")}
	p, _ := startInterview(t, api)

	cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	msgs := runCmd(cmd)
	subs := submissions(msgs)
	if len(subs) != 1 || subs[0].err == nil {
		t.Fatalf("expected one failed submission, got %+v", subs)
	}
	p.Update(subs[0])
	if p.err == nil {
		t.Fatal("failure not surfaced")
	}

	api.submitErr = nil
	cmd, _ = p.Update(keyRunes("r"))
	retry := submissions(runCmd(cmd))
	if len(retry) != 1 || retry[0].sub.ID != subs[0].sub.ID {
		t.Fatalf("retry=%+v, want resend of %s", retry, subs[0].sub.ID)
	}
}

func TestInterviewGuardLeave(t *testing.T) {
	t.Parallel()

	p, _ := startInterview(t, &fakeAPI{})
	if p.GuardLeave(tea.Quit) {
		t.Fatal("empty answer should not block leaving")
	}

	p.Update(keyRunes("half an answer"))
	if !p.GuardLeave(tea.Quit) {
		t.Fatal("unsaved answer should block leaving")
	}
	cmd, _ := p.Update(keyRunes("y"))
	if !hasQuit(runCmd(cmd)) {
		t.Fatal("confirming leave did not quit")
	}
}

func TestInterviewStaleSubmissionIgnored(t *testing.T) {
	t.Parallel()

	p, _ := startInterview(t, &fakeAPI{})
	_, nav := p.Update(submittedMsg{
		sub: model.Submission{InterviewID: "other"},
		res: model.SubmitResult{Completed: true},
	})
	if nav != nil {
		t.Fatalf("stale submission navigated: %+v", nav)
	}
}

func TestInterviewViewRendersQuestion(t *testing.T) {
	t.Parallel()

	p, _ := startInterview(t, &fakeAPI{})
	out := p.View(120, 40)
	for _, want := range []string{"Question 1 of 3", "Question number 1?", "30s", submitLabel} {
		if !contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}
