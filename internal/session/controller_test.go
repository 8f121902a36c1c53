package session

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/tinytelemetry/mockview/internal/model"
)

// manualScheduler is a virtual clock. Advance fires due tasks in time order,
// one callback at a time, like a single-threaded event loop.
type manualScheduler struct {
	now    time.Duration
	nextID int
	tasks  map[int]*manualTask
}

type manualTask struct {
	id        int
	due       time.Duration
	every     time.Duration
	fn        func()
	cancelled bool
}

func (t *manualTask) Cancel() { t.cancelled = true }

func newManualScheduler() *manualScheduler {
	return &manualScheduler{tasks: make(map[int]*manualTask)}
}

func (s *manualScheduler) add(d, every time.Duration, fn func()) *manualTask {
	s.nextID++
	t := &manualTask{id: s.nextID, due: s.now + d, every: every, fn: fn}
	s.tasks[t.id] = t
	return t
}

func (s *manualScheduler) Every(d time.Duration, fn func()) Handle { return s.add(d, d, fn) }
func (s *manualScheduler) After(d time.Duration, fn func()) Handle { return s.add(d, 0, fn) }

func (s *manualScheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		var due []*manualTask
		for _, t := range s.tasks {
			if t.cancelled {
				delete(s.tasks, t.id)
				continue
			}
			if t.due <= end {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].due == due[j].due {
				return due[i].id < due[j].id
			}
			return due[i].due < due[j].due
		})
		t := due[0]
		s.now = t.due
		if t.every > 0 {
			t.due += t.every
		} else {
			delete(s.tasks, t.id)
		}
		t.fn()
	}
	s.now = end
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

type fakeDisplay struct {
	text      string
	urgency   Urgency
	history   []string
	urgencies []Urgency
}

func (d *fakeDisplay) SetText(text string) {
	d.text = text
	d.history = append(d.history, text)
}

func (d *fakeDisplay) SetUrgency(u Urgency) {
	d.urgency = u
	d.urgencies = append(d.urgencies, u)
}

type fakeField struct {
	value   string
	focused bool
	resizes int
	typing  bool
}

func (f *fakeField) Value() string         { return f.value }
func (f *fakeField) SetValue(v string)     { f.value = v }
func (f *fakeField) Focus()                { f.focused = true }
func (f *fakeField) Resize()               { f.resizes++ }
func (f *fakeField) SetTyping(active bool) { f.typing = active }

type fakeControl struct {
	disabled bool
	label    string
}

func (c *fakeControl) Disable()              { c.disabled = true }
func (c *fakeControl) SetLabel(label string) { c.label = label }

type fakeForm struct {
	submissions []model.Submission
}

func (f *fakeForm) Submit(sub model.Submission) { f.submissions = append(f.submissions, sub) }

type fakeModal struct {
	visible bool
	shows   int
	hides   int
}

func (m *fakeModal) Show() { m.visible = true; m.shows++ }
func (m *fakeModal) Hide() { m.visible = false; m.hides++ }

type memSlot struct {
	values  map[string]string
	saveErr error
}

func newMemSlot() *memSlot { return &memSlot{values: make(map[string]string)} }

func (s *memSlot) Load(key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memSlot) Save(key, value string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.values[key] = value
	return nil
}

func (s *memSlot) Remove(key string) error {
	delete(s.values, key)
	return nil
}

type scriptedConfirmer struct {
	answer  bool
	prompts []string
}

func (c *scriptedConfirmer) Confirm(prompt string, done func(bool)) {
	c.prompts = append(c.prompts, prompt)
	done(c.answer)
}

type fakeViewport struct {
	width    int
	scrolled int
}

func (v *fakeViewport) Width() int        { return v.width }
func (v *fakeViewport) ScrollToQuestion() { v.scrolled++ }

type harness struct {
	sched     *manualScheduler
	display   *fakeDisplay
	field     *fakeField
	control   *fakeControl
	form      *fakeForm
	modal     *fakeModal
	slot      *memSlot
	confirmer *scriptedConfirmer
	viewport  *fakeViewport
	ctrl      *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sched:     newManualScheduler(),
		display:   &fakeDisplay{},
		field:     &fakeField{},
		control:   &fakeControl{},
		form:      &fakeForm{},
		modal:     &fakeModal{},
		slot:      newMemSlot(),
		confirmer: &scriptedConfirmer{},
		viewport:  &fakeViewport{width: 1280},
	}
	h.ctrl = New(DefaultConfig(), h.deps())
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		Scheduler: h.sched,
		Display:   h.display,
		Field:     h.field,
		Control:   h.control,
		Form:      h.form,
		Modal:     h.modal,
		Drafts:    h.slot,
		Confirmer: h.confirmer,
		Viewport:  h.viewport,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		seconds int
		want    Urgency
	}{
		{30, UrgencyNone},
		{21, UrgencyNone},
		{20, UrgencyWarning},
		{11, UrgencyWarning},
		{10, UrgencyDanger},
		{1, UrgencyDanger},
		{0, UrgencyDanger},
		{-1, UrgencyDanger},
	}
	for _, tt := range tests {
		if got := Classify(tt.seconds); got != tt.want {
			t.Errorf("Classify(%d) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
	if !UrgencyDanger.Pulses() || UrgencyWarning.Pulses() || UrgencyNone.Pulses() {
		t.Error("only danger should pulse")
	}
}

func TestStartRendersInitialStateAndFocuses(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()

	if h.display.text != "30s" {
		t.Errorf("initial display = %q, want 30s", h.display.text)
	}
	if !h.field.focused {
		t.Error("answer field was not focused")
	}
	if h.ctrl.Submitted() {
		t.Error("submitted before any action")
	}
}

func TestCountdownTwentyTicksReachesDanger(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()

	h.sched.Advance(20 * time.Second)

	if h.display.text != "10s" {
		t.Errorf("display after 20 ticks = %q, want 10s", h.display.text)
	}
	if h.display.urgency != UrgencyDanger {
		t.Errorf("urgency after 20 ticks = %v, want danger", h.display.urgency)
	}
	if got := h.ctrl.SecondsRemaining(); got != 10 {
		t.Errorf("SecondsRemaining = %d, want 10", got)
	}
}

func TestCountdownDecreasesByOneAndStops(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()

	h.sched.Advance(60 * time.Second)

	// Initial render plus exactly 30 ticks.
	if len(h.display.history) != 31 {
		t.Fatalf("display updates = %d, want 31", len(h.display.history))
	}
	for i, text := range h.display.history {
		want := formatSeconds(30 - i)
		if text != want {
			t.Errorf("update %d = %q, want %q", i, text, want)
		}
	}
	if h.ctrl.SecondsRemaining() != 0 {
		t.Errorf("SecondsRemaining = %d, want 0", h.ctrl.SecondsRemaining())
	}
}

func TestUrgencyClearedBeforeEachClassification(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.display.urgencies = nil

	h.sched.Advance(time.Second)

	if len(h.display.urgencies) != 2 || h.display.urgencies[0] != UrgencyNone {
		t.Fatalf("urgency calls = %v, want clear then classify", h.display.urgencies)
	}
}

func TestExpiryWithEmptyFieldSubmitsFallbackOnce(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()

	h.sched.Advance(30 * time.Second)
	if !h.modal.visible {
		t.Fatal("time's up modal not shown at expiry")
	}
	if len(h.form.submissions) != 0 {
		t.Fatal("submitted before grace period elapsed")
	}

	h.sched.Advance(3 * time.Second)

	if h.modal.visible {
		t.Error("modal still visible after grace period")
	}
	if h.field.value != model.TimeoutAnswer {
		t.Errorf("field = %q, want fallback", h.field.value)
	}
	if len(h.form.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(h.form.submissions))
	}
	sub := h.form.submissions[0]
	if sub.Answer != model.TimeoutAnswer || sub.Trigger != model.TriggerExpiry {
		t.Errorf("submission = %+v", sub)
	}

	h.sched.Advance(time.Minute)
	if len(h.form.submissions) != 1 {
		t.Errorf("submissions after more time = %d, want 1", len(h.form.submissions))
	}
}

func TestExpiryKeepsTypedAnswer(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "goroutines are cheap"

	h.sched.Advance(33 * time.Second)

	if len(h.form.submissions) != 1 || h.form.submissions[0].Answer != "goroutines are cheap" {
		t.Fatalf("submissions = %+v", h.form.submissions)
	}
}

func TestGraceTimerFiresAfterManualSubmitWithoutResubmitting(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "late answer"

	h.sched.Advance(30 * time.Second)
	if !h.ctrl.Submit(model.TriggerManual) {
		t.Fatal("manual submit during grace period was rejected")
	}

	h.sched.Advance(3 * time.Second)

	if h.modal.hides != 1 {
		t.Errorf("modal hides = %d, want 1", h.modal.hides)
	}
	if len(h.form.submissions) != 1 || h.form.submissions[0].Trigger != model.TriggerManual {
		t.Errorf("submissions = %+v", h.form.submissions)
	}
}

func TestExpiryAfterSubmitShowsNoModal(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "done early"
	h.ctrl.Submit(model.TriggerManual)

	h.sched.Advance(40 * time.Second)

	if h.modal.shows != 0 {
		t.Errorf("modal shown %d times after submission", h.modal.shows)
	}
	if len(h.form.submissions) != 1 {
		t.Errorf("submissions = %d, want 1", len(h.form.submissions))
	}
}

func TestSubmitIsIdempotentAcrossTriggers(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "answer"

	results := []bool{
		h.ctrl.Submit(model.TriggerManual),
		h.ctrl.HandleShortcut(ShortcutSubmit) && len(h.form.submissions) == 2,
		h.ctrl.Skip(),
		h.ctrl.Submit(model.TriggerExpiry),
	}

	if !results[0] {
		t.Fatal("first submit rejected")
	}
	for i, ok := range results[1:] {
		if ok {
			t.Errorf("repeat trigger %d submitted again", i+1)
		}
	}
	if len(h.form.submissions) != 1 {
		t.Errorf("submissions = %d, want 1", len(h.form.submissions))
	}
	if h.field.value != "answer" {
		t.Errorf("skip after submit mutated field to %q", h.field.value)
	}
}

func TestSubmitDisablesControlAndClearsDraft(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "hello"
	h.sched.Advance(5 * time.Second)
	if h.slot.values[DraftKey] != "hello" {
		t.Fatalf("draft = %q before submit", h.slot.values[DraftKey])
	}

	h.ctrl.Submit(model.TriggerManual)

	if !h.control.disabled || h.control.label != SubmittingLabel {
		t.Errorf("control = %+v", h.control)
	}
	if _, ok := h.slot.values[DraftKey]; ok {
		t.Error("draft slot not cleared at submission")
	}
}

func TestCtrlEnterSubmitsWithoutChangingField(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "x"
	h.slot.values[DraftKey] = "x"

	if !h.ctrl.HandleShortcut(ShortcutSubmit) {
		t.Error("submit shortcut not consumed")
	}

	if len(h.form.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(h.form.submissions))
	}
	if h.field.value != "x" || h.form.submissions[0].Answer != "x" {
		t.Errorf("field = %q, submitted = %q", h.field.value, h.form.submissions[0].Answer)
	}
	if h.form.submissions[0].Trigger != model.TriggerShortcut {
		t.Errorf("trigger = %q", h.form.submissions[0].Trigger)
	}
	if !h.ctrl.Submitted() {
		t.Error("submitted flag not set")
	}
	if _, ok := h.slot.values[DraftKey]; ok {
		t.Error("draft slot not cleared")
	}
}

func TestEscapeDeclinedChangesNothing(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "half an answer"
	h.confirmer.answer = false

	if !h.ctrl.HandleShortcut(ShortcutSkip) {
		t.Error("skip shortcut not consumed")
	}

	if len(h.confirmer.prompts) != 1 || h.confirmer.prompts[0] != SkipPrompt {
		t.Errorf("prompts = %v", h.confirmer.prompts)
	}
	if h.field.value != "half an answer" {
		t.Errorf("field mutated to %q", h.field.value)
	}
	if h.ctrl.Submitted() || len(h.form.submissions) != 0 {
		t.Error("declined skip submitted")
	}
}

func TestEscapeConfirmedSkips(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "half an answer"
	h.confirmer.answer = true

	h.ctrl.HandleShortcut(ShortcutSkip)

	if h.field.value != model.SkippedAnswer {
		t.Errorf("field = %q, want skip marker", h.field.value)
	}
	if len(h.form.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(h.form.submissions))
	}
	sub := h.form.submissions[0]
	if !sub.Skipped || sub.Trigger != model.TriggerSkip || sub.Answer != model.SkippedAnswer {
		t.Errorf("submission = %+v", sub)
	}
}

func TestAutosaveOnlyWhenNonEmpty(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()

	h.field.value = "   "
	h.sched.Advance(5 * time.Second)
	if _, ok := h.slot.values[DraftKey]; ok {
		t.Fatal("whitespace-only draft was saved")
	}

	h.field.value = "hello"
	h.sched.Advance(4 * time.Second)
	if _, ok := h.slot.values[DraftKey]; ok {
		t.Fatal("draft saved before the autosave tick")
	}
	h.sched.Advance(time.Second)
	if got := h.slot.values[DraftKey]; got != "hello" {
		t.Errorf("draft = %q, want hello", got)
	}
}

func TestDraftRestoredIntoEmptyField(t *testing.T) {
	first := newHarness(t)
	first.ctrl.Start()
	first.field.value = "hello"
	first.sched.Advance(5 * time.Second)

	// Reload: a new page over the same slot.
	second := newHarness(t)
	second.slot = first.slot
	second.ctrl = New(DefaultConfig(), second.deps())
	second.ctrl.Start()

	if second.field.value != "hello" {
		t.Errorf("restored field = %q, want hello", second.field.value)
	}
	if second.field.resizes != 1 || !second.field.typing {
		t.Errorf("restore did not replay the input handler: resizes=%d typing=%v",
			second.field.resizes, second.field.typing)
	}
}

func TestDraftNotRestoredOverExistingContent(t *testing.T) {
	h := newHarness(t)
	h.slot.values[DraftKey] = "stale"
	h.field.value = "server rendered"
	h.ctrl.Start()

	if h.field.value != "server rendered" {
		t.Errorf("field = %q, want untouched", h.field.value)
	}
}

func TestDraftRoundTripPreservesContent(t *testing.T) {
	text := "line one\n\t<b>\"quoted\"</b> & ünïcödé 🚀\n  trailing  "
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = text
	h.sched.Advance(5 * time.Second)

	reload := newHarness(t)
	reload.slot = h.slot
	reload.ctrl = New(DefaultConfig(), reload.deps())
	reload.ctrl.Start()

	if reload.field.value != text {
		t.Errorf("round trip = %q, want %q", reload.field.value, text)
	}
}

func TestAutosaveErrorIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.slot.saveErr = errors.New("disk full")
	h.ctrl.Start()
	h.field.value = "hello"

	h.sched.Advance(10 * time.Second)

	if h.ctrl.Submitted() {
		t.Error("autosave failure changed submission state")
	}
}

func TestBeforeLeave(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()

	if h.ctrl.BeforeLeave() {
		t.Error("empty field should leave silently")
	}
	h.field.value = "draft"
	if !h.ctrl.BeforeLeave() {
		t.Error("unsaved answer should ask before leaving")
	}
	h.ctrl.Submit(model.TriggerManual)
	if h.ctrl.BeforeLeave() {
		t.Error("submitted page should leave silently")
	}
}

func TestOnInputTogglesTypingIndicator(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()

	h.field.value = "a"
	h.ctrl.OnInput()
	if !h.field.typing || h.field.resizes != 1 {
		t.Errorf("typing=%v resizes=%d after input", h.field.typing, h.field.resizes)
	}
	h.field.value = ""
	h.ctrl.OnInput()
	if h.field.typing {
		t.Error("typing indicator still active on empty field")
	}
}

func TestCompactViewportScrollsAfterDelay(t *testing.T) {
	h := newHarness(t)
	h.viewport.width = 600
	h.ctrl.Start()

	h.sched.Advance(499 * time.Millisecond)
	if h.viewport.scrolled != 0 {
		t.Fatal("scrolled before the delay")
	}
	h.sched.Advance(time.Millisecond)
	if h.viewport.scrolled != 1 {
		t.Errorf("scrolled = %d, want 1", h.viewport.scrolled)
	}
}

func TestWideViewportDoesNotScroll(t *testing.T) {
	h := newHarness(t)
	h.viewport.width = 769
	h.ctrl.Start()
	h.sched.Advance(time.Second)
	if h.viewport.scrolled != 0 {
		t.Errorf("scrolled = %d on a wide viewport", h.viewport.scrolled)
	}
}

func TestAbsentElementsAreTolerated(t *testing.T) {
	sched := newManualScheduler()
	form := &fakeForm{}
	c := New(DefaultConfig(), Deps{Scheduler: sched, Form: form})
	c.Start()
	c.OnInput()
	c.HandleShortcut(ShortcutSkip)
	if c.BeforeLeave() {
		t.Error("no field means nothing to lose")
	}

	// Without a display there is no countdown to expire.
	sched.Advance(time.Minute)
	if len(form.submissions) != 0 {
		t.Fatalf("submissions = %d without a countdown", len(form.submissions))
	}

	if !c.Submit(model.TriggerManual) {
		t.Fatal("submit without a field was rejected")
	}
	if form.submissions[0].Answer != model.TimeoutAnswer {
		t.Errorf("answer = %q, want fallback", form.submissions[0].Answer)
	}
}

func TestSubmitWithoutFormKeepsPageOpen(t *testing.T) {
	h := newHarness(t)
	h.form = nil
	deps := h.deps()
	deps.Form = nil
	h.ctrl = New(DefaultConfig(), deps)
	h.ctrl.Start()

	if h.ctrl.Submit(model.TriggerManual) {
		t.Error("submit without a form reported success")
	}
	if h.ctrl.Submitted() {
		t.Error("submitted flag set without a form")
	}
}

func TestStopCancelsRepeatingTasks(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.ctrl.Stop()

	h.sched.Advance(time.Minute)

	if h.display.text != "30s" {
		t.Errorf("display changed after Stop: %q", h.display.text)
	}
	if h.sched.pending() != 0 {
		t.Errorf("pending tasks = %d after Stop", h.sched.pending())
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.ctrl.Start()
	h.sched.Advance(time.Second)
	if h.display.text != "29s" {
		t.Errorf("display = %q, want a single countdown", h.display.text)
	}
}

func TestNoAutosaveAfterSubmission(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Start()
	h.field.value = "final"
	h.ctrl.Submit(model.TriggerManual)

	h.sched.Advance(10 * time.Second)

	if _, ok := h.slot.values[DraftKey]; ok {
		t.Error("draft written back after submission")
	}
}
