package session

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tinytelemetry/mockview/internal/model"
)

const (
	// DraftKey is the persistence slot holding the in-progress answer.
	DraftKey = "interview_current_answer"

	SubmittingLabel = "Submitting..."
	SkipPrompt      = "Are you sure you want to skip this question?"
	LeavePrompt     = "You have an unsaved answer. Are you sure you want to leave?"
)

// Config holds the timing parameters of a question page.
type Config struct {
	Duration          time.Duration // countdown budget, whole seconds
	TickInterval      time.Duration
	GracePeriod       time.Duration
	AutosaveInterval  time.Duration
	ScrollDelay       time.Duration
	CompactBreakpoint int
}

// DefaultConfig returns the standard 30 second question configuration.
func DefaultConfig() Config {
	return Config{
		Duration:          model.DefaultQuestionDuration,
		TickInterval:      time.Second,
		GracePeriod:       model.DefaultGracePeriod,
		AutosaveInterval:  model.DefaultAutosaveInterval,
		ScrollDelay:       500 * time.Millisecond,
		CompactBreakpoint: model.DefaultCompactBreakpoint,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Duration <= 0 {
		c.Duration = d.Duration
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = d.GracePeriod
	}
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = d.AutosaveInterval
	}
	if c.ScrollDelay <= 0 {
		c.ScrollDelay = d.ScrollDelay
	}
	if c.CompactBreakpoint <= 0 {
		c.CompactBreakpoint = d.CompactBreakpoint
	}
	return c
}

// Shortcut is a global keyboard action.
type Shortcut int

const (
	ShortcutSubmit Shortcut = iota
	ShortcutSkip
)

// Controller owns the countdown and submission state of one question page.
// It is not safe for concurrent use; all calls must come from the host's
// event loop, the same loop the Scheduler delivers callbacks on.
type Controller struct {
	cfg  Config
	deps Deps

	secondsRemaining int
	submitted        bool
	started          bool
	expired          bool

	countdown Handle
	autosave  Handle
}

// New creates a controller. Call Start once the page is interactive.
func New(cfg Config, deps Deps) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:              cfg,
		deps:             deps,
		secondsRemaining: int(cfg.Duration / time.Second),
	}
}

// SecondsRemaining returns the countdown value, never negative.
func (c *Controller) SecondsRemaining() int {
	return max(c.secondsRemaining, 0)
}

// Submitted reports whether the page has submitted.
func (c *Controller) Submitted() bool {
	return c.submitted
}

// Start initializes the page. Subsequent calls do nothing.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true

	c.startCountdown()

	if f := c.deps.Field; f != nil {
		f.Focus()
	}

	c.restoreDraft()

	if c.deps.Drafts != nil {
		c.autosave = c.deps.Scheduler.Every(c.cfg.AutosaveInterval, c.saveDraft)
	}

	if vp := c.deps.Viewport; vp != nil && vp.Width() <= c.cfg.CompactBreakpoint {
		c.deps.Scheduler.After(c.cfg.ScrollDelay, func() {
			if vp.Width() <= c.cfg.CompactBreakpoint {
				vp.ScrollToQuestion()
			}
		})
	}
}

// Stop cancels the repeating tasks when the page goes away. A pending grace
// timer is left alone; it fires into an already submitted controller.
func (c *Controller) Stop() {
	if c.countdown != nil {
		c.countdown.Cancel()
		c.countdown = nil
	}
	if c.autosave != nil {
		c.autosave.Cancel()
		c.autosave = nil
	}
}

func (c *Controller) startCountdown() {
	d := c.deps.Display
	if d == nil {
		return
	}
	d.SetText(formatSeconds(c.secondsRemaining))
	d.SetUrgency(Classify(c.secondsRemaining))
	c.countdown = c.deps.Scheduler.Every(c.cfg.TickInterval, c.tick)
}

func (c *Controller) tick() {
	if c.countdown == nil {
		return
	}
	c.secondsRemaining--

	c.deps.Display.SetText(formatSeconds(c.secondsRemaining))
	c.deps.Display.SetUrgency(UrgencyNone)
	c.deps.Display.SetUrgency(Classify(c.secondsRemaining))

	if c.secondsRemaining <= 0 {
		c.countdown.Cancel()
		c.countdown = nil
		c.expire()
	}
}

func (c *Controller) expire() {
	if c.expired {
		return
	}
	c.expired = true
	if c.submitted {
		return
	}

	if m := c.deps.Modal; m != nil {
		m.Show()
	}
	c.deps.Scheduler.After(c.cfg.GracePeriod, func() {
		if m := c.deps.Modal; m != nil {
			m.Hide()
		}
		c.submit(model.TriggerExpiry, false)
	})
}

// Submit sends the current answer, substituting the timeout message for an
// empty answer. It returns false when nothing was submitted.
func (c *Controller) Submit(trigger model.Trigger) bool {
	return c.submit(trigger, false)
}

// Skip replaces the answer with the skip marker and submits it.
func (c *Controller) Skip() bool {
	if c.submitted {
		return false
	}
	if f := c.deps.Field; f != nil {
		f.SetValue(model.SkippedAnswer)
	}
	return c.submit(model.TriggerSkip, true)
}

func (c *Controller) submit(trigger model.Trigger, skipped bool) bool {
	if c.submitted {
		return false
	}

	answer := model.TimeoutAnswer
	if f := c.deps.Field; f != nil {
		if strings.TrimSpace(f.Value()) == "" {
			f.SetValue(model.TimeoutAnswer)
		}
		answer = f.Value()
	}
	if skipped {
		answer = model.SkippedAnswer
	}

	return c.guardedSubmit(model.Submission{
		Answer:  answer,
		Trigger: trigger,
		Skipped: skipped,
	})
}

// guardedSubmit is the single check-then-set point shared by every trigger.
func (c *Controller) guardedSubmit(sub model.Submission) bool {
	if c.submitted || c.deps.Form == nil {
		return false
	}
	c.submitted = true

	if ctl := c.deps.Control; ctl != nil {
		ctl.Disable()
		ctl.SetLabel(SubmittingLabel)
	}
	if s := c.deps.Drafts; s != nil {
		if err := s.Remove(DraftKey); err != nil {
			log.Printf("session: clearing draft: %v", err)
		}
	}

	c.deps.Form.Submit(sub)
	return true
}

// HandleShortcut runs a global keyboard action. It reports whether the key
// was consumed so the host can suppress its default behaviour.
func (c *Controller) HandleShortcut(s Shortcut) bool {
	switch s {
	case ShortcutSubmit:
		c.Submit(model.TriggerShortcut)
		return true
	case ShortcutSkip:
		if c.submitted || c.deps.Confirmer == nil {
			return true
		}
		c.deps.Confirmer.Confirm(SkipPrompt, func(confirmed bool) {
			if confirmed {
				c.Skip()
			}
		})
		return true
	}
	return false
}

// OnInput must be called after every edit of the answer field.
func (c *Controller) OnInput() {
	f := c.deps.Field
	if f == nil {
		return
	}
	f.Resize()
	f.SetTyping(len(f.Value()) > 0)
}

// BeforeLeave reports whether leaving the page should ask for confirmation.
func (c *Controller) BeforeLeave() bool {
	if c.submitted || c.deps.Field == nil {
		return false
	}
	return strings.TrimSpace(c.deps.Field.Value()) != ""
}

func (c *Controller) restoreDraft() {
	f, s := c.deps.Field, c.deps.Drafts
	if f == nil || s == nil {
		return
	}
	if strings.TrimSpace(f.Value()) != "" {
		return
	}
	saved, ok, err := s.Load(DraftKey)
	if err != nil {
		log.Printf("session: loading draft: %v", err)
		return
	}
	if !ok || saved == "" {
		return
	}
	f.SetValue(saved)
	c.OnInput()
}

func (c *Controller) saveDraft() {
	f := c.deps.Field
	if f == nil || c.submitted {
		return
	}
	v := f.Value()
	if strings.TrimSpace(v) == "" {
		return
	}
	if err := c.deps.Drafts.Save(DraftKey, v); err != nil {
		log.Printf("session: autosave: %v", err)
	}
}

func formatSeconds(n int) string {
	return fmt.Sprintf("%ds", max(n, 0))
}
