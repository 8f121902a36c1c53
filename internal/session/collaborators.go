// Package session drives one timed question page: the countdown, urgency
// feedback, the submission triggers and local draft persistence.
//
// Everything runs on the caller's event loop. The Controller never blocks and
// never spawns goroutines; it only reacts to calls from the host (key presses,
// input events) and to callbacks it registered with the Scheduler.
package session

import (
	"time"

	"github.com/tinytelemetry/mockview/internal/model"
)

// Handle is a scheduled task. Cancel is permanent and safe to call twice.
type Handle interface {
	Cancel()
}

// Scheduler runs callbacks on the host's event loop.
type Scheduler interface {
	// Every runs fn every d until the handle is cancelled.
	Every(d time.Duration, fn func()) Handle
	// After runs fn once after d.
	After(d time.Duration, fn func()) Handle
}

// TimerDisplay renders the countdown. SetUrgency replaces any previous
// urgency; UrgencyDanger implies the pulse animation.
type TimerDisplay interface {
	SetText(text string)
	SetUrgency(u Urgency)
}

// AnswerField is the answer input.
type AnswerField interface {
	Value() string
	SetValue(v string)
	Focus()
	// Resize fits the visible height to the content.
	Resize()
	// SetTyping toggles the typing indicator.
	SetTyping(active bool)
}

// SubmitControl is the submit button.
type SubmitControl interface {
	Disable()
	SetLabel(label string)
}

// Form performs the actual submission.
type Form interface {
	Submit(sub model.Submission)
}

// Modal is the "time's up" notice.
type Modal interface {
	Show()
	Hide()
}

// DraftSlot is a local key-value persistence slot.
type DraftSlot interface {
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
	Remove(key string) error
}

// Confirmer asks the user a yes/no question and reports the answer later.
type Confirmer interface {
	Confirm(prompt string, done func(confirmed bool))
}

// Viewport exposes the visible area of the page.
type Viewport interface {
	Width() int
	ScrollToQuestion()
}

// Deps bundles the collaborators of a Controller. Only Scheduler is
// required; a nil collaborator is treated as an absent element and the
// behaviour that needs it is skipped.
type Deps struct {
	Scheduler Scheduler
	Display   TimerDisplay
	Field     AnswerField
	Control   SubmitControl
	Form      Form
	Modal     Modal
	Drafts    DraftSlot
	Confirmer Confirmer
	Viewport  Viewport
}
