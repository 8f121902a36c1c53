package tui

import (
	"github.com/google/uuid"

	"github.com/tinytelemetry/mockview/internal/model"
	"github.com/tinytelemetry/mockview/internal/session"
)

// Deps is what the pages need from the outside world.
type Deps struct {
	API model.PracticeAPI

	// Submit delivers an answer. It defaults to API.Submit; the client
	// routes it through the outbox.
	Submit    func(model.Submission) (model.SubmitResult, error)
	Drafts    session.DraftSlot
	Session   session.Config
	Candidate string

	newID        func() string
	newScheduler func() *Scheduler
}

func (d Deps) withDefaults() Deps {
	if d.Submit == nil && d.API != nil {
		d.Submit = d.API.Submit
	}
	if d.Candidate == "" {
		d.Candidate = model.DefaultCandidate
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	if d.newScheduler == nil {
		d.newScheduler = NewScheduler
	}
	return d
}

// NewPages builds the client's pages, dashboard first.
func NewPages(d Deps) []Page {
	d = d.withDefaults()
	return []Page{
		NewDashboardPage(d),
		NewInterviewPage(d),
		NewResultsPage(d),
		NewHistoryPage(d),
	}
}
