package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/mockview/internal/session"
)

// taskIDs is shared by all schedulers so a tick left over from a previous
// page can never match a task of the current one.
var taskIDs atomic.Uint64

// schedTickMsg is delivered when a scheduled task is due.
type schedTickMsg struct {
	ID uint64
}

type task struct {
	id       uint64
	interval time.Duration
	repeat   bool
	fn       func()
	s        *Scheduler
}

func (t *task) Cancel() {
	delete(t.s.tasks, t.id)
}

// Scheduler implements session.Scheduler on top of tea.Tick. Callbacks run
// inside the page's Update, so they are serialized with key handling.
//
// Every and After only record a tick command; the page must return
// Drain() from Update for the ticks to start.
type Scheduler struct {
	tasks   map[uint64]*task
	pending []tea.Cmd
	tick    func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd
}

var _ session.Scheduler = (*Scheduler)(nil)

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[uint64]*task),
		tick:  tea.Tick,
	}
}

func (s *Scheduler) Every(d time.Duration, fn func()) session.Handle {
	return s.add(d, true, fn)
}

func (s *Scheduler) After(d time.Duration, fn func()) session.Handle {
	return s.add(d, false, fn)
}

func (s *Scheduler) add(d time.Duration, repeat bool, fn func()) *task {
	t := &task{
		id:       taskIDs.Add(1),
		interval: d,
		repeat:   repeat,
		fn:       fn,
		s:        s,
	}
	s.tasks[t.id] = t
	s.arm(t)
	return t
}

func (s *Scheduler) arm(t *task) {
	id := t.id
	s.pending = append(s.pending, s.tick(t.interval, func(time.Time) tea.Msg {
		return schedTickMsg{ID: id}
	}))
}

// Handle runs the task a tick belongs to. It reports false for ticks this
// scheduler does not own or whose task was cancelled.
func (s *Scheduler) Handle(msg schedTickMsg) bool {
	t, ok := s.tasks[msg.ID]
	if !ok {
		return false
	}
	if !t.repeat {
		delete(s.tasks, t.id)
	}
	t.fn()
	// fn may have cancelled its own handle
	if _, alive := s.tasks[t.id]; alive && t.repeat {
		s.arm(t)
	}
	return true
}

// Drain returns the tick commands recorded since the last call.
func (s *Scheduler) Drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// CancelAll drops every task.
func (s *Scheduler) CancelAll() {
	clear(s.tasks)
	s.pending = nil
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}
