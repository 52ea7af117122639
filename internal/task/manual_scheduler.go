package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ManualScheduler is a Scheduler driven by an explicit clock. Nothing runs
// until Advance or RunPending is called, and tasks then run synchronously on
// the calling goroutine in due order. It is meant for tests and for front
// ends that step time themselves.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	entries []*manualHandle
	errs    []error
}

// NewManualScheduler creates a ManualScheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(ctx context.Context, delay time.Duration, task Task) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delay < 0 {
		delay = 0
	}
	s.seq++
	h := &manualHandle{
		scheduler: s,
		task:      task,
		ctx:       detach(ctx),
		due:       s.now + delay,
		seq:       s.seq,
		status:    TaskStatusPending,
	}
	s.entries = append(s.entries, h)
	return h, nil
}

// Now returns the scheduler's current clock reading.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of tasks that have not run or been cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Advance moves the clock forward by d and runs every task that has become
// due, including tasks scheduled by those tasks. It returns the first error
// a task returned during this call.
func (s *ManualScheduler) Advance(d time.Duration) error {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
	return s.runDue(false)
}

// RunPending runs every pending task regardless of its due time.
func (s *ManualScheduler) RunPending() error {
	return s.runDue(true)
}

// Errors returns every error tasks have returned so far.
func (s *ManualScheduler) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

func (s *ManualScheduler) runDue(all bool) error {
	var firstErr error
	for {
		h := s.popNext(all)
		if h == nil {
			return firstErr
		}

		err := h.task.Execute(h.ctx)

		s.mu.Lock()
		if err != nil {
			h.status = TaskStatusFailed
			s.errs = append(s.errs, err)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			h.status = TaskStatusCompleted
		}
		s.mu.Unlock()
	}
}

// popNext removes and returns the earliest due entry, or nil.
func (s *ManualScheduler) popNext(all bool) *manualHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return nil
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		if s.entries[i].due != s.entries[j].due {
			return s.entries[i].due < s.entries[j].due
		}
		return s.entries[i].seq < s.entries[j].seq
	})

	next := s.entries[0]
	if !all && next.due > s.now {
		return nil
	}
	if all && next.due > s.now {
		s.now = next.due
	}
	s.entries = s.entries[1:]
	next.status = TaskStatusRunning
	return next
}

func (s *ManualScheduler) remove(h *manualHandle) {
	for i, e := range s.entries {
		if e == h {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

type manualHandle struct {
	scheduler *ManualScheduler
	task      Task
	ctx       context.Context
	due       time.Duration
	seq       uint64
	status    TaskStatus
}

func (h *manualHandle) ID() uuid.UUID {
	return h.task.ID()
}

func (h *manualHandle) Cancel() bool {
	s := h.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.status != TaskStatusPending {
		return false
	}
	h.status = TaskStatusCancelled
	s.remove(h)
	return true
}

func (h *manualHandle) Status() TaskStatus {
	h.scheduler.mu.Lock()
	defer h.scheduler.mu.Unlock()
	return h.status
}

// Ensure ManualScheduler implements Scheduler
var _ Scheduler = (*ManualScheduler)(nil)
