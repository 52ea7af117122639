package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimerSchedulerConfig holds configuration for the timer scheduler
type TimerSchedulerConfig struct {
	// ExecuteTimeout bounds a single task execution.
	// If zero, defaults to 5 seconds
	ExecuteTimeout time.Duration
}

// DefaultTimerSchedulerConfig returns a TimerSchedulerConfig with reasonable defaults
func DefaultTimerSchedulerConfig() TimerSchedulerConfig {
	return TimerSchedulerConfig{
		ExecuteTimeout: 5 * time.Second,
	}
}

// TimerScheduler runs each task on its own timer goroutine once its delay
// has elapsed. Stop cancels everything still pending and waits for running
// tasks to return.
type TimerScheduler struct {
	mu         sync.Mutex
	pending    map[uuid.UUID]*timerHandle
	stopped    bool
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TimerSchedulerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
}

// NewTimerScheduler creates a new TimerScheduler
func NewTimerScheduler(config TimerSchedulerConfig, logger *slog.Logger) *TimerScheduler {
	if config.ExecuteTimeout <= 0 {
		config.ExecuteTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger = logger.With("component", "timer_scheduler")

	return &TimerScheduler{
		pending:    make(map[uuid.UUID]*timerHandle),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(task Task, err error) {
			// Default error handler just logs the error
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (s *TimerScheduler) SetErrorHandler(handler func(task Task, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errHandler = handler
}

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(ctx context.Context, delay time.Duration, task Task) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, fmt.Errorf("schedule %s task: %w", task.Type(), ErrSchedulerStopped)
	}

	h := &timerHandle{
		scheduler: s,
		task:      task,
		ctx:       detach(ctx),
		status:    TaskStatusPending,
	}
	s.pending[task.ID()] = h

	// The callback takes s.mu first, so it cannot observe h before h.timer is set.
	h.timer = time.AfterFunc(delay, func() { s.run(h) })

	s.logger.Debug("task scheduled",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"delay", delay)

	return h, nil
}

// Pending returns the number of tasks waiting for their timer.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending task and waits for running ones to finish.
// It is safe to call more than once.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancelled := len(s.pending)
	for id, h := range s.pending {
		h.timer.Stop()
		h.status = TaskStatusCancelled
		delete(s.pending, id)
	}
	s.mu.Unlock()

	s.cancelFunc()
	s.wg.Wait()

	s.logger.Info("timer scheduler stopped", "cancelled_count", cancelled)
}

// run executes a task whose timer has fired
func (s *TimerScheduler) run(h *timerHandle) {
	s.mu.Lock()
	if h.status != TaskStatusPending || s.stopped {
		s.mu.Unlock()
		return
	}
	h.status = TaskStatusRunning
	delete(s.pending, h.task.ID())
	s.wg.Add(1)
	errHandler := s.errHandler
	s.mu.Unlock()

	defer s.wg.Done()

	logger := s.logger.With(
		"task_id", h.task.ID(),
		"task_type", h.task.Type(),
	)

	ctx, cancel := context.WithTimeout(h.ctx, s.config.ExecuteTimeout)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	logger.Debug("executing task")

	err := h.task.Execute(ctx)

	s.mu.Lock()
	if err != nil {
		h.status = TaskStatusFailed
	} else {
		h.status = TaskStatusCompleted
	}
	s.mu.Unlock()

	if err != nil {
		errHandler(h.task, err)
		return
	}
	logger.Debug("task completed successfully")
}

// timerHandle is the Handle returned by TimerScheduler
type timerHandle struct {
	scheduler *TimerScheduler
	task      Task
	ctx       context.Context
	timer     *time.Timer
	status    TaskStatus
}

func (h *timerHandle) ID() uuid.UUID {
	return h.task.ID()
}

func (h *timerHandle) Cancel() bool {
	s := h.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.status != TaskStatusPending {
		return false
	}
	h.timer.Stop()
	h.status = TaskStatusCancelled
	delete(s.pending, h.task.ID())

	s.logger.Debug("task cancelled",
		"task_id", h.task.ID(),
		"task_type", h.task.Type())
	return true
}

func (h *timerHandle) Status() TaskStatus {
	h.scheduler.mu.Lock()
	defer h.scheduler.mu.Unlock()
	return h.status
}

// Ensure TimerScheduler implements Scheduler
var _ Scheduler = (*TimerScheduler)(nil)
