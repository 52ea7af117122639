package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a scheduled task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task type constants
const (
	// TaskTypePairRevert turns a mismatched pair face down after the display delay
	TaskTypePairRevert = "pair_revert"
)

// ErrSchedulerStopped is returned by Schedule once the scheduler has been stopped.
var ErrSchedulerStopped = errors.New("scheduler stopped")

// Task represents a unit of deferred work
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// Handle refers to one scheduled task.
type Handle interface {
	// ID returns the scheduled task's identifier
	ID() uuid.UUID

	// Cancel prevents the task from running. It reports true only when the
	// task was still pending, i.e. this call is what stopped it.
	Cancel() bool

	// Status returns the task's current status
	Status() TaskStatus
}

// Scheduler runs tasks after a delay without blocking the caller.
type Scheduler interface {
	// Schedule arranges for task to run once delay has elapsed. Values from
	// ctx are visible to the task but ctx's cancellation is not: a task
	// outlives the request that scheduled it unless its handle is cancelled.
	Schedule(ctx context.Context, delay time.Duration, task Task) (Handle, error)
}

// detach keeps ctx's values and drops its deadline and cancellation.
func detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
