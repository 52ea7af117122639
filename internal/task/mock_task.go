package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockTask is a simple implementation of the Task interface for testing
type MockTask struct {
	TaskID    uuid.UUID
	TaskType  string
	ExecuteFn func(ctx context.Context) error

	mu    sync.Mutex
	calls int
}

// NewMockTask creates a new MockTask with the given type that succeeds when executed
func NewMockTask(taskType string) *MockTask {
	return &MockTask{
		TaskID:    uuid.New(),
		TaskType:  taskType,
		ExecuteFn: func(ctx context.Context) error { return nil },
	}
}

// ID returns the task's unique identifier
func (t *MockTask) ID() uuid.UUID {
	return t.TaskID
}

// Type returns the task type identifier
func (t *MockTask) Type() string {
	return t.TaskType
}

// Execute runs the task logic
func (t *MockTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return t.ExecuteFn(ctx)
}

// Calls returns how many times Execute has run
func (t *MockTask) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
