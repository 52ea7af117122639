package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestNewTimerScheduler(t *testing.T) {
	t.Parallel()

	s := NewTimerScheduler(TimerSchedulerConfig{}, setupTestLogger())
	defer s.Stop()

	assert.Equal(t, 5*time.Second, s.config.ExecuteTimeout, "zero timeout should fall back to default")
	assert.Equal(t, DefaultTimerSchedulerConfig(), s.config)
	assert.Equal(t, 0, s.Pending())
}

func TestTimerScheduler_RunsAfterDelay(t *testing.T) {
	t.Parallel()

	s := NewTimerScheduler(DefaultTimerSchedulerConfig(), setupTestLogger())
	defer s.Stop()

	done := make(chan time.Time, 1)
	task := NewMockTask("test")
	task.ExecuteFn = func(ctx context.Context) error {
		done <- time.Now()
		return nil
	}

	start := time.Now()
	h, err := s.Schedule(context.Background(), 30*time.Millisecond, task)
	require.NoError(t, err)
	assert.Equal(t, task.ID(), h.ID())
	assert.Equal(t, TaskStatusPending, h.Status())

	select {
	case ranAt := <-done:
		assert.GreaterOrEqual(t, ranAt.Sub(start), 30*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}

	assert.Eventually(t, func() bool {
		return h.Status() == TaskStatusCompleted
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Pending())
	assert.False(t, h.Cancel(), "a finished task cannot be cancelled")
}

func TestTimerScheduler_Cancel(t *testing.T) {
	t.Parallel()

	s := NewTimerScheduler(DefaultTimerSchedulerConfig(), setupTestLogger())
	defer s.Stop()

	task := NewMockTask("test")
	h, err := s.Schedule(context.Background(), 50*time.Millisecond, task)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Pending())

	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel(), "second cancel reports false")
	assert.Equal(t, TaskStatusCancelled, h.Status())
	assert.Equal(t, 0, s.Pending())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, task.Calls())
}

func TestTimerScheduler_ErrorHandler(t *testing.T) {
	t.Parallel()

	s := NewTimerScheduler(DefaultTimerSchedulerConfig(), setupTestLogger())
	defer s.Stop()

	var mu sync.Mutex
	var gotErr error
	s.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		gotErr = err
	})

	task := NewMockTask("failing")
	task.ExecuteFn = func(ctx context.Context) error { return errors.New("boom") }

	h, err := s.Schedule(context.Background(), 0, task)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return h.Status() == TaskStatusFailed
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.EqualError(t, gotErr, "boom")
}

type ctxKey string

func TestTimerScheduler_DetachesCallerContext(t *testing.T) {
	t.Parallel()

	s := NewTimerScheduler(DefaultTimerSchedulerConfig(), setupTestLogger())
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey("k"), "v"))

	result := make(chan string, 1)
	task := NewMockTask("test")
	task.ExecuteFn = func(ctx context.Context) error {
		if ctx.Err() != nil {
			result <- "cancelled"
			return nil
		}
		v, _ := ctx.Value(ctxKey("k")).(string)
		result <- v
		return nil
	}

	_, err := s.Schedule(ctx, 10*time.Millisecond, task)
	require.NoError(t, err)
	cancel()

	select {
	case got := <-result:
		assert.Equal(t, "v", got, "task sees caller values but not its cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestTimerScheduler_Stop(t *testing.T) {
	t.Parallel()

	s := NewTimerScheduler(DefaultTimerSchedulerConfig(), setupTestLogger())

	pendingTask := NewMockTask("pending")
	h, err := s.Schedule(context.Background(), time.Hour, pendingTask)
	require.NoError(t, err)

	started := make(chan struct{})
	finished := make(chan struct{})
	running := NewMockTask("running")
	running.ExecuteFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(finished)
		return ctx.Err()
	}
	_, err = s.Schedule(context.Background(), 0, running)
	require.NoError(t, err)

	<-started
	s.Stop()

	select {
	case <-finished:
	default:
		t.Fatal("Stop returned before the running task finished")
	}
	assert.Equal(t, TaskStatusCancelled, h.Status())
	assert.Equal(t, 0, pendingTask.Calls())

	_, err = s.Schedule(context.Background(), 0, NewMockTask("late"))
	assert.ErrorIs(t, err, ErrSchedulerStopped)

	// Stopping twice is harmless
	s.Stop()
}
