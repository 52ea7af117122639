package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/pairs/internal/task"
)

// revertTask turns a mismatched pair face down once the display delay is over.
// It carries the generation it was scheduled in so that it becomes a no-op
// after a restart.
type revertTask struct {
	id         uuid.UUID
	engine     *Engine
	generation uint64
	cardIDs    [2]int
}

func newRevertTask(e *Engine, generation uint64, first, second int) *revertTask {
	return &revertTask{
		id:         uuid.New(),
		engine:     e,
		generation: generation,
		cardIDs:    [2]int{first, second},
	}
}

// ID returns the task's unique identifier
func (t *revertTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *revertTask) Type() string {
	return task.TaskTypePairRevert
}

// Execute hides the pair if the game it belongs to is still current.
func (t *revertTask) Execute(ctx context.Context) error {
	t.engine.revert(ctx, t.generation, t.cardIDs)
	return nil
}

// Ensure revertTask implements task.Task
var _ task.Task = (*revertTask)(nil)
