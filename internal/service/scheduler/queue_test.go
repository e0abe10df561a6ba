package scheduler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

func newExecution(taskID entity.ScheduledTaskID) *entity.TaskExecution {
	return &entity.TaskExecution{ExecutionID: uuid.New(), TaskID: taskID, Status: entity.TaskPending}
}

func TestDequeueReturnsHighestPriorityFirst(t *testing.T) {
	q := NewPriorityQueue()
	low := newExecution(uuid.New())
	critical := newExecution(uuid.New())
	normal := newExecution(uuid.New())

	q.Enqueue(low, entity.PriorityLow)
	q.Enqueue(critical, entity.PriorityCritical)
	q.Enqueue(normal, entity.PriorityNormal)

	assert.Equal(t, critical, q.Dequeue())
	assert.Equal(t, normal, q.Dequeue())
	assert.Equal(t, low, q.Dequeue())
	assert.Nil(t, q.Dequeue())
}

func TestDequeueIsFIFOWithinPriority(t *testing.T) {
	q := NewPriorityQueue()
	first := newExecution(uuid.New())
	second := newExecution(uuid.New())

	q.Enqueue(first, entity.PriorityNormal)
	q.Enqueue(second, entity.PriorityNormal)

	assert.Equal(t, first, q.Dequeue())
	assert.Equal(t, second, q.Dequeue())
}

func TestRemoveDeletesQueuedTask(t *testing.T) {
	q := NewPriorityQueue()
	taskID := uuid.New()
	exec := newExecution(taskID)
	q.Enqueue(exec, entity.PriorityNormal)

	require.True(t, q.Remove(taskID))
	assert.True(t, q.IsEmpty())
	assert.False(t, q.Remove(taskID))
}

func TestRemoveByExecutionIDFindsAcrossLanes(t *testing.T) {
	q := NewPriorityQueue()
	exec := newExecution(uuid.New())
	q.Enqueue(exec, entity.PriorityBackground)

	require.True(t, q.RemoveByExecutionID(exec.ExecutionID))
	assert.True(t, q.IsEmpty())
}

func TestSizeByPriorityCountsOnlyThatLane(t *testing.T) {
	q := NewPriorityQueue()
	q.Enqueue(newExecution(uuid.New()), entity.PriorityHigh)
	q.Enqueue(newExecution(uuid.New()), entity.PriorityHigh)
	q.Enqueue(newExecution(uuid.New()), entity.PriorityLow)

	assert.Equal(t, 2, q.SizeByPriority(entity.PriorityHigh))
	assert.Equal(t, 1, q.SizeByPriority(entity.PriorityLow))
	assert.Equal(t, 3, q.Size())
}
