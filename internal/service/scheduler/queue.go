// Package scheduler implements the advanced task scheduler spec.md §4.4
// describes: a five-band priority queue, a DAG dependency graph, a
// distributed lock (lock subpackage), a retry manager with four
// strategies, and a single cooperative executor loop. Grounded on
// original_source/backend/app/scheduler/advanced_scheduler.py, ported from
// its asyncio-coroutine shape into goroutines/channels the way the
// teacher's own concurrent code is written.
package scheduler

import (
	"sync"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// queuedTask is one pending execution plus enough of its TaskDefinition to
// dequeue and dispatch it without a second lookup.
type queuedTask struct {
	execution *entity.TaskExecution
	priority  entity.TaskPriority
}

// PriorityQueue holds pending task executions across five strict-priority
// FIFO lanes (spec.md §4.4's "Priority queue"). Enqueue/dequeue are O(1);
// Remove is O(n) within the task's own lane, matching the original's
// list.remove behavior.
type PriorityQueue struct {
	mu    sync.Mutex
	lanes map[entity.TaskPriority][]*queuedTask
	index map[entity.ScheduledTaskID]*queuedTask
}

// NewPriorityQueue returns an empty queue with all five lanes initialized.
func NewPriorityQueue() *PriorityQueue {
	lanes := make(map[entity.TaskPriority][]*queuedTask, len(entity.PriorityBands))
	for _, p := range entity.PriorityBands {
		lanes[p] = nil
	}
	return &PriorityQueue{
		lanes: lanes,
		index: make(map[entity.ScheduledTaskID]*queuedTask),
	}
}

// Enqueue appends execution to its priority lane.
func (q *PriorityQueue) Enqueue(execution *entity.TaskExecution, priority entity.TaskPriority) {
	q.mu.Lock()
	defer q.mu.Unlock()

	qt := &queuedTask{execution: execution, priority: priority}
	q.lanes[priority] = append(q.lanes[priority], qt)
	q.index[execution.TaskID] = qt
}

// Dequeue removes and returns the highest-priority task, or nil if empty.
func (q *PriorityQueue) Dequeue() *entity.TaskExecution {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range entity.PriorityBands {
		lane := q.lanes[p]
		if len(lane) == 0 {
			continue
		}
		qt := lane[0]
		q.lanes[p] = lane[1:]
		delete(q.index, qt.execution.TaskID)
		return qt.execution
	}
	return nil
}

// Peek returns the highest-priority task without removing it.
func (q *PriorityQueue) Peek() *entity.TaskExecution {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range entity.PriorityBands {
		if lane := q.lanes[p]; len(lane) > 0 {
			return lane[0].execution
		}
	}
	return nil
}

// Remove deletes a queued task by id, reporting whether it was present.
func (q *PriorityQueue) Remove(taskID entity.ScheduledTaskID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	qt, ok := q.index[taskID]
	if !ok {
		return false
	}
	lane := q.lanes[qt.priority]
	for i, candidate := range lane {
		if candidate == qt {
			q.lanes[qt.priority] = append(lane[:i], lane[i+1:]...)
			break
		}
	}
	delete(q.index, taskID)
	return true
}

// Size reports the total number of queued tasks across all lanes.
func (q *PriorityQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, lane := range q.lanes {
		n += len(lane)
	}
	return n
}

// SizeByPriority reports the number of queued tasks in one lane.
func (q *PriorityQueue) SizeByPriority(priority entity.TaskPriority) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lanes[priority])
}

// IsEmpty reports whether every lane is empty.
func (q *PriorityQueue) IsEmpty() bool {
	return q.Size() == 0
}

// FindByExecutionID scans every lane for a queued execution without
// removing it.
func (q *PriorityQueue) FindByExecutionID(executionID entity.TaskExecutionID) *entity.TaskExecution {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, lane := range q.lanes {
		for _, qt := range lane {
			if qt.execution.ExecutionID == executionID {
				return qt.execution
			}
		}
	}
	return nil
}

// RemoveByExecutionID scans every lane for a queued execution with the
// given execution id and removes it. Used by cancellation, which is keyed
// by execution id rather than task id.
func (q *PriorityQueue) RemoveByExecutionID(executionID entity.TaskExecutionID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for priority, lane := range q.lanes {
		for i, qt := range lane {
			if qt.execution.ExecutionID == executionID {
				q.lanes[priority] = append(lane[:i], lane[i+1:]...)
				delete(q.index, qt.execution.TaskID)
				return true
			}
		}
	}
	return false
}
