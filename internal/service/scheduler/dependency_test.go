package scheduler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

func TestAddTaskWithNoDependencies(t *testing.T) {
	g := NewDependencyGraph()
	a := uuid.New()
	require.NoError(t, g.AddTask(a, nil))
	assert.Empty(t, g.Dependencies(a))
}

func TestAddTaskRejectsCycle(t *testing.T) {
	g := NewDependencyGraph()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, g.AddTask(a, []entity.TaskDependency{{DependsOnTaskID: b}}))
	err := g.AddTask(b, []entity.TaskDependency{{DependsOnTaskID: a}})
	require.Error(t, err)

	// Rollback: b must not retain the edge toward a after the rejected add.
	assert.Empty(t, g.Dependencies(b))
}

func TestRemoveTaskClearsBothDirections(t *testing.T) {
	g := NewDependencyGraph()
	a, b := uuid.New(), uuid.New()
	require.NoError(t, g.AddTask(a, []entity.TaskDependency{{DependsOnTaskID: b}}))

	g.RemoveTask(a)
	assert.Empty(t, g.Dependents(b))
}

func TestGetReadyTasksOrdersDependenciesFirst(t *testing.T) {
	g := NewDependencyGraph()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	// a depends on b, b depends on c.
	require.NoError(t, g.AddTask(c, nil))
	require.NoError(t, g.AddTask(b, []entity.TaskDependency{{DependsOnTaskID: c}}))
	require.NoError(t, g.AddTask(a, []entity.TaskDependency{{DependsOnTaskID: b}}))

	order, err := g.GetReadyTasks()
	require.NoError(t, err)

	pos := make(map[entity.ScheduledTaskID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[c], pos[b])
	assert.Less(t, pos[b], pos[a])
}
