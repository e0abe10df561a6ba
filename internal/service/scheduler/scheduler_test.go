package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/scheduler/lock"
)

func newTestScheduler(t *testing.T, maxConcurrent int) *Scheduler {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return New(lock.New(client), maxConcurrent)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestScheduleTaskRunsRegisteredFunction(t *testing.T) {
	s := newTestScheduler(t, 4)
	var ran int32

	s.RegisterFunction("tasks.noop", func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		atomic.AddInt32(&ran, 1)
		return "ok", nil
	})

	taskID := entity.ScheduledTaskID{}
	def := entity.TaskDefinition{TaskID: taskID, Name: "noop", FunctionPath: "tasks.noop", Priority: entity.PriorityNormal}
	require.NoError(t, s.RegisterTask(def))

	execID, err := s.ScheduleTask(taskID, nil)
	require.NoError(t, err)

	s.Start()
	defer s.Stop(true)

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&ran) == 1 })

	status := s.GetTaskStatus(execID)
	require.NotNil(t, status)
	assert.Equal(t, entity.TaskCompleted, status.Status)
}

func TestScheduleTaskWaitsForDependency(t *testing.T) {
	s := newTestScheduler(t, 4)

	var order []string
	record := func(name string) TaskFunc {
		return func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
			order = append(order, name)
			return nil, nil
		}
	}

	upstream := entity.ScheduledTaskID{1}
	downstream := entity.ScheduledTaskID{2}

	s.RegisterFunction("tasks.upstream", record("upstream"))
	s.RegisterFunction("tasks.downstream", record("downstream"))

	require.NoError(t, s.RegisterTask(entity.TaskDefinition{
		TaskID: upstream, Name: "upstream", FunctionPath: "tasks.upstream", Priority: entity.PriorityNormal,
	}))
	require.NoError(t, s.RegisterTask(entity.TaskDefinition{
		TaskID: downstream, Name: "downstream", FunctionPath: "tasks.downstream", Priority: entity.PriorityNormal,
		Dependencies: []entity.TaskDependency{{DependsOnTaskID: upstream, Kind: entity.DependencySuccess}},
	}))

	_, err := s.ScheduleTask(downstream, nil)
	require.NoError(t, err)
	_, err = s.ScheduleTask(upstream, nil)
	require.NoError(t, err)

	s.Start()
	defer s.Stop(true)

	waitFor(t, 3*time.Second, func() bool { return len(order) == 2 })
	assert.Equal(t, []string{"upstream", "downstream"}, order)
}

func TestFailedTaskRetriesAccordingToConfig(t *testing.T) {
	s := newTestScheduler(t, 4)
	var attempts int32

	s.RegisterFunction("tasks.flaky", func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 2 {
			return nil, errors.New("transient failure")
		}
		return "ok", nil
	})

	taskID := entity.ScheduledTaskID{3}
	require.NoError(t, s.RegisterTask(entity.TaskDefinition{
		TaskID:       taskID,
		Name:         "flaky",
		FunctionPath: "tasks.flaky",
		Priority:     entity.PriorityNormal,
		RetryConfig: entity.RetryConfig{
			Strategy:     entity.RetryFixed,
			InitialDelay: 10 * time.Millisecond,
			MaxAttempts:  3,
		},
	}))

	_, err := s.ScheduleTask(taskID, nil)
	require.NoError(t, err)

	s.Start()
	defer s.Stop(true)

	waitFor(t, 3*time.Second, func() bool { return atomic.LoadInt32(&attempts) == 2 })
}

func TestCancelTaskRemovesQueuedExecution(t *testing.T) {
	s := newTestScheduler(t, 1)
	s.RegisterFunction("tasks.noop", func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		return nil, nil
	})

	taskID := entity.ScheduledTaskID{4}
	require.NoError(t, s.RegisterTask(entity.TaskDefinition{
		TaskID: taskID, Name: "noop", FunctionPath: "tasks.noop", Priority: entity.PriorityLow,
	}))

	future := time.Now().Add(time.Hour)
	execID, err := s.ScheduleTask(taskID, &future)
	require.NoError(t, err)

	assert.True(t, s.CancelTask(execID))
	total, _ := s.QueueStats()
	assert.Equal(t, 0, total)
}

func TestQueueStatsReportsPerPriorityCounts(t *testing.T) {
	s := newTestScheduler(t, 1)
	s.RegisterFunction("tasks.noop", func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
		return nil, nil
	})

	high := entity.ScheduledTaskID{5}
	low := entity.ScheduledTaskID{6}
	require.NoError(t, s.RegisterTask(entity.TaskDefinition{TaskID: high, Name: "h", FunctionPath: "tasks.noop", Priority: entity.PriorityHigh}))
	require.NoError(t, s.RegisterTask(entity.TaskDefinition{TaskID: low, Name: "l", FunctionPath: "tasks.noop", Priority: entity.PriorityLow}))

	future := time.Now().Add(time.Hour)
	_, err := s.ScheduleTask(high, &future)
	require.NoError(t, err)
	_, err = s.ScheduleTask(low, &future)
	require.NoError(t, err)

	total, byPriority := s.QueueStats()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, byPriority[entity.PriorityHigh])
	assert.Equal(t, 1, byPriority[entity.PriorityLow])
}
