package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/scheduler/lock"
)

const maxTaskHistorySize = 1000

// defaultLockRetryDelay/defaultLockMaxWait mirror the original's
// acquire() defaults (spec.md §4.4: "retry every retry_delay (default 0.5s)
// up to max_wait (default 30s)").
const (
	defaultLockRetryDelay = 500 * time.Millisecond
	defaultLockMaxWait    = 30 * time.Second
)

// TaskFunc is the resolved body of a registered task. Scheduler never
// imports task bodies directly (spec.md §9's "dynamic dispatch for tasks")
// — callers register them by FunctionPath via RegisterFunction.
type TaskFunc func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// cronSchedule tracks a task's recurring window so the executor can
// re-schedule the next occurrence after each successful run.
type cronSchedule struct {
	expression string
	endTime    *time.Time
}

// Scheduler is the advanced task scheduler spec.md §4.4 describes:
// priority queue, dependency graph, distributed lock, retry manager, and a
// single cooperative executor loop. Grounded on
// original_source/backend/app/scheduler/advanced_scheduler.py's
// AdvancedTaskScheduler, restructured from asyncio coroutines into
// goroutines the way the teacher's concurrent code is written.
type Scheduler struct {
	queue      *PriorityQueue
	depGraph   *DependencyGraph
	lockMgr    *lock.DistributedLock
	retryMgr   *RetryManager
	health     *HealthMonitor
	maxConcurrent int

	mu           sync.Mutex
	definitions  map[entity.ScheduledTaskID]entity.TaskDefinition
	running      map[entity.ScheduledTaskID]*entity.TaskExecution
	history      []*entity.TaskExecution
	cronSchedules map[entity.ScheduledTaskID]cronSchedule
	functions    map[string]TaskFunc

	stopCh       chan struct{}
	doneCh       chan struct{}
	started      bool
}

// New creates a Scheduler. lockMgr is the distributed lock;
// maxConcurrentTasks bounds simultaneous executions (default 10 per
// spec.md §4.4 when <= 0 is passed).
func New(lockMgr *lock.DistributedLock, maxConcurrentTasks int) *Scheduler {
	if maxConcurrentTasks <= 0 {
		maxConcurrentTasks = 10
	}
	return &Scheduler{
		queue:         NewPriorityQueue(),
		depGraph:      NewDependencyGraph(),
		lockMgr:       lockMgr,
		retryMgr:      NewRetryManager(),
		health:        NewHealthMonitor(),
		maxConcurrent: maxConcurrentTasks,
		definitions:   make(map[entity.ScheduledTaskID]entity.TaskDefinition),
		running:       make(map[entity.ScheduledTaskID]*entity.TaskExecution),
		cronSchedules: make(map[entity.ScheduledTaskID]cronSchedule),
		functions:     make(map[string]TaskFunc),
	}
}

// RegisterFunction maps a FunctionPath to its executable body.
func (s *Scheduler) RegisterFunction(path string, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.functions[path] = fn
}

// RegisterTask stores a task definition and adds it to the dependency
// graph, rejecting the registration if its dependencies would create a
// cycle or the task id is already registered.
func (s *Scheduler) RegisterTask(def entity.TaskDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.definitions[def.TaskID]; exists {
		return fmt.Errorf("task %s already registered", def.TaskID)
	}
	if err := s.depGraph.AddTask(def.TaskID, def.Dependencies); err != nil {
		return err
	}
	s.definitions[def.TaskID] = def
	return nil
}

// UnregisterTask removes a task definition and its dependency edges.
func (s *Scheduler) UnregisterTask(taskID entity.ScheduledTaskID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.definitions[taskID]; !exists {
		return false
	}
	s.depGraph.RemoveTask(taskID)
	delete(s.definitions, taskID)
	delete(s.cronSchedules, taskID)
	return true
}

// ScheduleTask enqueues one execution of a registered task. scheduledTime
// defaults to now when nil.
func (s *Scheduler) ScheduleTask(taskID entity.ScheduledTaskID, scheduledTime *time.Time) (entity.TaskExecutionID, error) {
	s.mu.Lock()
	def, ok := s.definitions[taskID]
	s.mu.Unlock()
	if !ok {
		return uuid.Nil, fmt.Errorf("task %s not registered", taskID)
	}

	when := time.Now()
	if scheduledTime != nil {
		when = *scheduledTime
	}

	execution := &entity.TaskExecution{
		ExecutionID:   uuid.New(),
		TaskID:        taskID,
		Status:        entity.TaskPending,
		ScheduledTime: when,
	}
	s.queue.Enqueue(execution, def.Priority)
	return execution.ExecutionID, nil
}

// ScheduleCronTask expands a cron expression to its next occurrence and
// enqueues that single execution (spec.md §4.4: "each tick schedules only
// the next occurrence"). Subsequent occurrences are scheduled by the
// executor after each successful run, bounded by endTime if given.
func (s *Scheduler) ScheduleCronTask(taskID entity.ScheduledTaskID, cronExpression string, startTime, endTime *time.Time) (entity.TaskExecutionID, error) {
	from := time.Now()
	if startTime != nil {
		from = *startTime
	}
	next, err := nextCronOccurrence(cronExpression, from)
	if err != nil {
		return uuid.Nil, err
	}
	if endTime != nil && next.After(*endTime) {
		return uuid.Nil, nil
	}

	s.mu.Lock()
	s.cronSchedules[taskID] = cronSchedule{expression: cronExpression, endTime: endTime}
	s.mu.Unlock()

	return s.ScheduleTask(taskID, &next)
}

// CancelTask removes a queued execution, or flags a running one for
// cooperative cancellation (it is not forcibly killed — spec.md §4.4's
// "Cancellation").
func (s *Scheduler) CancelTask(executionID entity.TaskExecutionID) bool {
	if s.queue.RemoveByExecutionID(executionID) {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, execution := range s.running {
		if execution.ExecutionID == executionID {
			execution.Status = entity.TaskCancelled
			return true
		}
	}
	return false
}

// Start launches the executor loop in a background goroutine.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.executorLoop()
}

// Stop signals the executor loop to exit. If wait is true, blocks until
// the loop goroutine has returned (in-flight executions are not awaited,
// matching the original's cooperative-cancellation model).
func (s *Scheduler) Stop(wait bool) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	if wait {
		<-done
	}
}

func (s *Scheduler) executorLoop() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if s.currentlyRunning() >= s.maxConcurrent {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		execution := s.queue.Dequeue()
		if execution == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if execution.ScheduledTime.After(time.Now()) {
			s.requeue(execution)
			time.Sleep(time.Second)
			continue
		}

		if !s.dependenciesSatisfied(execution) {
			s.requeue(execution)
			time.Sleep(time.Second)
			continue
		}

		s.mu.Lock()
		s.running[execution.TaskID] = execution
		s.mu.Unlock()

		go s.executeTask(execution)
	}
}

func (s *Scheduler) requeue(execution *entity.TaskExecution) {
	s.mu.Lock()
	def := s.definitions[execution.TaskID]
	s.mu.Unlock()
	s.queue.Enqueue(execution, def.Priority)
}

func (s *Scheduler) currentlyRunning() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

// dependenciesSatisfied checks each of execution's dependencies against
// the retained task history, scanning oldest-first and stopping at the
// first matching execution of the dependency's task id (preserved exactly
// from the original's scan order).
func (s *Scheduler) dependenciesSatisfied(execution *entity.TaskExecution) bool {
	s.mu.Lock()
	def := s.definitions[execution.TaskID]
	history := s.history
	s.mu.Unlock()

	if len(def.Dependencies) == 0 {
		return true
	}

	for _, dep := range def.Dependencies {
		var found *entity.TaskExecution
		for _, past := range history {
			if past.TaskID == dep.DependsOnTaskID {
				found = past
				break
			}
		}
		if found == nil {
			return false
		}
		switch dep.Kind {
		case entity.DependencyCompletion:
			if found.Status != entity.TaskCompleted && found.Status != entity.TaskFailed {
				return false
			}
		case entity.DependencySuccess:
			if found.Status != entity.TaskCompleted {
				return false
			}
		case entity.DependencyFailure:
			if found.Status != entity.TaskFailed {
				return false
			}
		}
	}
	return true
}

func (s *Scheduler) executeTask(execution *entity.TaskExecution) {
	s.mu.Lock()
	def := s.definitions[execution.TaskID]
	s.mu.Unlock()

	start := time.Now()
	execution.Status = entity.TaskRunning
	startedAt := start
	execution.StartedTime = &startedAt

	var lockID string
	var lockHeld bool

	defer func() {
		if lockHeld {
			s.lockMgr.Release(context.Background(), execution.TaskID.String(), lockID)
		}

		executionTime := time.Since(start)
		if execution.Metrics == nil {
			execution.Metrics = make(map[string]any)
		}
		execution.Metrics["execution_time_seconds"] = executionTime.Seconds()
		s.health.RecordExecution(execution, executionTime)

		s.mu.Lock()
		delete(s.running, execution.TaskID)
		s.history = append(s.history, execution)
		if len(s.history) > maxTaskHistorySize {
			s.history = s.history[len(s.history)-maxTaskHistorySize:]
		}
		s.mu.Unlock()

		if execution.Status == entity.TaskCompleted {
			s.scheduleNextCronOccurrence(execution.TaskID)
		}
	}()

	if def.RequireLock {
		id, ok := s.lockMgr.Acquire(context.Background(), execution.TaskID.String(), def.LockTimeout, defaultLockRetryDelay, defaultLockMaxWait)
		s.health.RecordLockAcquisition(ok)
		if !ok {
			completed := time.Now()
			execution.Status = entity.TaskFailed
			execution.Error = fmt.Sprintf("failed to acquire lock for task %s", execution.TaskID)
			execution.CompletedTime = &completed
			return
		}
		lockID = id
		lockHeld = true
		execution.LockID = id
	}

	s.mu.Lock()
	fn, registered := s.functions[def.FunctionPath]
	s.mu.Unlock()

	var result any
	var err error
	if !registered {
		err = fmt.Errorf("no function registered for path %q", def.FunctionPath)
	} else {
		ctx := context.Background()
		var cancel context.CancelFunc
		if def.Timeout != nil {
			ctx, cancel = context.WithTimeout(ctx, *def.Timeout)
			defer cancel()
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			result, err = fn(ctx, def.Args, def.Kwargs)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	completed := time.Now()
	execution.CompletedTime = &completed

	if err == nil {
		execution.Status = entity.TaskCompleted
		execution.Result = result
		return
	}

	execution.Status = entity.TaskFailed
	execution.Error = err.Error()

	if def.RetryConfig.Strategy != "" && s.retryMgr.ShouldRetry(execution.RetryCount, def.RetryConfig) {
		delay := s.retryMgr.CalculateDelay(execution.RetryCount, def.RetryConfig)
		execution.Status = entity.TaskRetrying
		execution.RetryCount++

		retryAt := time.Now().Add(delay)
		retryExecution := &entity.TaskExecution{
			ExecutionID:   uuid.New(),
			TaskID:        execution.TaskID,
			Status:        entity.TaskPending,
			ScheduledTime: retryAt,
			RetryCount:    execution.RetryCount,
		}
		s.queue.Enqueue(retryExecution, def.Priority)
		s.retryMgr.RecordRetry(execution.TaskID)
	}
}

func (s *Scheduler) scheduleNextCronOccurrence(taskID entity.ScheduledTaskID) {
	s.mu.Lock()
	sched, ok := s.cronSchedules[taskID]
	s.mu.Unlock()
	if !ok {
		return
	}

	next, err := nextCronOccurrence(sched.expression, time.Now())
	if err != nil {
		return
	}
	if sched.endTime != nil && next.After(*sched.endTime) {
		return
	}
	_, _ = s.ScheduleTask(taskID, &next)
}

// GetHealthStatus returns the health monitor's current report. Queue and
// running-task counts are not part of it; QueueStats and RunningTaskCount
// report those.
func (s *Scheduler) GetHealthStatus() HealthStatus {
	return s.health.GetHealthStatus()
}

// QueueStats reports total queued tasks and a per-priority breakdown.
func (s *Scheduler) QueueStats() (total int, byPriority map[entity.TaskPriority]int) {
	byPriority = make(map[entity.TaskPriority]int, len(entity.PriorityBands))
	for _, p := range entity.PriorityBands {
		byPriority[p] = s.queue.SizeByPriority(p)
	}
	return s.queue.Size(), byPriority
}

// RunningTaskCount reports the number of executions currently in flight.
func (s *Scheduler) RunningTaskCount() int {
	return s.currentlyRunning()
}

// GetTaskStatus finds an execution by id across running tasks, history,
// and the pending queue.
func (s *Scheduler) GetTaskStatus(executionID entity.TaskExecutionID) *entity.TaskExecution {
	s.mu.Lock()
	for _, execution := range s.running {
		if execution.ExecutionID == executionID {
			s.mu.Unlock()
			return execution
		}
	}
	for _, execution := range s.history {
		if execution.ExecutionID == executionID {
			s.mu.Unlock()
			return execution
		}
	}
	s.mu.Unlock()

	return s.queue.FindByExecutionID(executionID)
}
