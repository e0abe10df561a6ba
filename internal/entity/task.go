package entity

import "time"

// TaskPriority is one of the scheduler's five strict-priority bands
// (spec.md §4.4), ordered critical > high > normal > low > background.
type TaskPriority int

const (
	PriorityCritical TaskPriority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
	PriorityBackground
)

// PriorityBands lists all bands in dequeue precedence order.
var PriorityBands = []TaskPriority{
	PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow, PriorityBackground,
}

func (p TaskPriority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case PriorityBackground:
		return "background"
	default:
		return "unknown"
	}
}

// TaskStatus is a TaskExecution's lifecycle state.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskQueued    TaskStatus = "queued"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskRetrying  TaskStatus = "retrying"
	TaskCancelled TaskStatus = "cancelled"
	TaskSkipped   TaskStatus = "skipped"
)

// RetryStrategy selects the backoff formula used by the retry manager.
type RetryStrategy string

const (
	RetryNone        RetryStrategy = "none"
	RetryFixed       RetryStrategy = "fixed"
	RetryLinear      RetryStrategy = "linear"
	RetryExponential RetryStrategy = "exponential"
)

// RetryConfig parameterizes a task's retry behavior (spec.md §4.4).
type RetryConfig struct {
	Strategy     RetryStrategy
	InitialDelay time.Duration
	Multiplier   float64 // exponential only
	MaxDelay     time.Duration
	MaxAttempts  int
	Jitter       bool
}

// DependencyKind describes what state a depended-on task must reach.
type DependencyKind string

const (
	DependencyCompletion DependencyKind = "completion" // completed or failed
	DependencySuccess    DependencyKind = "success"     // completed only
	DependencyFailure    DependencyKind = "failure"     // failed only
)

// TaskDependency names a task this task must wait on.
type TaskDependency struct {
	DependsOnTaskID ScheduledTaskID
	Kind            DependencyKind
	Timeout         *time.Duration
}

// TaskDefinition is a registered, reusable unit of schedulable work. The
// function itself is resolved at execution time via a registry keyed by
// FunctionPath (spec.md §6, §9 — "dynamic dispatch for tasks"), never by
// runtime code import.
type TaskDefinition struct {
	TaskID       ScheduledTaskID
	Name         string
	FunctionPath string
	Priority     TaskPriority
	Args         []any
	Kwargs       map[string]any
	RetryConfig  RetryConfig
	Dependencies []TaskDependency
	RequireLock  bool
	LockTimeout  time.Duration
	Timeout      *time.Duration
	Tags         []string
}

// TaskExecution is one attempt to run a TaskDefinition.
type TaskExecution struct {
	ExecutionID   TaskExecutionID
	TaskID        ScheduledTaskID
	Status        TaskStatus
	ScheduledTime time.Time
	StartedTime   *time.Time
	CompletedTime *time.Time
	Result        any
	Error         string
	RetryCount    int
	LockID        string
	Metrics       map[string]any
}
