package scheduler

import (
	"sync"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

const maxErrorLogSize = 100

// errorLogEntry records one failed execution for health reporting.
type errorLogEntry struct {
	Timestamp  time.Time
	TaskID     entity.ScheduledTaskID
	Error      string
	RetryCount int
}

// HealthMetrics is a snapshot of accumulated scheduler counters.
type HealthMetrics struct {
	TasksExecuted       int
	TasksSucceeded      int
	TasksFailed         int
	TasksRetried        int
	TasksCancelled      int
	TotalExecutionTime  time.Duration
	LockAcquisitions    int
	LockFailures        int
}

// HealthStatus is the full health report (spec.md's "Advanced health
// monitoring"), bounded to a 100-entry error log per the original source.
type HealthStatus struct {
	Status              string
	UptimeSeconds        float64
	Metrics             HealthMetrics
	SuccessRate         float64
	AverageExecutionTime time.Duration
	LockSuccessRate     float64
	RecentErrors        []errorLogEntry
}

// HealthMonitor accumulates execution and lock statistics.
type HealthMonitor struct {
	mu        sync.Mutex
	startTime time.Time
	metrics   HealthMetrics
	errorLog  []errorLogEntry
}

// NewHealthMonitor starts a monitor with its clock reset to now.
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{startTime: time.Now()}
}

// RecordExecution folds one completed execution's outcome into the
// counters, logging an entry if it failed.
func (h *HealthMonitor) RecordExecution(execution *entity.TaskExecution, executionTime time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.metrics.TasksExecuted++
	h.metrics.TotalExecutionTime += executionTime

	switch execution.Status {
	case entity.TaskCompleted:
		h.metrics.TasksSucceeded++
	case entity.TaskFailed:
		h.metrics.TasksFailed++
		h.logError(execution)
	case entity.TaskRetrying:
		h.metrics.TasksRetried++
	case entity.TaskCancelled:
		h.metrics.TasksCancelled++
	}
}

// RecordLockAcquisition tallies one lock attempt's outcome.
func (h *HealthMonitor) RecordLockAcquisition(success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if success {
		h.metrics.LockAcquisitions++
	} else {
		h.metrics.LockFailures++
	}
}

// logError appends a bounded error-log entry. Caller must hold h.mu.
func (h *HealthMonitor) logError(execution *entity.TaskExecution) {
	h.errorLog = append(h.errorLog, errorLogEntry{
		Timestamp:  time.Now(),
		TaskID:     execution.TaskID,
		Error:      execution.Error,
		RetryCount: execution.RetryCount,
	})
	if len(h.errorLog) > maxErrorLogSize {
		h.errorLog = h.errorLog[len(h.errorLog)-maxErrorLogSize:]
	}
}

// GetHealthStatus returns a point-in-time snapshot, status "healthy" when
// the success rate is at least 90%.
func (h *HealthMonitor) GetHealthStatus() HealthStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := h.metrics.TasksExecuted
	successRate := 0.0
	avgExecutionTime := time.Duration(0)
	if total > 0 {
		successRate = float64(h.metrics.TasksSucceeded) / float64(total) * 100
		avgExecutionTime = h.metrics.TotalExecutionTime / time.Duration(total)
	}

	lockAttempts := h.metrics.LockAcquisitions + h.metrics.LockFailures
	lockSuccessRate := 0.0
	if lockAttempts > 0 {
		lockSuccessRate = float64(h.metrics.LockAcquisitions) / float64(lockAttempts) * 100
	}

	status := "degraded"
	if successRate >= 90 {
		status = "healthy"
	}

	recent := h.errorLog
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	recentCopy := make([]errorLogEntry, len(recent))
	copy(recentCopy, recent)

	return HealthStatus{
		Status:               status,
		UptimeSeconds:        time.Since(h.startTime).Seconds(),
		Metrics:              h.metrics,
		SuccessRate:          successRate,
		AverageExecutionTime: avgExecutionTime,
		LockSuccessRate:      lockSuccessRate,
		RecentErrors:         recentCopy,
	}
}

// Reset zeroes all counters and the error log, restarting the uptime clock.
func (h *HealthMonitor) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.startTime = time.Now()
	h.metrics = HealthMetrics{}
	h.errorLog = nil
}
