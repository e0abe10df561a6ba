package scheduler

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// RetryManager computes backoff delays and keeps a diagnostic-only retry
// log (spec.md's resolved ambiguity #6: distinct from, and never read back
// by, TaskExecution.RetryCount).
type RetryManager struct {
	mu      sync.Mutex
	history map[entity.ScheduledTaskID][]time.Time
}

// NewRetryManager returns an empty retry manager.
func NewRetryManager() *RetryManager {
	return &RetryManager{history: make(map[entity.ScheduledTaskID][]time.Time)}
}

// ShouldRetry reports whether a failed execution's config permits another
// attempt.
func (m *RetryManager) ShouldRetry(retryCount int, config entity.RetryConfig) bool {
	if config.Strategy == entity.RetryNone {
		return false
	}
	return retryCount < config.MaxAttempts
}

// CalculateDelay computes the backoff delay for the given attempt number
// (0-indexed, i.e. the count of retries already performed), clamped to
// MaxDelay, with optional ±20% jitter.
func (m *RetryManager) CalculateDelay(attempt int, config entity.RetryConfig) time.Duration {
	var delay time.Duration
	switch config.Strategy {
	case entity.RetryFixed:
		delay = config.InitialDelay
	case entity.RetryLinear:
		delay = config.InitialDelay * time.Duration(attempt+1)
	case entity.RetryExponential:
		multiplier := config.Multiplier
		if multiplier == 0 {
			multiplier = 2.0
		}
		delay = time.Duration(float64(config.InitialDelay) * math.Pow(multiplier, float64(attempt)))
	default:
		delay = config.InitialDelay
	}

	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	if config.Jitter {
		factor := 0.8 + rand.Float64()*0.4
		delay = time.Duration(float64(delay) * factor)
	}
	return delay
}

// RecordRetry appends a retry timestamp to taskID's diagnostic history.
func (m *RetryManager) RecordRetry(taskID entity.ScheduledTaskID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[taskID] = append(m.history[taskID], time.Now())
}

// RetryCount reports how many retries have been diagnostically logged for
// taskID.
func (m *RetryManager) RetryCount(taskID entity.ScheduledTaskID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history[taskID])
}

// ClearHistory discards taskID's diagnostic retry log.
func (m *RetryManager) ClearHistory(taskID entity.ScheduledTaskID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, taskID)
}
