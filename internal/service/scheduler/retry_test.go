package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

func TestShouldRetryRespectsMaxAttempts(t *testing.T) {
	m := NewRetryManager()
	config := entity.RetryConfig{Strategy: entity.RetryFixed, MaxAttempts: 3}

	assert.True(t, m.ShouldRetry(0, config))
	assert.True(t, m.ShouldRetry(2, config))
	assert.False(t, m.ShouldRetry(3, config))
}

func TestShouldRetryNoneStrategyNeverRetries(t *testing.T) {
	m := NewRetryManager()
	config := entity.RetryConfig{Strategy: entity.RetryNone, MaxAttempts: 10}
	assert.False(t, m.ShouldRetry(0, config))
}

func TestCalculateDelayFixed(t *testing.T) {
	m := NewRetryManager()
	config := entity.RetryConfig{Strategy: entity.RetryFixed, InitialDelay: 2 * time.Second}
	assert.Equal(t, 2*time.Second, m.CalculateDelay(5, config))
}

func TestCalculateDelayLinear(t *testing.T) {
	m := NewRetryManager()
	config := entity.RetryConfig{Strategy: entity.RetryLinear, InitialDelay: time.Second}
	assert.Equal(t, 3*time.Second, m.CalculateDelay(2, config))
}

func TestCalculateDelayExponential(t *testing.T) {
	m := NewRetryManager()
	config := entity.RetryConfig{Strategy: entity.RetryExponential, InitialDelay: time.Second, Multiplier: 2.0}
	assert.Equal(t, 4*time.Second, m.CalculateDelay(2, config))
}

func TestCalculateDelayClampsToMaxDelay(t *testing.T) {
	m := NewRetryManager()
	config := entity.RetryConfig{Strategy: entity.RetryExponential, InitialDelay: time.Second, Multiplier: 2.0, MaxDelay: 3 * time.Second}
	assert.Equal(t, 3*time.Second, m.CalculateDelay(10, config))
}

func TestCalculateDelayJitterStaysWithinBounds(t *testing.T) {
	m := NewRetryManager()
	config := entity.RetryConfig{Strategy: entity.RetryFixed, InitialDelay: 10 * time.Second, Jitter: true}
	delay := m.CalculateDelay(0, config)
	assert.GreaterOrEqual(t, delay, 7900*time.Millisecond)
	assert.LessOrEqual(t, delay, 12100*time.Millisecond)
}

func TestRecordRetryAccumulatesHistory(t *testing.T) {
	m := NewRetryManager()
	taskID := uuid.New()

	m.RecordRetry(taskID)
	m.RecordRetry(taskID)
	assert.Equal(t, 2, m.RetryCount(taskID))

	m.ClearHistory(taskID)
	assert.Equal(t, 0, m.RetryCount(taskID))
}
