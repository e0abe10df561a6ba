// Package lock implements the task scheduler's distributed mutual
// exclusion primitive (spec.md §4.4's "Distributed lock"), grounded on
// original_source/backend/app/scheduler/advanced_scheduler.py's
// DistributedTaskLock, ported onto github.com/redis/go-redis/v9, used here
// for its raw KV primitives.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript atomically verifies ownership before deleting, preventing
// a caller from releasing a lock it no longer owns (e.g. after its TTL
// expired and another caller acquired it).
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// DistributedLock is a Redis-backed mutual exclusion lock keyed by task id.
type DistributedLock struct {
	client  *redis.Client
	release *redis.Script
}

// New wraps client in a DistributedLock.
func New(client *redis.Client) *DistributedLock {
	return &DistributedLock{client: client, release: redis.NewScript(releaseScript)}
}

func lockKey(taskID string) string {
	return "lock:task:" + taskID
}

// Acquire attempts SET NX EX against the task's lock key, retrying every
// retryDelay until maxWait elapses. Returns the held lock's random id, or
// ok=false on timeout.
func (l *DistributedLock) Acquire(ctx context.Context, taskID string, ttl, retryDelay, maxWait time.Duration) (lockID string, ok bool) {
	key := lockKey(taskID)
	id := uuid.New().String()
	deadline := time.Now().Add(maxWait)

	for {
		acquired, err := l.client.SetNX(ctx, key, id, ttl).Result()
		if err == nil && acquired {
			return id, true
		}
		if time.Now().After(deadline) {
			return "", false
		}

		select {
		case <-ctx.Done():
			return "", false
		case <-time.After(retryDelay):
		}
	}
}

// Release runs the compare-and-delete Lua script, returning true only if
// lockID matched the currently held value.
func (l *DistributedLock) Release(ctx context.Context, taskID, lockID string) bool {
	result, err := l.release.Run(ctx, l.client, []string{lockKey(taskID)}, lockID).Result()
	if err != nil {
		return false
	}
	n, ok := result.(int64)
	return ok && n == 1
}

// IsLocked reports whether taskID's lock key currently exists.
func (l *DistributedLock) IsLocked(ctx context.Context, taskID string) bool {
	n, err := l.client.Exists(ctx, lockKey(taskID)).Result()
	return err == nil && n > 0
}

// TTL returns the lock's remaining time-to-live, or an error if unlocked.
func (l *DistributedLock) TTL(ctx context.Context, taskID string) (time.Duration, error) {
	ttl, err := l.client.TTL(ctx, lockKey(taskID)).Result()
	if err != nil {
		return 0, fmt.Errorf("lock ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("task %s is not locked", taskID)
	}
	return ttl, nil
}
