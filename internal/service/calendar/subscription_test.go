package calendar

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository/memory"
)

func TestSubscriptionLifecycle(t *testing.T) {
	db := memory.New()
	svc := NewSubscriptionService(db.CalendarSubscriptionRepository())
	ctx := context.Background()

	personID := uuid.New()
	sub, err := svc.Create(ctx, personID, nil, "My Schedule")
	require.NoError(t, err)
	assert.NotEmpty(t, sub.Token)
	assert.True(t, sub.IsActive)

	resolved, err := svc.Resolve(ctx, sub.Token)
	require.NoError(t, err)
	assert.Equal(t, personID, resolved.PersonID)
	assert.NotNil(t, resolved.LastAccessedAt)

	require.NoError(t, svc.Revoke(ctx, sub.Token))

	_, err = svc.Resolve(ctx, sub.Token)
	assert.ErrorIs(t, err, entity.ErrSubscriptionRevoked)
}

func TestResolveUnknownTokenIsNotFound(t *testing.T) {
	db := memory.New()
	svc := NewSubscriptionService(db.CalendarSubscriptionRepository())

	_, err := svc.Resolve(context.Background(), "does-not-exist")
	assert.Error(t, err)
}
