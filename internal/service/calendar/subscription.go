package calendar

import (
	"context"
	"fmt"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

// SubscriptionService resolves webcal subscription URLs and governs their
// lifecycle (spec.md §6: "webcal://{host}/api/calendar/subscribe/{token}";
// token-only auth; revoked or expired tokens return 401").
type SubscriptionService struct {
	subscriptions repository.CalendarSubscriptionRepository
}

func NewSubscriptionService(subscriptions repository.CalendarSubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions}
}

// Create issues a new subscription for personID.
func (s *SubscriptionService) Create(ctx context.Context, personID entity.PersonID, createdBy *entity.PersonID, label string) (*entity.CalendarSubscription, error) {
	token, err := entity.NewSubscriptionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription token: %w", err)
	}

	sub := &entity.CalendarSubscription{
		ID:              uuidNew(),
		Token:           token,
		PersonID:        personID,
		CreatedByUserID: createdBy,
		Label:           label,
		IsActive:        true,
		CreatedAt:       entity.Now(),
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

// Resolve validates a token and marks the subscription accessed, for the
// webcal feed GET endpoint. Returns the entity.Err* sentinel on failure.
func (s *SubscriptionService) Resolve(ctx context.Context, token string) (*entity.CalendarSubscription, error) {
	sub, err := s.subscriptions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := entity.Now()
	if err := sub.Validate(now); err != nil {
		return nil, err
	}

	sub.Touch(now)
	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to record subscription access: %w", err)
	}
	return sub, nil
}

// Revoke invalidates a subscription.
func (s *SubscriptionService) Revoke(ctx context.Context, token string) error {
	sub, err := s.subscriptions.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	sub.Revoke(entity.Now())
	return s.subscriptions.Update(ctx, sub)
}
