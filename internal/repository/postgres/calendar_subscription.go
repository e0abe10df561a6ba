package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

type subscriptionRepo struct {
	q querier
}

func scanSubscription(scan func(...interface{}) error) (*entity.CalendarSubscription, error) {
	var s entity.CalendarSubscription
	var createdBy sql.NullString
	var expiresAt sql.NullTime
	var revokedAt sql.NullTime
	var lastAccessedAt sql.NullTime

	if err := scan(&s.ID, &s.Token, &s.PersonID, &createdBy, &s.Label, &s.IsActive,
		&s.CreatedAt, &expiresAt, &revokedAt, &lastAccessedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		if id, err := uuidParse(createdBy.String); err == nil {
			s.CreatedByUserID = &id
		}
	}
	if expiresAt.Valid {
		s.ExpiresAt = &expiresAt.Time
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	if lastAccessedAt.Valid {
		s.LastAccessedAt = &lastAccessedAt.Time
	}
	return &s, nil
}

func (r *subscriptionRepo) Create(ctx context.Context, s *entity.CalendarSubscription) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = entity.Now()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO calendar_subscriptions
			(id, token, person_id, created_by_user_id, label, is_active, created_at,
			 expires_at, revoked_at, last_accessed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.Token, s.PersonID, nullablePersonID(s.CreatedByUserID), s.Label, s.IsActive,
		s.CreatedAt, s.ExpiresAt, s.RevokedAt, s.LastAccessedAt)
	if err != nil {
		return fmt.Errorf("failed to create calendar subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepo) GetByToken(ctx context.Context, token string) (*entity.CalendarSubscription, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, token, person_id, created_by_user_id, label, is_active, created_at,
		       expires_at, revoked_at, last_accessed_at
		FROM calendar_subscriptions WHERE token = $1`, token)
	s, err := scanSubscription(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "CalendarSubscription", ResourceID: token}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar subscription by token: %w", err)
	}
	return s, nil
}

func (r *subscriptionRepo) Update(ctx context.Context, s *entity.CalendarSubscription) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE calendar_subscriptions SET
			label = $2, is_active = $3, expires_at = $4, revoked_at = $5, last_accessed_at = $6
		WHERE id = $1`,
		s.ID, s.Label, s.IsActive, s.ExpiresAt, s.RevokedAt, s.LastAccessedAt)
	if err != nil {
		return fmt.Errorf("failed to update calendar subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return &repository.NotFoundError{ResourceType: "CalendarSubscription", ResourceID: s.ID.String()}
	}
	return nil
}
