package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

type webhookSecretRepo struct {
	q querier
}

func scanWebhookSecret(scan func(...interface{}) error) (*entity.WebhookSecret, error) {
	var s entity.WebhookSecret
	var rotatedAt sql.NullTime
	var oldSecret sql.NullString
	var oldSecretHash sql.NullString
	var oldSecretValidUntil sql.NullTime

	if err := scan(&s.ID, &s.Secret, &s.Algorithm, &s.CreatedAt,
		&rotatedAt, &oldSecret, &oldSecretHash, &oldSecretValidUntil); err != nil {
		return nil, err
	}
	if rotatedAt.Valid {
		s.RotatedAt = &rotatedAt.Time
	}
	if oldSecret.Valid {
		s.OldSecret = &oldSecret.String
	}
	if oldSecretHash.Valid {
		s.OldSecretHash = &oldSecretHash.String
	}
	if oldSecretValidUntil.Valid {
		s.OldSecretValidUntil = &oldSecretValidUntil.Time
	}
	return &s, nil
}

func (r *webhookSecretRepo) GetByWebhookID(ctx context.Context, webhookID string) (*entity.WebhookSecret, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, secret, algorithm, created_at, rotated_at, old_secret, old_secret_hash, old_secret_valid_until
		FROM webhook_secrets WHERE id = $1`, webhookID)
	s, err := scanWebhookSecret(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "WebhookSecret", ResourceID: webhookID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook secret: %w", err)
	}
	return s, nil
}

func (r *webhookSecretRepo) Upsert(ctx context.Context, s *entity.WebhookSecret) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = entity.Now()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO webhook_secrets (id, secret, algorithm, created_at, rotated_at, old_secret, old_secret_hash, old_secret_valid_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			secret = EXCLUDED.secret,
			algorithm = EXCLUDED.algorithm,
			rotated_at = EXCLUDED.rotated_at,
			old_secret = EXCLUDED.old_secret,
			old_secret_hash = EXCLUDED.old_secret_hash,
			old_secret_valid_until = EXCLUDED.old_secret_valid_until`,
		s.ID, s.Secret, s.Algorithm, s.CreatedAt, s.RotatedAt, s.OldSecret, s.OldSecretHash, s.OldSecretValidUntil)
	if err != nil {
		return fmt.Errorf("failed to upsert webhook secret: %w", err)
	}
	return nil
}
