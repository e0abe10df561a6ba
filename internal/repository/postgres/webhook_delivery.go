package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

type webhookDeliveryRepo struct {
	q querier
}

func (r *webhookDeliveryRepo) Exists(ctx context.Context, webhookID, deliveryID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM webhook_deliveries WHERE webhook_id = $1 AND delivery_id = $2)`,
		webhookID, deliveryID).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check webhook delivery: %w", err)
	}
	return exists, nil
}

func (r *webhookDeliveryRepo) Record(ctx context.Context, d *entity.WebhookDelivery) error {
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = entity.Now()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO webhook_deliveries (webhook_id, delivery_id, received_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (webhook_id, delivery_id) DO NOTHING`,
		d.WebhookID, d.DeliveryID, d.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	return nil
}
