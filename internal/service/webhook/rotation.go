package webhook

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

// DefaultGracePeriod is how long a rotated-out secret continues to verify
// deliveries signed before the rotation propagated (original_source's
// rotate_webhook_secret grace_period_hours default).
const DefaultGracePeriod = 24 * time.Hour

// GenerateSecret returns an n-byte, URL-safe base64-encoded random secret,
// grounded on verification.py's generate_webhook_secret.
func GenerateSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate webhook secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RotationMetadata describes the old/new secret boundary for audit logging.
type RotationMetadata struct {
	OldSecretHash       string
	OldSecretValidUntil time.Time
	GracePeriod         time.Duration
}

// Rotator generates and persists new signing secrets.
type Rotator struct {
	secrets     repository.WebhookSecretRepository
	gracePeriod time.Duration
}

func NewRotator(secrets repository.WebhookSecretRepository, gracePeriod time.Duration) *Rotator {
	if gracePeriod == 0 {
		gracePeriod = DefaultGracePeriod
	}
	return &Rotator{secrets: secrets, gracePeriod: gracePeriod}
}

// Rotate replaces webhookID's current secret with a freshly generated one,
// keeping the prior secret valid for the grace period so in-flight
// deliveries still verify (spec.md §4.6 "rotate_secret(old) -> (new,
// metadata)", supplemented per SPEC_FULL.md with the old_secret_hash
// fingerprint original_source also returns).
func (r *Rotator) Rotate(ctx context.Context, webhookID string, algo entity.SignatureAlgorithm) (newSecret string, meta RotationMetadata, err error) {
	existing, err := r.secrets.GetByWebhookID(ctx, webhookID)
	if err != nil && !repository.IsNotFound(err) {
		return "", RotationMetadata{}, fmt.Errorf("failed to load webhook secret: %w", err)
	}

	newSecret, err = GenerateSecret(32)
	if err != nil {
		return "", RotationMetadata{}, err
	}

	now := entity.Now()
	validUntil := now.Add(r.gracePeriod)
	updated := &entity.WebhookSecret{
		ID:                  webhookID,
		Secret:              newSecret,
		Algorithm:           algo,
		CreatedAt:           now,
		RotatedAt:           &now,
		OldSecretValidUntil: &validUntil,
	}

	if existing != nil {
		hash := fingerprint(existing.Secret)
		updated.OldSecret = &existing.Secret
		updated.OldSecretHash = &hash
		meta.OldSecretHash = hash
	} else {
		updated.CreatedAt = now
	}
	meta.OldSecretValidUntil = validUntil
	meta.GracePeriod = r.gracePeriod

	if err := r.secrets.Upsert(ctx, updated); err != nil {
		return "", RotationMetadata{}, fmt.Errorf("failed to persist rotated secret: %w", err)
	}
	return newSecret, meta, nil
}

// fingerprint produces a truncated SHA-256 digest of a secret for audit
// display, never the secret itself.
func fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])[:16]
}
