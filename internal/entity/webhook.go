package entity

import "time"

// SignatureAlgorithm is the HMAC digest used to sign/verify a webhook
// payload (spec.md §4.6 point 7).
type SignatureAlgorithm string

const (
	AlgorithmSHA256 SignatureAlgorithm = "sha256"
	AlgorithmSHA512 SignatureAlgorithm = "sha512"
	AlgorithmSHA1   SignatureAlgorithm = "sha1"
)

// WebhookSecret is the per-source signing secret used to verify inbound
// deliveries, plus rotation bookkeeping (spec.md §4.6: "rotate_secret(old)
// -> (new, metadata)").
type WebhookSecret struct {
	ID           string // webhook/source identifier, e.g. "amion", "ods-import"
	Secret       string
	Algorithm    SignatureAlgorithm
	CreatedAt    time.Time
	RotatedAt    *time.Time

	// OldSecret is the prior secret value, retained only until
	// OldSecretValidUntil so deliveries already in flight at rotation time
	// still verify (spec.md §4.6 rotation grace window). OldSecretHash is a
	// truncated SHA-256 fingerprint of it for audit display, independent of
	// whether the grace window is still open.
	OldSecret           *string
	OldSecretHash       *string
	OldSecretValidUntil *time.Time
}

// AcceptsOldSecret reports whether the prior secret is still within its
// rotation grace window at `now`.
func (s *WebhookSecret) AcceptsOldSecret(now time.Time) bool {
	return s.OldSecretValidUntil != nil && !now.After(*s.OldSecretValidUntil)
}

// WebhookDelivery records a single verified delivery id for replay
// detection (spec.md §4.6 point 8). A prior record for (WebhookID,
// DeliveryID) marks a subsequent identical delivery as a retry rather
// than a new event.
type WebhookDelivery struct {
	WebhookID  string
	DeliveryID string
	ReceivedAt time.Time
}
