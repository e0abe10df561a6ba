package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository/memory"
)

func signedRequest(t *testing.T, webhookID, secret string, algo entity.SignatureAlgorithm, payload map[string]interface{}, ts time.Time) Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	signingString := strconv.FormatInt(ts.Unix(), 10) + "." + canonicalizePayload(payload)
	sig, err := computeSignature(algo, secret, signingString)
	require.NoError(t, err)

	h := http.Header{}
	h.Set(headerSignature, sig)
	h.Set(headerTimestamp, strconv.FormatInt(ts.Unix(), 10))

	return Request{
		WebhookID: webhookID,
		SourceIP:  "10.0.0.5",
		Header:    h,
		Body:      body,
	}
}

func newTestVerifier(t *testing.T, cfg Config) (*Verifier, *memory.Database) {
	db := memory.New()
	v := NewVerifier(cfg, db.WebhookSecretRepository(), db.WebhookDeliveryRepository())
	return v, db
}

func seedSecret(t *testing.T, db *memory.Database, webhookID, secret string, algo entity.SignatureAlgorithm) {
	t.Helper()
	require.NoError(t, db.WebhookSecretRepository().Upsert(context.Background(), &entity.WebhookSecret{
		ID:        webhookID,
		Secret:    secret,
		Algorithm: algo,
		CreatedAt: entity.Now(),
	}))
}

func TestVerifySucceedsWithValidSignature(t *testing.T) {
	v, db := newTestVerifier(t, Config{})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "top-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "shift_updated", "id": 42}, entity.Now())

	result, err := v.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "shift_updated", result.Payload["event"])
	assert.False(t, result.IsRetry)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	v, db := newTestVerifier(t, Config{})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "wrong-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "shift_updated"}, entity.Now())

	_, err := v.Verify(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrWebhookSignatureInvalid)
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	v, db := newTestVerifier(t, Config{TimestampSkew: time.Minute})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "top-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "shift_updated"}, entity.Now().Add(-time.Hour))

	_, err := v.Verify(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrWebhookTimestampStale)
}

func TestVerifyRejectsOversizedPayload(t *testing.T) {
	v, db := newTestVerifier(t, Config{MaxBodyBytes: 10})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "top-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "shift_updated_with_a_long_payload"}, entity.Now())

	_, err := v.Verify(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrWebhookPayloadTooLarge)
}

func TestVerifyRejectsUnknownSecret(t *testing.T) {
	v, _ := newTestVerifier(t, Config{})

	req := signedRequest(t, "unknown-source", "whatever", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "x"}, entity.Now())

	_, err := v.Verify(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrWebhookSecretNotFound)
}

func TestVerifyRejectsIPOutsideWhitelist(t *testing.T) {
	v, db := newTestVerifier(t, Config{IPWhitelist: []string{"192.168.1.0/24"}})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "top-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "x"}, entity.Now())
	req.SourceIP = "10.0.0.5"

	_, err := v.Verify(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrWebhookIPNotAllowed)
}

func TestVerifyAllowsIPWithinWhitelistedCIDR(t *testing.T) {
	v, db := newTestVerifier(t, Config{IPWhitelist: []string{"10.0.0.0/8"}})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "top-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "x"}, entity.Now())
	req.SourceIP = "10.1.2.3"

	_, err := v.Verify(context.Background(), req)
	assert.NoError(t, err)
}

func TestVerifyDetectsReplay(t *testing.T) {
	v, db := newTestVerifier(t, Config{})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "top-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "x"}, entity.Now())
	req.Header.Set(headerDeliveryID, "delivery-123")

	first, err := v.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.IsRetry)

	second, err := v.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.IsRetry)
}

func TestVerifyAcceptsSignatureFromSecretWithinGraceWindow(t *testing.T) {
	v, db := newTestVerifier(t, Config{})
	oldSecret := "old-secret"
	validUntil := entity.Now().Add(time.Hour)
	require.NoError(t, db.WebhookSecretRepository().Upsert(context.Background(), &entity.WebhookSecret{
		ID:                  "amion",
		Secret:              "new-secret",
		Algorithm:           entity.AlgorithmSHA256,
		CreatedAt:           entity.Now(),
		OldSecret:           &oldSecret,
		OldSecretValidUntil: &validUntil,
	}))

	req := signedRequest(t, "amion", oldSecret, entity.AlgorithmSHA256,
		map[string]interface{}{"event": "x"}, entity.Now())

	_, err := v.Verify(context.Background(), req)
	assert.NoError(t, err)
}

func TestVerifyRejectsMissingRequiredHeader(t *testing.T) {
	v, db := newTestVerifier(t, Config{RequiredHeaders: []string{"X-Source-System"}})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "top-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "x"}, entity.Now())

	_, err := v.Verify(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrWebhookMissingHeader)
}

func TestVerifyRejectsAlgorithmPrefixMismatch(t *testing.T) {
	v, db := newTestVerifier(t, Config{})
	seedSecret(t, db, "amion", "top-secret", entity.AlgorithmSHA256)

	req := signedRequest(t, "amion", "top-secret", entity.AlgorithmSHA256,
		map[string]interface{}{"event": "x"}, entity.Now())
	req.Header.Set(headerSignature, "sha512="+req.Header.Get(headerSignature))

	_, err := v.Verify(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrWebhookAlgorithmMismatch)
}

func TestCanonicalizePayloadDoesNotHTMLEscape(t *testing.T) {
	out := canonicalizePayload(map[string]interface{}{
		"callback_url": "https://example.com/cb?a=1&b=2",
		"note":         "<tag>",
	})

	assert.Contains(t, out, "a=1&b=2")
	assert.Contains(t, out, "<tag>")
	assert.NotContains(t, out, "\\u0026")
	assert.NotContains(t, out, "\\u003c")
	assert.NotContains(t, out, "\\u003e")
}

func TestCanonicalizePayloadPreservesNonASCII(t *testing.T) {
	out := canonicalizePayload(map[string]interface{}{"name": "Müller"})
	assert.Contains(t, out, "Müller")
	assert.NotContains(t, out, "\\u00fc")
}

func TestCanonicalizePayloadSortsKeysWithNoWhitespace(t *testing.T) {
	out := canonicalizePayload(map[string]interface{}{"b": 1, "a": 2})
	assert.Equal(t, `{"a":2,"b":1}`, out)
}
