package api

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/webhook"
)

// ReceiveWebhook verifies and ingests an inbound webhook delivery
// (POST /api/webhooks/:webhook_id).
func (h *Handlers) ReceiveWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, err)
	}

	result, err := h.deps.Webhook.Verify(c.Request().Context(), webhook.Request{
		WebhookID: c.Param("webhook_id"),
		SourceIP:  c.RealIP(),
		Header:    c.Request().Header,
		Body:      body,
	})
	if err != nil {
		return fail(c, http.StatusUnauthorized, "WEBHOOK_VERIFICATION_FAILED", err.Error())
	}
	return ok(c, http.StatusOK, result)
}
