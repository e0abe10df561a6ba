package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers dispatches HTTP requests into the service layer. One struct per
// the teacher's internal/api/handlers.go pattern, split across files by
// resource instead of one flat file given how many domains this core
// spans.
type Handlers struct {
	deps *Deps
}

// Health reports liveness. Readiness (DB/Redis connectivity) is left to
// the caller's infrastructure probe, since repository.Database.Health and
// the scheduler's lock already expose that per-component.
func (h *Handlers) Health(c echo.Context) error {
	return ok(c, http.StatusOK, map[string]string{"status": "ok"})
}
