package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/compliance"
)

type validateComplianceRequest struct {
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	CheckWorkHours       bool      `json:"check_work_hours"`
	CheckSupervision     bool      `json:"check_supervision"`
	CheckRestPeriods     bool      `json:"check_rest_periods"`
	CheckConsecutiveDuty bool      `json:"check_consecutive_duty"`
	AllChecks            bool      `json:"all_checks"`
}

// ValidateCompliance runs spec.md §4.1's ACGME rule checks over a date
// range (POST /api/compliance/validate).
func (h *Handlers) ValidateCompliance(c echo.Context) error {
	var req validateComplianceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if errs := required(c,
		requiredField{"start_date", isZeroTime(req.StartDate)},
		requiredField{"end_date", isZeroTime(req.EndDate)},
	); len(errs) > 0 {
		return unprocessable(c, errs)
	}

	opts := compliance.Options{
		CheckWorkHours:       req.CheckWorkHours,
		CheckSupervision:     req.CheckSupervision,
		CheckRestPeriods:     req.CheckRestPeriods,
		CheckConsecutiveDuty: req.CheckConsecutiveDuty,
	}
	if req.AllChecks {
		opts = compliance.AllChecks()
	}

	result, err := h.deps.Compliance.Validate(c.Request().Context(), req.StartDate, req.EndDate, opts)
	if err != nil {
		return internalError(c, err)
	}
	return ok(c, http.StatusOK, result)
}
