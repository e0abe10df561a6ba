package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/contingency"
)

type analyzeContingencyRequest struct {
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	CurrentUtilization float64   `json:"current_utilization"`
	IncludeN2          bool      `json:"include_n2"`
	MaxN2Pairs         int       `json:"max_n2_pairs"`
}

// AnalyzeContingency runs spec.md §4.2's N-1/N-2 resilience simulation
// (POST /api/contingency/analyze).
func (h *Handlers) AnalyzeContingency(c echo.Context) error {
	var req analyzeContingencyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if errs := required(c,
		requiredField{"start_date", isZeroTime(req.StartDate)},
		requiredField{"end_date", isZeroTime(req.EndDate)},
	); len(errs) > 0 {
		return unprocessable(c, errs)
	}

	maxPairs := req.MaxN2Pairs
	if maxPairs <= 0 {
		maxPairs = contingency.DefaultMaxN2Pairs
	}

	report, err := h.deps.Contingency.Analyze(c.Request().Context(), req.StartDate, req.EndDate, contingency.Options{
		CurrentUtilization: req.CurrentUtilization,
		IncludeN2:          req.IncludeN2,
		MaxN2Pairs:         maxPairs,
	})
	if err != nil {
		return internalError(c, err)
	}
	return ok(c, http.StatusOK, report)
}

// VulnerabilityAssessment summarizes N-1 exposure over a date range
// (GET /api/contingency/vulnerability?start=...&end=...).
func (h *Handlers) VulnerabilityAssessment(c echo.Context) error {
	start, end, err := parseDateRangeQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	assessment, err := h.deps.Contingency.GetVulnerabilityAssessment(c.Request().Context(), start, end)
	if err != nil {
		return internalError(c, err)
	}
	return ok(c, http.StatusOK, assessment)
}

type simulateN1Request struct {
	FacultyID string    `json:"faculty_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// SimulateN1 runs a single faculty-loss simulation
// (POST /api/contingency/simulate/n1).
func (h *Handlers) SimulateN1(c echo.Context) error {
	var req simulateN1Request
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if errs := required(c,
		requiredField{"faculty_id", req.FacultyID == ""},
		requiredField{"start_date", isZeroTime(req.StartDate)},
		requiredField{"end_date", isZeroTime(req.EndDate)},
	); len(errs) > 0 {
		return unprocessable(c, errs)
	}

	facultyID, err := uuid.Parse(req.FacultyID)
	if err != nil {
		return badRequest(c, err)
	}

	sim, err := h.deps.Contingency.SimulateFacultyLoss(c.Request().Context(), entity.PersonID(facultyID), req.StartDate, req.EndDate)
	if err != nil {
		return internalError(c, err)
	}
	return ok(c, http.StatusOK, sim)
}

func parseDateRangeQuery(c echo.Context) (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return start, end, err
	}
	end, err = time.Parse(time.RFC3339, c.QueryParam("end"))
	return start, end, err
}
