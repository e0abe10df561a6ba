package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/equilibrium"
)

type applyStressRequest struct {
	StressType     string  `json:"stress_type"`
	Description    string  `json:"description"`
	Magnitude      float64 `json:"magnitude"`
	DurationDays   int     `json:"duration_days"`
	CapacityImpact float64 `json:"capacity_impact"`
	DemandImpact   float64 `json:"demand_impact"`
	IsAcute        bool    `json:"is_acute"`
	IsReversible   bool    `json:"is_reversible"`
}

// ApplyStress records a new stress event against the current equilibrium
// state (POST /api/equilibrium/stress).
func (h *Handlers) ApplyStress(c echo.Context) error {
	var req applyStressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if errs := required(c,
		requiredField{"stress_type", req.StressType == ""},
		requiredField{"description", req.Description == ""},
	); len(errs) > 0 {
		return unprocessable(c, errs)
	}

	stress := h.deps.Equilibrium.ApplyStress(
		equilibrium.StressType(req.StressType),
		req.Description,
		req.Magnitude,
		req.DurationDays,
		req.CapacityImpact,
		req.DemandImpact,
		req.IsAcute,
		req.IsReversible,
	)
	return ok(c, http.StatusCreated, stress)
}

type initiateCompensationRequest struct {
	StressID           string  `json:"stress_id"`
	CompensationType   string  `json:"compensation_type"`
	Description        string  `json:"description"`
	Magnitude          float64 `json:"magnitude"`
	Effectiveness      float64 `json:"effectiveness"`
	SustainabilityDays int     `json:"sustainability_days"`
	ImmediateCost      float64 `json:"immediate_cost"`
	HiddenCost         float64 `json:"hidden_cost"`
}

// InitiateCompensation records a compensating response to an active stress
// (POST /api/equilibrium/compensation).
func (h *Handlers) InitiateCompensation(c echo.Context) error {
	var req initiateCompensationRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if errs := required(c,
		requiredField{"stress_id", req.StressID == ""},
		requiredField{"compensation_type", req.CompensationType == ""},
		requiredField{"description", req.Description == ""},
	); len(errs) > 0 {
		return unprocessable(c, errs)
	}

	stressID, err := uuid.Parse(req.StressID)
	if err != nil {
		return badRequest(c, err)
	}

	comp := h.deps.Equilibrium.InitiateCompensation(
		stressID,
		equilibrium.CompensationType(req.CompensationType),
		req.Description,
		req.Magnitude,
		req.Effectiveness,
		req.SustainabilityDays,
		req.ImmediateCost,
		req.HiddenCost,
	)
	return ok(c, http.StatusCreated, comp)
}

// EquilibriumReport returns the current capacity/demand equilibrium state
// (GET /api/equilibrium/report).
func (h *Handlers) EquilibriumReport(c echo.Context) error {
	return ok(c, http.StatusOK, h.deps.Equilibrium.GetReport())
}
