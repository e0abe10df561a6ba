package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/calendar"
)

type createSubscriptionRequest struct {
	PersonID  string `json:"person_id"`
	CreatedBy string `json:"created_by"`
	Label     string `json:"label"`
}

// CreateSubscription mints a new webcal subscription token for a person's
// schedule (POST /api/calendar/subscriptions).
func (h *Handlers) CreateSubscription(c echo.Context) error {
	var req createSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	personID, err := uuid.Parse(req.PersonID)
	if err != nil {
		return badRequest(c, err)
	}

	var createdBy *entity.PersonID
	if req.CreatedBy != "" {
		id, err := uuid.Parse(req.CreatedBy)
		if err != nil {
			return badRequest(c, err)
		}
		createdBy = &id
	}

	sub, err := h.deps.Subscriptions.Create(c.Request().Context(), personID, createdBy, req.Label)
	if err != nil {
		return internalError(c, err)
	}
	return ok(c, http.StatusCreated, sub)
}

// ServeFeed resolves a subscription token and streams back the person's
// iCalendar feed (GET /api/calendar/subscribe/:token).
func (h *Handlers) ServeFeed(c echo.Context) error {
	token := c.Param("token")

	sub, err := h.deps.Subscriptions.Resolve(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, entity.ErrSubscriptionRevoked) || errors.Is(err, entity.ErrSubscriptionExpired) {
			return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		}
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	}

	events, err := h.loadAssignmentEvents(c.Request().Context(), sub.PersonID)
	if err != nil {
		return internalError(c, err)
	}

	feed := h.deps.Calendar.Render("Resident Schedule", events)
	c.Response().Header().Set("Content-Type", "text/calendar; charset=utf-8")
	return c.String(http.StatusOK, feed)
}

// loadAssignmentEvents denormalizes a person's assignments from one month
// back to one year ahead into the exporter's flat AssignmentEvent shape.
func (h *Handlers) loadAssignmentEvents(ctx context.Context, personID entity.PersonID) ([]calendar.AssignmentEvent, error) {
	db := h.deps.DB
	person, err := db.PersonRepository().GetByID(ctx, personID)
	if err != nil {
		return nil, err
	}

	start := time.Now().AddDate(0, -1, 0)
	end := start.AddDate(1, 1, 0)
	assignments, err := db.AssignmentRepository().GetByPersonAndDateRange(ctx, personID, start, end)
	if err != nil {
		return nil, err
	}

	events := make([]calendar.AssignmentEvent, 0, len(assignments))
	for _, a := range assignments {
		block, err := db.BlockRepository().GetByID(ctx, a.BlockID)
		if err != nil {
			return nil, err
		}

		var rotation *entity.RotationTemplate
		if a.RotationTemplateID != nil {
			rotation, err = db.RotationTemplateRepository().GetByID(ctx, *a.RotationTemplateID)
			if err != nil {
				return nil, err
			}
		}

		events = append(events, calendar.AssignmentEvent{
			Assignment: a,
			Block:      block,
			Rotation:   rotation,
			PersonName: person.DisplayName,
		})
	}
	return events, nil
}
