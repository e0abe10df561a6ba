package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// StageImport accepts a multipart-uploaded spreadsheet and stages it
// for review (POST /api/imports, multipart field "file").
func (h *Handlers) StageImport(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, err)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return internalError(c, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return internalError(c, err)
	}

	resolution := entity.ConflictResolution(c.FormValue("conflict_resolution"))
	if resolution == "" {
		resolution = entity.ConflictUpsert
	}
	sheetName := c.FormValue("sheet_name")

	var createdBy *entity.PersonID
	if raw := c.FormValue("created_by"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, err)
		}
		createdBy = &id
	}

	result, err := h.deps.Importing.StageImport(c.Request().Context(), data, fileHeader.Filename, createdBy, resolution, sheetName)
	if err != nil {
		return badRequest(c, err)
	}
	return ok(c, http.StatusCreated, result)
}

func parseBatchID(c echo.Context) (entity.ImportBatchID, error) {
	return uuid.Parse(c.Param("batch_id"))
}

// BatchPreview returns a page of staged rows for review
// (GET /api/imports/:batch_id/preview?page=1&page_size=50).
func (h *Handlers) BatchPreview(c echo.Context) error {
	batchID, err := parseBatchID(c)
	if err != nil {
		return badRequest(c, err)
	}

	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	size := 50
	if raw := c.QueryParam("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}

	preview, err := h.deps.Importing.GetBatchPreview(c.Request().Context(), batchID, page, size)
	if err != nil {
		return internalError(c, err)
	}
	if preview == nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "batch not found")
	}
	return ok(c, http.StatusOK, preview)
}

type applyBatchRequest struct {
	AppliedBy          string                      `json:"applied_by"`
	ResolutionOverride *entity.ConflictResolution  `json:"resolution_override"`
	DryRun             bool                        `json:"dry_run"`
	ValidateACGME      bool                        `json:"validate_acgme"`
}

// ApplyBatch applies (or dry-run previews applying) a staged batch
// (POST /api/imports/:batch_id/apply).
func (h *Handlers) ApplyBatch(c echo.Context) error {
	batchID, err := parseBatchID(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req applyBatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	var appliedBy *entity.PersonID
	if req.AppliedBy != "" {
		id, err := uuid.Parse(req.AppliedBy)
		if err != nil {
			return badRequest(c, err)
		}
		appliedBy = &id
	}

	result, err := h.deps.Importing.ApplyBatch(c.Request().Context(), batchID, appliedBy, req.ResolutionOverride, req.DryRun, req.ValidateACGME)
	if err != nil {
		return badRequest(c, err)
	}
	return ok(c, http.StatusOK, result)
}

type rollbackBatchRequest struct {
	RolledBackBy string `json:"rolled_back_by"`
	Reason       string `json:"reason"`
}

// RollbackBatch undoes a previously-applied batch
// (POST /api/imports/:batch_id/rollback).
func (h *Handlers) RollbackBatch(c echo.Context) error {
	batchID, err := parseBatchID(c)
	if err != nil {
		return badRequest(c, err)
	}

	var req rollbackBatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	var rolledBackBy *entity.PersonID
	if req.RolledBackBy != "" {
		id, err := uuid.Parse(req.RolledBackBy)
		if err != nil {
			return badRequest(c, err)
		}
		rolledBackBy = &id
	}

	result, err := h.deps.Importing.RollbackBatch(c.Request().Context(), batchID, rolledBackBy, req.Reason)
	if err != nil {
		return badRequest(c, err)
	}
	return ok(c, http.StatusOK, result)
}

// RejectBatch discards a staged batch before it's ever applied
// (POST /api/imports/:batch_id/reject).
func (h *Handlers) RejectBatch(c echo.Context) error {
	batchID, err := parseBatchID(c)
	if err != nil {
		return badRequest(c, err)
	}

	rejected, reason, err := h.deps.Importing.RejectBatch(c.Request().Context(), batchID)
	if err != nil {
		return badRequest(c, err)
	}
	return ok(c, http.StatusOK, map[string]any{"rejected": rejected, "reason": reason})
}
