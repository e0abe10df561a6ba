package importstaging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/compliance"
)

// Service implements spec.md §4.5's staging pipeline over a
// repository.Database. Carries cumulative Metrics state across calls, the
// same mutex-guarded-struct shape used by service/search and
// service/scheduler.
type Service struct {
	db repository.Database

	mu      sync.Mutex
	metrics Metrics
}

func NewService(db repository.Database) *Service {
	return &Service{db: db}
}

// StageImport implements spec.md §4.5's stage_import: hash/dedup, parse,
// fuzzy-match, conflict-detect, and persist in one transaction.
func (s *Service) StageImport(ctx context.Context, fileBytes []byte, filename string, createdBy *entity.PersonID, resolution entity.ConflictResolution, sheetName string) (*StageResult, error) {
	hash := sha256.Sum256(fileBytes)
	fileHash := hex.EncodeToString(hash[:])

	if existing, err := s.db.ImportBatchRepository().GetActiveByFileHash(ctx, fileHash); err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("checking for duplicate file: %w", err)
	} else if err == nil && existing != nil {
		return &StageResult{
			Success:   false,
			Message:   fmt.Sprintf("duplicate file detected; existing batch %s has the same content", existing.ID),
			ErrorCode: ErrCodeDuplicateFile,
		}, nil
	}

	rows, parseWarnings, err := parseWorkbook(fileBytes, sheetName)
	if err != nil {
		return &StageResult{Success: false, Message: fmt.Sprintf("failed to parse workbook: %v", err), ErrorCode: ErrCodeParseError}, nil
	}
	if len(rows) == 0 {
		return &StageResult{Success: false, Message: "no data rows found in workbook", ErrorCode: ErrCodeNoData}, nil
	}

	personCache, err := s.loadPersonCache(ctx)
	if err != nil {
		return nil, err
	}
	rotationCache, err := s.loadRotationCache(ctx)
	if err != nil {
		return nil, err
	}

	if resolution == "" {
		resolution = entity.ConflictUpsert
	}

	batch := &entity.ImportBatch{
		ID:                 uuid.New(),
		CreatedAt:          entity.Now(),
		Filename:           filename,
		FileHash:           fileHash,
		FileSize:           int64(len(fileBytes)),
		Status:             entity.BatchStatusStaged,
		ConflictResolution: resolution,
		RowCount:           len(rows),
	}
	if createdBy != nil {
		batch.CreatedBy = *createdBy
	}

	errorCount := 0
	warningCount := len(parseWarnings)
	staged := make([]*entity.ImportStagedAssignment, 0, len(rows))

	for _, row := range rows {
		row := row
		record, rowErrors, rowWarnings, err := s.buildStagedRow(ctx, batch.ID, row, personCache, rotationCache)
		if err != nil {
			return nil, err
		}
		if record != nil {
			staged = append(staged, record)
		}
		if len(rowErrors) > 0 {
			errorCount++
		}
		warningCount += len(rowWarnings)
	}

	batch.ErrorCount = errorCount
	batch.WarningCount = warningCount

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning staging transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.ImportBatchRepository().Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("persisting batch: %w", err)
	}
	if len(staged) > 0 {
		if err := tx.ImportStagedAssignmentRepository().CreateBatch(ctx, staged); err != nil {
			return nil, fmt.Errorf("persisting staged rows: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing staging transaction: %w", err)
	}

	s.mu.Lock()
	s.metrics.BatchesStaged++
	s.metrics.RowsStaged += len(rows)
	s.mu.Unlock()

	return &StageResult{
		Success:      true,
		BatchID:      batch.ID,
		Message:      fmt.Sprintf("successfully staged %d rows", len(rows)),
		RowCount:     len(rows),
		ErrorCount:   errorCount,
		WarningCount: warningCount,
	}, nil
}

func (s *Service) loadPersonCache(ctx context.Context) (nameCache, error) {
	persons, err := s.db.PersonRepository().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading person cache: %w", err)
	}
	cache := newNameCache()
	for _, p := range persons {
		cache.put(p.DisplayName, p.ID)
	}
	return cache, nil
}

func (s *Service) loadRotationCache(ctx context.Context) (nameCache, error) {
	rotations, err := s.db.RotationTemplateRepository().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rotation cache: %w", err)
	}
	cache := newNameCache()
	for _, r := range rotations {
		cache.put(r.Name, r.ID)
	}
	return cache, nil
}

// buildStagedRow fuzzy-matches a parsed row against the person/rotation
// caches and checks it for conflicts against existing assignments on the
// same date (spec.md §4.5 steps 4-5).
func (s *Service) buildStagedRow(ctx context.Context, batchID entity.ImportBatchID, row parsedRow, personCache, rotationCache nameCache) (*entity.ImportStagedAssignment, []string, []string, error) {
	var errs, warnings []string

	if row.personName == "" {
		errs = append(errs, "missing person name")
	}
	if row.assignmentDate.IsZero() {
		errs = append(errs, "missing assignment date")
	}
	if len(errs) > 0 {
		return nil, errs, warnings, nil
	}

	staged := &entity.ImportStagedAssignment{
		ID:            uuid.New(),
		ImportBatchID: batchID,
		RowNumber:     row.rowNumber,
		PersonName:    row.personName,
		RotationName:  row.rotationName,
		TargetDate:    row.assignmentDate,
		Status:        entity.StagedPending,
	}
	if row.slot == string(entity.TimeOfDayPM) {
		staged.Slot = entity.TimeOfDayPM
	} else {
		staged.Slot = entity.TimeOfDayAM
	}

	personID, personConfidence, personMatched := fuzzyMatch(personCache, row.personName)
	if personMatched {
		staged.MatchedPersonID = &personID
		staged.PersonMatchConfidence = personConfidence
	}
	if personConfidence < FuzzyMatchThreshold {
		warnings = append(warnings, fmt.Sprintf("low confidence person match: %s (%d%%)", row.personName, personConfidence))
	}

	if row.rotationName != "" {
		rotationID, rotationConfidence, rotationMatched := fuzzyMatch(rotationCache, row.rotationName)
		if rotationMatched {
			staged.MatchedRotationID = &rotationID
			staged.RotationMatchConfidence = rotationConfidence
		}
		if rotationConfidence < FuzzyMatchThreshold {
			warnings = append(warnings, fmt.Sprintf("low confidence rotation match: %s (%d%%)", row.rotationName, rotationConfidence))
		}
	}

	if staged.MatchedPersonID != nil {
		conflictType, existingID, err := s.detectConflict(ctx, *staged.MatchedPersonID, staged.MatchedRotationID, row.assignmentDate)
		if err != nil {
			return nil, errs, warnings, err
		}
		staged.ConflictType = conflictType
		staged.ExistingAssignmentID = existingID
	} else {
		staged.ConflictType = entity.ConflictNone
	}

	staged.ValidationErrors = errs
	staged.ValidationWarnings = warnings
	return staged, errs, warnings, nil
}

// detectConflict implements spec.md §4.5 step 5: a matched person already
// assigned on the row's date conflicts as "duplicate" when the rotation
// also matches, else "overwrite".
func (s *Service) detectConflict(ctx context.Context, personID entity.PersonID, rotationID *entity.RotationTemplateID, date time.Time) (entity.ConflictType, *entity.AssignmentID, error) {
	blocks, err := s.db.BlockRepository().GetByDate(ctx, date)
	if err != nil {
		return entity.ConflictNone, nil, fmt.Errorf("loading blocks for conflict check: %w", err)
	}

	for _, block := range blocks {
		existing, err := s.db.AssignmentRepository().GetByBlockAndPerson(ctx, block.ID, personID)
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			return entity.ConflictNone, nil, fmt.Errorf("checking existing assignment: %w", err)
		}
		existingID := existing.ID
		if rotationID != nil && existing.RotationTemplateID != nil && *existing.RotationTemplateID == *rotationID {
			return entity.ConflictDuplicate, &existingID, nil
		}
		return entity.ConflictOverwrite, &existingID, nil
	}
	return entity.ConflictNone, nil, nil
}

// GetBatchPreview implements spec.md §4.5's get_batch_preview: paginated
// staged rows plus new/update/conflict/skip counts and, when the staged
// rows span a date range, a forward ACGME compliance warning list computed
// over that hypothetical post-apply window.
func (s *Service) GetBatchPreview(ctx context.Context, batchID entity.ImportBatchID, page, size int) (*PreviewResult, error) {
	if _, err := s.db.ImportBatchRepository().GetByID(ctx, batchID); err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading batch: %w", err)
	}

	allRows, err := s.db.ImportStagedAssignmentRepository().GetByImportBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("loading staged rows: %w", err)
	}

	page, size = normalizePage(page, size)
	pageRows, total, err := s.db.ImportStagedAssignmentRepository().GetPage(ctx, batchID, page-1, size)
	if err != nil {
		return nil, fmt.Errorf("paginating staged rows: %w", err)
	}

	result := &PreviewResult{BatchID: batchID, StagedRows: pageRows, TotalStaged: total}
	for _, row := range allRows {
		switch {
		case row.Status == entity.StagedSkipped:
			result.SkipCount++
		case row.ConflictType == entity.ConflictOverwrite:
			result.UpdateCount++
			result.Conflicts = append(result.Conflicts, conflictEntryFrom(row))
		case row.ConflictType == entity.ConflictDuplicate:
			result.ConflictCount++
			result.Conflicts = append(result.Conflicts, conflictEntryFrom(row))
		default:
			result.NewCount++
		}
	}

	if start, end, ok := stagedDateRange(allRows); ok {
		violations, err := s.acgmeWarnings(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("computing acgme preview: %w", err)
		}
		result.ACGMEViolations = violations
	}

	return result, nil
}

func conflictEntryFrom(row *entity.ImportStagedAssignment) ConflictEntry {
	return ConflictEntry{
		StagedRowID:          row.ID,
		ExistingAssignmentID: row.ExistingAssignmentID,
		PersonName:           row.PersonName,
		AssignmentDate:       row.TargetDate,
		Slot:                 row.Slot,
		StagedRotation:       row.RotationName,
		ConflictType:         row.ConflictType,
	}
}

func stagedDateRange(rows []*entity.ImportStagedAssignment) (start, end time.Time, ok bool) {
	for _, row := range rows {
		if !ok || row.TargetDate.Before(start) {
			start = row.TargetDate
		}
		if !ok || row.TargetDate.After(end) {
			end = row.TargetDate
		}
		ok = true
	}
	return start, end, ok
}

func (s *Service) acgmeWarnings(ctx context.Context, start, end time.Time) ([]string, error) {
	result, err := compliance.NewValidator(s.db).Validate(ctx, start, end, compliance.AllChecks())
	if err != nil {
		return nil, err
	}
	warnings := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		warnings = append(warnings, fmt.Sprintf("%s: %s", v.Severity, v.SuggestedFix))
	}
	return warnings, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 50
	}
	return page, size
}

// ApplyBatch implements spec.md §4.5's apply_batch: for every pending or
// approved staged row, locate-or-create the target Block and reconcile
// against any existing Assignment per the chosen ConflictResolution.
func (s *Service) ApplyBatch(ctx context.Context, batchID entity.ImportBatchID, appliedBy *entity.PersonID, resolutionOverride *entity.ConflictResolution, dryRun, validateACGME bool) (*ApplyResult, error) {
	batch, err := s.db.ImportBatchRepository().GetByID(ctx, batchID)
	if err != nil {
		if repository.IsNotFound(err) {
			return &ApplyResult{Success: false, BatchID: batchID, Status: entity.BatchStatusFailed, Message: "batch not found", ErrorCode: ErrCodeBatchNotFound}, nil
		}
		return nil, fmt.Errorf("loading batch: %w", err)
	}

	if batch.Status != entity.BatchStatusStaged && batch.Status != entity.BatchStatusApproved {
		return &ApplyResult{
			Success:   false,
			BatchID:   batchID,
			Status:    batch.Status,
			Message:   fmt.Sprintf("cannot apply batch with status: %s", batch.Status),
			ErrorCode: ErrCodeInvalidStatus,
		}, nil
	}

	resolution := batch.ConflictResolution
	if resolutionOverride != nil {
		resolution = *resolutionOverride
	}

	allRows, err := s.db.ImportStagedAssignmentRepository().GetByImportBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("loading staged rows: %w", err)
	}
	var pending []*entity.ImportStagedAssignment
	for _, row := range allRows {
		if row.Status == entity.StagedPending || row.Status == entity.StagedApproved {
			pending = append(pending, row)
		}
	}

	if dryRun {
		return &ApplyResult{
			Success: true,
			BatchID: batchID,
			Status:  batch.Status,
			AppliedCount: len(pending),
			Message: fmt.Sprintf("dry run: would apply %d assignments", len(pending)),
		}, nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning apply transaction: %w", err)
	}
	defer tx.Rollback()

	applied, skipped, failed := 0, 0, 0
	var errs []ApplyRowError

	for _, row := range pending {
		createdID, err := s.applySingleRow(ctx, tx, row, resolution)
		if err != nil {
			row.Status = entity.StagedFailed
			failed++
			errs = append(errs, ApplyRowError{StagedRowID: row.ID, RowNumber: row.RowNumber, PersonName: row.PersonName, Message: err.Error()})
		} else if createdID != nil {
			row.Status = entity.StagedApplied
			row.CreatedAssignmentID = createdID
			applied++
		} else {
			row.Status = entity.StagedSkipped
			skipped++
		}
		if err := tx.ImportStagedAssignmentRepository().Update(ctx, row); err != nil {
			return nil, fmt.Errorf("updating staged row %s: %w", row.ID, err)
		}
	}

	now := entity.Now()
	if err := batch.Apply(valueOrZero(appliedBy), now); err != nil {
		return nil, fmt.Errorf("transitioning batch to applied: %w", err)
	}
	if err := tx.ImportBatchRepository().Update(ctx, batch); err != nil {
		return nil, fmt.Errorf("persisting batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing apply transaction: %w", err)
	}

	var acgmeWarnings []string
	if validateACGME && applied > 0 {
		if start, end, ok := stagedDateRange(pending); ok {
			acgmeWarnings, err = s.acgmeWarnings(ctx, start, end)
			if err != nil {
				return nil, fmt.Errorf("computing post-apply acgme warnings: %w", err)
			}
		}
	}

	s.mu.Lock()
	s.metrics.RowsApplied += applied
	s.metrics.RowsFailed += failed
	s.metrics.RowsSkipped += skipped
	s.mu.Unlock()

	return &ApplyResult{
		Success:           failed == 0,
		BatchID:           batchID,
		Status:            batch.Status,
		AppliedCount:       applied,
		SkippedCount:      skipped,
		ErrorCount:        failed,
		Errors:            errs,
		ACGMEWarnings:     acgmeWarnings,
		RollbackAvailable: batch.RollbackAvailable,
		RollbackExpiresAt: batch.RollbackExpiresAt,
		Message:           fmt.Sprintf("applied %d assignments", applied),
	}, nil
}

func valueOrZero(id *entity.PersonID) entity.PersonID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

// applySingleRow implements spec.md §4.5 apply_batch step 2's per-row
// reconciliation: merge skips if present, upsert updates rotation/notes,
// replace deletes and recreates.
func (s *Service) applySingleRow(ctx context.Context, tx repository.Transaction, row *entity.ImportStagedAssignment, resolution entity.ConflictResolution) (*entity.AssignmentID, error) {
	if row.MatchedPersonID == nil {
		return nil, nil
	}

	slot := row.Slot
	if slot == "" {
		slot = entity.TimeOfDayAM
	}
	block, err := tx.BlockRepository().FindOrCreate(ctx, row.TargetDate, slot)
	if err != nil {
		return nil, fmt.Errorf("locating block: %w", err)
	}

	existing, err := tx.AssignmentRepository().GetByBlockAndPerson(ctx, block.ID, *row.MatchedPersonID)
	hasExisting := err == nil
	if err != nil && !repository.IsNotFound(err) {
		return nil, fmt.Errorf("checking existing assignment: %w", err)
	}

	if hasExisting {
		switch resolution {
		case entity.ConflictMerge:
			return nil, nil
		case entity.ConflictReplace:
			if err := tx.AssignmentRepository().Delete(ctx, existing.ID); err != nil {
				return nil, fmt.Errorf("deleting existing assignment: %w", err)
			}
		default: // upsert
			existing.RotationTemplateID = row.MatchedRotationID
			existing.Notes = fmt.Sprintf("updated via import batch at %s", entity.Now().Format(time.RFC3339))
			if err := tx.AssignmentRepository().Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("updating existing assignment: %w", err)
			}
			id := existing.ID
			return &id, nil
		}
	}

	created := &entity.Assignment{
		ID:                 uuid.New(),
		BlockID:            block.ID,
		PersonID:           *row.MatchedPersonID,
		RotationTemplateID: row.MatchedRotationID,
		Role:               entity.AssignmentRolePrimary,
		Notes:              fmt.Sprintf("created via import batch at %s", entity.Now().Format(time.RFC3339)),
		CreatedAt:          entity.Now(),
	}
	if err := tx.AssignmentRepository().Create(ctx, created); err != nil {
		return nil, fmt.Errorf("creating assignment: %w", err)
	}
	return &created.ID, nil
}

// RollbackBatch implements spec.md §4.5's rollback_batch: within the 24h
// window, delete every assignment this batch created and reset its staged
// rows to pending.
func (s *Service) RollbackBatch(ctx context.Context, batchID entity.ImportBatchID, rolledBackBy *entity.PersonID, reason string) (*RollbackResult, error) {
	batch, err := s.db.ImportBatchRepository().GetByID(ctx, batchID)
	if err != nil {
		if repository.IsNotFound(err) {
			return &RollbackResult{Success: false, BatchID: batchID, Status: entity.BatchStatusFailed, Message: "batch not found", ErrorCode: ErrCodeBatchNotFound}, nil
		}
		return nil, fmt.Errorf("loading batch: %w", err)
	}

	if batch.Status != entity.BatchStatusApplied {
		return &RollbackResult{Success: false, BatchID: batchID, Status: batch.Status, Message: fmt.Sprintf("cannot rollback batch with status: %s", batch.Status), ErrorCode: ErrCodeInvalidStatus}, nil
	}
	if !batch.RollbackAvailable {
		return &RollbackResult{Success: false, BatchID: batchID, Status: batch.Status, Message: "rollback not available for this batch", ErrorCode: ErrCodeRollbackUnavail}, nil
	}

	now := entity.Now()
	if !batch.CanRollback(now) {
		return &RollbackResult{Success: false, BatchID: batchID, Status: batch.Status, Message: fmt.Sprintf("rollback window of %s has expired", entity.RollbackWindow), ErrorCode: ErrCodeRollbackExpired}, nil
	}

	allRows, err := s.db.ImportStagedAssignmentRepository().GetByImportBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("loading staged rows: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning rollback transaction: %w", err)
	}
	defer tx.Rollback()

	rolledBack, failed := 0, 0
	var errs []string
	for _, row := range allRows {
		if row.Status != entity.StagedApplied || row.CreatedAssignmentID == nil {
			continue
		}
		if err := tx.AssignmentRepository().Delete(ctx, *row.CreatedAssignmentID); err != nil && !repository.IsNotFound(err) {
			failed++
			errs = append(errs, err.Error())
			continue
		}
		row.Status = entity.StagedPending
		row.CreatedAssignmentID = nil
		if err := tx.ImportStagedAssignmentRepository().Update(ctx, row); err != nil {
			failed++
			errs = append(errs, err.Error())
			continue
		}
		rolledBack++
	}

	if err := batch.Rollback(now); err != nil {
		return nil, fmt.Errorf("transitioning batch to rolled_back: %w", err)
	}
	if err := tx.ImportBatchRepository().Update(ctx, batch); err != nil {
		return nil, fmt.Errorf("persisting batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing rollback transaction: %w", err)
	}

	s.mu.Lock()
	s.metrics.RowsRolledBack += rolledBack
	s.mu.Unlock()

	return &RollbackResult{
		Success:         failed == 0,
		BatchID:         batchID,
		Status:          batch.Status,
		RolledBackCount: rolledBack,
		FailedCount:     failed,
		Errors:          errs,
		Message:         fmt.Sprintf("rolled back %d assignments", rolledBack),
	}, nil
}

// RejectBatch implements spec.md §4.5's reject_batch: marks every staged
// row skipped and the batch rejected; the staged rows are kept, not
// deleted. Fails on an already-applied batch
// (must be rolled back first); rejecting an already-rejected batch is an
// idempotent success.
func (s *Service) RejectBatch(ctx context.Context, batchID entity.ImportBatchID) (bool, string, error) {
	batch, err := s.db.ImportBatchRepository().GetByID(ctx, batchID)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, "batch not found", nil
		}
		return false, "", fmt.Errorf("loading batch: %w", err)
	}

	if batch.Status == entity.BatchStatusRejected {
		return true, "batch already rejected", nil
	}
	if err := batch.Reject(); err != nil {
		return false, "cannot reject an applied batch; use rollback first", nil
	}

	rows, err := s.db.ImportStagedAssignmentRepository().GetByImportBatch(ctx, batchID)
	if err != nil {
		return false, "", fmt.Errorf("loading staged rows: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return false, "", fmt.Errorf("beginning reject transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		row.Status = entity.StagedSkipped
		if err := tx.ImportStagedAssignmentRepository().Update(ctx, row); err != nil {
			return false, "", fmt.Errorf("clearing staged row %s: %w", row.ID, err)
		}
	}
	if err := tx.ImportBatchRepository().Update(ctx, batch); err != nil {
		return false, "", fmt.Errorf("persisting batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, "", fmt.Errorf("committing reject transaction: %w", err)
	}

	return true, "batch rejected successfully", nil
}

// Metrics returns a cumulative snapshot of staging activity this Service
// has handled since construction.
func (s *Service) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}
