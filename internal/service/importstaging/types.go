// Package importstaging implements the five-operation Excel import staging
// pipeline (spec.md §4.5): stage, preview, apply, rollback, reject. Grounded
// on original_source/backend/app/services/import_staging_service.py's
// ImportStagingService, restructured from SQLAlchemy sessions into the
// repository.Database/Transaction interface the rest of the core uses.
package importstaging

import (
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// FuzzyMatchThreshold is the minimum similarity score (0-100) a candidate
// must reach to count as matched rather than merely "best guess" (spec.md
// §4.5 step 4: "FUZZY_THRESHOLD = 70").
const FuzzyMatchThreshold = 70

// requiredHeaders are the normalized column names stage_import cannot
// proceed without (spec.md §4.5 step 2).
var requiredHeaders = []string{"person_name", "assignment_date"}

// Error codes mirror the original's string error_code fields so callers
// (API handlers, tests) can match on a stable identifier rather than parsing
// the message.
const (
	ErrCodeDuplicateFile     = "DUPLICATE_FILE"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodeNoData            = "NO_DATA"
	ErrCodeBatchNotFound     = "BATCH_NOT_FOUND"
	ErrCodeInvalidStatus     = "INVALID_STATUS"
	ErrCodeRollbackUnavail   = "ROLLBACK_NOT_AVAILABLE"
	ErrCodeRollbackExpired   = "ROLLBACK_WINDOW_EXPIRED"
	ErrCodeApplyFailed       = "APPLY_FAILED"
)

// StageResult is the outcome of StageImport.
type StageResult struct {
	Success      bool
	BatchID      entity.ImportBatchID
	Message      string
	ErrorCode    string
	RowCount     int
	ErrorCount   int
	WarningCount int
}

// ConflictEntry describes one staged row that collides with an existing
// Assignment, surfaced by GetBatchPreview for operator review.
type ConflictEntry struct {
	StagedRowID          entity.ImportStagedAssignmentID
	ExistingAssignmentID *entity.AssignmentID
	PersonName           string
	AssignmentDate       time.Time
	Slot                 entity.TimeOfDay
	StagedRotation       string
	ConflictType         entity.ConflictType
}

// PreviewResult is the outcome of GetBatchPreview.
type PreviewResult struct {
	BatchID         entity.ImportBatchID
	NewCount        int
	UpdateCount     int
	ConflictCount   int
	SkipCount       int
	TotalStaged     int
	StagedRows      []*entity.ImportStagedAssignment
	Conflicts       []ConflictEntry
	ACGMEViolations []string
}

// ApplyRowError records one staged row's apply-time failure.
type ApplyRowError struct {
	StagedRowID entity.ImportStagedAssignmentID
	RowNumber   int
	PersonName  string
	Message     string
}

// ApplyResult is the outcome of ApplyBatch.
type ApplyResult struct {
	Success           bool
	BatchID           entity.ImportBatchID
	Status            entity.ImportBatchStatus
	AppliedCount      int
	SkippedCount      int
	ErrorCount        int
	Errors            []ApplyRowError
	ACGMEWarnings     []string
	RollbackAvailable bool
	RollbackExpiresAt *time.Time
	Message           string
	ErrorCode         string
}

// RollbackResult is the outcome of RollbackBatch.
type RollbackResult struct {
	Success         bool
	BatchID         entity.ImportBatchID
	Status          entity.ImportBatchStatus
	RolledBackCount int
	FailedCount     int
	Errors          []string
	Message         string
	ErrorCode       string
}

// Metrics is a cumulative snapshot across every StageImport/ApplyBatch call
// this Service has handled, grounded on the teacher's
// reimplement/internal/service/ods.ODSImporter.GetErrorMetrics.
type Metrics struct {
	BatchesStaged   int
	RowsStaged      int
	RowsApplied     int
	RowsFailed      int
	RowsSkipped     int
	RowsRolledBack  int
}

// SuccessRate returns the fraction of staged rows that were ultimately
// applied, or 0 when nothing has been staged yet.
func (m Metrics) SuccessRate() float64 {
	if m.RowsStaged == 0 {
		return 0
	}
	return float64(m.RowsApplied) / float64(m.RowsStaged)
}
