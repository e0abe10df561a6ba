package entity

import "time"

// ImportBatchStatus is the staging pipeline's state machine (spec.md §4.5):
//
//	staged --approve--> approved --apply--> applied --rollback (<=24h)--> rolled_back
//	  \                                        \
//	   \--reject--> rejected                    \--(after 24h)--> rollback unavailable
type ImportBatchStatus string

const (
	BatchStatusStaged     ImportBatchStatus = "staged"
	BatchStatusApproved   ImportBatchStatus = "approved"
	BatchStatusApplied    ImportBatchStatus = "applied"
	BatchStatusRolledBack ImportBatchStatus = "rolled_back"
	BatchStatusRejected   ImportBatchStatus = "rejected"
	BatchStatusFailed     ImportBatchStatus = "failed"
)

// ConflictResolution controls how apply_batch reconciles a staged row
// against an existing Assignment on the same (block, person).
type ConflictResolution string

const (
	ConflictUpsert  ConflictResolution = "upsert"
	ConflictMerge   ConflictResolution = "merge"
	ConflictReplace ConflictResolution = "replace"
)

// RollbackWindow is the duration after ApplyBatch during which
// RollbackBatch is still permitted (spec.md §3, §4.5).
const RollbackWindow = 24 * time.Hour

// ImportBatch is the staging pipeline's unit of work: one uploaded file.
type ImportBatch struct {
	ID                 ImportBatchID
	CreatedAt          time.Time
	CreatedBy          PersonID
	Filename           string
	FileHash           string // sha256 hex of uploaded bytes
	FileSize           int64
	Status             ImportBatchStatus
	ConflictResolution ConflictResolution
	AppliedAt          *time.Time
	AppliedBy          *PersonID
	RollbackAvailable  bool
	RollbackExpiresAt  *time.Time

	RowCount     int
	ErrorCount   int
	WarningCount int
}

// IsActive reports whether this batch's file hash still reserves dedup
// space (spec.md §3: file_hash unique among batches in {staged, approved}).
func (b *ImportBatch) IsActive() bool {
	return b.Status == BatchStatusStaged || b.Status == BatchStatusApproved
}

// Approve transitions staged -> approved.
func (b *ImportBatch) Approve() error {
	if b.Status != BatchStatusStaged {
		return ErrInvalidBatchStateTransition
	}
	b.Status = BatchStatusApproved
	return nil
}

// Apply transitions {staged, approved} -> applied, opening the rollback
// window. Callers perform the actual Assignment mutations separately inside
// a transactional scope; this method only governs the batch's own state.
func (b *ImportBatch) Apply(appliedBy PersonID, now time.Time) error {
	if b.Status != BatchStatusStaged && b.Status != BatchStatusApproved {
		return ErrBatchNotStaged
	}
	b.Status = BatchStatusApplied
	b.AppliedAt = &now
	b.AppliedBy = &appliedBy
	b.RollbackAvailable = true
	expires := now.Add(RollbackWindow)
	b.RollbackExpiresAt = &expires
	return nil
}

// CanRollback reports whether rollback is still within the window at `now`.
// The boundary is inclusive: at exactly RollbackExpiresAt rollback is still
// permitted (spec.md §8 boundary behaviors).
func (b *ImportBatch) CanRollback(now time.Time) bool {
	if b.Status != BatchStatusApplied || b.RollbackExpiresAt == nil {
		return false
	}
	return !now.After(*b.RollbackExpiresAt)
}

// Rollback transitions applied -> rolled_back. Returns
// ErrRollbackWindowExpired if called past the window.
func (b *ImportBatch) Rollback(now time.Time) error {
	if b.Status != BatchStatusApplied {
		return ErrBatchNotApplied
	}
	if !b.CanRollback(now) {
		return ErrRollbackWindowExpired
	}
	b.Status = BatchStatusRolledBack
	b.RollbackAvailable = false
	return nil
}

// Reject transitions any non-applied status to rejected. Rejecting an
// already-rejected batch is a no-op success (spec.md §8 idempotence).
func (b *ImportBatch) Reject() error {
	if b.Status == BatchStatusRejected {
		return nil
	}
	if b.Status == BatchStatusApplied {
		return ErrBatchAlreadyApplied
	}
	b.Status = BatchStatusRejected
	return nil
}

// StagedAssignmentStatus tracks one row of an ImportBatch through staging.
type StagedAssignmentStatus string

const (
	StagedPending  StagedAssignmentStatus = "pending"
	StagedApproved StagedAssignmentStatus = "approved"
	StagedApplied  StagedAssignmentStatus = "applied"
	StagedSkipped  StagedAssignmentStatus = "skipped"
	StagedFailed   StagedAssignmentStatus = "failed"
)

// ConflictType classifies a staged row against existing Assignments.
type ConflictType string

const (
	ConflictNone      ConflictType = "none"
	ConflictOverwrite ConflictType = "overwrite"
	ConflictDuplicate ConflictType = "duplicate"
)

// ImportStagedAssignment is a single parsed row of an ImportBatch.
type ImportStagedAssignment struct {
	ID                   ImportStagedAssignmentID
	ImportBatchID        ImportBatchID
	RowNumber            int
	PersonName           string
	RotationName         string
	TargetDate           time.Time
	Slot                 TimeOfDay

	MatchedPersonID        *PersonID
	PersonMatchConfidence  int // 0-100
	MatchedRotationID      *RotationTemplateID
	RotationMatchConfidence int // 0-100

	ConflictType          ConflictType
	ExistingAssignmentID  *AssignmentID

	Status               StagedAssignmentStatus
	CreatedAssignmentID  *AssignmentID
	ValidationErrors      []string
	ValidationWarnings    []string
}
