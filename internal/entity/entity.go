// Package entity holds the plain value types that make up the scheduling
// and resilience core's data model (spec.md §3). All types here are
// persistence-agnostic: repositories translate them to and from storage.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Type aliases for domain IDs and temporal types, matching the teacher's
// convention of aliasing uuid.UUID per entity rather than using a bare
// uuid.UUID everywhere.
type (
	PersonID               = uuid.UUID
	BlockID                = uuid.UUID
	RotationTemplateID     = uuid.UUID
	AssignmentID           = uuid.UUID
	AbsenceID               = uuid.UUID
	ImportBatchID           = uuid.UUID
	ImportStagedAssignmentID = uuid.UUID
	CalendarSubscriptionID  = uuid.UUID
	ScheduledTaskID         = uuid.UUID
	TaskExecutionID         = uuid.UUID
)

// Now returns the current time in UTC, the single clock source
// used throughout the core so tests can reason about wall time consistently.
func Now() time.Time {
	return time.Now().UTC()
}

// NowPtr is Now but boxed, for the many optional timestamp fields below.
func NowPtr() *time.Time {
	t := Now()
	return &t
}
