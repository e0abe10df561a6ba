package entity

import "time"

// AssignmentRole distinguishes a resident's role on an Assignment.
type AssignmentRole string

const (
	AssignmentRolePrimary    AssignmentRole = "primary"
	AssignmentRoleBackup     AssignmentRole = "backup"
	AssignmentRoleSupervising AssignmentRole = "supervising"
)

// Assignment links a Person to a Block, optionally against a
// RotationTemplate. Invariant: at most one Assignment per (BlockID,
// PersonID) — enforced by the persistence layer's unique index (spec.md §6)
// and re-checked by repositories that cannot rely on the backing store.
type Assignment struct {
	ID                 AssignmentID
	BlockID            BlockID
	PersonID           PersonID
	RotationTemplateID *RotationTemplateID
	Role               AssignmentRole
	Notes              string
	CreatedAt          time.Time
}

// AbsenceType enumerates reasons a Person is unavailable.
type AbsenceType string

const (
	AbsenceVacation       AbsenceType = "vacation"
	AbsenceMedical        AbsenceType = "medical"
	AbsenceFamilyEmergency AbsenceType = "family_emergency"
	AbsenceDeployment     AbsenceType = "deployment"
	AbsenceMilitaryTDY    AbsenceType = "military_tdy"
	AbsenceConference     AbsenceType = "conference"
	AbsenceOther          AbsenceType = "other"
)

// Absence records a Person's unavailability over an inclusive date range.
type Absence struct {
	ID               AbsenceID
	PersonID         PersonID
	StartDate        time.Time
	EndDate          time.Time
	Type             AbsenceType
	DeploymentOrders bool
}

// DurationDays returns end - start + 1, the inclusive day count.
func (a *Absence) DurationDays() int {
	return int(a.EndDate.Sub(a.StartDate).Hours()/24) + 1
}

// Overlaps reports whether date falls within [StartDate, EndDate] inclusive.
func (a *Absence) Overlaps(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	start := a.StartDate.Truncate(24 * time.Hour)
	end := a.EndDate.Truncate(24 * time.Hour)
	return !d.Before(start) && !d.After(end)
}
