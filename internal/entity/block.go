package entity

import "time"

// TimeOfDay is the half-day portion of a Block.
type TimeOfDay string

const (
	TimeOfDayAM TimeOfDay = "AM"
	TimeOfDayPM TimeOfDay = "PM"
)

// HoursPerBlock is the fixed number of work hours a single Block contributes
// to a resident's duty-hour tally (spec.md §3).
const HoursPerBlock = 6

// Block is the atomic half-day coverage slot.
type Block struct {
	ID          BlockID
	Date        time.Time
	TimeOfDay   TimeOfDay
	BlockNumber int // 1-based within the day
	IsWeekend   bool
	IsHoliday   bool
}

// CriticalActivityTags are RotationTemplate.ActivityType values that
// designate a critical service for contingency/severity purposes.
var CriticalActivityTags = map[string]bool{
	"inpatient": true,
	"call":      true,
	"emergency": true,
	"procedure": true,
	"trauma":    true,
	"icu":       true,
}

// IsCriticalService reports whether an activity tag names a critical
// service per spec.md §3.
func IsCriticalService(activityType string) bool {
	return CriticalActivityTags[activityType]
}

// RotationTemplate describes a reusable rotation definition.
type RotationTemplate struct {
	ID                 RotationTemplateID
	Name               string
	ActivityType       string
	Abbreviation       string
	MaxResidents       int
	SupervisionRequired bool
	MaxSupervisionRatio float64
	ClinicLocation     string // used by ICS export, empty if none

	IsArchived bool
	ArchivedAt *time.Time
	ArchivedBy *PersonID
}

// Archive soft-deletes the template. Idempotent: archiving an already
// archived template is a no-op.
func (rt *RotationTemplate) Archive(archiverID PersonID) {
	if rt.IsArchived {
		return
	}
	rt.IsArchived = true
	rt.ArchivedAt = NowPtr()
	rt.ArchivedBy = &archiverID
}

// IsCritical reports whether this rotation's activity type is a critical
// service (spec.md §3).
func (rt *RotationTemplate) IsCritical() bool {
	return IsCriticalService(rt.ActivityType)
}
