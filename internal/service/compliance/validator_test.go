package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository/memory"
)

func seedPerson(t *testing.T, db *memory.Database, personType entity.PersonType, pgy *entity.PGYLevel) entity.PersonID {
	t.Helper()
	id := uuid.New()
	db.SeedPerson(&entity.Person{ID: id, DisplayName: "Test Person", Type: personType, PGYLevel: pgy})
	return id
}

func seedBlock(t *testing.T, db *memory.Database, date time.Time, slot entity.TimeOfDay) entity.BlockID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.BlockRepository().Create(context.Background(), &entity.Block{
		ID: id, Date: date, TimeOfDay: slot,
	}))
	return id
}

func seedAssignment(t *testing.T, db *memory.Database, blockID entity.BlockID, personID entity.PersonID) {
	t.Helper()
	require.NoError(t, db.AssignmentRepository().Create(context.Background(), &entity.Assignment{
		ID: uuid.New(), BlockID: blockID, PersonID: personID, Role: entity.AssignmentRolePrimary,
	}))
}

func pgy(level entity.PGYLevel) *entity.PGYLevel { return &level }

func TestValidateFlagsCriticalWorkHoursOverEightyPerWeek(t *testing.T) {
	db := memory.New()
	resident := seedPerson(t, db, entity.PersonTypeResident, pgy(entity.PGY2))

	// 6 hours/block * 14 blocks in one ISO week = 84 hours > 80.
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	for i := 0; i < 7; i++ {
		date := monday.AddDate(0, 0, i)
		for _, slot := range []entity.TimeOfDay{entity.TimeOfDayAM, entity.TimeOfDayPM} {
			blockID := seedBlock(t, db, date, slot)
			seedAssignment(t, db, blockID, resident)
		}
	}

	v := NewValidator(db)
	result, err := v.Validate(context.Background(), monday, monday.AddDate(0, 0, 6), Options{CheckWorkHours: true})
	require.NoError(t, err)

	require.NotEmpty(t, result.Violations)
	found := false
	for _, viol := range result.Violations {
		if viol.RuleType == RuleWorkHours && viol.Severity == SeverityCritical {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidatePassesUnderThresholdWorkHours(t *testing.T) {
	db := memory.New()
	resident := seedPerson(t, db, entity.PersonTypeResident, pgy(entity.PGY2))

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ { // 3 AM blocks = 18 hours, well under 80
		blockID := seedBlock(t, db, monday.AddDate(0, 0, i), entity.TimeOfDayAM)
		seedAssignment(t, db, blockID, resident)
	}

	v := NewValidator(db)
	result, err := v.Validate(context.Background(), monday, monday.AddDate(0, 0, 6), Options{CheckWorkHours: true})
	require.NoError(t, err)

	for _, viol := range result.Violations {
		assert.NotEqual(t, RuleWorkHours, viol.RuleType)
	}
	assert.Equal(t, 1.0, result.ComplianceRate)
}

func TestValidateFlagsOneInSevenConsecutiveDuty(t *testing.T) {
	db := memory.New()
	resident := seedPerson(t, db, entity.PersonTypeResident, pgy(entity.PGY3))

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ { // 7 consecutive days of duty
		blockID := seedBlock(t, db, start.AddDate(0, 0, i), entity.TimeOfDayAM)
		seedAssignment(t, db, blockID, resident)
	}

	v := NewValidator(db)
	result, err := v.Validate(context.Background(), start, start.AddDate(0, 0, 6), Options{CheckConsecutiveDuty: true})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, RuleOneInSeven, result.Violations[0].RuleType)
	assert.Equal(t, SeverityCritical, result.Violations[0].Severity)
}

func TestValidateFlagsSupervisionDeficit(t *testing.T) {
	db := memory.New()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	blockID := seedBlock(t, db, date, entity.TimeOfDayAM)

	// 3 PGY1 residents require ceil(3/2) = 2 faculty; only 1 assigned.
	for i := 0; i < 3; i++ {
		r := seedPerson(t, db, entity.PersonTypeResident, pgy(entity.PGY1))
		seedAssignment(t, db, blockID, r)
	}
	faculty := seedPerson(t, db, entity.PersonTypeFaculty, nil)
	seedAssignment(t, db, blockID, faculty)

	v := NewValidator(db)
	result, err := v.Validate(context.Background(), date, date, Options{CheckSupervision: true})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	viol := result.Violations[0]
	assert.Equal(t, RuleSupervisionRatio, viol.RuleType)
	assert.Equal(t, SeverityCritical, viol.Severity)
	assert.Equal(t, 1, viol.Details["deficit"])
}

func TestValidateFlagsAbsenceOverlapAsWarning(t *testing.T) {
	db := memory.New()
	resident := seedPerson(t, db, entity.PersonTypeResident, pgy(entity.PGY2))
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	blockID := seedBlock(t, db, date, entity.TimeOfDayAM)
	seedAssignment(t, db, blockID, resident)

	require.NoError(t, db.AbsenceRepository().Create(context.Background(), &entity.Absence{
		ID: uuid.New(), PersonID: resident, StartDate: date, EndDate: date, Type: entity.AbsenceVacation,
	}))

	v := NewValidator(db)
	result, err := v.Validate(context.Background(), date, date, Options{CheckRestPeriods: true})
	require.NoError(t, err)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, RuleAbsenceOverlap, result.Violations[0].RuleType)
	assert.Equal(t, SeverityWarning, result.Violations[0].Severity)
}

func TestValidateRejectsInvertedDateRange(t *testing.T) {
	db := memory.New()
	v := NewValidator(db)

	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, 1)
	_, err := v.Validate(context.Background(), start, end, AllChecks())
	assert.ErrorIs(t, err, entity.ErrInvalidDateRange)
}
