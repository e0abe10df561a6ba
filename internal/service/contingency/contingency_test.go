package contingency

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

func seedFaculty(t *testing.T, db *memory.Database, name string) entity.PersonID {
	t.Helper()
	id := uuid.New()
	db.SeedPerson(&entity.Person{ID: id, DisplayName: name, Type: entity.PersonTypeFaculty})
	return id
}

func seedContingencyBlock(t *testing.T, db *memory.Database, date time.Time) entity.BlockID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.BlockRepository().Create(context.Background(), &entity.Block{
		ID: id, Date: date, TimeOfDay: entity.TimeOfDayAM,
	}))
	return id
}

func seedContingencyAssignment(t *testing.T, db *memory.Database, blockID entity.BlockID, personID entity.PersonID) {
	t.Helper()
	require.NoError(t, db.AssignmentRepository().Create(context.Background(), &entity.Assignment{
		ID: uuid.New(), BlockID: blockID, PersonID: personID, Role: entity.AssignmentRolePrimary,
	}))
}

func TestAnalyzeWithNoFacultyOrBlocksReturnsEmptyPassingReport(t *testing.T) {
	db := memory.New()
	a := NewAnalyzer(db)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	report, err := a.Analyze(context.Background(), start, start.AddDate(0, 0, 6), Options{IncludeN2: true})
	require.NoError(t, err)

	assert.True(t, report.N1Pass)
	assert.True(t, report.N2Pass)
	assert.Equal(t, "low", report.PhaseTransitionRisk)
	assert.Empty(t, report.RecommendedActions)
}

func TestAnalyzeFlagsCriticalN1WhenFacultyIsSoleProvider(t *testing.T) {
	db := memory.New()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	sole := seedFaculty(t, db, "Dr. Sole")
	other := seedFaculty(t, db, "Dr. Other")

	// Sole is the only assignment on each of 10 blocks; Other covers 10
	// separate blocks alongside a third faculty, so Other's loss alone
	// never uncovers anything.
	third := seedFaculty(t, db, "Dr. Third")
	for i := 0; i < 10; i++ {
		date := start.AddDate(0, 0, i%7)
		soleBlock := seedContingencyBlock(t, db, date)
		seedContingencyAssignment(t, db, soleBlock, sole)

		sharedBlock := seedContingencyBlock(t, db, date)
		seedContingencyAssignment(t, db, sharedBlock, other)
		seedContingencyAssignment(t, db, sharedBlock, third)
	}

	a := NewAnalyzer(db)
	report, err := a.Analyze(context.Background(), start, start.AddDate(0, 0, 6), Options{IncludeN2: true})
	require.NoError(t, err)

	require.False(t, report.N1Pass)
	found := false
	for _, v := range report.N1Vulnerabilities {
		if v.FacultyID == sole {
			assert.Equal(t, SeverityCritical, v.Severity)
			assert.True(t, v.IsUniqueProvider)
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeFindsFatalPairWhenTwoFacultyJointlyCoverABlock(t *testing.T) {
	db := memory.New()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	f1 := seedFaculty(t, db, "Dr. One")
	f2 := seedFaculty(t, db, "Dr. Two")
	block := seedContingencyBlock(t, db, start)
	seedContingencyAssignment(t, db, block, f1)
	seedContingencyAssignment(t, db, block, f2)

	a := NewAnalyzer(db)
	report, err := a.Analyze(context.Background(), start, start, Options{IncludeN2: true})
	require.NoError(t, err)

	require.False(t, report.N2Pass)
	require.Len(t, report.N2FatalPairs, 1)
	pair := report.N2FatalPairs[0]
	assert.Equal(t, 1, pair.UncoverableBlocks)
}

func TestGetVulnerabilityAssessmentSkipsN2(t *testing.T) {
	db := memory.New()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	f := seedFaculty(t, db, "Dr. Solo")
	block := seedContingencyBlock(t, db, start)
	seedContingencyAssignment(t, db, block, f)

	a := NewAnalyzer(db)
	assessment, err := a.GetVulnerabilityAssessment(context.Background(), start, start)
	require.NoError(t, err)

	assert.True(t, assessment.N2Pass) // N-2 never ran, so it can't fail
	assert.Equal(t, 1, assessment.TotalFaculty)
}

func TestSimulateFacultyLossForUnknownFacultyIsANoOp(t *testing.T) {
	db := memory.New()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	a := NewAnalyzer(db)
	sim, err := a.SimulateFacultyLoss(context.Background(), uuid.New(), start, start)
	require.NoError(t, err)

	assert.Equal(t, 1.0, sim.CoverageRemaining)
	assert.False(t, sim.IsCritical)
}

func TestDetectPhaseTransitionEscalatesWithIndicatorCount(t *testing.T) {
	risk, indicators := detectPhaseTransition(0.97, 3, 5)
	assert.Equal(t, "critical", risk)
	assert.Len(t, indicators, 3)

	risk, indicators = detectPhaseTransition(0.5, 0, 0)
	assert.Equal(t, "low", risk)
	assert.Empty(t, indicators)
}
