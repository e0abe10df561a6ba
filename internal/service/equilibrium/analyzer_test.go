package equilibrium

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func TestNewAnalyzerDefaults(t *testing.T) {
	a := NewAnalyzer()
	assert.Equal(t, 1.0, a.currentCapacity)
	assert.Equal(t, 0.8, a.currentDemand)
	assert.Equal(t, 0.0, a.compensationDebt)
}

func TestApplyStressReducesCapacity(t *testing.T) {
	a := NewAnalyzer()
	stress := a.ApplyStress(StressFacultyLoss, "senior faculty on TDY", 0.25, 21, -0.25, 0.0, true, true)

	require.NotNil(t, stress)
	assert.InDelta(t, 0.75, a.currentCapacity, 0.001)
	assert.True(t, stress.IsActive)
}

func TestApplyStressIncreasesDemandMultiplicatively(t *testing.T) {
	a := NewAnalyzer()
	a.ApplyStress(StressDemandSurge, "ED overflow", 0.3, 7, 0.0, 0.3, false, true)

	assert.InDelta(t, 0.8*1.3, a.currentDemand, 0.001)
}

func TestApplyStressClampsCapacityAtFloor(t *testing.T) {
	a := NewAnalyzer()
	a.ApplyStress(StressFacultyLoss, "catastrophic loss", 1.0, 30, -2.0, 0.0, true, false)

	assert.Equal(t, MinCapacity, a.currentCapacity)
}

func TestInitiateCompensationForUnknownStressReturnsNil(t *testing.T) {
	a := NewAnalyzer()
	comp := a.InitiateCompensation(uuid.New(), CompensationOvertime, "no stress", 0.5, 0, 0, 0, 0)
	assert.Nil(t, comp)
}

func TestInitiateCompensationAddsHiddenCostToDebt(t *testing.T) {
	a := NewAnalyzer()
	stress := a.ApplyStress(StressFacultyLoss, "test", 0.2, 14, -0.2, 0, true, true)

	a.InitiateCompensation(stress.ID, CompensationOvertime, "test", 0.5, 0, 0, 0, 50.0)
	assert.Equal(t, 50.0, a.compensationDebt)

	a.InitiateCompensation(stress.ID, CompensationCrossCoverage, "test", 0.2, 0, 0, 0, 15.0)
	assert.Equal(t, 65.0, a.compensationDebt)
}

func TestResolveStressRestoresCapacityAndEndsCompensations(t *testing.T) {
	a := NewAnalyzer()
	stress := a.ApplyStress(StressFacultyLoss, "temporary absence", 0.2, 14, -0.2, 0, true, true)
	comp := a.InitiateCompensation(stress.ID, CompensationOvertime, "extra hours", 0.5, 0, 0, 0, 0)

	a.ResolveStress(stress.ID)

	assert.False(t, stress.IsActive)
	require.NotNil(t, stress.ResolvedAt)
	assert.InDelta(t, 1.0, a.currentCapacity, 0.001)
	assert.False(t, comp.IsActive)
	assert.Equal(t, "stress_resolved", comp.EndReason)
}

func TestResolveUnknownStressIsNoOp(t *testing.T) {
	a := NewAnalyzer()
	assert.NotPanics(t, func() { a.ResolveStress(uuid.New()) })
}

func TestCalculateEquilibriumShiftWithNoStressIsStable(t *testing.T) {
	a := NewAnalyzer()
	shift := a.CalculateEquilibriumShift(1.0, 0.8)

	assert.Equal(t, 0.0, shift.TotalCapacityImpact)
	assert.Equal(t, 0.0, shift.TotalDemandImpact)
	assert.Equal(t, StateStable, shift.EquilibriumState)
}

func TestCalculateEquilibriumShiftAppliesCompensation(t *testing.T) {
	a := NewAnalyzer()
	stress := a.ApplyStress(StressFacultyLoss, "test", 0.2, 14, -0.2, 0, true, true)
	a.InitiateCompensation(stress.ID, CompensationOvertime, "extra hours", 0.6, 0.8, 0, 0, 0)

	shift := a.CalculateEquilibriumShift(1.0, 0.8)

	assert.Greater(t, shift.TotalCompensation, 0.0)
	assert.Greater(t, shift.NewCapacity, shift.SustainableCapacity)
}

func TestCalculateEquilibriumShiftDiminishingReturns(t *testing.T) {
	a := NewAnalyzer()
	stress := a.ApplyStress(StressFacultyLoss, "test", 0.3, 30, -0.3, 0, true, true)
	for i := 0; i < 3; i++ {
		a.InitiateCompensation(stress.ID, CompensationOvertime, "comp", 0.2, 0.8, 0, 0, 0)
	}

	shift := a.CalculateEquilibriumShift(1.0, 0.8)
	assert.Less(t, shift.CompensationEfficiency, 1.0)
}

func TestCalculateEquilibriumShiftDaysUntilExhaustion(t *testing.T) {
	a := NewAnalyzer()
	stress := a.ApplyStress(StressFacultyLoss, "test", 0.2, 60, -0.2, 0, true, true)
	a.InitiateCompensation(stress.ID, CompensationOvertime, "limited overtime", 0.5, 0, 14, 0, 0)

	shift := a.CalculateEquilibriumShift(1.0, 0.8)
	require.NotNil(t, shift.DaysUntilExhaustion)
	assert.LessOrEqual(t, *shift.DaysUntilExhaustion, 14)
}

func TestCalculateNewEquilibriumNoStress(t *testing.T) {
	a := NewAnalyzer()
	result := a.CalculateNewEquilibrium(1.0, 0.0)

	assert.Equal(t, 1.0, result["capacity"])
	assert.Equal(t, 1.0, result["sustainable_capacity"])
	assert.Equal(t, 0.0, result["compensation_debt"])
	assert.Equal(t, 0.0, result["compensation_ratio"])
}

func TestCalculateNewEquilibriumSmallStress(t *testing.T) {
	a := NewAnalyzer()
	result := a.CalculateNewEquilibrium(1.0, 0.1)

	assert.InDelta(t, 0.9, result["sustainable_capacity"], 0.001)
	assert.InDelta(t, 0.95, result["capacity"], 0.001)
	assert.Greater(t, result["compensation_debt"], 0.0)
	assert.InDelta(t, 0.5, result["compensation_ratio"], 0.001)
}

func TestCalculateNewEquilibriumCustomRate(t *testing.T) {
	a := NewAnalyzer(WithBaseCompensationRate(0.3))
	result := a.CalculateNewEquilibrium(1.0, 0.2)

	assert.InDelta(t, 0.86, result["capacity"], 0.001)
	assert.InDelta(t, 0.3, result["compensation_ratio"], 0.001)
}

func TestPredictSevereStressIsManageable(t *testing.T) {
	a := NewAnalyzer()
	a.SetCurrentState(1.0, 1.0)

	prediction := a.PredictStressResponse(StressFacultyLoss, 0.5, 30, -0.4, 0)

	assert.Less(t, prediction.PredictedCoverageRate, 1.0)
	assert.Greater(t, prediction.AdditionalInterventionNeeded, 0.0)
	assert.Contains(t, prediction.SustainabilityAssessment, "Manageable")
}

func TestPredictCriticalStressRecommendsFallback(t *testing.T) {
	a := NewAnalyzer()
	a.SetCurrentState(1.0, 1.2)

	prediction := a.PredictStressResponse(StressFacultyLoss, 0.8, 60, -0.6, 0)

	assert.Less(t, prediction.PredictedCoverageRate, 0.7)
	found := false
	for _, action := range prediction.RecommendedActions {
		if containsFold(action, "critical") || containsFold(action, "fallback") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPredictExtendedStressRecommendsPermanentAdjustment(t *testing.T) {
	a := NewAnalyzer()
	prediction := a.PredictStressResponse(StressFacultyLoss, 0.2, 60, -0.15, 0)

	found := false
	for _, action := range prediction.RecommendedActions {
		if containsFold(action, "permanent") || containsFold(action, "extended") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGetReportStableByDefault(t *testing.T) {
	a := NewAnalyzer()
	report := a.GetReport()

	assert.Equal(t, StateStable, report.CurrentEquilibriumState)
	assert.Equal(t, 1.0, report.SustainabilityScore)
	assert.Empty(t, report.ActiveStresses)
}

func TestGetReportSustainabilityScoreDropsUnderStress(t *testing.T) {
	a := NewAnalyzer()
	a.SetCurrentState(1.0, 1.0)
	a.ApplyStress(StressFacultyLoss, "major shortage", 0.3, 30, -0.3, 0, true, true)

	report := a.GetReport()
	assert.Less(t, report.SustainabilityScore, 1.0)
}

func TestGetReportWarnsOfExhaustion(t *testing.T) {
	a := NewAnalyzer()
	stress := a.ApplyStress(StressFacultyLoss, "test", 0.2, 60, -0.2, 0, true, true)
	a.InitiateCompensation(stress.ID, CompensationOvertime, "limited overtime", 0.5, 0, 7, 0, 0)

	report := a.GetReport()
	require.NotNil(t, report.DaysUntilExhaustion)
	assert.LessOrEqual(t, *report.DaysUntilExhaustion, 7)

	found := false
	for _, rec := range report.Recommendations {
		if containsFold(rec, "exhaustion") {
			found = true
		}
	}
	assert.True(t, found)
}
