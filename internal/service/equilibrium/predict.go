package equilibrium

// PredictStressResponse simulates applying a hypothetical stress against
// the analyzer's current capacity/demand without mutating any state
// (spec.md §4.3). It reuses CalculateNewEquilibrium's natural-compensation
// projection (stress_reduction = -capacity_impact, since capacity_impact
// is conventionally <= 0) rather than simulating a full Compensation
// record, matching the retrieved test suite's exact arithmetic
// (`1.0 - 0.4 + 0.2 compensation = 0.8` style comments).
func (a *Analyzer) PredictStressResponse(stressType StressType, magnitude float64, durationDays int, capacityImpact, demandImpact float64) *StressResponsePrediction {
	a.mu.RLock()
	capacity := a.currentCapacity
	demand := a.currentDemand
	costMultiplier := a.compensationCostMultiplier
	a.mu.RUnlock()

	stressReduction := -capacityImpact
	if stressReduction < 0 {
		stressReduction = 0
	}

	projection := a.CalculateNewEquilibrium(capacity, stressReduction)
	predictedCapacity := projection["capacity"]
	predictedCompensation := stressReduction * projection["compensation_ratio"]

	predictedDemand := demand * (1 + demandImpact)
	predictedCoverage := coverageRate(predictedCapacity, predictedDemand)

	predictedDailyCost := predictedCompensation * costMultiplier * 100
	predictedTotalCost := predictedDailyCost * float64(durationDays)

	interventionNeeded := 1.0 - predictedCoverage
	if interventionNeeded < 0 {
		interventionNeeded = 0
	}

	return &StressResponsePrediction{
		StressType:                   stressType,
		StressMagnitude:              magnitude,
		StressDurationDays:           durationDays,
		PredictedNewCapacity:         predictedCapacity,
		PredictedNewDemand:           predictedDemand,
		PredictedCoverageRate:        predictedCoverage,
		PredictedCompensation:        predictedCompensation,
		PredictedDailyCost:           predictedDailyCost,
		PredictedTotalCost:           predictedTotalCost,
		AdditionalInterventionNeeded: interventionNeeded,
		SustainabilityAssessment:     sustainabilityAssessment(predictedCoverage),
		RecommendedActions:          predictionRecommendations(predictedCoverage, durationDays),
	}
}
