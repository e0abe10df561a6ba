package equilibrium

import "time"

// GetReport snapshots the analyzer's current operating point plus every
// active stress/compensation and derived risk metrics (spec.md §4.3).
func (a *Analyzer) GetReport() *Report {
	a.mu.RLock()
	defer a.mu.RUnlock()

	activeStresses := a.activeStressesLocked()
	activeComps := a.activeCompensationsLocked()

	var totalStressMagnitude, totalCompensationMagnitude float64
	for _, s := range activeStresses {
		totalStressMagnitude += s.Magnitude
	}
	for _, c := range activeComps {
		totalCompensationMagnitude += c.CompensationMagnitude
	}

	effectiveCompensation, _ := effectiveCompensation(activeComps)
	coverage := coverageRate(a.currentCapacity, a.currentDemand)
	burnoutRisk := calculateBurnoutRisk(a.compensationDebt, effectiveCompensation)
	state := classifyState(coverage, burnoutRisk, len(activeComps) > 0)
	daysUntilExhaustion := minSustainabilityDays(activeComps)

	sustainabilityScore := coverage * (1 - burnoutRisk)
	if sustainabilityScore < 0 {
		sustainabilityScore = 0
	}
	if sustainabilityScore > 1 {
		sustainabilityScore = 1
	}

	stresses := make([]Stress, len(activeStresses))
	for i, s := range activeStresses {
		stresses[i] = *s
	}
	comps := make([]Compensation, len(activeComps))
	for i, c := range activeComps {
		comps[i] = *c
	}

	return &Report{
		GeneratedAt:                time.Now(),
		CurrentEquilibriumState:    state,
		CurrentCapacity:            a.currentCapacity,
		CurrentDemand:              a.currentDemand,
		CurrentCoverageRate:        coverage,
		ActiveStresses:             stresses,
		ActiveCompensations:        comps,
		TotalStressMagnitude:       totalStressMagnitude,
		TotalCompensationMagnitude: totalCompensationMagnitude,
		CompensationDebt:           a.compensationDebt,
		BurnoutRisk:                burnoutRisk,
		DaysUntilExhaustion:        daysUntilExhaustion,
		SustainabilityScore:        sustainabilityScore,
		Recommendations:            reportRecommendations(state, daysUntilExhaustion),
	}
}
