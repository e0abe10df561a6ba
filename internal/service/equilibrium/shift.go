package equilibrium

import "math"

// CalculateEquilibriumShift recomputes the full operating point from the
// given baseline, folding in every currently-active stress and
// compensation (spec.md §4.3). OriginalCapacity/OriginalDemand are the
// caller-supplied starting point, independent of the analyzer's own
// running _currentCapacity/_currentDemand -- this mirrors the teacher
// source's analyze-from-a-snapshot pattern (contingency.py's
// analyze_contingency takes its own start/end window rather than reading
// mutable service state), adapted here since the original
// calculate_equilibrium_shift signature takes explicit original_capacity/
// original_demand parameters per the retrieved test suite.
func (a *Analyzer) CalculateEquilibriumShift(originalCapacity, originalDemand float64) *Shift {
	a.mu.RLock()
	defer a.mu.RUnlock()

	activeStresses := a.activeStressesLocked()
	activeComps := a.activeCompensationsLocked()

	var totalCapacityImpact, totalDemandImpact float64
	for _, s := range activeStresses {
		totalCapacityImpact += s.CapacityImpact
		totalDemandImpact += s.DemandImpact
	}

	sustainableCapacity := clampCapacity(originalCapacity + totalCapacityImpact)
	newDemand := originalDemand * (1 + totalDemandImpact)

	totalCompensation, rawMagnitude := effectiveCompensation(activeComps)
	compensationEfficiency := 1.0
	if rawMagnitude > 0 {
		compensationEfficiency = totalCompensation / rawMagnitude
	}

	newCapacity := sustainableCapacity + totalCompensation
	newCoverageRate := coverageRate(newCapacity, newDemand)

	burnoutRisk := calculateBurnoutRisk(a.compensationDebt, totalCompensation)
	daysUntilExhaustion := minSustainabilityDays(activeComps)

	state := classifyState(newCoverageRate, burnoutRisk, len(activeComps) > 0)

	stresses := make([]Stress, len(activeStresses))
	for i, s := range activeStresses {
		stresses[i] = *s
	}
	comps := make([]Compensation, len(activeComps))
	for i, c := range activeComps {
		comps[i] = *c
	}

	return &Shift{
		OriginalCapacity:       originalCapacity,
		OriginalDemand:         originalDemand,
		TotalCapacityImpact:    totalCapacityImpact,
		TotalDemandImpact:      totalDemandImpact,
		Stresses:               stresses,
		Compensations:          comps,
		SustainableCapacity:    sustainableCapacity,
		TotalCompensation:      totalCompensation,
		CompensationEfficiency: compensationEfficiency,
		NewCapacity:            newCapacity,
		NewDemand:              newDemand,
		NewCoverageRate:        newCoverageRate,
		BurnoutRisk:            burnoutRisk,
		DaysUntilExhaustion:    daysUntilExhaustion,
		EquilibriumState:       state,
	}
}

// CalculateNewEquilibrium is the simplified, stateless projection named in
// the retrieved test suite: given a raw stress_reduction (the capacity
// taken away, as a positive magnitude) it reports the capacity the system
// settles at once its configured fraction of natural compensation
// (baseCompensationRate) is applied, without reference to any Stress/
// Compensation record.
func (a *Analyzer) CalculateNewEquilibrium(originalCapacity, stressReduction float64) map[string]float64 {
	a.mu.RLock()
	rate := a.baseCompensationRate
	costMultiplier := a.compensationCostMultiplier
	a.mu.RUnlock()

	sustainableCapacity := originalCapacity - stressReduction
	compensationRatio := 0.0
	if stressReduction > 0 {
		compensationRatio = rate
	}
	effectiveCapacity := sustainableCapacity + stressReduction*rate
	compensationDebt := stressReduction * rate * costMultiplier * 100

	return map[string]float64{
		"capacity":             effectiveCapacity,
		"sustainable_capacity": sustainableCapacity,
		"compensation_debt":    compensationDebt,
		"compensation_ratio":   compensationRatio,
	}
}

// effectiveCompensation applies spec.md §4.3's diminishing-returns rule
// per stress: the i-th compensation initiated against the same stress
// contributes magnitude * effectiveness * (1 - 0.15*(i-1)), clamped to
// >= 0, and stresses sum independently. Returns the diminished total plus
// the raw (undiminished) magnitude sum, so callers can derive an
// efficiency ratio.
func effectiveCompensation(comps []*Compensation) (effective, raw float64) {
	byStress := make(map[string][]*Compensation)
	for _, c := range comps {
		key := c.StressID.String()
		byStress[key] = append(byStress[key], c)
		raw += c.CompensationMagnitude
	}

	for _, group := range byStress {
		for i, c := range group {
			factor := 1 - diminishingReturnsDecay*float64(i)
			if factor < 0 {
				factor = 0
			}
			contribution := c.CompensationMagnitude * c.Effectiveness * factor
			if contribution < 0 {
				contribution = 0
			}
			effective += contribution
		}
	}
	return effective, raw
}

func calculateBurnoutRisk(compensationDebt, totalCompensation float64) float64 {
	risk := compensationDebt/100 + totalCompensation*0.3
	if risk > 1 {
		return 1
	}
	if risk < 0 {
		return 0
	}
	return risk
}

func minSustainabilityDays(comps []*Compensation) *int {
	if len(comps) == 0 {
		return nil
	}
	min := comps[0].SustainabilityDays
	for _, c := range comps[1:] {
		if c.SustainabilityDays < min {
			min = c.SustainabilityDays
		}
	}
	return &min
}

func coverageRate(capacity, demand float64) float64 {
	if demand <= 0 {
		return 1.0
	}
	return math.Min(1.0, capacity/demand)
}
