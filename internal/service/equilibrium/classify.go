package equilibrium

// classifyState maps a coverage rate, burnout risk, and whether any
// compensation is currently active onto one of the five EquilibriumState
// tiers (spec.md §4.3). The five named bands leave a gap at
// coverage ∈ [0.9, 0.95) with no active compensation; this port treats
// that gap as "stable" (the least-severe state is the natural default for
// anything none of the four escalating bands claim).
func classifyState(coverageRate, burnoutRisk float64, hasActiveCompensation bool) EquilibriumState {
	switch {
	case coverageRate < 0.6:
		return StateCritical
	case coverageRate < 0.75 || burnoutRisk > 0.6:
		return StateUnsustainable
	case coverageRate < 0.9:
		return StateStressed
	case hasActiveCompensation:
		return StateCompensating
	default:
		return StateStable
	}
}

const exhaustionWarningDays = 14

// sustainabilityAssessment renders a human-readable verdict for a
// predicted coverage rate, tiered the same way classifyState is.
func sustainabilityAssessment(coverageRate float64) string {
	switch {
	case coverageRate >= 0.95:
		return "Can be absorbed sustainably without intervention"
	case coverageRate >= 0.9:
		return "Compensating; monitor sustainability closely"
	case coverageRate >= 0.75:
		return "Manageable with active monitoring"
	case coverageRate >= 0.6:
		return "Unsustainable without additional intervention"
	default:
		return "Critical - immediate fallback coverage required"
	}
}

// predictionRecommendations builds prediction-specific guidance from the
// projected coverage rate and stress duration.
func predictionRecommendations(coverageRate float64, durationDays int) []string {
	var out []string

	switch {
	case coverageRate < 0.6:
		out = append(out, "CRITICAL: Prepare fallback coverage plan immediately")
	case coverageRate < 0.75:
		out = append(out, "Schedule backup coverage arrangements")
	case coverageRate < 1.0:
		out = append(out, "Monitor situation and prepare contingency staffing")
	}

	if durationDays > 30 {
		out = append(out, "Consider permanent staffing adjustments for this extended stress duration")
	}

	return out
}

// reportRecommendations builds state-driven guidance for GetReport.
func reportRecommendations(state EquilibriumState, daysUntilExhaustion *int) []string {
	var out []string

	switch state {
	case StateCritical:
		out = append(out, "CRITICAL: coverage below sustainable threshold; activate fallback coverage plan")
	case StateUnsustainable:
		out = append(out, "Unsustainable compensation load; escalate staffing request")
	case StateStressed:
		out = append(out, "Monitor closely and evaluate additional compensation options")
	}

	if daysUntilExhaustion != nil && *daysUntilExhaustion <= exhaustionWarningDays {
		out = append(out, "Compensation exhaustion imminent; plan transition before current measures expire")
	}

	return out
}
