package contingency

import (
	"sort"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// runN1 simulates the loss of each faculty member in turn (spec.md §4.2's
// N-1 simulation), grounded on contingency.py's
// _run_n1_simulation_optimized/_simulate_single_loss.
func runN1(faculty []*entity.Person, totalBlocks int, coverageRequirements map[entity.BlockID]int, l *lookups) []N1Simulation {
	out := make([]N1Simulation, 0, len(faculty))
	for _, f := range faculty {
		out = append(out, simulateSingleLoss(f, totalBlocks, coverageRequirements, l))
	}
	return out
}

func simulateSingleLoss(f *entity.Person, totalBlocks int, coverageRequirements map[entity.BlockID]int, l *lookups) N1Simulation {
	assignments := l.assignmentsByFaculty[f.ID]
	if len(assignments) == 0 {
		return N1Simulation{FacultyID: f.ID, FacultyName: f.DisplayName, BlocksAffected: 0, CoverageRemaining: 1.0, IsCritical: false}
	}

	var affected, uncovered []entity.BlockID
	for _, a := range assignments {
		remaining := 0
		for _, other := range l.assignmentsByBlock[a.BlockID] {
			if other.PersonID != f.ID {
				remaining++
			}
		}
		required := coverageRequirements[a.BlockID]
		if required == 0 {
			required = 1
		}
		if remaining < required {
			affected = append(affected, a.BlockID)
			if remaining == 0 {
				uncovered = append(uncovered, a.BlockID)
			}
		}
	}

	coverageRemaining := 1.0
	if totalBlocks > 0 {
		coverageRemaining = 1 - float64(len(affected))/float64(totalBlocks)
	}

	return N1Simulation{
		FacultyID:         f.ID,
		FacultyName:       f.DisplayName,
		BlocksAffected:    len(affected),
		CoverageRemaining: coverageRemaining,
		IsCritical:        len(uncovered) > 0,
		UncoveredBlocks:   uncovered,
	}
}

// classifySeverity derives a Vulnerability's Severity from its raw N1Simulation,
// per spec.md §4.2: any of the faculty's own assigned blocks being the sole
// assignment on that block forces "critical" regardless of ratio
// (RESOLVED AMBIGUITY 1).
func classifySeverity(f *entity.Person, totalBlocks int, coverageRequirements map[entity.BlockID]int, l *lookups) (Severity, bool) {
	assignments := l.assignmentsByFaculty[f.ID]
	isUnique := false
	for _, a := range assignments {
		if len(l.assignmentsByBlock[a.BlockID]) == 1 {
			isUnique = true
			break
		}
	}
	if isUnique {
		return SeverityCritical, true
	}

	sim := simulateSingleLoss(f, totalBlocks, coverageRequirements, l)
	if totalBlocks == 0 {
		return SeverityLow, isUnique
	}
	ratio := float64(sim.BlocksAffected) / float64(totalBlocks)
	switch {
	case ratio > 0.20:
		return SeverityCritical, isUnique
	case ratio > 0.10 || sim.BlocksAffected > 10:
		return SeverityHigh, isUnique
	case ratio > 0.05 || sim.BlocksAffected > 5:
		return SeverityMedium, isUnique
	default:
		return SeverityLow, isUnique
	}
}

// buildVulnerabilities converts non-trivial N1Simulations into ranked
// Vulnerability entries, sorted by (severity, -affected_blocks) per
// contingency.py's vulnerability ordering.
func buildVulnerabilities(sims []N1Simulation, faculty []*entity.Person, totalBlocks int, coverageRequirements map[entity.BlockID]int, l *lookups) []Vulnerability {
	byID := make(map[entity.PersonID]*entity.Person, len(faculty))
	for _, f := range faculty {
		byID[f.ID] = f
	}

	var out []Vulnerability
	for _, sim := range sims {
		if sim.BlocksAffected == 0 {
			continue
		}
		f := byID[sim.FacultyID]
		if f == nil {
			continue
		}
		sev, isUnique := classifySeverity(f, totalBlocks, coverageRequirements, l)
		out = append(out, Vulnerability{
			FacultyID:        sim.FacultyID,
			FacultyName:      sim.FacultyName,
			Severity:         sev,
			AffectedBlocks:   sim.BlocksAffected,
			IsUniqueProvider: isUnique,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		oi, oj := severityOrder(out[i].Severity), severityOrder(out[j].Severity)
		if oi != oj {
			return oi < oj
		}
		return out[i].AffectedBlocks > out[j].AffectedBlocks
	})
	return out
}

// selectN2Candidates picks the faculty pool the N-2 pairwise scan runs
// over: the union of critical/high N-1 severity faculty, falling back to
// the top 10 by assignment count when that set has fewer than 2 members
// (RESOLVED AMBIGUITY 3).
func selectN2Candidates(vulns []Vulnerability, faculty []*entity.Person, l *lookups) []entity.PersonID {
	var criticalOrHigh []entity.PersonID
	for _, v := range vulns {
		if v.Severity == SeverityCritical || v.Severity == SeverityHigh {
			criticalOrHigh = append(criticalOrHigh, v.FacultyID)
		}
	}
	if len(criticalOrHigh) >= 2 {
		return criticalOrHigh
	}

	sorted := sortedFacultyByAssignmentCount(faculty, l)
	n := 10
	if len(sorted) < n {
		n = len(sorted)
	}
	return sorted[:n]
}

// runN2 simulates the simultaneous loss of every pair in candidates, up to
// maxPairs pairs evaluated, grounded on
// _run_n2_simulation_optimized/_simulate_pair_loss.
func runN2(candidates []entity.PersonID, coverageRequirements map[entity.BlockID]int, maxPairs int, l *lookups) []N2Simulation {
	var out []N2Simulation
	analyzed := 0

	for i := 0; i < len(candidates) && analyzed < maxPairs; i++ {
		for j := i + 1; j < len(candidates) && analyzed < maxPairs; j++ {
			analyzed++
			out = append(out, simulatePairLoss(candidates[i], candidates[j], coverageRequirements, l))
		}
	}
	return out
}

func simulatePairLoss(f1, f2 entity.PersonID, coverageRequirements map[entity.BlockID]int, l *lookups) N2Simulation {
	combined := make(map[entity.BlockID]bool)
	for _, a := range l.assignmentsByFaculty[f1] {
		combined[a.BlockID] = true
	}
	for _, a := range l.assignmentsByFaculty[f2] {
		combined[a.BlockID] = true
	}

	var uncovered []entity.BlockID
	for blockID := range combined {
		remaining := 0
		for _, other := range l.assignmentsByBlock[blockID] {
			if other.PersonID != f1 && other.PersonID != f2 {
				remaining++
			}
		}
		required := coverageRequirements[blockID]
		if required == 0 {
			required = 1
		}
		if remaining < required {
			uncovered = append(uncovered, blockID)
		}
	}

	coverageRemaining := 1.0
	if len(combined) > 0 {
		coverageRemaining = 1 - float64(len(uncovered))/float64(len(combined))
	}

	return N2Simulation{
		Faculty1ID:        f1,
		Faculty2ID:        f2,
		BlocksAffected:    len(combined),
		CoverageRemaining: coverageRemaining,
		IsFatal:           len(uncovered) > 0,
		UncoveredBlocks:   uncovered,
	}
}

func buildFatalPairs(sims []N2Simulation, l *lookups) []FatalPair {
	var out []FatalPair
	for _, sim := range sims {
		if !sim.IsFatal {
			continue
		}
		out = append(out, FatalPair{
			Faculty1ID:          sim.Faculty1ID,
			Faculty1Name:        facultyName(l, sim.Faculty1ID),
			Faculty2ID:          sim.Faculty2ID,
			Faculty2Name:        facultyName(l, sim.Faculty2ID),
			UncoverableBlocks:   len(sim.UncoveredBlocks),
			ProbabilityEstimate: "unknown",
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UncoverableBlocks > out[j].UncoverableBlocks })
	return out
}
