package contingency

import (
	"sort"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
)

// calculateCentrality scores each faculty member's importance to coverage,
// per RESOLVED AMBIGUITY 4: no graph library exists anywhere in the
// retrieved corpus, so this is the sole centrality implementation, not a
// fallback path alongside a graph-based one.
func calculateCentrality(faculty []*entity.Person, totalAssignments int, l *lookups) []Centrality {
	totalServices := len(l.serviceFaculty)

	out := make([]Centrality, 0, len(faculty))
	for _, f := range faculty {
		servicesCovered := len(l.servicesByFaculty[f.ID])

		uniqueCoverage := 0
		for service := range l.servicesByFaculty[f.ID] {
			if len(l.serviceFaculty[service]) == 1 {
				uniqueCoverage++
			}
		}

		replacementDifficulty := 0.0
		if servicesCovered > 0 {
			var altSum int
			for service := range l.servicesByFaculty[f.ID] {
				altSum += len(l.serviceFaculty[service]) - 1
			}
			avgAlternatives := float64(altSum) / float64(servicesCovered)
			replacementDifficulty = 1 / (1 + avgAlternatives)
		}

		workloadShare := 0.0
		if totalAssignments > 0 {
			workloadShare = float64(l.facultyAssignmentCount[f.ID]) / float64(totalAssignments)
		}

		denom := totalServices
		if denom < 1 {
			denom = 1
		}

		score := 0.30*(float64(servicesCovered)/float64(denom)) +
			0.30*(float64(uniqueCoverage)/float64(denom)) +
			0.20*replacementDifficulty +
			0.20*workloadShare

		out = append(out, Centrality{
			FacultyID:             f.ID,
			FacultyName:           f.DisplayName,
			Score:                 score,
			ServicesCovered:       servicesCovered,
			UniqueCoverageSlots:   uniqueCoverage,
			ReplacementDifficulty: replacementDifficulty,
			WorkloadShare:         workloadShare,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
