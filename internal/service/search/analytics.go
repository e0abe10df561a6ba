package search

import (
	"sort"
	"time"
)

// trackFacetUsage updates the per-facet analytics accumulator after every
// search (spec.md §4.7's "Analytics updates run after every search"),
// reproducing the original source's exact moving-average formula for
// avg_result_reduction: `(current_avg + reduction) / 2`.
func (s *Service) trackFacetUsage(selections []FacetSelection, totalBefore, totalAfter int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sel := range selections {
		analytics, ok := s.analytics[sel.FacetName]
		if !ok {
			analytics = &FacetAnalytics{FacetName: sel.FacetName}
			s.analytics[sel.FacetName] = analytics
		}
		analytics.TotalSelections++

		if totalBefore > 0 {
			reduction := (float64(totalBefore-totalAfter) / float64(totalBefore)) * 100
			analytics.AvgResultReduction = (analytics.AvgResultReduction + reduction) / 2
		}
		analytics.LastUpdated = time.Now()
	}
}

// GetFacetAnalytics returns a snapshot of one facet's usage analytics, or
// nil if it has never been selected.
func (s *Service) GetFacetAnalytics(facetName string) *FacetAnalytics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.analytics[facetName]
	if !ok {
		return nil
	}
	snapshot := *a
	return &snapshot
}

// GetAllFacetAnalytics returns a snapshot of every facet's usage analytics.
func (s *Service) GetAllFacetAnalytics() map[string]FacetAnalytics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]FacetAnalytics, len(s.analytics))
	for name, a := range s.analytics {
		out[name] = *a
	}
	return out
}

// applyDynamicOrdering reorders facets by historical total_selections
// descending (spec.md §4.7's "Dynamic ordering").
func (s *Service) applyDynamicOrdering(facets []Facet) []Facet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	popularity := func(f Facet) int {
		if a, ok := s.analytics[f.Name]; ok {
			return a.TotalSelections
		}
		return 0
	}

	ordered := make([]Facet, len(facets))
	copy(ordered, facets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return popularity(ordered[i]) > popularity(ordered[j])
	})
	return ordered
}
