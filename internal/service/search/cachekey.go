package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// cacheKeyPrefix namespaces facet cache entries, matching the original
// source's CachePrefix.SCHEDULE-derived key shape.
const cacheKeyPrefix = "schedule:facets:"

// cacheKey reproduces RESOLVED AMBIGUITY 9: a canonicalized struct of
// {query, sorted(entity_types), [{facet, sorted(values), range, dates}
// sorted by facet name]}, SHA-256'd, truncated to 16 hex chars to match the
// original's `hexdigest()[:16]`.
func cacheKey(query string, entityTypes []EntityType, selections []FacetSelection) string {
	types := make([]string, len(entityTypes))
	for i, t := range entityTypes {
		types[i] = string(t)
	}
	sort.Strings(types)

	sorted := make([]FacetSelection, len(selections))
	copy(sorted, selections)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FacetName < sorted[j].FacetName })

	var b strings.Builder
	fmt.Fprintf(&b, "query=%s;types=%s;", query, strings.Join(types, ","))
	for _, s := range sorted {
		values := make([]string, len(s.Values))
		copy(values, s.Values)
		sort.Strings(values)

		dateStart, dateEnd := "", ""
		if s.DateStart != nil {
			dateStart = s.DateStart.Format("2006-01-02")
		}
		if s.DateEnd != nil {
			dateEnd = s.DateEnd.Format("2006-01-02")
		}

		fmt.Fprintf(&b, "facet=%s;values=%s;dates=%s..%s|",
			s.FacetName, strings.Join(values, ","), dateStart, dateEnd)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])[:16]
}
