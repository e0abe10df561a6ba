package importstaging

import (
	"strings"

	"github.com/google/uuid"
)

// nameCache maps a lowercased, trimmed name to the id it resolved to the
// last time it was seen exactly, mirroring the original's
// _load_person_cache/_load_rotation_cache (a full reload of every known
// name before matching begins, not a lazy per-row lookup).
type nameCache map[string]uuid.UUID

func newNameCache() nameCache {
	return make(nameCache)
}

func (c nameCache) put(name string, id uuid.UUID) {
	c[normalizeName(name)] = id
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// fuzzyMatch finds the best candidate for name in the cache. An exact
// (case/whitespace-insensitive) hit always scores 100. Otherwise every
// cached name is scored by similarityRatio and the highest-scoring
// candidate at or above FuzzyMatchThreshold wins; below that the best score
// found is still returned (possibly 0) so callers can surface a low
// confidence warning, matching the original's behavior of always returning
// the best_score it found even when no candidate clears the threshold.
func fuzzyMatch(cache nameCache, name string) (id uuid.UUID, confidence int, matched bool) {
	normalized := normalizeName(name)

	if cachedID, ok := cache[normalized]; ok {
		return cachedID, 100, true
	}

	var bestID uuid.UUID
	bestScore := 0
	found := false
	for cached, cachedID := range cache {
		score := similarityRatio(normalized, cached)
		if score > bestScore {
			bestScore = score
			bestID = cachedID
			found = true
		}
	}

	if found && bestScore >= FuzzyMatchThreshold {
		return bestID, bestScore, true
	}
	return bestID, bestScore, false
}

// similarityRatio scores two strings in [0,100], approximating Python's
// difflib.SequenceMatcher.ratio() (2*M/T, M = total matched characters, T =
// combined length) via each string's longest common subsequence rather than
// SequenceMatcher's recursive matching-block search. Both land on the same
// [0,1] scale and are monotonic in "how much of one string reappears in the
// other", which is all a threshold comparison needs; no ecosystor fuzzy-
// match library appears anywhere in the retrieved pack; see DESIGN.md.
func similarityRatio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	m := longestCommonSubsequence(a, b)
	ratio := float64(2*m) / float64(len(a)+len(b))
	return int(ratio * 100)
}

func longestCommonSubsequence(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
