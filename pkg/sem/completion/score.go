package completion

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Score tiers. Exact matches beat prefix matches beat substring matches;
// within a tier shorter candidates rank first.
const (
	scoreExact     = 1_000_000
	scorePrefix    = 100_000
	scoreSubstring = 10_000
)

// matchScore rates a candidate against the typed prefix. Zero and below
// mean the candidate is filtered out. Substring matches only count when
// searchInside is set.
func matchScore(prefix, candidate string, searchInside bool) int {
	if prefix == "" {
		return 1
	}
	lp := strings.ToLower(prefix)
	lc := strings.ToLower(strings.Trim(candidate, `"`))
	switch {
	case lp == lc:
		return scoreExact
	case strings.HasPrefix(lc, lp):
		return scorePrefix - (len(lc) - len(lp))
	case searchInside && strings.Contains(lc, lp):
		return scoreSubstring - strings.Index(lc, lp)
	default:
		return 0
	}
}

// sortProposals orders by score, then by edit distance to the prefix, then
// alphabetically, so equal inputs always produce the same ordering.
func sortProposals(proposals []Proposal, prefix string) {
	lp := strings.ToLower(prefix)
	sort.SliceStable(proposals, func(i, j int) bool {
		if proposals[i].Score != proposals[j].Score {
			return proposals[i].Score > proposals[j].Score
		}
		if lp != "" {
			di := levenshtein.ComputeDistance(lp, strings.ToLower(proposals[i].Text))
			dj := levenshtein.ComputeDistance(lp, strings.ToLower(proposals[j].Text))
			if di != dj {
				return di < dj
			}
		}
		return proposals[i].Text < proposals[j].Text
	})
}
