package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxTypoDistance is how far off a query may be before a row stops matching.
const maxTypoDistance = 2

// rankNames returns the indices of names matching query, best match first.
// Substring matches outrank typo matches; ties keep the original order so
// the list stays stable while typing.
func rankNames(names []string, query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]int, len(names))
		for i := range names {
			out[i] = i
		}
		return out
	}

	type ranked struct {
		idx  int
		cost int
	}
	var matches []ranked
	for i, name := range names {
		n := strings.ToLower(name)
		if strings.Contains(n, q) {
			matches = append(matches, ranked{i, 0})
			continue
		}
		if d := levenshtein.ComputeDistance(n, q); d <= maxTypoDistance {
			matches = append(matches, ranked{i, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].cost < matches[j].cost })

	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.idx
	}
	return out
}
