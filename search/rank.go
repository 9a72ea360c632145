package search

import (
	"slices"
	"strings"

	"github.com/poiesic/coursegraph/core"
)

// sortResults orders results by weighted score descending.
// Equal scores are broken by concept name ascending so rankings are stable
// across runs.
func sortResults(results []*core.SearchResult) {
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.WeightedScore > b.WeightedScore {
			return -1
		}
		if a.WeightedScore < b.WeightedScore {
			return 1
		}
		return strings.Compare(a.Concept.Name, b.Concept.Name)
	})
}
