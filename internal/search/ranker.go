package search

import (
	"sort"

	"github.com/travel2go/engine/internal/search/types"
)

// Rank orders packages by descending budget remaining, ties by ascending
// total cost. The sort is stable and the full slice is returned; truncation
// is the caller's decision.
func Rank(packages []types.TravelPackage) []types.TravelPackage {
	sort.SliceStable(packages, func(i, j int) bool {
		if packages[i].BudgetRemaining != packages[j].BudgetRemaining {
			return packages[i].BudgetRemaining > packages[j].BudgetRemaining
		}
		return packages[i].TotalCost < packages[j].TotalCost
	})
	return packages
}
