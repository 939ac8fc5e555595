// Package matcher selects the agency responsible for a complaint category.
package matcher

import (
	"sort"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Match scans agencies in ascending-id order and returns the first one whose
// category set contains the given label. Membership is an exact string
// comparison against the stored labels; no casing or whitespace
// normalization is applied. Returns nil when the category is empty or no
// agency qualifies.
//
// Pure function of its inputs; the caller owns roster freshness.
func Match(category string, agencies []domain.Agency) *domain.Agency {
	if category == "" || len(agencies) == 0 {
		return nil
	}

	ordered := make([]domain.Agency, len(agencies))
	copy(ordered, agencies)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	for i := range ordered {
		if ordered[i].HandlesCategory(category) {
			match := ordered[i]
			return &match
		}
	}
	return nil
}
