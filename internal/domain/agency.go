package domain

import "time"

// Agency is an organizational unit responsible for one or more complaint
// categories. Categories carry set semantics: order is irrelevant and
// duplicates collapse. The comma-joined persisted form exists only at the
// repository boundary.
type Agency struct {
	ID           int64
	Name         string
	ContactEmail string
	Categories   []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HandlesCategory reports whether the agency services the given category
// label. Membership is exact: no casing or whitespace normalization.
func (a *Agency) HandlesCategory(category string) bool {
	for _, c := range a.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// NormalizeCategories collapses duplicate labels and drops empty ones,
// preserving first-seen order.
func NormalizeCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	result := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	return result
}
