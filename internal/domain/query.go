package domain

import (
	"slices"
	"time"
)

const (
	SortBestMatch = "best_match"
	SortRating    = "rating"
)

// CandidateQuery describes what a candidate source should look for.
type CandidateQuery struct {
	Cuisines []string
	Location Coordinate
	RadiusKm float64
	OpenAt   time.Time
	SortBy   string
	Limit    int

	// PriceTiers restricts results to these tiers (1 for "$" to 4 for
	// "$$$$"). Empty means any price.
	PriceTiers []int
	// OpenNow asks for venues open at request time. Ignored when OpenAt is set.
	OpenNow bool

	// PerCuisine asks for one lookup per cuisine, merged and deduplicated.
	PerCuisine bool
}

// AllowsPrice reports whether a venue priced with token passes PriceTiers.
// Unpriced venues only pass when there is no restriction.
func (q CandidateQuery) AllowsPrice(token string) bool {
	if len(q.PriceTiers) == 0 {
		return true
	}
	return slices.Contains(q.PriceTiers, BudgetTier(token))
}
