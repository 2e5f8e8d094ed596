package scoring

import (
	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/geo"
)

const (
	cuisineMatchWeight = 30.0
	budgetMatchWeight  = 20.0
	ratingWeight       = 10.0
	reviewCountCap     = 500
	reviewCountDivisor = 25.0
	distancePenaltyKm  = 5.0
)

// Centroid scores venues by cuisine and budget match, rating and review
// count, minus a penalty per kilometre from the group centroid.
type Centroid struct{}

func NewCentroid() *Centroid { return &Centroid{} }

func (c *Centroid) Name() string { return StrategyCentroid }

func (c *Centroid) Query(p *domain.GroupProfile, topK int) domain.CandidateQuery {
	cuisines := make([]string, len(p.TopCuisines))
	copy(cuisines, p.TopCuisines)
	return domain.CandidateQuery{
		Cuisines:   cuisines,
		Location:   p.Centroid,
		SortBy:     domain.SortBestMatch,
		PerCuisine: true,
	}
}

func (c *Centroid) Rank(candidates []domain.Venue, p *domain.GroupProfile, k int) []domain.ScoredResult {
	if len(p.TopCuisines) == 0 {
		return []domain.ScoredResult{}
	}

	wanted := make(map[string]bool, len(p.TopCuisines))
	for _, cuisine := range p.TopCuisines {
		wanted[domain.NormalizeCuisine(cuisine)] = true
	}

	results := make([]domain.ScoredResult, 0, len(candidates))
	for _, v := range candidates {
		if !usableCoordinates(v) || v.Rating == nil || *v.Rating == 0 {
			continue
		}

		matches := 0
		for _, cat := range v.Categories {
			if wanted[cat.Key()] {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		distanceKm, err := geo.Distance(*v.Coordinates, p.Centroid)
		if err != nil {
			continue
		}

		results = append(results, newResult(v, distanceKm, centroidScore(v, matches, p.DominantBudget, distanceKm)))
	}

	return takeTop(results, k)
}

func centroidScore(v domain.Venue, matches int, dominantBudget string, distanceKm float64) float64 {
	budget := 0.0
	if priceOrDefault(v.Price) == dominantBudget {
		budget = budgetMatchWeight
	}
	reviews := float64(min(v.ReviewCount, reviewCountCap)) / reviewCountDivisor

	return float64(matches)*cuisineMatchWeight +
		budget +
		*v.Rating*ratingWeight +
		reviews -
		distanceKm*distancePenaltyKm
}
