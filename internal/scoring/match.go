package scoring

import (
	"math"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/geo"
)

const (
	matchCandidateLimit = 20
	matchCuisinePoints  = 3
	matchMaxRating      = 5.0
	matchMaxScore       = 100
)

// Match asks the source for top rated venues in the group's price range and
// keeps those serving a top cuisine and every dietary restriction. When none
// qualifies the dietary requirement is dropped. Scores are on a 0 to 100 scale.
type Match struct{}

func NewMatch() *Match { return &Match{} }

func (m *Match) Name() string { return StrategyMatch }

func (m *Match) Query(p *domain.GroupProfile, topK int) domain.CandidateQuery {
	cuisines := make([]string, len(p.TopCuisines))
	copy(cuisines, p.TopCuisines)
	return domain.CandidateQuery{
		Cuisines:   cuisines,
		Location:   p.Centroid,
		SortBy:     domain.SortRating,
		Limit:      matchCandidateLimit,
		PriceTiers: priceRange(p.DominantBudget),
		OpenNow:    true,
	}
}

func (m *Match) Rank(candidates []domain.Venue, p *domain.GroupProfile, k int) []domain.ScoredResult {
	wanted := make([]string, 0, len(p.TopCuisines))
	for _, c := range p.TopCuisines {
		if key := domain.NormalizeCuisine(c); key != "" {
			wanted = append(wanted, key)
		}
	}
	if len(wanted) == 0 {
		return []domain.ScoredResult{}
	}

	var strict, loose []domain.Venue
	for _, v := range candidates {
		aliases := aliasSet(v)
		if !anyIn(wanted, aliases) {
			continue
		}
		loose = append(loose, v)
		if allIn(p.DietaryRestrictions, aliases) {
			strict = append(strict, v)
		}
	}
	if len(strict) == 0 {
		strict = loose
	}

	results := make([]domain.ScoredResult, 0, len(strict))
	for _, v := range strict {
		var distanceKm float64
		if usableCoordinates(v) {
			if d, err := geo.Distance(*v.Coordinates, p.Centroid); err == nil {
				distanceKm = d
			}
		}
		results = append(results, newResult(v, distanceKm, matchScore(v, wanted, p.DominantBudget)))
	}
	return takeTop(results, k)
}

// matchScore gives 3 points per wanted cuisine the venue serves, 2 for the
// group's budget or 1 for a neighbouring tier, plus the rating capped at 5,
// then scales by 10 and caps at 100.
func matchScore(v domain.Venue, wanted []string, budget string) float64 {
	aliases := aliasSet(v)
	points := 0.0
	for _, c := range wanted {
		if aliases[c] {
			points += matchCuisinePoints
		}
	}

	if tier, want := domain.BudgetTier(v.Price), domain.BudgetTier(budget); tier > 0 && want > 0 {
		points += budgetBand(tier, want)
	}

	if v.Rating != nil {
		points += min(max(*v.Rating, 0), matchMaxRating)
	}

	return min(math.Round(points*10), matchMaxScore)
}

// priceRange maps a budget to the tiers searched for it: the tier itself and
// the one below, or the two lowest for "$$".
func priceRange(budget string) []int {
	switch domain.BudgetTier(budget) {
	case 1:
		return []int{1}
	case 2:
		return []int{1, 2}
	case 3:
		return []int{2, 3}
	case 4:
		return []int{3, 4}
	default:
		return nil
	}
}

func aliasSet(v domain.Venue) map[string]bool {
	aliases := make(map[string]bool, len(v.Categories))
	for _, cat := range v.Categories {
		if key := cat.AliasKey(); key != "" {
			aliases[key] = true
		}
	}
	return aliases
}

func anyIn(keys []string, set map[string]bool) bool {
	for _, k := range keys {
		if set[k] {
			return true
		}
	}
	return false
}

func allIn(keys []string, set map[string]bool) bool {
	for _, k := range keys {
		if !set[k] {
			return false
		}
	}
	return true
}
