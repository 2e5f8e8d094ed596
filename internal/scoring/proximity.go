package scoring

import (
	"strings"
	"time"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/geo"
)

const (
	defaultProximityMiles = 2.0
	defaultCandidateLimit = 30

	cuisineVoteWeight = 3.0
	dietaryWeight     = 2.0
)

// Proximity keeps venues within a fixed radius of every member and scores
// them by cuisine votes, dietary matches, budget closeness and rating.
type Proximity struct {
	radiusKm       float64
	candidateLimit int
	now            func() time.Time
}

func NewProximity(radiusKm float64, candidateLimit int) *Proximity {
	if radiusKm <= 0 {
		radiusKm = geo.MilesToKm(defaultProximityMiles)
	}
	if candidateLimit <= 0 {
		candidateLimit = defaultCandidateLimit
	}
	return &Proximity{radiusKm: radiusKm, candidateLimit: candidateLimit, now: time.Now}
}

func (s *Proximity) Name() string { return StrategyProximity }

// Query asks for every voted cuisine at once, most voted first, open at the
// group's preferred time today.
func (s *Proximity) Query(p *domain.GroupProfile, topK int) domain.CandidateQuery {
	cuisines := make([]string, len(p.RankedCuisines))
	copy(cuisines, p.RankedCuisines)

	return domain.CandidateQuery{
		Cuisines: cuisines,
		Location: p.Centroid,
		OpenAt:   openAt(s.now(), p.PreferredTime),
		SortBy:   domain.SortBestMatch,
		Limit:    s.candidateLimit,
	}
}

func (s *Proximity) Rank(candidates []domain.Venue, p *domain.GroupProfile, k int) []domain.ScoredResult {
	results := make([]domain.ScoredResult, 0, len(candidates))
	for _, v := range candidates {
		if v.Coordinates == nil {
			continue
		}
		if !s.withinReachOfAll(*v.Coordinates, p.MemberLocations) {
			continue
		}
		distanceKm, err := geo.Distance(*v.Coordinates, p.Centroid)
		if err != nil {
			continue
		}
		results = append(results, newResult(v, distanceKm, proximityScore(v, p)))
	}
	return takeTop(results, k)
}

func (s *Proximity) FallbackQuery(p *domain.GroupProfile, topK int) domain.CandidateQuery {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return domain.CandidateQuery{
		Location: p.Centroid,
		SortBy:   domain.SortRating,
		Limit:    topK,
	}
}

// RankFallback orders venues by rating alone.
func (s *Proximity) RankFallback(candidates []domain.Venue, p *domain.GroupProfile, k int) []domain.ScoredResult {
	results := make([]domain.ScoredResult, 0, len(candidates))
	for _, v := range candidates {
		if !usableCoordinates(v) {
			continue
		}
		distanceKm, err := geo.Distance(*v.Coordinates, p.Centroid)
		if err != nil {
			continue
		}
		var rating float64
		if v.Rating != nil {
			rating = *v.Rating
		}
		results = append(results, newResult(v, distanceKm, rating))
	}
	return takeTop(results, k)
}

func (s *Proximity) withinReachOfAll(c domain.Coordinate, members []domain.Coordinate) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		d, err := geo.Distance(c, m)
		if err != nil || d > s.radiusKm {
			return false
		}
	}
	return true
}

func proximityScore(v domain.Venue, p *domain.GroupProfile) float64 {
	aliases := make(map[string]bool, len(v.Categories))
	for _, cat := range v.Categories {
		aliases[cat.AliasKey()] = true
	}

	cuisine := 0
	for alias := range aliases {
		cuisine += p.CuisineVotes[alias]
	}

	dietary := 0
	for _, d := range p.DietaryRestrictions {
		if aliases[d] {
			dietary++
		}
	}

	var rating float64
	if v.Rating != nil {
		rating = *v.Rating
	}

	return float64(cuisine)*cuisineVoteWeight +
		float64(dietary)*dietaryWeight +
		budgetBand(domain.BudgetTier(v.Price), p.MinBudgetTier) +
		rating
}

// budgetBand is 2 for an exact tier match, 1 when one tier apart, else 0.
func budgetBand(tier, want int) float64 {
	switch diff := tier - want; {
	case diff == 0:
		return 2
	case diff == 1 || diff == -1:
		return 1
	default:
		return 0
	}
}

// openAt returns today's date at hh:mm in now's location. An unparsable
// value yields the zero time, which sources treat as "no constraint".
func openAt(now time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
}
