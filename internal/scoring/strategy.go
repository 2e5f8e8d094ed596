// Package scoring ranks candidate venues against a group profile.
//
// Three policies are available:
//
//   - centroid: cuisine/budget/rating/popularity score with a continuous
//     distance penalty measured from the group centroid.
//   - proximity: candidates must be within a fixed radius of every member,
//     then cuisine votes, dietary matches, budget banding and rating are
//     summed. Falls back to top rated nearby venues when nothing qualifies.
//   - match: price-filtered top rated search, cuisine and dietary filtering
//     with a cuisine-only fallback, and a 0 to 100 match score.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/geo"
)

const (
	DefaultTopK = 10

	StrategyCentroid  = "centroid"
	StrategyProximity = "proximity"
	StrategyMatch     = "match"
)

// Strategy builds the candidate query for a profile and ranks the result.
// Implementations are pure: identical inputs give identical output.
type Strategy interface {
	Name() string
	Query(p *domain.GroupProfile, topK int) domain.CandidateQuery
	Rank(candidates []domain.Venue, p *domain.GroupProfile, topK int) []domain.ScoredResult
}

// FallbackRanker is implemented by strategies that can recommend something
// when Rank returns nothing.
type FallbackRanker interface {
	FallbackQuery(p *domain.GroupProfile, topK int) domain.CandidateQuery
	RankFallback(candidates []domain.Venue, p *domain.GroupProfile, topK int) []domain.ScoredResult
}

type Options struct {
	// ProximityRadiusKm is the per-member distance gate. Zero uses 2 miles.
	ProximityRadiusKm float64
	// CandidateLimit caps the single proximity query. Zero uses 30.
	CandidateLimit int
}

// New returns the named strategy.
func New(name string, opts Options) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", StrategyCentroid:
		return NewCentroid(), nil
	case StrategyProximity:
		return NewProximity(opts.ProximityRadiusKm, opts.CandidateLimit), nil
	case StrategyMatch:
		return NewMatch(), nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy %q", name)
	}
}

// takeTop sorts descending by score, keeping input order on equal scores, and
// truncates to k.
func takeTop(results []domain.ScoredResult, k int) []domain.ScoredResult {
	if k <= 0 {
		k = DefaultTopK
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// usableCoordinates reports whether v has a non-zero, finite position.
func usableCoordinates(v domain.Venue) bool {
	if v.Coordinates == nil || !geo.Finite(*v.Coordinates) {
		return false
	}
	return v.Coordinates.Latitude != 0 && v.Coordinates.Longitude != 0
}

func newResult(v domain.Venue, distanceKm, score float64) domain.ScoredResult {
	name := v.Name
	if name == "" {
		name = "Unnamed Restaurant"
	}
	address := strings.Join(v.Location.DisplayAddress, ", ")
	if address == "" {
		address = "No address available"
	}
	var rating float64
	if v.Rating != nil {
		rating = *v.Rating
	}
	return domain.ScoredResult{
		VenueID:     v.ID,
		Name:        name,
		Address:     address,
		Rating:      rating,
		ReviewCount: v.ReviewCount,
		Price:       priceOrDefault(v.Price),
		DistanceKm:  distanceKm,
		Score:       score,
	}
}

// Venues without a price are treated as the cheapest tier.
func priceOrDefault(price string) string {
	if price == "" {
		return "$"
	}
	return price
}
