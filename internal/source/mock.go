package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const (
	DefaultMockPerCuisine = 50
	mockFallbackCuisine   = "Local"
)

// MockSource generates deterministic venues around lower Manhattan instead
// of calling a live API. It honours price tiers and ignores location, radius
// and opening hours.
type MockSource struct {
	perCuisine int
}

func NewMockSource(perCuisine int) *MockSource {
	if perCuisine <= 0 {
		perCuisine = DefaultMockPerCuisine
	}
	return &MockSource{perCuisine: perCuisine}
}

func (m *MockSource) Fetch(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.CandidateSourceError{Source: NameMock, Err: err}
	}

	cuisines := q.Cuisines
	if len(cuisines) == 0 {
		cuisines = []string{mockFallbackCuisine}
	}

	venues := make([]domain.Venue, 0, len(cuisines)*m.perCuisine)
	for _, c := range cuisines {
		for _, v := range GenerateVenues(c, m.perCuisine) {
			if q.AllowsPrice(v.Price) {
				venues = append(venues, v)
			}
		}
	}
	if q.Limit > 0 && len(venues) > q.Limit {
		venues = venues[:q.Limit]
	}
	return venues, nil
}

// GenerateVenues returns n sample venues tagged with cuisine.
func GenerateVenues(cuisine string, n int) []domain.Venue {
	venues := make([]domain.Venue, 0, n)
	for i := 1; i <= n; i++ {
		rating := min(5, 3.5+float64(i%3)*0.5)
		venues = append(venues, domain.Venue{
			ID:   fmt.Sprintf("%s_restaurant_%d", strings.ToLower(cuisine), i),
			Name: fmt.Sprintf("%s Restaurant %d", cuisine, i),
			Coordinates: &domain.Coordinate{
				Latitude:  40.7128 + float64(i)*0.001,
				Longitude: -74.0060 - float64(i)*0.001,
			},
			Categories:  []domain.Category{{Alias: domain.NormalizeCuisine(cuisine), Title: cuisine}},
			Rating:      &rating,
			ReviewCount: 50 + i*10,
			Price:       strings.Repeat("$", 1+i%4),
			Location: domain.VenueLocation{
				DisplayAddress: []string{fmt.Sprintf("%d %s St", i, cuisine), "New York, NY 10001"},
			},
		})
	}
	return venues
}
