package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/profile"
)

func proximityGroup(t *testing.T) *domain.GroupProfile {
	t.Helper()
	p, err := profile.Build([]domain.MemberPreference{
		{
			Cuisines:            []string{"Italian", "Pizza"},
			DietaryRestrictions: []string{"Vegan"},
			Budget:              "$$",
			Location:            coord(40.74, -73.99),
			PreferredTime:       "20:15",
		},
		{
			Cuisines: []string{"Italian"},
			Budget:   "$$$",
			Location: coord(40.75, -73.99),
		},
	}, 3)
	require.NoError(t, err)
	return p
}

func aliased(v domain.Venue, aliases ...string) domain.Venue {
	v.Categories = nil
	for _, a := range aliases {
		v.Categories = append(v.Categories, domain.Category{Alias: a, Title: a})
	}
	return v
}

func TestProximity_Score(t *testing.T) {
	p := proximityGroup(t)
	v := aliased(venue("v", 40.745, -73.99, 4.5, 0, "$$"), "italian", "vegan")

	results := NewProximity(0, 0).Rank([]domain.Venue{v}, p, 10)

	// italian votes 2 * 3, one dietary match * 2, exact budget 2, rating 4.5
	require.Len(t, results, 1)
	assert.InDelta(t, 6+2+2+4.5, results[0].Score, 1e-9)
}

func TestProximity_GatesOnEveryMember(t *testing.T) {
	p := proximityGroup(t)
	near := aliased(venue("near", 40.745, -73.99, 3, 0, "$$"), "italian")
	// Close to the second member only.
	lopsided := aliased(venue("lopsided", 40.775, -73.99, 5, 0, "$$"), "italian")
	missing := aliased(venue("missing", 0, 0, 5, 0, "$$"), "italian")
	missing.Coordinates = nil

	results := NewProximity(0, 0).Rank([]domain.Venue{lopsided, missing, near}, p, 10)

	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].VenueID)
}

func TestProximity_CustomRadius(t *testing.T) {
	p := proximityGroup(t)
	lopsided := aliased(venue("lopsided", 40.775, -73.99, 5, 0, "$$"), "italian")

	results := NewProximity(10, 0).Rank([]domain.Venue{lopsided}, p, 10)
	assert.Len(t, results, 1)
}

func TestProximity_CuisineCountedOncePerAlias(t *testing.T) {
	p := proximityGroup(t)
	v := aliased(venue("v", 40.745, -73.99, 0, 0, "$$$$$"), "italian", "italian", "pizza")

	results := NewProximity(0, 0).Rank([]domain.Venue{v}, p, 10)

	// (italian 2 + pizza 1) * 3, budget five tiers away from "$$"
	require.Len(t, results, 1)
	assert.InDelta(t, 9, results[0].Score, 1e-9)
}

func TestBudgetBand(t *testing.T) {
	assert.Equal(t, 2.0, budgetBand(2, 2))
	assert.Equal(t, 1.0, budgetBand(3, 2))
	assert.Equal(t, 1.0, budgetBand(1, 2))
	assert.Equal(t, 0.0, budgetBand(4, 2))
	assert.Equal(t, 0.0, budgetBand(0, 2))
}

func TestProximity_Query(t *testing.T) {
	p := proximityGroup(t)
	s := NewProximity(0, 0)
	s.now = func() time.Time { return time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC) }

	q := s.Query(p, 5)

	assert.Equal(t, []string{"italian", "pizza"}, q.Cuisines)
	assert.False(t, q.PerCuisine)
	assert.Equal(t, 30, q.Limit)
	assert.Equal(t, domain.SortBestMatch, q.SortBy)
	assert.Equal(t, time.Date(2026, 3, 9, 20, 15, 0, 0, time.UTC), q.OpenAt)
}

func TestProximity_QueryOrdersCuisinesByVotes(t *testing.T) {
	p, err := profile.Build([]domain.MemberPreference{
		{Cuisines: []string{"Thai"}, Location: coord(40.7, -74.0)},
		{Cuisines: []string{"Afghan"}, Location: coord(40.7, -74.0)},
		{Cuisines: []string{"Thai"}, Location: coord(40.7, -74.0)},
	}, 3)
	require.NoError(t, err)

	q := NewProximity(0, 0).Query(p, 5)

	assert.Equal(t, []string{"thai", "afghan"}, q.Cuisines)
}

func TestOpenAt_Unparsable(t *testing.T) {
	assert.True(t, openAt(time.Now(), "dinner").IsZero())
}

func TestProximity_Fallback(t *testing.T) {
	p := proximityGroup(t)
	s := NewProximity(0, 0)

	q := s.FallbackQuery(p, 0)
	assert.Equal(t, domain.SortRating, q.SortBy)
	assert.Equal(t, DefaultTopK, q.Limit)
	assert.Empty(t, q.Cuisines)

	far := venue("far", 41.5, -73.0, 4.9, 0, "$$$$", "Steakhouse")
	mid := venue("mid", 40.7, -74.0, 4.0, 0, "$", "Diner")
	unrated := venue("unrated", 40.7, -74.0, 0, 0, "$", "Diner")
	unrated.Rating = nil
	nowhere := venue("nowhere", 0, 0, 5, 0, "$", "Diner")
	nowhere.Coordinates = nil

	results := s.RankFallback([]domain.Venue{mid, unrated, far, nowhere}, p, 10)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"far", "mid", "unrated"},
		[]string{results[0].VenueID, results[1].VenueID, results[2].VenueID})
	assert.Equal(t, 4.9, results[0].Score)
}
