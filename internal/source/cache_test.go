package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

type memCache struct {
	data   map[string][]domain.Venue
	ttl    time.Duration
	getErr error
	setErr error
}

func newMemCache() *memCache { return &memCache{data: map[string][]domain.Venue{}} }

func (m *memCache) Get(_ context.Context, key string) ([]domain.Venue, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, venues []domain.Venue, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = venues
	m.ttl = ttl
	return nil
}

func TestCache_HitSkipsSource(t *testing.T) {
	c := newMemCache()
	src := &flakySource{venues: []domain.Venue{{ID: "a"}}}
	wrapped := Cache(c, time.Minute)(src)
	q := domain.CandidateQuery{Cuisines: []string{"Thai"}}

	first, err := wrapped.Fetch(context.Background(), q)
	require.NoError(t, err)
	second, err := wrapped.Fetch(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, time.Minute, c.ttl)
}

func TestCache_FailuresFallThrough(t *testing.T) {
	c := newMemCache()
	c.getErr = errors.New("redis down")
	c.setErr = errors.New("redis down")
	src := &flakySource{venues: []domain.Venue{{ID: "a"}}}

	venues, err := Cache(c, time.Minute)(src).Fetch(context.Background(), domain.CandidateQuery{})

	require.NoError(t, err)
	assert.Len(t, venues, 1)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := newMemCache()
	src := &flakySource{errs: []error{statusErr(500)}, venues: []domain.Venue{{ID: "a"}}}
	wrapped := Cache(c, time.Minute)(src)

	_, err := wrapped.Fetch(context.Background(), domain.CandidateQuery{})
	require.Error(t, err)
	assert.Empty(t, c.data)

	venues, err := wrapped.Fetch(context.Background(), domain.CandidateQuery{})
	require.NoError(t, err)
	assert.Len(t, venues, 1)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(domain.CandidateQuery{
		Cuisines: []string{"Thai Food"},
		Location: domain.Coordinate{Latitude: 40.74501, Longitude: -73.99},
		SortBy:   domain.SortBestMatch,
	})
	b := CacheKey(domain.CandidateQuery{
		Cuisines: []string{"thai food"},
		Location: domain.Coordinate{Latitude: 40.74502, Longitude: -73.99},
		SortBy:   domain.SortBestMatch,
	})
	c := CacheKey(domain.CandidateQuery{
		Cuisines: []string{"thai food"},
		Location: domain.Coordinate{Latitude: 40.75, Longitude: -73.99},
		SortBy:   domain.SortBestMatch,
	})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "c=thai_food")

	priced := CacheKey(domain.CandidateQuery{
		Cuisines:   []string{"thai food"},
		Location:   domain.Coordinate{Latitude: 40.74501, Longitude: -73.99},
		SortBy:     domain.SortBestMatch,
		PriceTiers: []int{1, 2},
	})
	assert.NotEqual(t, a, priced)
	assert.Contains(t, priced, "price=1,2")
}
