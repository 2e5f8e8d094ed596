package source

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

type recordingSource struct {
	mu        sync.Mutex
	queries   []domain.CandidateQuery
	byCuisine map[string][]domain.Venue
	fail      map[string]error
}

func (r *recordingSource) Fetch(_ context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()

	var out []domain.Venue
	for _, c := range q.Cuisines {
		if err := r.fail[c]; err != nil {
			return nil, err
		}
		out = append(out, r.byCuisine[c]...)
	}
	return out, nil
}

func ids(venues []domain.Venue) []string {
	out := make([]string, 0, len(venues))
	for _, v := range venues {
		out = append(out, v.ID)
	}
	return out
}

func TestFanOut_MergesInCuisineOrderAndDedupes(t *testing.T) {
	// Given sources where "shared" is returned for both cuisines
	src := &recordingSource{byCuisine: map[string][]domain.Venue{
		"Italian": {{ID: "i1"}, {ID: "shared"}, {ID: "i2"}},
		"Pizza":   {{ID: "shared"}, {ID: "p1"}},
	}}

	// When fanning out
	venues, err := NewFanOut(src, 2).Fetch(context.Background(), domain.CandidateQuery{
		Cuisines:   []string{"Italian", "Pizza"},
		PerCuisine: true,
	})

	// Then one query per cuisine was issued and the first occurrence wins
	require.NoError(t, err)
	assert.Equal(t, []string{"i1", "shared", "i2", "p1"}, ids(venues))
	require.Len(t, src.queries, 2)
	for _, q := range src.queries {
		assert.Len(t, q.Cuisines, 1)
		assert.False(t, q.PerCuisine)
	}
}

func TestFanOut_PassThrough(t *testing.T) {
	src := &recordingSource{byCuisine: map[string][]domain.Venue{
		"a": {{ID: "x"}},
		"b": {{ID: "x"}},
	}}

	venues, err := NewFanOut(src, 0).Fetch(context.Background(), domain.CandidateQuery{Cuisines: []string{"a", "b"}})

	require.NoError(t, err)
	assert.Len(t, src.queries, 1)
	// Without splitting the source result is returned untouched.
	assert.Equal(t, []string{"x", "x"}, ids(venues))
}

func TestFanOut_NoCuisines(t *testing.T) {
	src := &recordingSource{}
	venues, err := NewFanOut(src, 0).Fetch(context.Background(), domain.CandidateQuery{PerCuisine: true})

	require.NoError(t, err)
	assert.Empty(t, venues)
	assert.Empty(t, src.queries)
}

func TestFanOut_PropagatesError(t *testing.T) {
	boom := &domain.CandidateSourceError{Source: NameYelp, StatusCode: 500, Err: errors.New("boom")}
	src := &recordingSource{
		byCuisine: map[string][]domain.Venue{"a": {{ID: "1"}}},
		fail:      map[string]error{"b": boom},
	}

	_, err := NewFanOut(src, 1).Fetch(context.Background(), domain.CandidateQuery{
		Cuisines:   []string{"a", "b"},
		PerCuisine: true,
	})

	assert.ErrorIs(t, err, boom)
}

func TestDedupe(t *testing.T) {
	in := []domain.Venue{{ID: "a"}, {ID: ""}, {ID: "b"}, {ID: "a"}, {ID: ""}}
	assert.Equal(t, []string{"a", "", "b", ""}, ids(Dedupe(in)))
}
