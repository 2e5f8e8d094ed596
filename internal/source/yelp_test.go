package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const sampleSearch = `{
  "businesses": [
    {
      "id": "luigis",
      "name": "Luigi's",
      "coordinates": {"latitude": 40.745, "longitude": -73.99},
      "categories": [{"alias": "italian", "title": "Italian"}, "Pizza"],
      "rating": 4.5,
      "review_count": 120,
      "price": "$$",
      "location": {"display_address": ["1 Main St", "New York, NY 10001"]}
    },
    {
      "id": "nowhere",
      "name": "Nowhere",
      "coordinates": {"latitude": null, "longitude": null},
      "categories": []
    }
  ]
}`

func TestYelpClient_Fetch(t *testing.T) {
	// Given a search API that records the request
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleSearch))
	}))
	defer srv.Close()

	client := NewYelpClient(srv.URL+"/", "secret", time.Second)
	openAt := time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC)

	// When fetching
	venues, err := client.Fetch(context.Background(), domain.CandidateQuery{
		Cuisines: []string{"Italian", "Thai Food"},
		Location: domain.Coordinate{Latitude: 40.745, Longitude: -73.99},
		RadiusKm: 3.2,
		OpenAt:   openAt,
		SortBy:   domain.SortBestMatch,
		Limit:    30,
	})

	// Then the request is authenticated and parameterised
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/v3/businesses/search", got.URL.Path)
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	params := got.URL.Query()
	assert.Equal(t, "40.745", params.Get("latitude"))
	assert.Equal(t, "-73.99", params.Get("longitude"))
	assert.Equal(t, "italian,thai_food", params.Get("categories"))
	assert.Equal(t, "3200", params.Get("radius"))
	assert.Equal(t, "1773082800", params.Get("open_at"))
	assert.Equal(t, "best_match", params.Get("sort_by"))
	assert.Equal(t, "30", params.Get("limit"))

	// And the businesses are decoded
	require.Len(t, venues, 2)
	v := venues[0]
	assert.Equal(t, "luigis", v.ID)
	require.NotNil(t, v.Rating)
	assert.Equal(t, 4.5, *v.Rating)
	assert.Equal(t, 120, v.ReviewCount)
	assert.Equal(t, []domain.Category{{Alias: "italian", Title: "Italian"}, {Title: "Pizza"}}, v.Categories)
	assert.Equal(t, []string{"1 Main St", "New York, NY 10001"}, v.Location.DisplayAddress)

	assert.Nil(t, venues[1].Rating)
	require.NotNil(t, venues[1].Coordinates)
	assert.Equal(t, 0.0, venues[1].Coordinates.Latitude)
}

func TestYelpClient_DefaultsLimitAndOmitsEmptyParams(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"businesses": []}`))
	}))
	defer srv.Close()

	venues, err := NewYelpClient(srv.URL, "k", time.Second).Fetch(context.Background(), domain.CandidateQuery{})

	require.NoError(t, err)
	assert.Empty(t, venues)
	params := got.URL.Query()
	assert.Equal(t, "50", params.Get("limit"))
	assert.False(t, params.Has("categories"))
	assert.False(t, params.Has("open_at"))
	assert.False(t, params.Has("radius"))
}

func TestYelpClient_PriceAndOpenNow(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"businesses": []}`))
	}))
	defer srv.Close()
	client := NewYelpClient(srv.URL, "k", time.Second)

	_, err := client.Fetch(context.Background(), domain.CandidateQuery{PriceTiers: []int{1, 2}, OpenNow: true})
	require.NoError(t, err)
	assert.Equal(t, "1,2", got.URL.Query().Get("price"))
	assert.Equal(t, "true", got.URL.Query().Get("open_now"))

	// open_at and open_now cannot be combined
	_, err = client.Fetch(context.Background(), domain.CandidateQuery{
		OpenNow: true,
		OpenAt:  time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, got.URL.Query().Has("open_at"))
	assert.False(t, got.URL.Query().Has("open_now"))
	assert.False(t, got.URL.Query().Has("price"))
}

func TestYelpClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": "TOO_MANY_REQUESTS_PER_SECOND"}}`))
	}))
	defer srv.Close()

	_, err := NewYelpClient(srv.URL, "k", time.Second).Fetch(context.Background(), domain.CandidateQuery{})

	require.Error(t, err)
	var cse *domain.CandidateSourceError
	require.True(t, errors.As(err, &cse))
	assert.Equal(t, NameYelp, cse.Source)
	assert.Equal(t, http.StatusTooManyRequests, cse.StatusCode)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "TOO_MANY_REQUESTS_PER_SECOND")
}

func TestYelpClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewYelpClient(url, "k", time.Second).Fetch(context.Background(), domain.CandidateQuery{})

	var cse *domain.CandidateSourceError
	require.True(t, errors.As(err, &cse))
	assert.Equal(t, 0, cse.StatusCode)
}

func TestYelpClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"businesses": [`))
	}))
	defer srv.Close()

	_, err := NewYelpClient(srv.URL, "k", time.Second).Fetch(context.Background(), domain.CandidateQuery{})
	assert.True(t, domain.IsCandidateSourceError(err))
}
