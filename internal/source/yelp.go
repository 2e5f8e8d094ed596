package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const (
	DefaultYelpBaseURL = "https://api.yelp.com"
	yelpSearchPath     = "/v3/businesses/search"
	yelpMaxLimit       = 50
	yelpMaxRadiusM     = 40000
	maxErrorBody       = 4 << 10
)

var ErrUnexpectedStatus = errors.New("unexpected status from search API")

// YelpClient queries the Yelp Fusion business search endpoint.
type YelpClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewYelpClient(baseURL, apiKey string, timeout time.Duration) *YelpClient {
	if baseURL == "" {
		baseURL = DefaultYelpBaseURL
	}
	return &YelpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Businesses []domain.Venue `json:"businesses"`
}

func (c *YelpClient) Fetch(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	endpoint := c.baseURL + yelpSearchPath + "?" + searchParams(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.CandidateSourceError{Source: NameYelp, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.CandidateSourceError{Source: NameYelp, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.CandidateSourceError{
			Source:     NameYelp,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, strings.TrimSpace(string(body))),
		}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.CandidateSourceError{Source: NameYelp, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out.Businesses, nil
}

func searchParams(q domain.CandidateQuery) url.Values {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(q.Location.Latitude, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(q.Location.Longitude, 'f', -1, 64))

	if len(q.Cuisines) > 0 {
		aliases := make([]string, 0, len(q.Cuisines))
		for _, c := range q.Cuisines {
			aliases = append(aliases, domain.NormalizeCuisine(c))
		}
		v.Set("categories", strings.Join(aliases, ","))
	}
	if q.RadiusKm > 0 {
		v.Set("radius", strconv.Itoa(min(int(q.RadiusKm*1000), yelpMaxRadiusM)))
	}
	if !q.OpenAt.IsZero() {
		v.Set("open_at", strconv.FormatInt(q.OpenAt.Unix(), 10))
	} else if q.OpenNow {
		v.Set("open_now", "true")
	}
	if len(q.PriceTiers) > 0 {
		tiers := make([]string, 0, len(q.PriceTiers))
		for _, t := range q.PriceTiers {
			tiers = append(tiers, strconv.Itoa(t))
		}
		v.Set("price", strings.Join(tiers, ","))
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}

	limit := q.Limit
	if limit <= 0 || limit > yelpMaxLimit {
		limit = yelpMaxLimit
	}
	v.Set("limit", strconv.Itoa(limit))
	return v
}
