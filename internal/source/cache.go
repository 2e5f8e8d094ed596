package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/logging"
	"github.com/actuallystonmai/group-dining-service/internal/metrics"
)

// VenueCache stores fetched candidates by query key.
type VenueCache interface {
	Get(ctx context.Context, key string) ([]domain.Venue, bool, error)
	Set(ctx context.Context, key string, venues []domain.Venue, ttl time.Duration) error
}

// Cache serves repeated queries from c. Cache failures are logged and the
// call falls through to the wrapped source.
func Cache(c VenueCache, ttl time.Duration) Middleware {
	return func(next Source) Source {
		return Func(func(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
			key := CacheKey(q)

			cached, found, err := c.Get(ctx, key)
			switch {
			case err != nil:
				metrics.CandidateCacheLookups.WithLabelValues("error").Inc()
				logging.Warn().Err(err).Str("key", key).Msg("candidate cache get failed")
			case found:
				metrics.CandidateCacheLookups.WithLabelValues("hit").Inc()
				return cached, nil
			default:
				metrics.CandidateCacheLookups.WithLabelValues("miss").Inc()
			}

			venues, err := next.Fetch(ctx, q)
			if err != nil {
				return nil, err
			}

			if err := c.Set(ctx, key, venues, ttl); err != nil {
				logging.Warn().Err(err).Str("key", key).Msg("candidate cache set failed")
			}
			return venues, nil
		})
	}
}

// CacheKey identifies a query. Coordinates are rounded to about 11 m.
func CacheKey(q domain.CandidateQuery) string {
	cuisines := make([]string, 0, len(q.Cuisines))
	for _, c := range q.Cuisines {
		cuisines = append(cuisines, domain.NormalizeCuisine(c))
	}

	var openAt int64
	if !q.OpenAt.IsZero() {
		openAt = q.OpenAt.Unix()
	}

	prices := make([]string, 0, len(q.PriceTiers))
	for _, t := range q.PriceTiers {
		prices = append(prices, strconv.Itoa(t))
	}

	return fmt.Sprintf("c=%s:loc=%.4f,%.4f:r=%g:open=%d:now=%t:price=%s:sort=%s:limit=%d:split=%t",
		strings.Join(cuisines, ","),
		q.Location.Latitude, q.Location.Longitude,
		q.RadiusKm, openAt, q.OpenNow, strings.Join(prices, ","),
		q.SortBy, q.Limit, q.PerCuisine)
}
