package source

import (
	"context"
	"strings"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const defaultCatalogLimit = 50

// VenueStore is the read side of the venue catalog.
type VenueStore interface {
	SearchVenues(ctx context.Context, aliases, prices []string, sortBy string, limit int) ([]domain.Venue, error)
}

// CatalogSource serves candidates from a local venue catalog. The catalog
// keeps no opening hours, so OpenAt and OpenNow are ignored.
type CatalogSource struct {
	store VenueStore
}

func NewCatalogSource(store VenueStore) *CatalogSource {
	return &CatalogSource{store: store}
}

func (c *CatalogSource) Fetch(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	aliases := make([]string, 0, len(q.Cuisines))
	for _, cuisine := range q.Cuisines {
		aliases = append(aliases, domain.NormalizeCuisine(cuisine))
	}

	prices := make([]string, 0, len(q.PriceTiers))
	for _, t := range q.PriceTiers {
		if t >= 1 && t <= 4 {
			prices = append(prices, strings.Repeat("$", t))
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultCatalogLimit
	}

	venues, err := c.store.SearchVenues(ctx, aliases, prices, q.SortBy, limit)
	if err != nil {
		return nil, &domain.CandidateSourceError{Source: NameCatalog, Err: err}
	}
	return venues, nil
}
