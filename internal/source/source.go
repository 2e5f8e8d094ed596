// Package source provides candidate venue sources and the middleware that
// wraps them: caching, retries, circuit breaking, rate limiting, metrics and
// per-cuisine fan-out.
package source

import (
	"context"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const (
	NameYelp    = "yelp"
	NameMock    = "mock"
	NameCatalog = "catalog"
)

// Source supplies candidate venues for a query. Failures are reported as
// *domain.CandidateSourceError.
type Source interface {
	Fetch(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error)

func (f Func) Fetch(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	return f(ctx, q)
}

// Middleware decorates a Source.
type Middleware func(next Source) Source

// Chain wraps src so that mws[0] is the outermost layer.
func Chain(src Source, mws ...Middleware) Source {
	for i := len(mws) - 1; i >= 0; i-- {
		src = mws[i](src)
	}
	return src
}
