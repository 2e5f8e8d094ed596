package source

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const defaultFanOutLimit = 4

// FanOut splits PerCuisine queries into one query per cuisine, runs them
// concurrently and merges the results in cuisine order. Other queries pass
// straight through.
type FanOut struct {
	next  Source
	limit int
}

func NewFanOut(next Source, limit int) *FanOut {
	if limit <= 0 {
		limit = defaultFanOutLimit
	}
	return &FanOut{next: next, limit: limit}
}

func (f *FanOut) Fetch(ctx context.Context, q domain.CandidateQuery) ([]domain.Venue, error) {
	if !q.PerCuisine {
		return f.next.Fetch(ctx, q)
	}

	batches := make([][]domain.Venue, len(q.Cuisines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)

	for i, cuisine := range q.Cuisines {
		sub := q
		sub.Cuisines = []string{cuisine}
		sub.PerCuisine = false

		g.Go(func() error {
			venues, err := f.next.Fetch(gctx, sub)
			if err != nil {
				return err
			}
			batches[i] = venues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []domain.Venue
	for _, b := range batches {
		merged = append(merged, b...)
	}
	return Dedupe(merged), nil
}

// Dedupe drops venues whose id was already seen, keeping the first.
// Venues without an id are always kept.
func Dedupe(venues []domain.Venue) []domain.Venue {
	seen := make(map[string]bool, len(venues))
	out := make([]domain.Venue, 0, len(venues))
	for _, v := range venues {
		if v.ID != "" {
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
		}
		out = append(out, v)
	}
	return out
}
