package seeds

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/logging"
	"github.com/actuallystonmai/group-dining-service/internal/source"
)

// DefaultCuisines are seeded when no list is given.
var DefaultCuisines = []string{"Italian", "Japanese", "Mexican", "Indian", "Thai", "Chinese"}

const columnsPerRow = 10

func Setup(ctx context.Context, pool *pgxpool.Pool, cuisines []string, perCuisine int) error {
	if len(cuisines) == 0 {
		cuisines = DefaultCuisines
	}
	if perCuisine <= 0 {
		perCuisine = source.DefaultMockPerCuisine
	}

	// Truncate existing data before insert
	logging.Info().Msg("seed: truncating venues")
	if _, err := pool.Exec(ctx, `TRUNCATE venues RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	for _, c := range cuisines {
		logging.Info().Str("cuisine", c).Int("count", perCuisine).Msg("seed: inserting venues")
		if err := insertVenues(ctx, pool, source.GenerateVenues(c, perCuisine)); err != nil {
			return fmt.Errorf("seed %s venues: %w", c, err)
		}
	}

	logging.Info().Msg("seed: complete")
	return nil
}

func insertVenues(ctx context.Context, pool *pgxpool.Pool, venues []domain.Venue) error {
	if len(venues) == 0 {
		return nil
	}

	query, args := buildInsert(venues)
	_, err := pool.Exec(ctx, query, args...)
	return err
}

func buildInsert(venues []domain.Venue) (string, []any) {
	rows := make([]string, 0, len(venues))
	args := make([]any, 0, len(venues)*columnsPerRow)

	for _, v := range venues {
		base := len(args)
		placeholders := make([]string, columnsPerRow)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", base+i+1)
		}
		rows = append(rows, "("+strings.Join(placeholders, ", ")+")")

		aliases := make([]string, 0, len(v.Categories))
		titles := make([]string, 0, len(v.Categories))
		for _, c := range v.Categories {
			aliases = append(aliases, c.AliasKey())
			titles = append(titles, c.Title)
		}

		var lat, lon *float64
		if v.Coordinates != nil {
			lat, lon = &v.Coordinates.Latitude, &v.Coordinates.Longitude
		}

		var price *string
		if v.Price != "" {
			price = &v.Price
		}

		args = append(args, v.ID, v.Name, lat, lon, aliases, titles, v.Rating, v.ReviewCount,
			price, v.Location.DisplayAddress)
	}

	query := "INSERT INTO venues (id, name, latitude, longitude, category_aliases, category_titles, " +
		"rating, review_count, price, display_address) VALUES " +
		strings.Join(rows, ", ") + " ON CONFLICT (id) DO NOTHING"
	return query, args
}
