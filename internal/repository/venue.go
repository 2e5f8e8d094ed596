package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
)

const venueColumns = `id, name, latitude, longitude, category_aliases, category_titles,
	rating, review_count, price, display_address`

// SearchVenues returns catalog venues tagged with any of aliases and priced
// at one of prices. An empty aliases or prices list does not filter. sortBy
// "rating" orders by rating, anything else keeps catalog insertion order.
func (r *Repository) SearchVenues(ctx context.Context, aliases, prices []string, sortBy string, limit int) ([]domain.Venue, error) {
	order := "seq"
	if sortBy == domain.SortRating {
		order = "rating DESC NULLS LAST, seq"
	}
	if aliases == nil {
		aliases = []string{}
	}
	if prices == nil {
		prices = []string{}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+venueColumns+`
		FROM venues
		WHERE (cardinality($1::text[]) = 0 OR category_aliases && $1::text[])
		  AND (cardinality($2::text[]) = 0 OR price = ANY($2::text[]))
		ORDER BY `+order+`
		LIMIT $3`, aliases, prices, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query venues for %v: %w", aliases, err)
	}
	defer rows.Close()

	var venues []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over venues: %w", err)
	}
	return venues, nil
}

// CountVenues returns the catalog size.
func (r *Repository) CountVenues(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM venues`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return total, nil
}

func scanVenue(row pgx.Row) (domain.Venue, error) {
	var (
		v        domain.Venue
		lat, lon *float64
		aliases  []string
		titles   []string
		price    *string
	)
	err := row.Scan(&v.ID, &v.Name, &lat, &lon, &aliases, &titles,
		&v.Rating, &v.ReviewCount, &price, &v.Location.DisplayAddress)
	if err != nil {
		return domain.Venue{}, err
	}

	if lat != nil && lon != nil {
		v.Coordinates = &domain.Coordinate{Latitude: *lat, Longitude: *lon}
	}
	if price != nil {
		v.Price = *price
	}
	v.Categories = zipCategories(aliases, titles)
	return v, nil
}

func zipCategories(aliases, titles []string) []domain.Category {
	n := max(len(aliases), len(titles))
	cats := make([]domain.Category, 0, n)
	for i := range n {
		var c domain.Category
		if i < len(aliases) {
			c.Alias = aliases[i]
		}
		if i < len(titles) {
			c.Title = titles[i]
		}
		cats = append(cats, c)
	}
	return cats
}
