package domain

import (
	"strings"

	"github.com/goccy/go-json"
)

// Category is a business category. Search results carry {alias, title}
// objects; older payloads carry bare strings, which populate Title.
type Category struct {
	Alias string `json:"alias,omitempty"`
	Title string `json:"title,omitempty"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Category{Title: s}
		return nil
	}
	type plain Category
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Category(p)
	return nil
}

// Key returns the normalized match key: lowercase with spaces as underscores.
// The title is preferred, the alias is used when no title is present.
func (c Category) Key() string {
	if c.Title != "" {
		return NormalizeCuisine(c.Title)
	}
	return NormalizeCuisine(c.Alias)
}

// AliasKey is like Key but prefers the alias.
func (c Category) AliasKey() string {
	if c.Alias != "" {
		return NormalizeCuisine(c.Alias)
	}
	return NormalizeCuisine(c.Title)
}

type VenueLocation struct {
	DisplayAddress []string `json:"display_address"`
}

// Venue is a candidate business as returned by a candidate source.
// It is read-only once fetched.
type Venue struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Coordinates *Coordinate   `json:"coordinates,omitempty"`
	Categories  []Category    `json:"categories"`
	Rating      *float64      `json:"rating,omitempty"`
	ReviewCount int           `json:"review_count"`
	Price       string        `json:"price,omitempty"`
	Location    VenueLocation `json:"location"`
}

// NormalizeCuisine lowercases s and replaces spaces with underscores.
func NormalizeCuisine(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// BudgetTier returns the tier of a price token such as "$$" (2).
// Anything that is not a run of '$' has tier 0.
func BudgetTier(token string) int {
	if token == "" || strings.Trim(token, "$") != "" {
		return 0
	}
	return len(token)
}
