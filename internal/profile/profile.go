// Package profile reduces per-member preferences to a single group profile.
package profile

import (
	"sort"
	"strings"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/geo"
)

const (
	DefaultTopCuisines   = 3
	defaultBudget        = "$$"
	defaultPreferredTime = "19:00"
)

// Build aggregates members into a GroupProfile keeping the topN most voted
// cuisines. A topN of zero or less uses DefaultTopCuisines.
func Build(members []domain.MemberPreference, topN int) (*domain.GroupProfile, error) {
	if len(members) == 0 {
		return nil, domain.ErrEmptyGroup
	}
	if topN <= 0 {
		topN = DefaultTopCuisines
	}

	locations := memberLocations(members)
	if len(locations) == 0 {
		return nil, domain.ErrMissingCoordinates
	}

	cuisines := make([]string, 0, len(members))
	budgets := make([]string, 0, len(members))
	for _, m := range members {
		cuisines = append(cuisines, m.Cuisines...)
		if m.Budget != "" {
			budgets = append(budgets, m.Budget)
		}
	}

	top := rankVotes(cuisines)
	if len(top) > topN {
		top = top[:topN]
	}

	var preferredTime string
	if t := strings.TrimSpace(members[0].PreferredTime); t != "" {
		preferredTime = t
	} else {
		preferredTime = defaultPreferredTime
	}

	return &domain.GroupProfile{
		TopCuisines:         top,
		DominantBudget:      mode(budgets),
		Centroid:            centroid(locations),
		CuisineVotes:        normalizedVotes(cuisines),
		RankedCuisines:      rankVotes(normalized(cuisines)),
		DietaryRestrictions: dietaryUnion(members),
		MinBudgetTier:       minBudgetTier(members),
		MemberLocations:     locations,
		PreferredTime:       preferredTime,
	}, nil
}

func memberLocations(members []domain.MemberPreference) []domain.Coordinate {
	locations := make([]domain.Coordinate, 0, len(members))
	for _, m := range members {
		if m.Location == nil || !geo.Finite(*m.Location) {
			continue
		}
		locations = append(locations, *m.Location)
	}
	return locations
}

// rankVotes counts every trimmed, non-blank entry and returns the distinct
// entries ordered by descending count, ties kept in first-seen order.
func rankVotes(entries []string) []string {
	counts := make(map[string]int)
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		if e = strings.TrimSpace(e); e == "" {
			continue
		}
		if _, seen := counts[e]; !seen {
			order = append(order, e)
		}
		counts[e]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

// mode returns the most frequent value, the first one reaching the maximum
// count in first-seen order on a tie. It returns "" for no values.
func mode(values []string) string {
	counts := make(map[string]int)
	order := make([]string, 0, len(values))
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func centroid(locations []domain.Coordinate) domain.Coordinate {
	var lat, lon float64
	for _, c := range locations {
		lat += c.Latitude
		lon += c.Longitude
	}
	n := float64(len(locations))
	return domain.Coordinate{Latitude: lat / n, Longitude: lon / n}
}

func normalized(cuisines []string) []string {
	out := make([]string, 0, len(cuisines))
	for _, c := range cuisines {
		out = append(out, domain.NormalizeCuisine(c))
	}
	return out
}

func normalizedVotes(cuisines []string) map[string]int {
	votes := make(map[string]int, len(cuisines))
	for _, c := range cuisines {
		key := domain.NormalizeCuisine(c)
		if key == "" {
			continue
		}
		votes[key]++
	}
	return votes
}

func dietaryUnion(members []domain.MemberPreference) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range members {
		for _, d := range m.DietaryRestrictions {
			key := domain.NormalizeCuisine(d)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

// minBudgetTier is the cheapest tier any member asked for. Members without a
// budget count as "$$".
func minBudgetTier(members []domain.MemberPreference) int {
	lowest := -1
	for _, m := range members {
		budget := m.Budget
		if budget == "" {
			budget = defaultBudget
		}
		if tier := domain.BudgetTier(budget); lowest < 0 || tier < lowest {
			lowest = tier
		}
	}
	return lowest
}
