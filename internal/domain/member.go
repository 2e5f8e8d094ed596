package domain

// Coordinate is a WGS 84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MemberPreference is one group member's input. Location is nil when the
// member supplied no coordinates.
type MemberPreference struct {
	Name                string      `json:"name,omitempty"`
	Cuisines            []string    `json:"cuisines"`
	DietaryRestrictions []string    `json:"dietary_restrictions,omitempty"`
	Budget              string      `json:"budget"`
	Location            *Coordinate `json:"location,omitempty"`
	PreferredTime       string      `json:"time,omitempty"`
}

// GroupProfile is the aggregate preference of a group, derived per request.
type GroupProfile struct {
	TopCuisines    []string   `json:"top_cuisines"`
	DominantBudget string     `json:"top_budget"`
	Centroid       Coordinate `json:"centroid"`

	// Inputs for the proximity and match strategies. RankedCuisines holds the
	// normalized CuisineVotes keys, most voted first, ties in first-seen order.
	CuisineVotes        map[string]int `json:"-"`
	RankedCuisines      []string       `json:"-"`
	DietaryRestrictions []string       `json:"-"`
	MinBudgetTier       int            `json:"-"`
	MemberLocations     []Coordinate   `json:"-"`
	PreferredTime       string         `json:"-"`
}
