package domain

type ScoredResult struct {
	VenueID     string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Price       string  `json:"price_val"`
	DistanceKm  float64 `json:"distance_km"`
	Score       float64 `json:"score"`
}

type Recommendation struct {
	Results  []ScoredResult
	Profile  *GroupProfile
	Strategy string
	Fallback bool
}
