package handler

import "github.com/actuallystonmai/group-dining-service/internal/domain"

type RecommendRequest struct {
	Group []MemberRequest `json:"group" validate:"max=100,dive"`
	TopK  int             `json:"top_k"`
}

type MemberRequest struct {
	Name                string    `json:"name" validate:"max=200"`
	Cuisines            []string  `json:"cuisines" validate:"max=20,dive,max=64"`
	DietaryRestrictions []string  `json:"dietary_restrictions" validate:"max=20,dive,max=64"`
	Budget              string    `json:"budget" validate:"omitempty,budget"`
	Location            []float64 `json:"location" validate:"omitempty,latlng"`
	Coordinates         []float64 `json:"coordinates" validate:"omitempty,latlng"`
	Time                string    `json:"time" validate:"omitempty,clock"`
}

type RecommendResponse struct {
	Recommendations []domain.ScoredResult `json:"recommendations"`
	Stats           Stats                 `json:"stats"`
	Metadata        Metadata              `json:"metadata"`
}

type Stats struct {
	TopCuisines []string   `json:"top_cuisines"`
	TopBudget   string     `json:"top_budget"`
	Centroid    [2]float64 `json:"centroid"`
}

type Metadata struct {
	RequestID   string `json:"request_id"`
	Strategy    string `json:"strategy"`
	Fallback    bool   `json:"fallback"`
	TotalCount  int    `json:"total_count"`
	GeneratedAt string `json:"generated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
