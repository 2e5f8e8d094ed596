package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/validation"
)

// POST /api/recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Request body must be a JSON object with a group array")
		return
	}

	if err := validation.Struct(&req); err != nil {
		if !validation.IsRequestError(err) {
			h.log.Error().Err(err).Str("request_id", reqID).Msg("request validation failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	rec, err := h.service.Recommend(r.Context(), toMembers(req.Group), req.TopK)
	if err != nil {
		h.writeServiceError(w, reqID, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendResponse{
		Recommendations: rec.Results,
		Stats: Stats{
			TopCuisines: nonNil(rec.Profile.TopCuisines),
			TopBudget:   rec.Profile.DominantBudget,
			Centroid:    [2]float64{rec.Profile.Centroid.Latitude, rec.Profile.Centroid.Longitude},
		},
		Metadata: Metadata{
			RequestID:   reqID,
			Strategy:    rec.Strategy,
			Fallback:    rec.Fallback,
			TotalCount:  len(rec.Results),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyGroup):
		writeError(w, http.StatusBadRequest, "empty_group", "Group must contain at least one member")
	case errors.Is(err, domain.ErrMissingCoordinates):
		writeError(w, http.StatusBadRequest, "missing_coordinates", "At least one member must provide a location")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	case domain.IsCandidateSourceError(err):
		h.log.Error().Err(err).Str("request_id", reqID).Msg("candidate source failed")
		writeError(w, http.StatusBadGateway, "candidate_source_error", "Restaurant search is temporarily unavailable")
	default:
		h.log.Error().Err(err).Str("request_id", reqID).Msg("recommendation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toMembers(in []MemberRequest) []domain.MemberPreference {
	out := make([]domain.MemberPreference, len(in))
	for i, m := range in {
		out[i] = domain.MemberPreference{
			Name:                m.Name,
			Cuisines:            m.Cuisines,
			DietaryRestrictions: m.DietaryRestrictions,
			Budget:              m.Budget,
			Location:            coordinate(m),
			PreferredTime:       m.Time,
		}
	}
	return out
}

// coordinate prefers "location" and falls back to "coordinates".
func coordinate(m MemberRequest) *domain.Coordinate {
	pair := m.Location
	if len(pair) == 0 {
		pair = m.Coordinates
	}
	if len(pair) != 2 {
		return nil
	}
	return &domain.Coordinate{Latitude: pair[0], Longitude: pair[1]}
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
