package handler

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/group-dining-service/internal/domain"
	"github.com/actuallystonmai/group-dining-service/internal/logging"
)

const maxBodyBytes = 1 << 20

// Recommender produces ranked venues for a group.
type Recommender interface {
	Recommend(ctx context.Context, members []domain.MemberPreference, topK int) (*domain.Recommendation, error)
}

type Handler struct {
	service Recommender
	log     zerolog.Logger
}

func NewHandler(svc Recommender) *Handler {
	return &Handler{service: svc, log: logging.With("handler")}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
