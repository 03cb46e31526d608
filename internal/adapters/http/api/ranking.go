package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/gridcast/internal/domain/model"
)

// maxRankingBody caps the POST /api/ranking body.
const maxRankingBody = 64 << 10

var validate = validator.New()

// RankingDependencies defines the operation used by the ranking routes.
type RankingDependencies interface {
	Ranking(ctx context.Context, overrides model.Assignment) ([]model.RankedRow, error)
}

// RankingHandler handles ranking requests.
type RankingHandler struct {
	deps RankingDependencies
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies) *RankingHandler {
	return &RankingHandler{deps: deps}
}

// rankingRequest mirrors the OpenAPI schema for POST /api/ranking.
type rankingRequest struct {
	Assignment model.Assignment `json:"assignment" validate:"max=64,dive,keys,required,endkeys,required"`
}

type rankingResponse struct {
	Assignment model.Assignment  `json:"assignment"`
	Ranking    []model.RankedRow `json:"ranking"`
}

// HandleGet handles GET /api/ranking: everyone on their real team.
func (h *RankingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, nil)
}

// HandlePost handles POST /api/ranking with partial team reassignments.
// An empty body ranks the default assignment.
func (h *RankingHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var req rankingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRankingBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	h.respond(w, r, req.Assignment)
}

func (h *RankingHandler) respond(w http.ResponseWriter, r *http.Request, overrides model.Assignment) {
	rows, err := h.deps.Ranking(r.Context(), overrides)
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	assignment := make(model.Assignment, len(rows))
	for _, row := range rows {
		assignment[row.Competitor] = row.Team
	}
	writeJSON(w, http.StatusOK, rankingResponse{Assignment: assignment, Ranking: rows})
}
