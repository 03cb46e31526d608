package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/gridcast/internal/domain/types"
)

// CompetitorsDependencies defines the reads used by the competitor routes.
type CompetitorsDependencies interface {
	Competitor(ctx context.Context, name string) (types.CompetitorEntry, error)
	Competitors(ctx context.Context) ([]types.CompetitorEntry, error)
}

// CompetitorsHandler handles competitor requests.
type CompetitorsHandler struct {
	deps CompetitorsDependencies
}

// NewCompetitorsHandler creates a new competitors handler.
func NewCompetitorsHandler(deps CompetitorsDependencies) *CompetitorsHandler {
	return &CompetitorsHandler{deps: deps}
}

type competitorsResponse struct {
	Competitors []types.CompetitorEntry `json:"competitors"`
}

// HandleList handles GET /api/competitors.
func (h *CompetitorsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Competitors(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, competitorsResponse{Competitors: list})
}

// HandleGet handles GET /api/competitors/{competitor}. Unknown names get a
// 404 carrying the closest roster name when there is one.
func (h *CompetitorsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["competitor"]
	entry, err := h.deps.Competitor(r.Context(), name)
	if err != nil {
		writeServiceError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
