package api

import (
	"context"
	"net/http"

	"github.com/okian/gridcast/internal/domain/types"
)

// TeamsDependencies defines the reads used by the teams route.
type TeamsDependencies interface {
	Teams(ctx context.Context) ([]types.TeamEntry, error)
}

// TeamsHandler handles team requests.
type TeamsHandler struct {
	deps TeamsDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

type teamsResponse struct {
	Teams []types.TeamEntry `json:"teams"`
}

// HandleList handles GET /api/teams.
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	teams, err := h.deps.Teams(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, teamsResponse{Teams: teams})
}
