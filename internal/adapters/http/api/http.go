// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	service "github.com/okian/gridcast/internal/app"
	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/internal/domain/types"
	"github.com/okian/gridcast/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Ranking(ctx context.Context, overrides model.Assignment) ([]model.RankedRow, error)
	Competitor(ctx context.Context, name string) (types.CompetitorEntry, error)
	Competitors(ctx context.Context) ([]types.CompetitorEntry, error)
	Teams(ctx context.Context) ([]types.TeamEntry, error)
	DefaultAssignment(ctx context.Context) (model.Assignment, error)
}

// Default limits for POST /api/ranking.
const (
	defaultRateLimit = 50
	defaultRateBurst = 100
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRateLimit bounds POST /api/ranking to rps requests per second with
// the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	competitorsHandler *CompetitorsHandler
	teamsHandler       *TeamsHandler
	rankingHandler     *RankingHandler

	limiter *rate.Limiter
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(statsProvider),
		statsHandler:       NewStatsHandler(statsProvider),
		competitorsHandler: NewCompetitorsHandler(deps),
		teamsHandler:       NewTeamsHandler(deps),
		rankingHandler:     NewRankingHandler(deps),
		limiter:            rate.NewLimiter(defaultRateLimit, defaultRateBurst),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Use(RequestIDMiddleware)

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.Handle("/metrics", s.healthHandler.MetricsHandler()).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/competitors", MetricsMiddleware(s.competitorsHandler.HandleList, "competitors")).Methods(http.MethodGet)
	api.HandleFunc("/competitors/{competitor}", MetricsMiddleware(s.competitorsHandler.HandleGet, "competitor")).Methods(http.MethodGet)
	api.HandleFunc("/teams", MetricsMiddleware(s.teamsHandler.HandleList, "teams")).Methods(http.MethodGet)
	api.HandleFunc("/ranking", MetricsMiddleware(s.rankingHandler.HandleGet, "ranking")).Methods(http.MethodGet)
	api.HandleFunc("/ranking", MetricsMiddleware(RateLimit(s.limiter, "ranking", s.rankingHandler.HandlePost), "ranking")).Methods(http.MethodPost)
}

type errorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// writeJSON encodes v before writing the status, so an unencodable value
// (e.g. a NaN score) becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		metrics.RecordErrorByComponent("http", "encode_response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal", Message: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var le *service.LookupError
	if errors.As(err, &le) {
		resp.Suggestion = le.Suggestion
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error, unknownStatus int) {
	switch {
	case errors.Is(err, service.ErrUnknownCompetitor):
		writeError(w, unknownStatus, "unknown_competitor", err)
	case errors.Is(err, service.ErrUnknownTeam):
		writeError(w, unknownStatus, "unknown_team", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
