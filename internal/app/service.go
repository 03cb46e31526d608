// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the MCP tools.
package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/internal/domain/ranking"
	"github.com/okian/gridcast/internal/domain/roster"
	"github.com/okian/gridcast/internal/domain/scoring"
	"github.com/okian/gridcast/internal/domain/types"
	"github.com/okian/gridcast/pkg/logger"
	"github.com/okian/gridcast/pkg/metrics"
)

// Service loads one score bundle at start and answers ranking queries
// against it. Requests never mutate shared state.
type Service struct {
	mu sync.RWMutex

	// Configuration
	source      Source
	weights     ranking.Weights
	scoringOpts []scoring.Option

	// Loaded state
	bundle    *scoring.Bundle
	engine    *ranking.Engine
	roster    *roster.Roster
	teams     *roster.Roster
	loadedAt  time.Time
	buildTook time.Duration

	// State
	started bool

	// Logging and tracing
	logger logger.Logger
	tracer trace.Tracer
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSource sets where the score bundle is loaded from.
func WithSource(src Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithWeights sets the composite weights. They are validated on Start.
func WithWeights(w ranking.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithScoringOptions passes builder options (season, roster, qualifying policy).
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.scoringOpts = append(s.scoringOpts, opts...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weights: ranking.DefaultWeights,
		tracer:  otel.Tracer("gridcast-service"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the bundle from the configured source. Calling Start on a
// started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.source == nil {
		return ErrNoSource
	}
	if err := s.weights.Validate(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting ranking service...", logger.String("source", s.source.Name()))

	start := time.Now()
	bundle, err := s.source.Load(ctx, scoring.NewBuilder(s.scoringOpts...))
	if err != nil {
		metrics.RecordErrorByComponent("service", "load_bundle")
		return fmt.Errorf("load bundle from %s: %w", s.source.Name(), err)
	}
	took := time.Since(start)

	competitors, err := roster.New(bundle.Roster)
	if err != nil {
		return err
	}
	// An empty team list is allowed; suggestions are then unavailable.
	teams, _ := roster.New(bundle.Teams)

	s.bundle = bundle
	s.engine = ranking.NewEngine(ranking.WithWeights(s.weights))
	s.roster = competitors
	s.teams = teams
	s.loadedAt = time.Now()
	s.buildTook = took
	s.started = true

	st := bundle.Stats
	metrics.RecordBuild(float64(took.Microseconds())/1000, st.RecordsDiscarded, st.MissingPositions, st.QualifyingEntries, st.QualifyingNoTime)
	metrics.UpdateDatasetShape(len(bundle.Roster), len(bundle.Teams), len(bundle.TeamStrength))

	s.logger.Info(ctx, "ranking service started",
		logger.Int("season", bundle.CurrentSeason),
		logger.Int("competitors", len(bundle.Roster)),
		logger.Int("teams", len(bundle.Teams)),
		logger.Int("records", st.RecordsKept),
		logger.Int("discarded", st.RecordsDiscarded),
		logger.Duration("took", took),
	)
	if len(bundle.Teams) == 0 {
		s.logger.Warn(ctx, "no current-season teams found; default assignment is empty",
			logger.Int("season", bundle.CurrentSeason),
		)
	}
	return nil
}

// Stop releases the source. The loaded bundle is dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping ranking service...")

	if closer, ok := s.source.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing source failed", logger.Error(err))
		}
	}

	s.bundle = nil
	s.engine = nil
	s.roster = nil
	s.teams = nil
	s.started = false
	s.logger.Info(context.Background(), "ranking service stopped")
}

// snapshot is the loaded state one request works against.
type snapshot struct {
	bundle *scoring.Bundle
	engine *ranking.Engine
	roster *roster.Roster
	teams  *roster.Roster
}

// state copies the loaded state under the read lock, so a concurrent
// Stop or Start cannot swap pieces of it mid-request.
func (s *Service) state() (snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return snapshot{}, ErrNotStarted
	}
	return snapshot{bundle: s.bundle, engine: s.engine, roster: s.roster, teams: s.teams}, nil
}

// Ranking ranks every competitor under the default assignment with overrides
// applied on top. Override keys and values are normalized; an unknown
// competitor or a team outside the current season fails the whole request.
func (s *Service) Ranking(ctx context.Context, overrides model.Assignment) ([]model.RankedRow, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Ranking",
		trace.WithAttributes(attribute.Int("ranking.overrides", len(overrides))),
	)
	defer span.End()
	start := time.Now()

	st, err := s.state()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	assignment, err := resolve(st, overrides)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug(ctx, "ranking rejected", logger.Error(err))
		return nil, err
	}

	rows := st.engine.Rank(st.bundle.Roster, st.bundle.Metrics, st.bundle.TeamStrength, assignment)

	metrics.RecordRanking(float64(time.Since(start).Microseconds())/1000, len(overrides))
	if len(rows) > 0 {
		span.SetAttributes(
			attribute.String("ranking.leader", rows[0].Competitor),
			attribute.Float64("ranking.leader_score", rows[0].Final),
		)
	}
	return rows, nil
}

// resolve merges overrides over a copy of the default assignment.
func resolve(st snapshot, overrides model.Assignment) (model.Assignment, error) {
	assignment := st.bundle.DefaultAssignment.Clone()
	if len(overrides) == 0 {
		return assignment, nil
	}

	// Deterministic error reporting when several entries are invalid.
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, raw := range names {
		name := roster.Normalize(raw)
		if !st.roster.Contains(name) {
			metrics.RecordAssignmentRejected("unknown_competitor")
			return nil, lookupError(ErrUnknownCompetitor, raw, st.roster)
		}
		team := roster.Normalize(overrides[raw])
		if st.teams == nil || !st.teams.Contains(team) {
			metrics.RecordAssignmentRejected("unknown_team")
			return nil, lookupError(ErrUnknownTeam, overrides[raw], st.teams)
		}
		assignment[name] = team
	}
	return assignment, nil
}

func lookupError(kind error, name string, known *roster.Roster) error {
	e := &LookupError{Kind: kind, Name: name}
	if known != nil {
		if suggestion, ok := known.Suggest(name); ok {
			e.Suggestion = suggestion
		}
	}
	return e
}

// Leaderboard is Ranking reduced to rank, competitor, team and composite.
func (s *Service) Leaderboard(ctx context.Context, overrides model.Assignment) ([]types.Entry, error) {
	rows, err := s.Ranking(ctx, overrides)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(rows))
	for i, r := range rows {
		out[i] = types.Entry{Rank: r.Rank, Competitor: r.Competitor, Team: r.Team, Score: r.Final}
	}
	return out, nil
}

// Competitor returns one roster member's metrics and default team.
func (s *Service) Competitor(_ context.Context, name string) (types.CompetitorEntry, error) {
	st, err := s.state()
	if err != nil {
		return types.CompetitorEntry{}, err
	}
	n := roster.Normalize(name)
	if !st.roster.Contains(n) {
		return types.CompetitorEntry{}, lookupError(ErrUnknownCompetitor, name, st.roster)
	}
	return competitorEntry(st.bundle, n), nil
}

// Competitors lists every roster member in roster order.
func (s *Service) Competitors(_ context.Context) ([]types.CompetitorEntry, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	bundle := st.bundle
	out := make([]types.CompetitorEntry, 0, len(bundle.Roster))
	for _, name := range bundle.Roster {
		out = append(out, competitorEntry(bundle, name))
	}
	return out, nil
}

func competitorEntry(bundle *scoring.Bundle, name string) types.CompetitorEntry {
	m := bundle.Metrics[name]
	return types.CompetitorEntry{
		Competitor:      name,
		DefaultTeam:     bundle.DefaultAssignment[name],
		AvgScore:        m.AvgScore,
		Trend:           m.Trend,
		Bonus:           m.Bonus,
		QualifyingScore: m.QualifyingScore,
		Seasons:         m.Coverage.Seasons,
		HasQualifying:   m.Coverage.HasQualifying,
	}
}

// Teams lists the current-season teams with their reference-season strength.
func (s *Service) Teams(_ context.Context) ([]types.TeamEntry, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	bundle := st.bundle
	out := make([]types.TeamEntry, 0, len(bundle.Teams))
	for _, team := range bundle.Teams {
		v, ok := bundle.TeamStrength.Lookup(team).Get()
		out = append(out, types.TeamEntry{Team: team, Strength: v, HasStrength: ok})
	}
	return out, nil
}

// DefaultAssignment returns a copy of every competitor's real current team.
func (s *Service) DefaultAssignment(_ context.Context) (model.Assignment, error) {
	st, err := s.state()
	if err != nil {
		return nil, err
	}
	bundle := st.bundle
	return bundle.DefaultAssignment.Clone(), nil
}

// Weights returns the composite weights in use.
func (s *Service) Weights() ranking.Weights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"weights": s.weights,
	}
	if s.source != nil {
		stats["source"] = s.source.Name()
	}

	if s.started {
		stats["currentSeason"] = s.bundle.CurrentSeason
		stats["referenceSeason"] = s.bundle.ReferenceSeason
		stats["competitors"] = len(s.bundle.Roster)
		stats["teams"] = len(s.bundle.Teams)
		stats["teamsWithStrength"] = len(s.bundle.TeamStrength)
		stats["build"] = s.bundle.Stats
		stats["loadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
		stats["buildMs"] = float64(s.buildTook.Microseconds()) / 1000
	}

	return stats
}
