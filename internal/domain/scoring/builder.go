package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/internal/domain/roster"
)

// defaultCurrentSeason is the season ranked when none is configured.
const defaultCurrentSeason = 2025

// BuildStats counts how the inputs were consumed.
type BuildStats struct {
	Records           int `json:"records"`
	RecordsKept       int `json:"records_kept"`
	RecordsDiscarded  int `json:"records_discarded"`
	MissingPositions  int `json:"missing_positions"`
	QualifyingEntries int `json:"qualifying_entries"`
	QualifyingKept    int `json:"qualifying_kept"`
	QualifyingNoTime  int `json:"qualifying_no_time"`
}

// Bundle is the immutable output of the Builder. It is computed once per
// dataset and shared read-only across ranking requests.
type Bundle struct {
	CurrentSeason     int
	ReferenceSeason   int
	Roster            []string
	Metrics           map[string]model.CompetitorMetrics
	TeamStrength      model.TeamStrength
	DefaultAssignment model.Assignment
	Teams             []string
	Scored            []model.ScoredRecord
	QualifyingScores  map[string]float64
	Stats             BuildStats
}

// Builder computes Bundles from raw or previously scored inputs.
type Builder struct {
	currentSeason int
	roster        *roster.Roster
	policy        QualifyingPolicy
}

// NewBuilder creates a Builder for the default roster and season.
func NewBuilder(opts ...Option) *Builder {
	r, _ := roster.New(roster.DefaultNames)
	b := &Builder{
		currentSeason: defaultCurrentSeason,
		roster:        r,
		policy:        DefaultQualifyingPolicy(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) validate() error {
	if b.roster == nil || b.roster.Len() == 0 {
		return ErrEmptyRoster
	}
	if b.currentSeason <= 0 {
		return ErrInvalidSeason
	}
	return b.policy.Validate()
}

// Build normalizes, filters and scores raw records, derives qualifying scores
// and assembles the Bundle.
func (b *Builder) Build(records []model.ResultRecord, quali []model.QualifyingTime) (*Bundle, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	var stats BuildStats
	stats.Records = len(records)

	scored := make([]model.ScoredRecord, 0, len(records))
	for _, rec := range records {
		rec = normalizeRecord(rec)
		if !b.roster.Contains(rec.Competitor) {
			stats.RecordsDiscarded++
			continue
		}
		if !rec.Position.Valid() {
			stats.MissingPositions++
		}
		scored = append(scored, Score(rec))
	}
	stats.RecordsKept = len(scored)

	qscores := b.qualifyingScores(quali, &stats)

	bundle := b.assemble(scored, qscores)
	bundle.Stats = stats
	return bundle, nil
}

// Assemble rebuilds a Bundle from already-scored records and qualifying
// scores, e.g. when loading derived cache tables. Inputs are re-normalized and
// filtered against the roster; finite stored scores are trusted as-is.
// Callers check the tables' BuildInfo with CheckInfo first.
func (b *Builder) Assemble(scored []model.ScoredRecord, qualifying map[string]float64) (*Bundle, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	var stats BuildStats
	stats.Records = len(scored)

	kept := make([]model.ScoredRecord, 0, len(scored))
	for _, sr := range scored {
		if !isFinite(sr.Score) {
			return nil, fmt.Errorf("%w: %s season %d score %v", ErrNonFiniteScore, sr.Competitor, sr.Season, sr.Score)
		}
		sr.ResultRecord = normalizeRecord(sr.ResultRecord)
		if !b.roster.Contains(sr.Competitor) {
			stats.RecordsDiscarded++
			continue
		}
		if !sr.Position.Valid() {
			stats.MissingPositions++
		}
		kept = append(kept, sr)
	}
	stats.RecordsKept = len(kept)

	qscores := make(map[string]float64, len(qualifying))
	for name, v := range qualifying {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: %s qualifying score %v", ErrNonFiniteScore, name, v)
		}
		name = roster.Normalize(name)
		stats.QualifyingEntries++
		if b.roster.Contains(name) {
			qscores[name] = v
			stats.QualifyingKept++
		}
	}

	bundle := b.assemble(kept, qscores)
	bundle.Stats = stats
	return bundle, nil
}

// Info describes the settings this builder bakes into derived tables.
func (b *Builder) Info() model.BuildInfo {
	return model.BuildInfo{
		CurrentSeason: b.currentSeason,
		Roster:        b.roster.Names(),
		RegularWeight: b.policy.RegularWeight,
		SprintWeight:  b.policy.SprintWeight,
		NeutralScore:  b.policy.NeutralScore,
	}
}

// CheckInfo reports ErrSettingsMismatch when stored tables were built under
// settings other than this builder's.
func (b *Builder) CheckInfo(stored model.BuildInfo) error {
	if diff := b.Info().Diff(stored); len(diff) > 0 {
		return fmt.Errorf("%w: %s", ErrSettingsMismatch, strings.Join(diff, ", "))
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// competitorAgg gathers one competitor's means.
type competitorAgg struct {
	bySeason map[int]*mean
	current  mean
}

func (b *Builder) assemble(scored []model.ScoredRecord, qscores map[string]float64) *Bundle {
	reference := b.currentSeason - 1

	aggs := make(map[string]*competitorAgg)
	teamMeans := make(map[string]*mean)
	defaults := make(model.Assignment)
	currentTeams := make(map[string]struct{})

	// Single pass in input order: sums are deterministic and the last
	// current-season record decides a competitor's default team.
	for _, sr := range scored {
		agg := aggs[sr.Competitor]
		if agg == nil {
			agg = &competitorAgg{bySeason: make(map[int]*mean)}
			aggs[sr.Competitor] = agg
		}
		sm := agg.bySeason[sr.Season]
		if sm == nil {
			sm = &mean{}
			agg.bySeason[sr.Season] = sm
		}
		sm.add(sr.Score)

		if sr.Season == b.currentSeason {
			agg.current.add(sr.Score)
			if sr.Team != "" {
				defaults[sr.Competitor] = sr.Team
				currentTeams[sr.Team] = struct{}{}
			}
		}
		if sr.Season == reference && sr.Team != "" {
			tm := teamMeans[sr.Team]
			if tm == nil {
				tm = &mean{}
				teamMeans[sr.Team] = tm
			}
			tm.add(sr.Score)
		}
	}

	teams := make([]string, 0, len(currentTeams))
	for t := range currentTeams {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	strength := make(model.TeamStrength, len(teamMeans))
	for team, m := range teamMeans {
		if v, ok := m.value().Get(); ok {
			strength[team] = v
		}
	}

	names := b.roster.Names()
	metrics := make(map[string]model.CompetitorMetrics, len(names))
	for _, name := range names {
		metrics[name] = b.competitorMetrics(name, aggs[name], qscores)
		if _, ok := defaults[name]; !ok && len(teams) > 0 {
			defaults[name] = teams[0]
		}
	}

	return &Bundle{
		CurrentSeason:     b.currentSeason,
		ReferenceSeason:   reference,
		Roster:            names,
		Metrics:           metrics,
		TeamStrength:      strength,
		DefaultAssignment: defaults,
		Teams:             teams,
		Scored:            scored,
		QualifyingScores:  qscores,
	}
}

func (b *Builder) competitorMetrics(name string, agg *competitorAgg, qscores map[string]float64) model.CompetitorMetrics {
	m := model.CompetitorMetrics{Competitor: name}

	if q, ok := qscores[name]; ok {
		m.QualifyingScore = q
		m.Coverage.HasQualifying = true
	} else {
		m.QualifyingScore = b.policy.MissingScore
	}

	if agg == nil {
		return m
	}

	seasons := make([]int, 0, len(agg.bySeason))
	for s := range agg.bySeason {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)

	seasonMeans := make([]float64, 0, len(seasons))
	for _, s := range seasons {
		if v, ok := agg.bySeason[s].value().Get(); ok {
			seasonMeans = append(seasonMeans, v)
		}
	}
	m.Coverage.Seasons = len(seasonMeans)
	m.Coverage.HasHistory = len(seasonMeans) > 0

	m.AvgScore = meanOfMeans(seasonMeans).Or(0)
	m.Trend = Trend(seasonMeans)

	if v, ok := agg.current.value().Get(); ok {
		m.Bonus = v
		m.Coverage.HasCurrentSeason = true
	}
	return m
}

// meanOfMeans averages season means without weighting by record counts.
func meanOfMeans(vals []float64) model.Opt[float64] {
	var m mean
	for _, v := range vals {
		m.add(v)
	}
	return m.value()
}

// Trend is the average per-season change between the first and last season
// means. Fewer than two seasons yields zero.
func Trend(seasonMeans []float64) float64 {
	n := len(seasonMeans)
	if n < 2 {
		return 0
	}
	return (seasonMeans[n-1] - seasonMeans[0]) / float64(n-1)
}

func normalizeRecord(rec model.ResultRecord) model.ResultRecord {
	rec.Competitor = roster.Normalize(rec.Competitor)
	rec.Team = roster.Normalize(rec.Team)
	if p, ok := rec.Position.Get(); ok && p < 1 {
		rec.Position = model.None[int]()
	}
	return rec
}
