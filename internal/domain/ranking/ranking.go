// Package ranking combines per-competitor metrics, team strengths and a team
// assignment into an ordered composite ranking.
//
// The Engine is stateless: it keeps only its weight table and computes every
// ranking from the arguments it is given. Inputs are expected to be fully
// defined; missing-value handling belongs to the scoring package.
package ranking

import (
	"sort"

	"github.com/okian/gridcast/internal/domain/model"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the composite weights. Callers validate first.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// Engine ranks competitors by weighted composite score.
type Engine struct {
	weights Weights
}

// NewEngine creates an Engine using DefaultWeights unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the weight table in use.
func (e *Engine) Weights() Weights { return e.weights }

// Rank scores each roster competitor and sorts descending by composite.
// Equal composites keep roster order. A team without a defined strength
// contributes a team score of 0.
func (e *Engine) Rank(roster []string, metrics map[string]model.CompetitorMetrics, teams model.TeamStrength, a model.Assignment) []model.RankedRow {
	rows := make([]model.RankedRow, 0, len(roster))
	for _, name := range roster {
		m := metrics[name]
		team := a[name]
		c := Components{
			AvgScore:        m.AvgScore,
			Trend:           m.Trend,
			Bonus:           m.Bonus,
			QualifyingScore: m.QualifyingScore,
			TeamScore:       teams.Lookup(team).Or(0),
		}
		rows = append(rows, model.RankedRow{
			Competitor:      name,
			Team:            team,
			AvgScore:        c.AvgScore,
			Trend:           c.Trend,
			Bonus:           c.Bonus,
			QualifyingScore: c.QualifyingScore,
			TeamScore:       c.TeamScore,
			Final:           Composite(e.weights, c),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Final > rows[j].Final
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
