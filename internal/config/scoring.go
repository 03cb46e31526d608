package config

import (
	"time"

	"github.com/okian/gridcast/internal/domain/ranking"
	"github.com/okian/gridcast/internal/domain/roster"
	"github.com/okian/gridcast/internal/domain/scoring"
)

// RankingWeights converts the weights section into the ranking table.
func (c *Config) RankingWeights() ranking.Weights {
	return ranking.Weights{
		AvgScore:        c.Weights.AvgScore,
		Trend:           c.Weights.Trend,
		Bonus:           c.Weights.Bonus,
		QualifyingScore: c.Weights.QualifyingScore,
		TeamScore:       c.Weights.TeamScore,
	}
}

// QualifyingPolicy converts the qualifying section into a scoring policy.
func (c *Config) QualifyingPolicy() scoring.QualifyingPolicy {
	return scoring.QualifyingPolicy{
		RegularWeight: c.Qualifying.RegularWeight,
		SprintWeight:  c.Qualifying.SprintWeight,
		NeutralScore:  c.Qualifying.NeutralScore,
		MissingScore:  c.Qualifying.MissingScore,
	}
}

// ScoringOptions returns the builder options for season, qualifying policy
// and roster. The server and the cache builder both derive their builders
// from it, so a cache and the server reading it agree on settings.
func (c *Config) ScoringOptions() ([]scoring.Option, error) {
	opts := []scoring.Option{
		scoring.WithCurrentSeason(c.CurrentSeason),
		scoring.WithQualifyingPolicy(c.QualifyingPolicy()),
	}
	if len(c.Roster) > 0 {
		r, err := roster.New(c.Roster)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scoring.WithRoster(r))
	}
	return opts, nil
}

// MetricsRefresh returns the gauge refresh interval.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSeconds) * time.Second
}
