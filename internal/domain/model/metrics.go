package model

// Coverage records which metric inputs were backed by real data.
type Coverage struct {
	Seasons          int  // number of seasons with at least one record
	HasHistory       bool // any record at all
	HasCurrentSeason bool
	HasQualifying    bool
}

// CompetitorMetrics holds the derived per-competitor scores. Every field is
// already resolved to its documented default when no data was available;
// Coverage tells which ones were defaulted.
type CompetitorMetrics struct {
	Competitor      string   `json:"competitor"`
	AvgScore        float64  `json:"avg_score"`
	Trend           float64  `json:"trend"`
	Bonus           float64  `json:"bonus"`
	QualifyingScore float64  `json:"qualif_score"`
	Coverage        Coverage `json:"-"`
}

// TeamStrength maps a team to its mean performance score in the reference
// season. Teams absent from that season have no entry.
type TeamStrength map[string]float64

// Lookup returns the strength of team, if defined.
func (t TeamStrength) Lookup(team string) Opt[float64] {
	if v, ok := t[team]; ok {
		return Some(v)
	}
	return None[float64]()
}

// Assignment maps competitors to teams for one ranking request.
type Assignment map[string]string

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// RankedRow is one line of the predicted ranking.
type RankedRow struct {
	Rank            int     `json:"rank"`
	Competitor      string  `json:"competitor"`
	Team            string  `json:"team"`
	AvgScore        float64 `json:"avg_score"`
	Trend           float64 `json:"trend"`
	Bonus           float64 `json:"bonus"`
	QualifyingScore float64 `json:"qualif_score"`
	TeamScore       float64 `json:"team_score"`
	Final           float64 `json:"final_score"`
}
