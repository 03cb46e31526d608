// Package types contains common response shapes used across the application.
package types

// Entry is a compact ranking line, used by the bar chart and the MCP tools.
type Entry struct {
	Rank       int     `json:"rank"`
	Competitor string  `json:"competitor"`
	Team       string  `json:"team"`
	Score      float64 `json:"score"`
}

// TeamEntry describes a selectable team and its reference-season strength.
type TeamEntry struct {
	Team        string  `json:"team"`
	Strength    float64 `json:"strength"`
	HasStrength bool    `json:"has_strength"`
}

// CompetitorEntry describes a roster member with its derived metrics.
type CompetitorEntry struct {
	Competitor      string  `json:"competitor"`
	DefaultTeam     string  `json:"default_team"`
	AvgScore        float64 `json:"avg_score"`
	Trend           float64 `json:"trend"`
	Bonus           float64 `json:"bonus"`
	QualifyingScore float64 `json:"qualif_score"`
	Seasons         int     `json:"seasons"`
	HasQualifying   bool    `json:"has_qualifying"`
}
