package model

import "slices"

// BuildInfo records the settings baked into derived score tables. It is
// stored next to them so a reader can refuse tables built under other
// settings. The missing-qualifying default is applied on load and is not
// part of it.
type BuildInfo struct {
	CurrentSeason int      `json:"current_season"`
	Roster        []string `json:"roster"`
	RegularWeight float64  `json:"regular_weight"`
	SprintWeight  float64  `json:"sprint_weight"`
	NeutralScore  float64  `json:"neutral_score"`
}

// Diff names the fields that differ between i and other, in declaration order.
func (i BuildInfo) Diff(other BuildInfo) []string {
	var out []string
	if i.CurrentSeason != other.CurrentSeason {
		out = append(out, "current_season")
	}
	if !slices.Equal(i.Roster, other.Roster) {
		out = append(out, "roster")
	}
	if i.RegularWeight != other.RegularWeight {
		out = append(out, "regular_weight")
	}
	if i.SprintWeight != other.SprintWeight {
		out = append(out, "sprint_weight")
	}
	if i.NeutralScore != other.NeutralScore {
		out = append(out, "neutral_score")
	}
	return out
}
