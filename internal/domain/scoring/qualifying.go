package scoring

import (
	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/internal/domain/roster"
)

// weightedMean accumulates sum(w*x)/sum(w).
type weightedMean struct {
	sum    float64
	weight float64
}

func (w *weightedMean) add(v, weight float64) {
	w.sum += v * weight
	w.weight += weight
}

func (w *weightedMean) value() model.Opt[float64] {
	if w == nil || w.weight <= 0 {
		return model.None[float64]()
	}
	return model.Some(w.sum / w.weight)
}

// qualifyingScores derives each roster competitor's average qualifying time
// and min-max normalizes it so the fastest scores 1 and the slowest 0.
// Competitors without any usable entry are absent from the result.
func (b *Builder) qualifyingScores(entries []model.QualifyingTime, stats *BuildStats) map[string]float64 {
	stats.QualifyingEntries = len(entries)

	times := make(map[string]*weightedMean)
	for _, q := range entries {
		name := roster.Normalize(q.Competitor)
		if !b.roster.Contains(name) {
			continue
		}
		stats.QualifyingKept++
		best, ok := q.Best().Get()
		if !ok {
			stats.QualifyingNoTime++
			continue
		}
		w := b.policy.weight(q.Event)
		if w <= 0 {
			continue
		}
		acc := times[name]
		if acc == nil {
			acc = &weightedMean{}
			times[name] = acc
		}
		acc.add(best, w)
	}

	avg := make(map[string]float64, len(times))
	for _, name := range b.roster.Names() {
		if v, ok := times[name].value().Get(); ok {
			avg[name] = v
		}
	}
	return NormalizeQualifying(b.roster.Names(), avg, b.policy.NeutralScore)
}

// NormalizeQualifying inverts and min-max scales times: score = 1 - (t-min)/(max-min).
// When every time is identical the scale is undefined and each competitor
// receives neutral instead. order fixes the iteration order of the scan.
func NormalizeQualifying(order []string, times map[string]float64, neutral float64) map[string]float64 {
	out := make(map[string]float64, len(times))
	first := true
	var lo, hi float64
	for _, name := range order {
		t, ok := times[name]
		if !ok {
			continue
		}
		if first {
			lo, hi, first = t, t, false
			continue
		}
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
	}
	if first {
		return out
	}
	span := hi - lo
	for _, name := range order {
		t, ok := times[name]
		if !ok {
			continue
		}
		if span == 0 {
			out[name] = neutral
			continue
		}
		out[name] = 1 - (t-lo)/span
	}
	return out
}
