// Package scoring turns historical result records and qualifying times into
// per-competitor metrics and per-team strengths.
//
// The Builder is pure: the same inputs always yield the same Bundle. Missing
// values never raise errors; they are excluded from the mean they would feed
// and, where a metric has no data at all, resolved to its documented default.
package scoring

import "github.com/okian/gridcast/internal/domain/model"

// Performance score step table. Not configurable.
const (
	scoreMissing = -5.0
	scoreWin     = 10.0
	scorePodium  = 8.0 // 2-3
	scoreTop5    = 6.0 // 4-5
	scorePoints  = 4.0 // 6-10
	scoreMid     = 1.0 // 11-15
	scoreBack    = -5.0
)

// PerformanceScore maps a finishing position onto the step table. It applies
// identically to every season and event type.
func PerformanceScore(pos model.Opt[int]) float64 {
	p, ok := pos.Get()
	switch {
	case !ok:
		return scoreMissing
	case p == 1:
		return scoreWin
	case p <= 3:
		return scorePodium
	case p <= 5:
		return scoreTop5
	case p <= 10:
		return scorePoints
	case p <= 15:
		return scoreMid
	default:
		return scoreBack
	}
}

// Score attaches the performance score to a record.
func Score(rec model.ResultRecord) model.ScoredRecord {
	return model.ScoredRecord{ResultRecord: rec, Score: PerformanceScore(rec.Position)}
}

// mean accumulates a running arithmetic mean in insertion order.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *mean) value() model.Opt[float64] {
	if m == nil || m.n == 0 {
		return model.None[float64]()
	}
	return model.Some(m.sum / float64(m.n))
}
