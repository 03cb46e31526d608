package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/gridcast/internal/domain/model"
)

// ParseLapTime converts "m:ss.fff" (or bare "ss.fff") into seconds.
// Empty, malformed, negative or non-finite inputs yield None.
func ParseLapTime(s string) model.Opt[float64] {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.None[float64]()
	}

	minutes := 0.0
	if i := strings.IndexByte(s, ':'); i >= 0 {
		m, err := strconv.ParseUint(s[:i], 10, 32)
		if err != nil {
			return model.None[float64]()
		}
		minutes = float64(m)
		s = s[i+1:]
	}

	sec, err := strconv.ParseFloat(s, 64)
	if err != nil || sec < 0 || math.IsInf(sec, 0) || math.IsNaN(sec) {
		return model.None[float64]()
	}
	return model.Some(minutes*60 + sec)
}

// parsePosition reads a finishing position. Non-numeric codes (DNF, NC, DQ),
// fractional and non-positive values are treated as not classified.
func parsePosition(s string) model.Opt[int] {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return model.None[int]()
	}
	return model.Some(int(f))
}
