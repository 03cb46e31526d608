package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/gridcast/internal/domain/model"
)

// Column names looked up case-insensitively in result and qualifying files.
const (
	ColumnDriver   = "Driver"
	ColumnTeam     = "Team"
	ColumnPosition = "Position"
	ColumnTrack    = "Track"
)

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, err
	}
	h := make(header, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h, nil
}

func (h header) require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j, ok := h[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, n)
		}
		idx[i] = j
	}
	return idx, nil
}

func (h header) optional(name string) int {
	if j, ok := h[strings.ToLower(name)]; ok {
		return j
	}
	return -1
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ReadResults parses a results CSV. Season and event come from the caller.
// Competitor and team names are kept raw; the score builder normalizes them.
func ReadResults(r io.Reader, season int, event model.EventType) ([]model.ResultRecord, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	cols, err := h.require(ColumnDriver, ColumnTeam, ColumnPosition)
	if err != nil {
		return nil, err
	}
	driver, team, pos := cols[0], cols[1], cols[2]

	var out []model.ResultRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(field(row, driver))
		if name == "" {
			continue
		}
		out = append(out, model.ResultRecord{
			Competitor: name,
			Team:       field(row, team),
			Position:   parsePosition(field(row, pos)),
			Season:     season,
			Event:      event,
		})
	}
	return out, nil
}

// ReadQualifying parses a qualifying CSV. Every segment column must exist;
// the Track column, when present, labels each entry's round.
func ReadQualifying(r io.Reader, event model.EventType, segments []string) ([]model.QualifyingTime, error) {
	if len(segments) == 0 {
		segments = DefaultSegments
	}
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	cols, err := h.require(append([]string{ColumnDriver}, segments...)...)
	if err != nil {
		return nil, err
	}
	driver, segCols := cols[0], cols[1:]
	track := h.optional(ColumnTrack)

	var out []model.QualifyingTime
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(field(row, driver))
		if name == "" {
			continue
		}
		times := make([]model.Opt[float64], len(segCols))
		for i, c := range segCols {
			times[i] = ParseLapTime(field(row, c))
		}
		out = append(out, model.QualifyingTime{
			Competitor: name,
			Event:      event,
			Round:      strings.TrimSpace(field(row, track)),
			Segments:   times,
		})
	}
	return out, nil
}
