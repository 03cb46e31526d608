package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/pkg/metrics"
)

var (
	scoredHeader     = []string{"competitor", "team", "position", "season", "event", "score"}
	qualifyingHeader = []string{"competitor", "qualif_score"}
)

// CSVStore keeps each table in its own CSV file under dir.
type CSVStore struct {
	dir string
}

// NewCSVStore creates dir if needed and returns a store over it.
func NewCSVStore(dir string, _ ...Option) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// SaveScored writes scored_records.csv, replacing any previous file.
func (s *CSVStore) SaveScored(_ context.Context, records []model.ScoredRecord) error {
	start := time.Now()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		pos := ""
		if p, ok := r.Position.Get(); ok {
			pos = strconv.Itoa(p)
		}
		rows = append(rows, []string{
			r.Competitor,
			r.Team,
			pos,
			strconv.Itoa(r.Season),
			string(r.Event),
			formatFloat(r.Score),
		})
	}
	if err := s.write(TableScored, scoredHeader, rows); err != nil {
		return err
	}
	metrics.RecordCacheWrite(BackendCSV, TableScored, len(rows), sinceMs(start))
	return nil
}

// LoadScored reads scored_records.csv in file order.
func (s *CSVStore) LoadScored(_ context.Context) ([]model.ScoredRecord, error) {
	start := time.Now()
	rows, err := s.read(TableScored, scoredHeader)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, TableScored)
	}
	out := make([]model.ScoredRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := parseScoredRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", TableScored, i+2, err)
		}
		out = append(out, rec)
	}
	metrics.RecordCacheRead(BackendCSV, TableScored, len(out), sinceMs(start))
	return out, nil
}

// SaveQualifying writes qualifying_scores.csv sorted by competitor.
func (s *CSVStore) SaveQualifying(_ context.Context, scores map[string]float64) error {
	start := time.Now()
	names := make([]string, 0, len(scores))
	for n := range scores {
		names = append(names, n)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n, formatFloat(scores[n])})
	}
	if err := s.write(TableQualifying, qualifyingHeader, rows); err != nil {
		return err
	}
	metrics.RecordCacheWrite(BackendCSV, TableQualifying, len(rows), sinceMs(start))
	return nil
}

// LoadQualifying reads qualifying_scores.csv.
func (s *CSVStore) LoadQualifying(_ context.Context) (map[string]float64, error) {
	start := time.Now()
	rows, err := s.read(TableQualifying, qualifyingHeader)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(rows))
	for i, row := range rows {
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil || !finite(v) {
			return nil, fmt.Errorf("%s line %d: %w: qualif_score %q", TableQualifying, i+2, ErrCorruptRow, row[1])
		}
		out[row[0]] = v
	}
	metrics.RecordCacheRead(BackendCSV, TableQualifying, len(out), sinceMs(start))
	return out, nil
}

// SaveInfo writes build_info.json.
func (s *CSVStore) SaveInfo(_ context.Context, info model.BuildInfo) error {
	data, err := encodeInfo(info)
	if err != nil {
		return err
	}
	return s.replaceFile(TableBuildInfo, s.infoPath(), data)
}

// LoadInfo reads build_info.json.
func (s *CSVStore) LoadInfo(_ context.Context) (model.BuildInfo, error) {
	data, err := os.ReadFile(s.infoPath())
	if errors.Is(err, fs.ErrNotExist) {
		return model.BuildInfo{}, fmt.Errorf("%w: %s", ErrNotFound, s.infoPath())
	}
	if err != nil {
		return model.BuildInfo{}, fmt.Errorf("read %s: %w", TableBuildInfo, err)
	}
	return decodeInfo(data)
}

func (s *CSVStore) infoPath() string {
	return filepath.Join(s.dir, TableBuildInfo+".json")
}

// Close is a no-op; files are closed after every call.
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) write(table string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	_ = w.WriteAll(rows)
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	return s.replaceFile(table, s.path(table), buf.Bytes())
}

// replaceFile writes data to a temp file and renames it over path.
func (s *CSVStore) replaceFile(table, path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, table+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	return nil
}

func (s *CSVStore) read(table string, header []string) ([][]string, error) {
	f, err := os.Open(s.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path(table))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	got, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: empty file", ErrCorruptRow, table)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptRow, table, err)
	}
	for i := range header {
		if got[i] != header[i] {
			return nil, fmt.Errorf("%w: %s: unexpected header %v", ErrCorruptRow, table, got)
		}
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptRow, table, err)
	}
	return rows, nil
}

func parseScoredRow(row []string) (model.ScoredRecord, error) {
	var rec model.ScoredRecord
	rec.Competitor = row[0]
	rec.Team = row[1]
	if row[2] != "" {
		p, err := strconv.Atoi(row[2])
		if err != nil {
			return rec, fmt.Errorf("%w: position %q", ErrCorruptRow, row[2])
		}
		rec.Position = model.Some(p)
	}
	season, err := strconv.Atoi(row[3])
	if err != nil {
		return rec, fmt.Errorf("%w: season %q", ErrCorruptRow, row[3])
	}
	rec.Season = season
	event, err := model.ParseEventType(row[4])
	if err != nil {
		return rec, fmt.Errorf("%w: %w", ErrCorruptRow, err)
	}
	rec.Event = event
	score, err := strconv.ParseFloat(row[5], 64)
	if err != nil || !finite(score) {
		return rec, fmt.Errorf("%w: score %q", ErrCorruptRow, row[5])
	}
	rec.Score = score
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
