package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver

	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/pkg/metrics"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scored_records (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    competitor TEXT NOT NULL,
    team       TEXT NOT NULL,
    position   INTEGER,
    season     INTEGER NOT NULL,
    event      TEXT NOT NULL,
    score      REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS qualifying_scores (
    competitor   TEXT PRIMARY KEY,
    qualif_score REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS build_info (
    id  INTEGER PRIMARY KEY CHECK (id = 1),
    doc TEXT NOT NULL
);
`

// SQLiteStore keeps both tables in one sqlite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database inside dir and ensures the
// schema exists.
func NewSQLiteStore(dir string, opts ...Option) (*SQLiteStore, error) {
	cfg := newSettings(opts)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	path := filepath.Join(dir, cfg.dbFile)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// SaveScored replaces the scored_records table in one transaction.
func (s *SQLiteStore) SaveScored(ctx context.Context, records []model.ScoredRecord) error {
	start := time.Now()
	err := s.replace(ctx, TableScored,
		`INSERT INTO scored_records (competitor, team, position, season, event, score) VALUES (?, ?, ?, ?, ?, ?)`,
		func(stmt *sql.Stmt) error {
			for _, r := range records {
				var pos sql.NullInt64
				if p, ok := r.Position.Get(); ok {
					pos = sql.NullInt64{Int64: int64(p), Valid: true}
				}
				if _, err := stmt.ExecContext(ctx, r.Competitor, r.Team, pos, r.Season, string(r.Event), r.Score); err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		return err
	}
	metrics.RecordCacheWrite(BackendSQLite, TableScored, len(records), sinceMs(start))
	return nil
}

// LoadScored returns scored_records in insertion order.
func (s *SQLiteStore) LoadScored(ctx context.Context) ([]model.ScoredRecord, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		`SELECT competitor, team, position, season, event, score FROM scored_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableScored, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ScoredRecord
	for rows.Next() {
		var (
			rec   model.ScoredRecord
			pos   sql.NullInt64
			event string
		)
		if err := rows.Scan(&rec.Competitor, &rec.Team, &pos, &rec.Season, &event, &rec.Score); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRow, err)
		}
		if !finite(rec.Score) {
			return nil, fmt.Errorf("%w: %s score %v", ErrCorruptRow, TableScored, rec.Score)
		}
		if pos.Valid {
			rec.Position = model.Some(int(pos.Int64))
		}
		if rec.Event, err = model.ParseEventType(event); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRow, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", TableScored, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, TableScored)
	}
	metrics.RecordCacheRead(BackendSQLite, TableScored, len(out), sinceMs(start))
	return out, nil
}

// SaveQualifying replaces the qualifying_scores table.
func (s *SQLiteStore) SaveQualifying(ctx context.Context, scores map[string]float64) error {
	start := time.Now()
	err := s.replace(ctx, TableQualifying,
		`INSERT INTO qualifying_scores (competitor, qualif_score) VALUES (?, ?)`,
		func(stmt *sql.Stmt) error {
			for name, v := range scores {
				if _, err := stmt.ExecContext(ctx, name, v); err != nil {
					return err
				}
			}
			return nil
		})
	if err != nil {
		return err
	}
	metrics.RecordCacheWrite(BackendSQLite, TableQualifying, len(scores), sinceMs(start))
	return nil
}

// LoadQualifying returns the qualifying_scores table. An empty table is
// valid: nobody had a usable qualifying time.
func (s *SQLiteStore) LoadQualifying(ctx context.Context) (map[string]float64, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT competitor, qualif_score FROM qualifying_scores`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TableQualifying, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			name string
			v    float64
		)
		if err := rows.Scan(&name, &v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRow, err)
		}
		if !finite(v) {
			return nil, fmt.Errorf("%w: %s %s qualif_score %v", ErrCorruptRow, TableQualifying, name, v)
		}
		out[name] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", TableQualifying, err)
	}
	metrics.RecordCacheRead(BackendSQLite, TableQualifying, len(out), sinceMs(start))
	return out, nil
}

// SaveInfo stores the build settings as a single JSON row.
func (s *SQLiteStore) SaveInfo(ctx context.Context, info model.BuildInfo) error {
	data, err := encodeInfo(info)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO build_info (id, doc) VALUES (1, ?)`, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", TableBuildInfo, err)
	}
	return nil
}

// LoadInfo returns the stored build settings.
func (s *SQLiteStore) LoadInfo(ctx context.Context) (model.BuildInfo, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM build_info WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BuildInfo{}, fmt.Errorf("%w: %s is empty", ErrNotFound, TableBuildInfo)
	}
	if err != nil {
		return model.BuildInfo{}, fmt.Errorf("query %s: %w", TableBuildInfo, err)
	}
	return decodeInfo([]byte(doc))
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) replace(ctx context.Context, table, insert string, fill func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	if err := fill(stmt); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	return nil
}
