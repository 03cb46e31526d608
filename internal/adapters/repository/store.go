// Package repository persists the derived score tables so the service can
// start without re-reading the raw inputs.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/okian/gridcast/internal/domain/model"
)

// Table names shared by every backend.
const (
	TableScored     = "scored_records"
	TableQualifying = "qualifying_scores"
	TableBuildInfo  = "build_info"
)

// Backend names accepted by NewStore.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Store reads and writes the two derived cache tables and the settings they
// were built under. Save replaces the previous contents. Missing positions
// round-trip as absent values; non-finite scores are refused on load.
type Store interface {
	SaveScored(ctx context.Context, records []model.ScoredRecord) error
	LoadScored(ctx context.Context) ([]model.ScoredRecord, error)

	SaveQualifying(ctx context.Context, scores map[string]float64) error
	LoadQualifying(ctx context.Context) (map[string]float64, error)

	SaveInfo(ctx context.Context, info model.BuildInfo) error
	LoadInfo(ctx context.Context) (model.BuildInfo, error)

	Close() error
}

// NewStore opens the backend rooted at dir, creating dir when needed.
func NewStore(backend, dir string, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendCSV:
		return NewCSVStore(dir, opts...)
	case BackendSQLite:
		return NewSQLiteStore(dir, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func encodeInfo(info model.BuildInfo) ([]byte, error) {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", TableBuildInfo, err)
	}
	return data, nil
}

func decodeInfo(data []byte) (model.BuildInfo, error) {
	var info model.BuildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return model.BuildInfo{}, fmt.Errorf("%w: %s: %w", ErrCorruptRow, TableBuildInfo, err)
	}
	return info, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
