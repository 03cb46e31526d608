package service

import (
	"context"
	"fmt"

	"github.com/okian/gridcast/internal/adapters/ingest"
	"github.com/okian/gridcast/internal/adapters/repository"
	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/internal/domain/scoring"
)

// Source produces the score bundle the service ranks from.
type Source interface {
	Name() string
	Load(ctx context.Context, b *scoring.Builder) (*scoring.Bundle, error)
}

// RawSource reads the manifest's CSV files and builds scores from scratch.
type RawSource struct {
	manifest string
	loader   *ingest.Loader
}

// NewRawSource creates a source over the manifest at path.
func NewRawSource(path string, opts ...ingest.Option) *RawSource {
	return &RawSource{manifest: path, loader: ingest.NewLoader(opts...)}
}

// Name identifies the source in logs and stats.
func (s *RawSource) Name() string { return "raw" }

// Load ingests the manifest and runs the full build.
func (s *RawSource) Load(ctx context.Context, b *scoring.Builder) (*scoring.Bundle, error) {
	ds, err := s.loader.LoadManifest(ctx, s.manifest)
	if err != nil {
		return nil, fmt.Errorf("load raw data: %w", err)
	}
	return b.Build(ds.Results, ds.Qualifying)
}

// CacheSource reads previously derived tables from a Store.
type CacheSource struct {
	store repository.Store
}

// NewCacheSource creates a source over store. The service closes it on Stop.
func NewCacheSource(store repository.Store) *CacheSource {
	return &CacheSource{store: store}
}

// Name identifies the source in logs and stats.
func (s *CacheSource) Name() string { return "cache" }

// Load checks the cache was built under b's settings, then reads both
// tables and assembles the bundle.
func (s *CacheSource) Load(ctx context.Context, b *scoring.Builder) (*scoring.Bundle, error) {
	info, err := s.store.LoadInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	if err := b.CheckInfo(info); err != nil {
		return nil, fmt.Errorf("load cache: %w; rebuild it with the current configuration", err)
	}
	scored, err := s.store.LoadScored(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	quali, err := s.store.LoadQualifying(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}
	return b.Assemble(scored, quali)
}

// Close releases the underlying store.
func (s *CacheSource) Close() error {
	return s.store.Close()
}

// MemorySource builds from records already held in memory.
type MemorySource struct {
	Records    []model.ResultRecord
	Qualifying []model.QualifyingTime
}

// Name identifies the source in logs and stats.
func (s *MemorySource) Name() string { return "memory" }

// Load runs the full build over the held records.
func (s *MemorySource) Load(_ context.Context, b *scoring.Builder) (*scoring.Bundle, error) {
	return b.Build(s.Records, s.Qualifying)
}
