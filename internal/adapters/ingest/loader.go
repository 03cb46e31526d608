// Package ingest reads the raw result and qualifying CSV files listed in a
// YAML manifest.
package ingest

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/pkg/logger"
	"github.com/okian/gridcast/pkg/metrics"
)

// Dataset is everything a manifest points at, in manifest order.
type Dataset struct {
	CurrentSeason int
	Results       []model.ResultRecord
	Qualifying    []model.QualifyingTime
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for per-file progress.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithConcurrency bounds how many files are read at once.
func WithConcurrency(n int) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.concurrency = n
		}
	}
}

// Loader reads manifests and their CSV files.
type Loader struct {
	log         logger.Logger
	concurrency int
	tracer      trace.Tracer
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	ld := &Loader{
		log:         logger.Named("ingest"),
		concurrency: runtime.NumCPU(),
		tracer:      otel.Tracer("gridcast-ingest"),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadManifest reads the manifest at path and every file it lists.
func (ld *Loader) LoadManifest(ctx context.Context, path string) (*Dataset, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return ld.Load(ctx, m)
}

// Load reads every file of m concurrently. The returned slices are
// concatenated in manifest order regardless of completion order.
func (ld *Loader) Load(ctx context.Context, m *Manifest) (*Dataset, error) {
	ctx, span := ld.tracer.Start(ctx, "Loader.Load",
		trace.WithAttributes(
			attribute.Int("manifest.results", len(m.Results)),
			attribute.Int("manifest.qualifying", len(m.Qualifying)),
		),
	)
	defer span.End()
	start := time.Now()

	results := make([][]model.ResultRecord, len(m.Results))
	quali := make([][]model.QualifyingTime, len(m.Qualifying))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ld.concurrency)

	for i, src := range m.Results {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			event, _ := model.ParseEventType(src.Event)
			recs, err := readFile(m.Resolve(src.Path), func(f *os.File) ([]model.ResultRecord, error) {
				return ReadResults(f, src.Season, event)
			})
			if err != nil {
				return err
			}
			results[i] = recs
			metrics.RecordRecordsIngested(string(event), len(recs))
			ld.log.Debug(gctx, "results file loaded",
				logger.String("path", src.Path),
				logger.Int("season", src.Season),
				logger.String("event", string(event)),
				logger.Int("rows", len(recs)),
			)
			return nil
		})
	}
	for i, src := range m.Qualifying {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			event, _ := model.ParseEventType(src.Event)
			entries, err := readFile(m.Resolve(src.Path), func(f *os.File) ([]model.QualifyingTime, error) {
				return ReadQualifying(f, event, src.segments())
			})
			if err != nil {
				return err
			}
			quali[i] = entries
			ld.log.Debug(gctx, "qualifying file loaded",
				logger.String("path", src.Path),
				logger.String("event", string(event)),
				logger.Int("rows", len(entries)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		metrics.RecordErrorByComponent("ingest", "read_file")
		return nil, err
	}

	ds := &Dataset{CurrentSeason: m.CurrentSeason}
	for _, r := range results {
		ds.Results = append(ds.Results, r...)
	}
	for _, q := range quali {
		ds.Qualifying = append(ds.Qualifying, q...)
	}

	span.SetAttributes(
		attribute.Int("dataset.results", len(ds.Results)),
		attribute.Int("dataset.qualifying", len(ds.Qualifying)),
	)
	ld.log.Info(ctx, "dataset loaded",
		logger.Int("results", len(ds.Results)),
		logger.Int("qualifying", len(ds.Qualifying)),
		logger.Duration("took", time.Since(start)),
	)
	return ds, nil
}

func readFile[T any](path string, parse func(*os.File) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	defer func() { _ = f.Close() }()

	out, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}
	return out, nil
}
