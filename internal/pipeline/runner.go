package pipeline

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gridcast/internal/adapters/ingest"
	"github.com/okian/gridcast/internal/adapters/repository"
	"github.com/okian/gridcast/internal/domain/model"
	"github.com/okian/gridcast/internal/domain/ranking"
	"github.com/okian/gridcast/internal/domain/scoring"
	"github.com/okian/gridcast/pkg/logger"
)

// Run executes the complete pipeline and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	log := logger.Named("pipeline")

	log.Info(ctx, "starting build-cache run",
		logger.String("runID", stats.RunID),
		logger.String("manifest", config.Manifest),
		logger.String("out", config.OutDir),
		logger.String("backend", config.Backend),
	)

	// Step 1: Read the manifest and every file it lists
	manifest, err := ingest.LoadManifest(config.Manifest)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	dataset, err := ingest.NewLoader(ingest.WithLogger(log)).Load(ctx, manifest)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	// Step 2: Score
	var opts []scoring.Option
	if season := resolveSeason(config.Season, dataset.CurrentSeason); season > 0 {
		opts = append(opts, scoring.WithCurrentSeason(season))
	}
	builder := scoring.NewBuilder(append(opts, config.ScoringOptions...)...)
	bundle, err := builder.Build(dataset.Results, dataset.Qualifying)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	stats.Season = bundle.CurrentSeason
	stats.Build = bundle.Stats
	if dataset.CurrentSeason > 0 && dataset.CurrentSeason != stats.Season {
		log.Warn(ctx, "manifest current_season differs from the season being built",
			logger.Int("manifestSeason", dataset.CurrentSeason),
			logger.Int("season", stats.Season),
		)
	}

	// Step 3: Write the derived cache
	store, err := repository.NewStore(config.Backend, config.OutDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(context.Background(), "failed to close cache", logger.Error(err))
		}
	}()
	if err := store.SaveScored(ctx, bundle.Scored); err != nil {
		return nil, fmt.Errorf("save scored records: %w", err)
	}
	if err := store.SaveQualifying(ctx, bundle.QualifyingScores); err != nil {
		return nil, fmt.Errorf("save qualifying scores: %w", err)
	}
	stats.ScoredWritten = len(bundle.Scored)
	if err := store.SaveInfo(ctx, builder.Info()); err != nil {
		return nil, fmt.Errorf("save build info: %w", err)
	}
	stats.QualifyingOut = len(bundle.QualifyingScores)

	// Step 4: Verify the cache reproduces the ranking
	if err := verifyCache(ctx, store, builder, bundle); err != nil {
		return nil, fmt.Errorf("verify cache: %w", err)
	}
	stats.Verified = true

	// Step 5: Print the default ranking
	if config.Output != nil {
		engine := ranking.NewEngine()
		rows := engine.Rank(bundle.Roster, bundle.Metrics, bundle.TeamStrength, bundle.DefaultAssignment)
		if err := writeTable(config.Output, rows); err != nil {
			log.Warn(ctx, "failed to print ranking", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

func resolveSeason(flagSeason, manifestSeason int) int {
	switch {
	case flagSeason > 0:
		return flagSeason
	case manifestSeason > 0:
		return manifestSeason
	default:
		return 0
	}
}

// verifyCache reloads both tables and checks the reassembled bundle ranks
// exactly like the freshly built one.
func verifyCache(ctx context.Context, store repository.Store, builder *scoring.Builder, built *scoring.Bundle) error {
	info, err := store.LoadInfo(ctx)
	if err != nil {
		return err
	}
	if err := builder.CheckInfo(info); err != nil {
		return err
	}
	scored, err := store.LoadScored(ctx)
	if err != nil {
		return err
	}
	quali, err := store.LoadQualifying(ctx)
	if err != nil {
		return err
	}
	reloaded, err := builder.Assemble(scored, quali)
	if err != nil {
		return err
	}

	engine := ranking.NewEngine()
	want := engine.Rank(built.Roster, built.Metrics, built.TeamStrength, built.DefaultAssignment)
	got := engine.Rank(reloaded.Roster, reloaded.Metrics, reloaded.TeamStrength, reloaded.DefaultAssignment)
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("reloaded ranking differs from the built one")
	}
	return nil
}

func writeTable(w io.Writer, rows []model.RankedRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tdriver\tteam\tavg\ttrend\tbonus\tqualif\tteam_sc\tfinal\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.3f\t\n",
			r.Rank, r.Competitor, r.Team, r.AvgScore, r.Trend, r.Bonus, r.QualifyingScore, r.TeamScore, r.Final)
	}
	return tw.Flush()
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("season", stats.Season),
		logger.Int("records", stats.Build.Records),
		logger.Int("recordsKept", stats.Build.RecordsKept),
		logger.Int("recordsDiscarded", stats.Build.RecordsDiscarded),
		logger.Int("missingPositions", stats.Build.MissingPositions),
		logger.Int("qualifyingEntries", stats.Build.QualifyingEntries),
		logger.Int("qualifyingNoTime", stats.Build.QualifyingNoTime),
		logger.Int("scoredWritten", stats.ScoredWritten),
		logger.Int("qualifyingWritten", stats.QualifyingOut),
		logger.Bool("verified", stats.Verified),
		logger.Duration("duration", stats.Duration),
	)
}
