package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/gridcast/internal/config"
	"github.com/okian/gridcast/internal/pipeline"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	// Scoring settings come from the server's configuration so the cache
	// can be read back by it.
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var (
		manifest = flag.String("manifest", cfg.ManifestPath, "Ingestion manifest")
		outDir   = flag.String("out", cfg.CacheDir, "Derived cache directory")
		backend  = flag.String("backend", cfg.CacheBackend, "Cache backend: csv or sqlite")
		season   = flag.Int("season", cfg.CurrentSeason, "Current season")
		logFile  = flag.String("log", "", "Also write logs to this file")
		verbose  = flag.Bool("verbose", false, "Enable debug logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		pipeline.ShowHelp(os.Stdout)
		return
	}

	cleanup, err := pipeline.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer cleanup()

	cfg.CurrentSeason = *season
	scoringOpts, err := cfg.ScoringOptions()
	if err != nil {
		os.Stderr.WriteString("invalid scoring configuration: " + err.Error() + "\n")
		cleanup()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	runConfig := &pipeline.Config{
		Manifest:       *manifest,
		OutDir:         *outDir,
		Backend:        *backend,
		Season:         cfg.CurrentSeason,
		LogFile:        *logFile,
		Verbose:        *verbose,
		Output:         os.Stdout,
		ScoringOptions: scoringOpts,
	}

	if _, err := pipeline.Run(ctx, runConfig); err != nil {
		os.Stderr.WriteString("Build failed: " + err.Error() + "\n")
		cancel()
		cleanup()
		os.Exit(1)
	}
}
