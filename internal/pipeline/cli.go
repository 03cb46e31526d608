package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/gridcast/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger, mirroring output into logFile when
// one is given. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func(), error) {
	var (
		w       io.Writer = os.Stdout
		cleanup           = func() {}
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		cleanup = func() { _ = file.Close() }
	}

	if err := logger.InitWithFormat(logger.FormatText, w); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return cleanup, nil
}

// ShowHelp prints usage information for the build-cache tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `gridcast build-cache
====================

Reads the raw result and qualifying CSV files listed in a manifest, scores
them and writes the derived cache used by the service's cache source.

Usage:
  go run ./cmd/build-cache [options]

Options:
  -manifest string
        Ingestion manifest (default: manifest_path from config)
  -out string
        Derived cache directory (default: cache_dir from config)
  -backend string
        Cache backend: csv or sqlite (default: cache_backend from config)
  -season int
        Current season (default: current_season from config)
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Roster, qualifying policy and season come from the same configuration the
server reads (GRIDCAST_CONFIG file and GRIDCAST_ environment variables). The
server refuses a cache built under different settings.

Examples:
  # Build the CSV cache next to the data
  go run ./cmd/build-cache -manifest data/manifest.yaml -out data/cache

  # Build a sqlite cache for the 2024 season
  go run ./cmd/build-cache -backend sqlite -season 2024
`)
}
