// Package pipeline implements the offline build-cache run: ingest the raw
// CSVs, score them, write the derived cache and verify it reloads.
package pipeline

import (
	"io"
	"time"

	"github.com/okian/gridcast/internal/domain/scoring"
)

// Config holds configuration for one pipeline run.
type Config struct {
	Manifest string    // Path of the ingestion manifest
	OutDir   string    // Derived cache directory
	Backend  string    // Cache backend: csv or sqlite
	Season   int       // Current season; 0 uses the manifest's value
	LogFile  string    // Optional log file mirrored from stdout
	Verbose  bool      // Enable debug logging
	Output   io.Writer // Destination of the ranking table; nil discards it

	// ScoringOptions are passed to the score builder after the season. The
	// serving process must use the same options to read the cache back.
	ScoringOptions []scoring.Option
}

// Stats holds run statistics.
type Stats struct {
	RunID         string
	Season        int
	Build         scoring.BuildStats
	ScoredWritten int
	QualifyingOut int
	Verified      bool
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
