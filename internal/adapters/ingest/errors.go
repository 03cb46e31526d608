package ingest

import "errors"

// Sentinel errors for ingestion. File-level problems are fatal; row-level
// problems degrade to missing values.
var (
	ErrManifest      = errors.New("invalid manifest")
	ErrMissingColumn = errors.New("missing required column")
	ErrReadFile      = errors.New("read input file failed")
)
