// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults.
//   - Load layers defaults, an optional YAML file and GRIDCAST_ env vars.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Data sources the service can rank from.
const (
	SourceRaw   = "raw"
	SourceCache = "cache"
)

// Cache backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

var validate = validator.New()

// Weights mirrors the composite weight table.
type Weights struct {
	AvgScore        float64 `koanf:"avg_score" validate:"gte=0,lte=1"`
	Trend           float64 `koanf:"trend" validate:"gte=0,lte=1"`
	Bonus           float64 `koanf:"bonus" validate:"gte=0,lte=1"`
	QualifyingScore float64 `koanf:"qualif_score" validate:"gte=0,lte=1"`
	TeamScore       float64 `koanf:"team_score" validate:"gte=0,lte=1"`
}

// Qualifying configures how qualifying sessions are pooled and normalized.
type Qualifying struct {
	RegularWeight float64 `koanf:"regular_weight" validate:"gte=0"`
	SprintWeight  float64 `koanf:"sprint_weight" validate:"gte=0"`
	NeutralScore  float64 `koanf:"neutral_score" validate:"gte=0,lte=1"`
	MissingScore  float64 `koanf:"missing_score" validate:"gte=0,lte=1"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// Source selects where the score bundle comes from: raw CSVs or the derived cache.
	Source string `koanf:"source" validate:"oneof=raw cache"`

	// ManifestPath points at the ingestion manifest (used by the raw source).
	ManifestPath string `koanf:"manifest_path" validate:"required_if=Source raw"`

	// CacheDir holds the derived cache (used by the cache source).
	CacheDir string `koanf:"cache_dir" validate:"required_if=Source cache"`

	// CacheBackend is csv or sqlite.
	CacheBackend string `koanf:"cache_backend" validate:"oneof=csv sqlite"`

	// CurrentSeason is the season whose records define default teams.
	CurrentSeason int `koanf:"current_season" validate:"gte=1950"`

	// Roster overrides the built-in 20-competitor allow-list when non-empty.
	Roster []string `koanf:"roster"`

	Weights    Weights    `koanf:"weights"`
	Qualifying Qualifying `koanf:"qualifying"`

	// RateLimitRPS and RateLimitBurst bound POST /api/ranking per process.
	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"gt=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gte=1"`

	// MCPEnabled mounts the MCP endpoint at /mcp.
	MCPEnabled bool `koanf:"mcp_enabled"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshSeconds is how often system and dataset gauges refresh.
	MetricsRefreshSeconds int `koanf:"metrics_refresh_seconds" validate:"gte=1"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		Source:        SourceRaw,
		ManifestPath:  "data/manifest.yaml",
		CacheDir:      "data/cache",
		CacheBackend:  BackendCSV,
		CurrentSeason: 2025,
		Weights: Weights{
			AvgScore:        0.20,
			Trend:           0.10,
			Bonus:           0.25,
			QualifyingScore: 0.30,
			TeamScore:       0.15,
		},
		Qualifying: Qualifying{
			RegularWeight: 1,
			SprintWeight:  1,
			NeutralScore:  1,
			MissingScore:  0,
		},
		RateLimitRPS:   50,
		RateLimitBurst: 100,
		MCPEnabled:     true,

		MetricsEnabled:        true,
		MetricsRefreshSeconds: 10,
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
