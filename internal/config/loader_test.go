package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gridcast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Source, convey.ShouldEqual, config.SourceRaw)
				convey.So(cfg.Weights.TeamScore, convey.ShouldEqual, 0.15)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GRIDCAST_ADDR", ":8080")
			_ = os.Setenv("GRIDCAST_SOURCE", "cache")
			_ = os.Setenv("GRIDCAST_CACHE_BACKEND", "sqlite")
			_ = os.Setenv("GRIDCAST_CURRENT_SEASON", "2024")
			_ = os.Setenv("GRIDCAST_WEIGHTS__TEAM_SCORE", "0.2")
			_ = os.Setenv("GRIDCAST_MCP_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Source, convey.ShouldEqual, config.SourceCache)
				convey.So(cfg.CacheBackend, convey.ShouldEqual, config.BackendSQLite)
				convey.So(cfg.CurrentSeason, convey.ShouldEqual, 2024)
				convey.So(cfg.Weights.TeamScore, convey.ShouldEqual, 0.2)
				convey.So(cfg.Weights.Bonus, convey.ShouldEqual, 0.25)
				convey.So(cfg.MCPEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "gridcast.yaml")
			content := `
addr: ":7070"
log_format: json
manifest_path: /srv/data/manifest.yaml
roster:
  - lando norris
  - oscar piastri
qualifying:
  sprint_weight: 0.5
`
			convey.So(os.WriteFile(path, []byte(content), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("GRIDCAST_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load values from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ManifestPath, convey.ShouldEqual, "/srv/data/manifest.yaml")
				convey.So(cfg.Roster, convey.ShouldResemble, []string{"lando norris", "oscar piastri"})
				convey.So(cfg.Qualifying.SprintWeight, convey.ShouldEqual, 0.5)
				convey.So(cfg.Qualifying.RegularWeight, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("GRIDCAST_CONFIG", "/nonexistent/gridcast.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load()

			convey.Convey("Then it should return ErrLoadConfig", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an env var fails validation", func() {
			clearConfigEnvVars()
			_ = os.Setenv("GRIDCAST_SOURCE", "database")
			defer clearConfigEnvVars()

			_, err := config.Load()

			convey.Convey("Then it should return ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"GRIDCAST_CONFIG",
		"GRIDCAST_ADDR",
		"GRIDCAST_SOURCE",
		"GRIDCAST_CACHE_BACKEND",
		"GRIDCAST_CURRENT_SEASON",
		"GRIDCAST_WEIGHTS__TEAM_SCORE",
		"GRIDCAST_MCP_ENABLED",
	} {
		_ = os.Unsetenv(key)
	}
}
