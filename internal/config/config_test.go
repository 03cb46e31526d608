package config_test

import (
	"errors"
	"testing"

	"github.com/okian/gridcast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Source, convey.ShouldEqual, config.SourceRaw)
			convey.So(cfg.CacheBackend, convey.ShouldEqual, config.BackendCSV)
			convey.So(cfg.CurrentSeason, convey.ShouldEqual, 2025)
			convey.So(cfg.Weights.QualifyingScore, convey.ShouldEqual, 0.30)
			convey.So(cfg.Qualifying.NeutralScore, convey.ShouldEqual, 1)
			convey.So(cfg.Qualifying.MissingScore, convey.ShouldEqual, 0)
			convey.So(cfg.MCPEnabled, convey.ShouldBeTrue)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with an unknown backend", t, func() {
		cfg := config.New()
		cfg.CacheBackend = "parquet"

		convey.Convey("Then validation fails with ErrInvalidConfig", func() {
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given the cache source without a cache dir", t, func() {
		cfg := config.New()
		cfg.Source = config.SourceCache
		cfg.CacheDir = ""

		convey.Convey("Then validation fails", func() {
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a weight above one", t, func() {
		cfg := config.New()
		cfg.Weights.Bonus = 1.5

		convey.Convey("Then validation fails", func() {
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a zero rate limit", t, func() {
		cfg := config.New()
		cfg.RateLimitRPS = 0

		convey.Convey("Then validation fails", func() {
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
