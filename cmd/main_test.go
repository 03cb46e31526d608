package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/gridcast/internal/app"
	"github.com/okian/gridcast/internal/config"
	"github.com/okian/gridcast/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func writeDataset(dir string) {
	files := map[string]string{
		"manifest.yaml": "current_season: 2025\nresults:\n  - {path: r2024.csv, season: 2024}\n  - {path: r2025.csv, season: 2025}\n",
		"r2024.csv":     "Driver,Team,Position\nAlpha,Ferrari,1\nBravo,McLaren,2\n",
		"r2025.csv":     "Driver,Team,Position\nAlpha,Ferrari,2\nBravo,McLaren,1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			panic(err)
		}
	}
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			t.Setenv("GRIDCAST_ADDR", ":8081")
			t.Setenv("GRIDCAST_SOURCE", "cache")
			t.Setenv("GRIDCAST_CACHE_BACKEND", "sqlite")

			cfg, err := config.Load()
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8081")

			convey.Convey("Then the cache source is selected", func() {
				cfg.CacheDir = t.TempDir()
				src, err := newSource(cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(src.Name(), convey.ShouldEqual, "cache")
				if closer, ok := src.(interface{ Close() error }); ok {
					convey.So(closer.Close(), convey.ShouldBeNil)
				}
			})
		})

		convey.Convey("When the source is raw", func() {
			cfg := config.New()
			src, err := newSource(cfg)

			convey.Convey("Then the raw source is selected", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(src.Name(), convey.ShouldEqual, "raw")
			})
		})

		convey.Convey("When the source is unknown", func() {
			cfg := config.New()
			cfg.Source = "s3"
			_, err := newSource(cfg)

			convey.Convey("Then an invalid config error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the configured roster is blank", func() {
			cfg := config.New()
			cfg.Roster = []string{" ", ""}
			_, err := serviceOptions(cfg)

			convey.Convey("Then building options fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainRouter(t *testing.T) {
	convey.Convey("Given a started service behind the router", t, func() {
		dir := t.TempDir()
		writeDataset(dir)

		cfg := config.New()
		cfg.ManifestPath = filepath.Join(dir, "manifest.yaml")
		cfg.Roster = []string{"alpha", "bravo"}

		opts, err := serviceOptions(cfg)
		convey.So(err, convey.ShouldBeNil)
		src, err := newSource(cfg)
		convey.So(err, convey.ShouldBeNil)

		svc := app.New(append(opts, app.WithSource(src))...)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		router := newRouter(context.Background(), cfg, svc, logger.Get())

		get := func(path string) *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			return rec
		}

		convey.Convey("Then every surface is mounted", func() {
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api/ranking").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api/teams").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And the ranking lists the roster", func() {
			body := get("/api/ranking").Body.String()
			convey.So(body, convey.ShouldContainSubstring, "alpha")
			convey.So(body, convey.ShouldContainSubstring, "bravo")
		})

		convey.Convey("And a ranking with an unknown team is rejected", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/ranking", strings.NewReader(`{"assignment":{"alpha":"ferari"}}`))
			router.ServeHTTP(rec, req)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("And the service metrics updater reads its stats", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		convey.Convey("When the context expires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then both loops return", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(func() { startServiceMetricsUpdater(ctx, app.New()) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When system metrics are refreshed directly", func() {
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		})

		convey.Convey("When a stopped service is polled", func() {
			convey.So(func() { updateServiceMetrics(app.New()) }, convey.ShouldNotPanic)
		})
	})
}
