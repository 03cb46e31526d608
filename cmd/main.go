package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/gridcast/internal/adapters/http/api"
	"github.com/okian/gridcast/internal/adapters/http/site"
	"github.com/okian/gridcast/internal/adapters/http/swagger"
	"github.com/okian/gridcast/internal/adapters/mcp"
	"github.com/okian/gridcast/internal/adapters/repository"
	app "github.com/okian/gridcast/internal/app"
	"github.com/okian/gridcast/internal/config"
	"github.com/okian/gridcast/pkg/logger"
	"github.com/okian/gridcast/pkg/metrics"
)

// version is reported by the MCP server.
var version = "dev"

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// We collect our own system metrics instead of the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.InitWithFormat(cfg.LogFormat, os.Stdout); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	loggerInstance := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.SetEnabled(cfg.MetricsEnabled)
	metrics.SetRefreshInterval(cfg.MetricsRefresh())

	src, err := newSource(cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to open score source", logger.Error(err))
		return
	}

	opts, err := serviceOptions(cfg)
	if err != nil {
		loggerInstance.Error(ctx, "invalid scoring configuration", logger.Error(err))
		return
	}
	svc := app.New(append(opts, app.WithLogger(loggerInstance), app.WithSource(src))...)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc, loggerInstance),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newSource picks the bundle source named by the configuration.
func newSource(cfg *config.Config) (app.Source, error) {
	switch cfg.Source {
	case config.SourceCache:
		store, err := repository.NewStore(cfg.CacheBackend, cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		return app.NewCacheSource(store), nil
	case config.SourceRaw:
		return app.NewRawSource(cfg.ManifestPath), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", config.ErrInvalidConfig, cfg.Source)
	}
}

// serviceOptions maps configuration onto service and scoring options.
func serviceOptions(cfg *config.Config) ([]app.Option, error) {
	scoringOpts, err := cfg.ScoringOptions()
	if err != nil {
		return nil, err
	}
	return []app.Option{
		app.WithWeights(cfg.RankingWeights()),
		app.WithScoringOptions(scoringOpts...),
	}, nil
}

// newRouter mounts every HTTP surface. The site catch-all goes last.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *mux.Router {
	r := mux.NewRouter()

	api.NewServer(svc, svc, api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)).Register(ctx, r)

	if cfg.MCPEnabled {
		r.PathPrefix("/mcp").Handler(mcp.Handler(mcp.NewServer(svc, version, log.Named("mcp"))))
	}

	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return r
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes the dataset gauges from the service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	competitors, ok1 := stats["competitors"].(int)
	teams, ok2 := stats["teams"].(int)
	withStrength, ok3 := stats["teamsWithStrength"].(int)
	if ok1 && ok2 && ok3 {
		metrics.UpdateDatasetShape(competitors, teams, withStrength)
	}
}
