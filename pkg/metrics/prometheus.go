// Package metrics provides Prometheus metrics for the gridcast ranking service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the gridcast service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  atomic.Int64 // nanoseconds
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion and score building
	recordsIngested   *prometheus.CounterVec
	recordsDiscarded  prometheus.Counter
	missingPositions  prometheus.Counter
	qualifyingEntries prometheus.Counter
	qualifyingNoTime  prometheus.Counter
	bundleBuilds      prometheus.Counter
	buildDuration     prometheus.Histogram

	// Dataset shape
	rosterSize        prometheus.Gauge
	knownTeams        prometheus.Gauge
	teamsWithStrength prometheus.Gauge

	// Ranking
	rankingsComputed    prometheus.Counter
	rankingLatency      prometheus.Histogram
	assignmentOverrides prometheus.Counter
	assignmentRejected  *prometheus.CounterVec

	// Derived cache
	cacheRowsWritten *prometheus.CounterVec
	cacheRowsRead    *prometheus.CounterVec
	cacheLatency     *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gridcast",
		subsystem:        "ranking",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	m.enabled.Store(true)
	m.refreshInterval.Store(int64(defaultRefreshInterval))

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ingestion and score building
	m.recordsIngested = m.counterVec("records_ingested_total", "Historical result records read by the loader", "event_type")
	m.recordsDiscarded = m.counter("records_discarded_total", "Result records dropped because the competitor is off the roster")
	m.missingPositions = m.counter("missing_positions_total", "Kept result records without a classified position")
	m.qualifyingEntries = m.counter("qualifying_entries_total", "Qualifying entries read by the loader")
	m.qualifyingNoTime = m.counter("qualifying_no_time_total", "Roster qualifying entries without any parsable segment time")
	m.bundleBuilds = m.counter("bundle_builds_total", "Number of score bundles built")
	m.buildDuration = m.histogram("build_duration_milliseconds", "Time to build a score bundle in milliseconds", m.histogramBuckets)

	// Dataset shape
	m.rosterSize = m.gauge("roster_size", "Competitors on the allow-list")
	m.knownTeams = m.gauge("known_teams", "Teams selectable in the current season")
	m.teamsWithStrength = m.gauge("teams_with_strength", "Teams with a defined reference-season strength")

	// Ranking
	m.rankingsComputed = m.counter("rankings_computed_total", "Number of rankings computed")
	m.rankingLatency = m.histogram("ranking_latency_milliseconds", "Ranking computation latency in milliseconds", m.histogramBuckets)
	m.assignmentOverrides = m.counter("assignment_overrides_total", "Team reassignments applied over the default assignment")
	m.assignmentRejected = m.counterVec("assignment_rejected_total", "Reassignments rejected by reason", "reason")

	// Derived cache
	m.cacheRowsWritten = m.counterVec("cache_rows_written_total", "Rows written to derived cache tables", "backend", "table")
	m.cacheRowsRead = m.counterVec("cache_rows_read_total", "Rows read from derived cache tables", "backend", "table")
	m.cacheLatency = m.histogramVec("cache_latency_milliseconds", "Derived cache operation latency", "backend", "op")

	// HTTP Performance Metrics
	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.httpRateLimited = m.counterVec("http_rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	// Error Metrics
	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	// System Performance Metrics
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordRecordsIngested adds n records read for an event type.
func RecordRecordsIngested(eventType string, n int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.recordsIngested.WithLabelValues(eventType).Add(float64(n))
}

// RecordBuild records one bundle build and its outcome counters.
func RecordBuild(durationMs float64, discarded, missingPositions, qualifyingEntries, qualifyingNoTime int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.bundleBuilds.Inc()
	globalManager.buildDuration.Observe(durationMs)
	globalManager.recordsDiscarded.Add(float64(discarded))
	globalManager.missingPositions.Add(float64(missingPositions))
	globalManager.qualifyingEntries.Add(float64(qualifyingEntries))
	globalManager.qualifyingNoTime.Add(float64(qualifyingNoTime))
}

// UpdateDatasetShape sets the roster and team gauges.
func UpdateDatasetShape(roster, teams, teamsWithStrength int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.rosterSize.Set(float64(roster))
	globalManager.knownTeams.Set(float64(teams))
	globalManager.teamsWithStrength.Set(float64(teamsWithStrength))
}

// RecordRanking records one ranking computation.
func RecordRanking(latencyMs float64, overrides int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.rankingsComputed.Inc()
	globalManager.rankingLatency.Observe(latencyMs)
	globalManager.assignmentOverrides.Add(float64(overrides))
}

// RecordAssignmentRejected counts a rejected reassignment.
func RecordAssignmentRejected(reason string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.assignmentRejected.WithLabelValues(reason).Inc()
}

// RecordCacheWrite records rows written to a cache table.
func RecordCacheWrite(backend, table string, rows int, latencyMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.cacheRowsWritten.WithLabelValues(backend, table).Add(float64(rows))
	globalManager.cacheLatency.WithLabelValues(backend, "write").Observe(latencyMs)
}

// RecordCacheRead records rows read from a cache table.
func RecordCacheRead(backend, table string, rows int, latencyMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.cacheRowsRead.WithLabelValues(backend, table).Add(float64(rows))
	globalManager.cacheLatency.WithLabelValues(backend, "read").Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
}

// RecordErrorByComponent records an error by component.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.Enabled() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// RefreshInterval returns how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return time.Duration(m.refreshInterval.Load())
}

// SetEnabled turns recording through the package helpers on or off.
func SetEnabled(enabled bool) {
	globalManager.enabled.Store(enabled)
}

// SetRefreshInterval sets the global gauge refresh interval. Non-positive
// values are ignored.
func SetRefreshInterval(interval time.Duration) {
	if interval > 0 {
		globalManager.refreshInterval.Store(int64(interval))
	}
}

// RefreshInterval returns the global gauge refresh interval.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
