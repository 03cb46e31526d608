package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When applying them to a manager", func() {
			m := &Manager{customLabels: map[string]string{}}
			WithNamespace("test_namespace")(m)
			WithSubsystem("test_subsystem")(m)
			WithMetricPrefix("test_prefix_")(m)
			WithHistogramBuckets([]float64{0.1, 0.5, 1.0})(m)
			WithMetricsEnabled(false)(m)
			WithRefreshInterval(5 * time.Second)(m)
			WithCustomLabels(map[string]string{"env": "test"})(m)

			Convey("Then every field should be set", func() {
				So(m.namespace, ShouldEqual, "test_namespace")
				So(m.subsystem, ShouldEqual, "test_subsystem")
				So(m.metricPrefix, ShouldEqual, "test_prefix_")
				So(m.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(m.Enabled(), ShouldBeFalse)
				So(m.RefreshInterval(), ShouldEqual, 5*time.Second)
				So(m.customLabels["env"], ShouldEqual, "test")
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with the gridcast namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "gridcast")
				So(manager.subsystem, ShouldEqual, "ranking")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test_prefix_"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)
			manager.rankingsComputed.Inc()

			Convey("Then metric names carry the namespace and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_test_prefix_rankings_computed_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording build metrics", func() {
			before := testutil.ToFloat64(globalManager.bundleBuilds)
			So(func() {
				RecordRecordsIngested("regular", 120)
				RecordRecordsIngested("sprint", 24)
				RecordBuild(12.5, 3, 1, 40, 2)
			}, ShouldNotPanic)

			Convey("Then the counters should move", func() {
				So(testutil.ToFloat64(globalManager.bundleBuilds), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.recordsIngested.WithLabelValues("sprint")), ShouldBeGreaterThanOrEqualTo, 24)
			})
		})

		Convey("When updating the dataset shape", func() {
			UpdateDatasetShape(20, 11, 10)

			Convey("Then the gauges hold the values", func() {
				So(testutil.ToFloat64(globalManager.rosterSize), ShouldEqual, 20)
				So(testutil.ToFloat64(globalManager.knownTeams), ShouldEqual, 11)
				So(testutil.ToFloat64(globalManager.teamsWithStrength), ShouldEqual, 10)
			})
		})

		Convey("When recording ranking metrics", func() {
			before := testutil.ToFloat64(globalManager.assignmentOverrides)
			RecordRanking(0.4, 2)
			RecordAssignmentRejected("unknown_team")

			Convey("Then overrides accumulate", func() {
				So(testutil.ToFloat64(globalManager.assignmentOverrides), ShouldEqual, before+2)
			})
		})

		Convey("When recording cache, HTTP, error and system metrics", func() {
			So(func() {
				RecordCacheWrite("csv", "scored_records", 400, 3)
				RecordCacheRead("sqlite", "qualifying_scores", 20, 1)
				RecordHTTPRequest("/api/ranking", "POST", "200")
				RecordHTTPRequestDuration("/api/ranking", "POST", "200", 1.2)
				RecordRateLimited("/api/ranking")
				RecordErrorByComponent("service", "unknown_team")
				RecordErrorByType("validation", "warning")
				RecordErrorByEndpoint("/api/ranking", "POST", "bad_request")
				RecordErrorLatency("ingest", "read_file", 0.3)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsEnabledSwitch(t *testing.T) {
	Convey("Given recording switched off", t, func() {
		SetEnabled(false)
		defer SetEnabled(true)
		before := testutil.ToFloat64(globalManager.rankingsComputed)

		Convey("When a ranking is recorded", func() {
			RecordRanking(1.5, 3)

			Convey("Then nothing is observed", func() {
				So(testutil.ToFloat64(globalManager.rankingsComputed), ShouldEqual, before)
			})
		})
	})

	Convey("Given recording switched back on", t, func() {
		SetEnabled(true)
		before := testutil.ToFloat64(globalManager.rankingsComputed)
		RecordRanking(1.5, 0)

		Convey("Then the ranking is counted", func() {
			So(testutil.ToFloat64(globalManager.rankingsComputed), ShouldEqual, before+1)
		})
	})
}

func TestMetricsRefreshInterval(t *testing.T) {
	Convey("Given the global refresh interval", t, func() {
		defer SetRefreshInterval(defaultRefreshInterval)

		Convey("Then it defaults to ten seconds", func() {
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})

		Convey("When set to a positive value", func() {
			SetRefreshInterval(2 * time.Second)

			Convey("Then the new interval is reported", func() {
				So(RefreshInterval(), ShouldEqual, 2*time.Second)
			})
		})

		Convey("When set to zero", func() {
			SetRefreshInterval(0)

			Convey("Then the previous interval is kept", func() {
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordRanking(0.1, 0)

		Convey("Then it exposes gridcast series without Go runtime collectors", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "gridcast_ranking_"), ShouldBeTrue)
			}
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.rankingsComputed)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				RecordRanking(0.1, 0)
				RecordHTTPRequest("/api/ranking", "GET", "200")
			}()
		}
		wg.Wait()

		Convey("Then no increment is lost", func() {
			So(testutil.ToFloat64(globalManager.rankingsComputed), ShouldEqual, before+50)
		})
	})
}
