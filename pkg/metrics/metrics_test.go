package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.gradings.WithLabelValues("1").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_gradings_total")
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "cnec")
				So(manager.subsystem, ShouldEqual, "grading")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When a grading is recorded", func() {
			before := testutil.ToFloat64(globalManager.gradings.WithLabelValues("3"))
			RecordGrading(3, 0.4)

			Convey("Then the level counter increases", func() {
				So(testutil.ToFloat64(globalManager.gradings.WithLabelValues("3")), ShouldEqual, before+1)
			})
		})

		Convey("When persistence calls are recorded", func() {
			before := testutil.ToFloat64(globalManager.persistenceErrors.WithLabelValues("history"))
			RecordPersistence("history", 2, nil)
			RecordPersistence("history", 3, errors.New("down"))

			Convey("Then only the failure is counted as an error", func() {
				So(testutil.ToFloat64(globalManager.persistenceErrors.WithLabelValues("history")), ShouldEqual, before+1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateWorkerCount(4)
			UpdateStoredCreators(12)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
				So(testutil.ToFloat64(globalManager.storedCreators), ShouldEqual, 12)
			})
		})

		Convey("When the remaining helpers are called", func() {
			So(func() {
				RecordInitialGrade(true)
				RecordInitialGrade(false)
				RecordBadgeAward("fast_responder")
				RecordFeaturedLookup("hit")
				RecordRecomputeRequest("accepted")
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueError("closed")
				RecordWorkerProcessingLatency(12)
				RecordWorkerError()
				RecordHTTPRequest("/grades/score", "POST", "200")
				RecordHTTPRequestDuration("/grades/score", "POST", "200", 1.5)
				RecordErrorByComponent("", "")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		done := make(chan struct{}, 8)
		for i := 0; i < 8; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordGrading(1+j%5, float64(j))
					UpdateQueueSize(j)
					RecordHTTPRequest("/stats", "GET", "200")
				}
				done <- struct{}{}
			}()
		}
		for i := 0; i < 8; i++ {
			<-done
		}

		Convey("Then the registry can still be gathered", func() {
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
