package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When a manager is created with custom naming", func() {
			m := NewManager(
				WithNamespace("judging"),
				WithSubsystem("test"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"event": "regional"}),
				WithPrometheusRegistry(registry),
			)
			m.commands.WithLabelValues("start-final", OutcomeAccepted).Inc()

			Convey("Then its metrics carry the namespace and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "judging_test_commands_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "regional")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share a registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When commands are recorded", func() {
			before := testutil.ToFloat64(globalManager.commands.WithLabelValues("add-to-picklist", OutcomeRejected))
			RecordCommand("add-to-picklist", OutcomeRejected)
			RecordCommandLatency("add-to-picklist", 1.5)

			Convey("Then the counter moves by one", func() {
				after := testutil.ToFloat64(globalManager.commands.WithLabelValues("add-to-picklist", OutcomeRejected))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateStateVersion(7)
			UpdateSnapshot(3, 42)
			UpdateQueueCapacity(10)
			UpdateQueueSize(5, 10)

			Convey("Then they hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.stateVersion), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.teams), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.5)
			})
		})

		Convey("When the remaining helpers are called", func() {
			So(func() {
				RecordSnapshotEvent("team-arrived", OutcomeAccepted)
				RecordDuplicate("command")
				RecordViewBuild("ranks")
				RecordStoreLatency("save", 0.3)
				RecordStoreConflict()
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueRejected("full")
				RecordHTTPRequest("/state", "GET", "200")
				RecordHTTPRequestDuration("/state", "GET", "200", 2)
				RecordError("writer", "store")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("When the registry is exported", func() {
			RecordDuplicate("event")
			n, err := testutil.GatherAndCount(GetRegistry(), "deliberation_engine_duplicates_total")

			Convey("Then our metrics are on it", func() {
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThan, 0)
			})
		})
	})
}
