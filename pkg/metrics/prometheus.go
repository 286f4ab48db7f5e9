// Package metrics provides Prometheus metrics for the deliberation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric the engine exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Deliberation
	commands       *prometheus.CounterVec
	commandLatency *prometheus.HistogramVec
	events         *prometheus.CounterVec
	duplicates     *prometheus.CounterVec
	stateVersion   prometheus.Gauge
	snapshotVer    prometheus.Gauge
	teams          prometheus.Gauge
	viewBuilds     *prometheus.CounterVec

	// Store
	storeLatency   *prometheus.HistogramVec
	storeConflicts prometheus.Counter

	// Queue
	queueCapacity    prometheus.Gauge
	queueSize        prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errors *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a Manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "deliberation",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) register() {
	m.commands = m.counterVec("commands_total", "Deliberation commands by kind and outcome", "kind", "outcome")
	m.commandLatency = m.histogramVec("command_latency_milliseconds", "Time to decide and persist a command", "kind")
	m.events = m.counterVec("snapshot_events_total", "Upstream snapshot events by kind and outcome", "kind", "outcome")
	m.duplicates = m.counterVec("duplicates_total", "Redelivered commands and events dropped", "source")
	m.stateVersion = m.gauge("state_version", "Version of the authoritative deliberation state")
	m.snapshotVer = m.gauge("snapshot_version", "Version of the current upstream snapshot")
	m.teams = m.gauge("teams", "Teams in the current snapshot")
	m.viewBuilds = m.counterVec("view_builds_total", "Derived view recomputations", "view")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Authoritative store latency", "op")
	m.storeConflicts = m.counter("store_conflicts_total", "Saves rejected by the optimistic version check")

	m.queueCapacity = m.gauge("queue_capacity", "Maximum queued jobs")
	m.queueSize = m.gauge("queue_size", "Jobs waiting for the writer")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size over capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Jobs accepted by the queue")
	m.queueDequeued = m.counter("queue_dequeued_total", "Jobs handed to the writer")
	m.queueRejected = m.counterVec("queue_rejected_total", "Jobs the queue refused", "reason")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")

	m.errors = m.counterVec("errors_total", "Errors by component and type", "component", "type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "system_gc_pause_time_milliseconds",
		Help:    "GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Command outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeNoop      = "noop"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
)

// RecordCommand counts one command by kind and outcome.
func RecordCommand(kind, outcome string) {
	globalManager.commands.WithLabelValues(kind, outcome).Inc()
}

// RecordCommandLatency records decide plus persist time for a command.
func RecordCommandLatency(kind string, latencyMs float64) {
	globalManager.commandLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordSnapshotEvent counts one upstream event by kind and outcome.
func RecordSnapshotEvent(kind, outcome string) {
	globalManager.events.WithLabelValues(kind, outcome).Inc()
}

// RecordDuplicate counts a dropped redelivery. source is "command" or "event".
func RecordDuplicate(source string) {
	globalManager.duplicates.WithLabelValues(source).Inc()
}

// UpdateStateVersion sets the authoritative state version.
func UpdateStateVersion(v int64) {
	globalManager.stateVersion.Set(float64(v))
}

// UpdateSnapshot sets the snapshot version and team count.
func UpdateSnapshot(version int64, teams int) {
	globalManager.snapshotVer.Set(float64(version))
	globalManager.teams.Set(float64(teams))
}

// RecordViewBuild counts one derived view recomputation.
func RecordViewBuild(view string) {
	globalManager.viewBuilds.WithLabelValues(view).Inc()
}

// RecordStoreLatency records one store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreConflict counts a save lost to a concurrent writer.
func RecordStoreConflict() {
	globalManager.storeConflicts.Inc()
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueRejected counts a job the queue refused.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordError counts an error by component and type.
func RecordError(component, errorType string) {
	globalManager.errors.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
