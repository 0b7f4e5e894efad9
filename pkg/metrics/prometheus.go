// Package metrics provides Prometheus metrics for the grading service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the grading service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Grading
	gradings       *prometheus.CounterVec
	scoringLatency prometheus.Histogram
	initialGrades  *prometheus.CounterVec
	badgeAwards    *prometheus.CounterVec
	storedCreators prometheus.Gauge

	// Persistence
	persistenceErrors  *prometheus.CounterVec
	persistenceLatency *prometheus.HistogramVec
	featuredLookups    *prometheus.CounterVec

	// Recompute queue and workers
	recomputeRequests *prometheus.CounterVec
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueErrors       *prometheus.CounterVec
	workerCount       prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors and runtime
	errorsByComponent    *prometheus.CounterVec
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cnec",
		subsystem:        "grading",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.gradings = m.counterVec("gradings_total", "Score bundles computed, by resulting grade level", "level")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Time spent computing a score bundle")
	m.initialGrades = m.counterVec("initial_grades_total", "Cold-start estimates, by whether a bootstrap signal was present", "bootstrapped")
	m.badgeAwards = m.counterVec("badge_awards_total", "Badges granted by the evaluator", "badge")
	m.storedCreators = m.gauge("stored_creators", "Creators holding a grade record")

	m.persistenceErrors = m.counterVec("persistence_errors_total", "Failed persistence calls, by record", "record")
	m.persistenceLatency = m.histogramVec("persistence_latency_milliseconds", "Persistence call latency, by record", "record")
	m.featuredLookups = m.counterVec("featured_lookups_total", "Featured creator lookups, by result", "result")

	m.recomputeRequests = m.counterVec("recompute_requests_total", "Recompute requests, by admission status", "status")
	m.queueSize = m.gauge("recompute_queue_size", "Pending recompute requests")
	m.queueCapacity = m.gauge("recompute_queue_capacity", "Recompute queue capacity")
	m.queueEnqueued = m.counter("recompute_queue_enqueued_total", "Requests put on the recompute queue")
	m.queueDequeued = m.counter("recompute_queue_dequeued_total", "Requests taken off the recompute queue")
	m.queueErrors = m.counterVec("recompute_queue_errors_total", "Rejected enqueue attempts, by reason", "reason")
	m.workerCount = m.gauge("worker_count", "Recompute workers running")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds", "End-to-end latency of one recompute")
	m.workerErrors = m.counter("worker_errors_total", "Recomputes that failed")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Live goroutines")
}

// RecordGrading counts a computed bundle and its scoring latency.
func RecordGrading(level int, latencyMs float64) {
	globalManager.gradings.WithLabelValues(strconv.Itoa(level)).Inc()
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordInitialGrade counts a cold-start estimate.
func RecordInitialGrade(bootstrapped bool) {
	globalManager.initialGrades.WithLabelValues(strconv.FormatBool(bootstrapped)).Inc()
}

// RecordBadgeAward counts a granted badge.
func RecordBadgeAward(badge string) {
	globalManager.badgeAwards.WithLabelValues(badge).Inc()
}

// UpdateStoredCreators sets the number of stored grade records.
func UpdateStoredCreators(count int) {
	globalManager.storedCreators.Set(float64(count))
}

// RecordPersistence observes a persistence call; failed calls are also counted.
func RecordPersistence(record string, latencyMs float64, err error) {
	globalManager.persistenceLatency.WithLabelValues(record).Observe(latencyMs)
	if err != nil {
		globalManager.persistenceErrors.WithLabelValues(record).Inc()
	}
}

// RecordFeaturedLookup counts a featured lookup with result hit, miss or error.
func RecordFeaturedLookup(result string) {
	globalManager.featuredLookups.WithLabelValues(result).Inc()
}

// RecordRecomputeRequest counts a recompute request by status.
func RecordRecomputeRequest(status string) {
	globalManager.recomputeRequests.WithLabelValues(status).Inc()
}

// UpdateQueueSize sets the pending recompute count.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the recompute queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueError counts a rejected enqueue.
func RecordQueueError(reason string) {
	globalManager.queueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes one recompute.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
