// Package metrics provides Prometheus metrics for the H→ZZ→4ℓ analysis runner.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector of the analysis runner.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Analysis bookkeeping
	chunksProcessed  *prometheus.CounterVec
	eventsProcessed  *prometheus.CounterVec
	eventsSelected   *prometheus.CounterVec
	stepPassed       *prometheus.CounterVec
	mcWeightSum      *prometheus.GaugeVec
	candidatesBuilt  *prometheus.CounterVec
	duplicateEvents  prometheus.Counter
	chunkLatency     prometheus.Histogram
	categoryAssigned *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerActiveCount prometheus.Gauge
	workerErrors      prometheus.Counter

	// Errors
	errorsByComponent *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "h4l",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.chunksProcessed = m.counterVec("chunks_processed_total",
		"Total number of chunks run through the pipeline", "dataset", "kind")
	m.eventsProcessed = m.counterVec("events_processed_total",
		"Total number of events seen by the selection", "dataset")
	m.eventsSelected = m.counterVec("events_selected_total",
		"Total number of events passing all selection steps", "dataset")
	m.stepPassed = m.counterVec("selection_step_passed_total",
		"Number of events passing an individual selection step", "dataset", "step")
	m.candidatesBuilt = m.counterVec("zz_candidates_total",
		"Number of ZZ candidates built per final state", "channel")
	m.categoryAssigned = m.counterVec("category_assignments_total",
		"Number of selected events assigned to a category", "category")

	// Generator weights may be negative, so sums are gauges.
	m.mcWeightSum = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "mc_weight_sum",
		Help:        "Sum of generator weights, all and selected events",
		ConstLabels: m.customLabels,
	}, []string{"dataset", "scope"})

	m.duplicateEvents = m.counter("duplicate_events_total",
		"Number of data events rejected as duplicates")

	m.chunkLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "chunk_latency_milliseconds",
		Help:        "Wall time of the full pipeline on one chunk",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})

	m.queueSize = m.gauge("queue_size", "Current number of queued chunks")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueueTotal = m.counter("queue_enqueue_total", "Total number of chunks enqueued")
	m.queueDequeueTotal = m.counter("queue_dequeue_total", "Total number of chunks dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerActiveCount = m.gauge("worker_active_count", "Number of running workers")
	m.workerErrors = m.counter("worker_errors_total", "Total number of chunks that failed in a worker")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordChunkProcessed counts one chunk of the given dataset and kind.
func RecordChunkProcessed(dataset, kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.chunksProcessed.WithLabelValues(dataset, kind).Inc()
}

// RecordEvents adds the processed and selected event counts of a chunk.
func RecordEvents(dataset string, processed, selected int) {
	if !globalManager.enabled {
		return
	}
	globalManager.eventsProcessed.WithLabelValues(dataset).Add(float64(processed))
	globalManager.eventsSelected.WithLabelValues(dataset).Add(float64(selected))
}

// RecordStepPassed adds the number of events passing one selection step.
func RecordStepPassed(dataset, step string, passed uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.stepPassed.WithLabelValues(dataset, step).Add(float64(passed))
}

// AddMCWeightSum adds to the generator weight sums; scope is "all" or "selected".
func AddMCWeightSum(dataset, scope string, sum float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.mcWeightSum.WithLabelValues(dataset, scope).Add(sum)
}

// RecordCandidates adds the number of ZZ candidates built for a channel.
func RecordCandidates(channel string, n int) {
	if !globalManager.enabled || n == 0 {
		return
	}
	globalManager.candidatesBuilt.WithLabelValues(channel).Add(float64(n))
}

// RecordCategoryAssigned increments the assignment counter of a category.
func RecordCategoryAssigned(category string) {
	if !globalManager.enabled {
		return
	}
	globalManager.categoryAssigned.WithLabelValues(category).Inc()
}

// RecordDuplicateEvent increments the duplicate data event counter.
func RecordDuplicateEvent() {
	if !globalManager.enabled {
		return
	}
	globalManager.duplicateEvents.Inc()
}

// RecordChunkLatency records the pipeline wall time of one chunk.
func RecordChunkLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.chunkLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
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
