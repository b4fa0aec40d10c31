// Package metrics provides Prometheus metrics for the diary service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis outcomes used as label values.
const (
	OutcomeOK           = "ok"
	OutcomeNoData       = "no_data"
	OutcomeInsufficient = "insufficient_data"
	OutcomeError        = "analysis_error"
)

// Manager manages all Prometheus metrics for the diary service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	storeBuckets   []float64
	registry       prometheus.Registerer

	// Diary metrics
	entriesAppended prometheus.Counter
	logRows         prometheus.Gauge

	// Analysis metrics
	analyses         *prometheus.CounterVec
	analysisLatency  prometheus.Histogram
	estimatorLatency prometheus.Histogram
	lastEffect       *prometheus.GaugeVec
	lastFrameRows    *prometheus.GaugeVec

	// Store metrics
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "dietcause",
		subsystem:      "diary",
		latencyBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		storeBuckets:   prometheus.ExponentialBuckets(0.01, 4, 9),
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.entriesAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entries_appended_total",
		Help:      "Total number of diary entries appended",
	})

	m.logRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "log_rows",
		Help:      "Number of rows in the diary log at the last full read",
	})

	m.analyses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "analyses_total",
			Help:      "Total number of analysis passes by treatment and outcome",
		},
		[]string{"treatment", "outcome"},
	)

	m.analysisLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analysis_latency_milliseconds",
		Help:      "Full pipeline latency (load, frame, estimate) in milliseconds",
		Buckets:   m.latencyBuckets,
	})

	m.estimatorLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "estimator_fit_latency_milliseconds",
		Help:      "Outcome model fit latency in milliseconds",
		Buckets:   m.latencyBuckets,
	})

	m.lastEffect = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "last_effect_kg",
			Help:      "Most recent ATE point estimate per treatment, in kg of daily weight loss",
		},
		[]string{"treatment"},
	)

	m.lastFrameRows = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "last_frame_rows",
			Help:      "Rows in the most recent analysis frame per treatment",
		},
		[]string{"treatment"},
	)

	m.storeLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_latency_milliseconds",
			Help:      "Diary store operation latency in milliseconds",
			Buckets:   m.storeBuckets,
		},
		[]string{"backend", "op"},
	)

	m.storeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_errors_total",
			Help:      "Total number of diary store failures",
		},
		[]string{"backend", "op"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.latencyBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordEntryAppended increments the appended entries counter.
func RecordEntryAppended() {
	globalManager.entriesAppended.Inc()
}

// UpdateLogRows sets the diary size seen at the last full read.
func UpdateLogRows(rows int) {
	globalManager.logRows.Set(float64(rows))
}

// RecordAnalysis counts one analysis pass.
func RecordAnalysis(treatment, outcome string) {
	globalManager.analyses.WithLabelValues(treatment, outcome).Inc()
}

// RecordAnalysisLatency records the full pipeline latency in milliseconds.
func RecordAnalysisLatency(latencyMs float64) {
	globalManager.analysisLatency.Observe(latencyMs)
}

// RecordEstimatorFitLatency records one outcome model fit in milliseconds.
func RecordEstimatorFitLatency(latencyMs float64) {
	globalManager.estimatorLatency.Observe(latencyMs)
}

// UpdateLastEstimate publishes the latest point estimate and frame size.
func UpdateLastEstimate(treatment string, effect float64, rows int) {
	globalManager.lastEffect.WithLabelValues(treatment).Set(effect)
	globalManager.lastFrameRows.WithLabelValues(treatment).Set(float64(rows))
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(backend, op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(backend, op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(backend, op string) {
	globalManager.storeErrors.WithLabelValues(backend, op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
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
