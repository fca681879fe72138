package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction error kinds accepted by RecordPredictionError.
const (
	ErrorKindInvalidInput     = "invalid_input"
	ErrorKindModelUnavailable = "model_unavailable"
	ErrorKindComputation      = "computation"
	errorKindOther            = "other"
)

var errorKinds = map[string]struct{}{
	ErrorKindInvalidInput:     {},
	ErrorKindModelUnavailable: {},
	ErrorKindComputation:      {},
}

// Manager manages all Prometheus metrics for the attrition service.
type Manager struct {
	namespace          string
	subsystem          string
	latencyBuckets     []float64
	probabilityBuckets []float64
	constLabels        prometheus.Labels
	registry           prometheus.Registerer

	// Core Business Metrics - what the ensemble decides
	predictions          *prometheus.CounterVec
	modelVotes           *prometheus.CounterVec
	explanationFactors   *prometheus.CounterVec
	predictionLatency    prometheus.Histogram
	averageProbability   prometheus.Histogram
	predictionErrors     *prometheus.CounterVec
	contradictoryLowRisk prometheus.Counter

	// Model Lifecycle Metrics
	modelLoadDuration prometheus.Histogram
	modelsLoaded      prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	// Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

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
		namespace:          "attrition",
		subsystem:          "inference",
		latencyBuckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		probabilityBuckets: []float64{0.05, 0.1, 0.15, 0.2, 0.25, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		registry:           prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of ensemble predictions by final risk"),
		[]string{"risk"},
	)
	m.modelVotes = auto.NewCounterVec(
		m.counterOpts("model_votes_total", "Individual model verdicts by model and risk"),
		[]string{"model", "risk"},
	)
	m.explanationFactors = auto.NewCounterVec(
		m.counterOpts("explanation_factors_total", "Explanation factors cited in responses"),
		[]string{"factor"},
	)
	m.predictionLatency = auto.NewHistogram(
		m.histogramOpts("prediction_latency_milliseconds", "End-to-end prediction latency in milliseconds", m.latencyBuckets),
	)
	m.averageProbability = auto.NewHistogram(
		m.histogramOpts("average_probability", "Distribution of the ensemble average probability", m.probabilityBuckets),
	)
	m.predictionErrors = auto.NewCounterVec(
		m.counterOpts("prediction_errors_total", "Failed predictions by error kind"),
		[]string{"kind"},
	)
	m.contradictoryLowRisk = auto.NewCounter(
		m.counterOpts("contradictory_low_risk_total", "Low-risk verdicts that still cite risk factors"),
	)

	// Model Lifecycle Metrics
	m.modelLoadDuration = auto.NewHistogram(
		m.histogramOpts("model_load_duration_milliseconds", "Time spent loading model artifacts",
			[]float64{1, 5, 10, 50, 100, 500, 1000, 5000}),
	)
	m.modelsLoaded = auto.NewGauge(
		m.gaugeOpts("models_loaded", "1 when all model artifacts are loaded and serving"),
	)

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.rateLimited = auto.NewCounterVec(
		m.counterOpts("rate_limited_total", "Requests rejected by the rate limiter"),
		[]string{"endpoint"},
	)

	// Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordPrediction records a successful prediction: its final risk, each model's
// verdict, the average probability and the latency.
func (m *Manager) RecordPrediction(finalRisk string, votes map[string]string, averageProbability, latencyMs float64) {
	m.predictions.WithLabelValues(finalRisk).Inc()
	for model, risk := range votes {
		m.modelVotes.WithLabelValues(model, risk).Inc()
	}
	m.averageProbability.Observe(averageProbability)
	m.predictionLatency.Observe(latencyMs)
}

// RecordExplanation counts each factor of an explanation.
func (m *Manager) RecordExplanation(factors []string) {
	for _, f := range factors {
		m.explanationFactors.WithLabelValues(f).Inc()
	}
}

// RecordContradiction counts a Low verdict explained with risk factors.
func (m *Manager) RecordContradiction() {
	m.contradictoryLowRisk.Inc()
}

// RecordPredictionError counts a failed prediction. Unknown kinds are counted
// as "other" and reported with ErrUnknownLabel.
func (m *Manager) RecordPredictionError(kind string) error {
	if _, ok := errorKinds[kind]; !ok {
		m.predictionErrors.WithLabelValues(errorKindOther).Inc()
		return fmt.Errorf("%w: prediction error kind %q", ErrUnknownLabel, kind)
	}
	m.predictionErrors.WithLabelValues(kind).Inc()
	return nil
}

// RecordModelLoad records how long loading took and whether it succeeded.
func (m *Manager) RecordModelLoad(durationMs float64, ok bool) {
	m.modelLoadDuration.Observe(durationMs)
	m.SetModelsLoaded(ok)
}

// SetModelsLoaded flips the loaded gauge without observing a load.
func (m *Manager) SetModelsLoaded(ok bool) {
	if ok {
		m.modelsLoaded.Set(1)
		return
	}
	m.modelsLoaded.Set(0)
}

// RecordPrediction records a successful prediction on the global manager.
func RecordPrediction(finalRisk string, votes map[string]string, averageProbability, latencyMs float64) {
	globalManager.RecordPrediction(finalRisk, votes, averageProbability, latencyMs)
}

// RecordExplanation counts explanation factors on the global manager.
func RecordExplanation(factors []string) {
	globalManager.RecordExplanation(factors)
}

// RecordContradiction counts a contradictory Low verdict on the global manager.
func RecordContradiction() {
	globalManager.RecordContradiction()
}

// RecordPredictionError counts a failed prediction on the global manager.
func RecordPredictionError(kind string) error {
	return globalManager.RecordPredictionError(kind)
}

// RecordModelLoad records a model load on the global manager.
func RecordModelLoad(durationMs float64, ok bool) {
	globalManager.RecordModelLoad(durationMs, ok)
}

// SetModelsLoaded sets the loaded gauge on the global manager.
func SetModelsLoaded(ok bool) {
	globalManager.SetModelsLoaded(ok)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

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
