// Package metrics provides Prometheus instrumentation for the scheduling
// and resilience core, grounded on the teacher's
// reimplement/internal/metrics registry shape (one struct holding all
// vectors, registered eagerly, one Record* method per concern), retargeted
// from shift-scheduling/scraping metrics to this domain's operations.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics.
type Registry struct {
	registry prometheus.Registerer

	httpRequestsTotal     prometheus.CounterVec
	httpErrorsTotal       prometheus.CounterVec
	validationErrorsTotal prometheus.CounterVec
	dbOperationsTotal     prometheus.CounterVec

	httpRequestDuration    prometheus.HistogramVec
	dbQueryDuration        prometheus.HistogramVec
	serviceOperationDuration prometheus.HistogramVec
	queryCountPerOperation prometheus.HistogramVec

	// Domain gauges (spec.md §4.2-§4.4)
	scheduledTasksPending  prometheus.GaugeVec
	contingencySimDuration prometheus.HistogramVec
	importBatchesActive    prometheus.Gauge
	dbConnectionPoolSize   prometheus.GaugeVec

	mu sync.RWMutex
}

// NewRegistry creates and registers all metrics against the global
// Prometheus registerer.
func NewRegistry() *Registry {
	return NewRegistryWithRegisterer(prometheus.DefaultRegisterer)
}

// NewRegistryWithRegisterer is NewRegistry against a custom registerer,
// primarily for tests.
func NewRegistryWithRegisterer(registerer prometheus.Registerer) *Registry {
	m := &Registry{registry: registerer}

	m.httpRequestsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests by method and path"},
		[]string{"method", "path"})
	m.registry.MustRegister(&m.httpRequestsTotal)

	m.httpErrorsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_errors_total", Help: "Total HTTP errors by error type"},
		[]string{"error_type"})
	m.registry.MustRegister(&m.httpErrorsTotal)

	m.validationErrorsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "validation_errors_total", Help: "Total validation failures by error code"},
		[]string{"error_code"})
	m.registry.MustRegister(&m.validationErrorsTotal)

	m.dbOperationsTotal = *prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "database_operations_total", Help: "Total database operations by type"},
		[]string{"operation"})
	m.registry.MustRegister(&m.dbOperationsTotal)

	m.httpRequestDuration = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"})
	m.registry.MustRegister(&m.httpRequestDuration)

	m.dbQueryDuration = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "database_query_duration_seconds", Help: "Database query duration", Buckets: prometheus.DefBuckets},
		[]string{"operation"})
	m.registry.MustRegister(&m.dbQueryDuration)

	m.serviceOperationDuration = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "service_operation_duration_seconds",
			Help:    "Service operation duration (compliance, contingency, equilibrium, scheduler, import_staging, webhook, search)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"})
	m.registry.MustRegister(&m.serviceOperationDuration)

	m.queryCountPerOperation = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_count_per_operation",
			Help:    "Database queries issued per service operation (N+1 detection)",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500},
		},
		[]string{"operation"})
	m.registry.MustRegister(&m.queryCountPerOperation)

	m.scheduledTasksPending = *prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "scheduled_tasks_pending", Help: "Tasks awaiting execution, by priority band"},
		[]string{"priority"})
	m.registry.MustRegister(&m.scheduledTasksPending)

	m.contingencySimDuration = *prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "contingency_simulation_duration_seconds", Help: "N-1/N-2 simulation duration", Buckets: prometheus.DefBuckets},
		[]string{"sim_type"})
	m.registry.MustRegister(&m.contingencySimDuration)

	m.importBatchesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "import_batches_active", Help: "Import batches currently staged or approved"})
	m.registry.MustRegister(m.importBatchesActive)

	m.dbConnectionPoolSize = *prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "database_connection_pool_size", Help: "Active database connections"},
		[]string{"pool_name"})
	m.registry.MustRegister(&m.dbConnectionPoolSize)

	return m
}

func (m *Registry) RecordHTTPRequest(method, path string, statusCode int, durationSeconds float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.httpRequestsTotal.WithLabelValues(method, path).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, statusCodeLabel(statusCode)).Observe(durationSeconds)
}

func (m *Registry) RecordHTTPError(errorType string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.httpErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Registry) RecordDatabaseQuery(operation string, durationSeconds float64, queryCount int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.dbOperationsTotal.WithLabelValues(operation).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(durationSeconds)
	m.queryCountPerOperation.WithLabelValues(operation).Observe(float64(queryCount))
}

func (m *Registry) RecordServiceOperation(service, operation string, durationSeconds float64, hasError bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.serviceOperationDuration.WithLabelValues(service, operation).Observe(durationSeconds)
	if hasError {
		m.RecordHTTPError(service + "_error")
	}
}

func (m *Registry) RecordValidationError(errorCode string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.validationErrorsTotal.WithLabelValues(errorCode).Inc()
}

// RecordContingencySimulation times an N-1 or N-2 simulation run
// (spec.md §4.2).
func (m *Registry) RecordContingencySimulation(simType string, durationSeconds float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.contingencySimDuration.WithLabelValues(simType).Observe(durationSeconds)
}

// SetScheduledTasksPending reports queue depth per priority band
// (spec.md §4.4).
func (m *Registry) SetScheduledTasksPending(priority string, count int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.scheduledTasksPending.WithLabelValues(priority).Set(float64(count))
}

// SetImportBatchesActive reports the count of batches in {staged,approved}
// (spec.md §3 dedup invariant).
func (m *Registry) SetImportBatchesActive(count int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.importBatchesActive.Set(float64(count))
}

func (m *Registry) SetDatabaseConnectionPoolSize(poolName string, size int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.dbConnectionPoolSize.WithLabelValues(poolName).Set(float64(size))
}

// Handler serves metrics in Prometheus exposition format.
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry.(prometheus.Gatherer), promhttp.HandlerOpts{})
}

func statusCodeLabel(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
