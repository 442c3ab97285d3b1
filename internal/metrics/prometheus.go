package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics contains all Prometheus metrics for the transfer tracker
type PrometheusMetrics struct {
	// Synchronization metrics
	SyncRunsTotal       *prometheus.CounterVec
	SyncDuration        *prometheus.HistogramVec
	TransfersIngested   *prometheus.CounterVec
	TransfersFiltered   *prometheus.CounterVec
	TransfersDuplicated *prometheus.CounterVec

	// Provider metrics
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec
	ProviderErrorsTotal     *prometheus.CounterVec

	// Storage metrics
	DatabaseOperationsTotal   *prometheus.CounterVec
	DatabaseOperationDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Application health metrics
	ApplicationUptime prometheus.Gauge
	ComponentHealth   *prometheus.GaugeVec
	MemoryUsage       prometheus.Gauge
	GoroutineCount    prometheus.Gauge
}

// NewPrometheusMetrics creates and registers all Prometheus metrics
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		SyncRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_sync_runs_total",
				Help: "Total number of wallet synchronization runs",
			},
			[]string{"network", "status"},
		),
		SyncDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_sync_duration_seconds",
				Help:    "Duration of wallet synchronization runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"network"},
		),
		TransfersIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_transfers_ingested_total",
				Help: "Total number of transfers recorded in the ledger",
			},
			[]string{"network", "token"},
		),
		TransfersFiltered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_transfers_filtered_total",
				Help: "Total number of raw transfers dropped during normalization",
			},
			[]string{"network", "reason"},
		),
		TransfersDuplicated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_transfers_duplicated_total",
				Help: "Total number of upserts that hit an already recorded tx hash",
			},
			[]string{"network"},
		),
		ProviderRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_provider_requests_total",
				Help: "Total number of requests to external data sources",
			},
			[]string{"provider", "operation", "status"},
		),
		ProviderRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_provider_request_duration_seconds",
				Help:    "Duration of requests to external data sources",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "operation"},
		),
		ProviderErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_provider_errors_total",
				Help: "Total number of failed provider calls by error kind",
			},
			[]string{"provider", "kind"},
		),
		DatabaseOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_database_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "status"},
		),
		DatabaseOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_database_operation_duration_seconds",
				Help:    "Duration of database operations",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ApplicationUptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_uptime_seconds",
				Help: "Application uptime in seconds",
			},
		),
		ComponentHealth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracker_component_health",
				Help: "Health status of application components (1 healthy, 0 unhealthy)",
			},
			[]string{"component"},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
		),
		GoroutineCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_goroutines",
				Help: "Current number of goroutines",
			},
		),
	}
}

// RecordSyncRun records a completed synchronization run
func (m *PrometheusMetrics) RecordSyncRun(network, status string, duration time.Duration) {
	m.SyncRunsTotal.WithLabelValues(network, status).Inc()
	m.SyncDuration.WithLabelValues(network).Observe(duration.Seconds())
}

// RecordProviderRequest records one external provider call
func (m *PrometheusMetrics) RecordProviderRequest(provider, operation, status string, duration time.Duration) {
	m.ProviderRequestsTotal.WithLabelValues(provider, operation, status).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordProviderError records a failed provider call by error kind
func (m *PrometheusMetrics) RecordProviderError(provider, kind string) {
	m.ProviderErrorsTotal.WithLabelValues(provider, kind).Inc()
}

// RecordDatabaseOperation records one database operation
func (m *PrometheusMetrics) RecordDatabaseOperation(operation, status string, duration time.Duration) {
	m.DatabaseOperationsTotal.WithLabelValues(operation, status).Inc()
	m.DatabaseOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records one HTTP request
func (m *PrometheusMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateComponentHealth updates the health gauge for a component
func (m *PrometheusMetrics) UpdateComponentHealth(component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	m.ComponentHealth.WithLabelValues(component).Set(v)
}

// UpdateMemoryUsage updates the memory usage gauge
func (m *PrometheusMetrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateGoroutineCount updates the goroutine count gauge
func (m *PrometheusMetrics) UpdateGoroutineCount(count int) {
	m.GoroutineCount.Set(float64(count))
}

// UpdateApplicationUptime updates the uptime gauge
func (m *PrometheusMetrics) UpdateApplicationUptime(startTime time.Time) {
	m.ApplicationUptime.Set(time.Since(startTime).Seconds())
}
