package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EntityOperationsCounter counts CRUD operations per resource
	EntityOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_entity_operations_total",
			Help: "Total number of entity operations by resource and operation",
		},
		[]string{"resource", "operation"},
	)

	// DbOperationDuration records database operation latency
	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "erp_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// AuthAttemptsCounter counts login attempts by result
	AuthAttemptsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// CleanupRunsCounter counts on-hold cleanup runs by result
	CleanupRunsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_cleanup_runs_total",
			Help: "Total number of on-hold invoice cleanup runs",
		},
		[]string{"result"},
	)

	CleanupInvoicesPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "erp_cleanup_invoices_purged_total",
			Help: "Total number of on-hold invoices purged",
		},
	)

	CleanupLastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "erp_cleanup_last_success_timestamp_seconds",
			Help: "Unix time of the last successful cleanup run",
		},
	)

	initOnce sync.Once
)

// InitMetrics registers the domain metrics with the default registry
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			EntityOperationsCounter,
			DbOperationDuration,
			AuthAttemptsCounter,
			CleanupRunsCounter,
			CleanupInvoicesPurged,
			CleanupLastSuccess,
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordEntityOperation increments the counter for a resource operation
func RecordEntityOperation(resource, operation string) {
	EntityOperationsCounter.WithLabelValues(resource, operation).Inc()
}

func RecordAuthAttempt(result string) {
	AuthAttemptsCounter.WithLabelValues(result).Inc()
}

// RecordCleanupRun records the outcome of one cleanup run
func RecordCleanupRun(purged int, err error, at time.Time) {
	if err != nil {
		CleanupRunsCounter.WithLabelValues("error").Inc()
		return
	}
	if purged == 0 {
		CleanupRunsCounter.WithLabelValues("noop").Inc()
	} else {
		CleanupRunsCounter.WithLabelValues("purged").Inc()
		CleanupInvoicesPurged.Add(float64(purged))
	}
	CleanupLastSuccess.Set(float64(at.Unix()))
}
