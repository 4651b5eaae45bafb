// Package metrics provides Prometheus instrumentation for the store
// and an HTTP server exposing the /metrics endpoint.
//
// Collection is opt-in: when Init has not been called the record
// functions are no-ops, so library users pay nothing.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry

	storeOperations *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
)

// InitRegistry creates the metrics registry and registers all
// collectors. Calling it more than once is a no-op.
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	if registry != nil {
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	storeOperations = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attrmeta_store_operations_total",
			Help: "Total number of metadata store operations by operation and status",
		},
		[]string{"operation", "status"}, // status: "ok", "error"
	)
	storeDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "attrmeta_store_operation_duration_milliseconds",
			Help: "Duration of metadata store operations in milliseconds",
			Buckets: []float64{
				0.1, // in-memory provider
				0.5,
				1,
				5,
				10, // local disk
				50,
				100, // remote database
				500,
				1000,
			},
		},
		[]string{"operation"},
	)

	registry = reg
}

// IsEnabled reports whether metrics collection is active.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the metrics registry, or nil when collection is
// disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// RecordStoreOperation records one store operation outcome. No-op when
// metrics are disabled.
func RecordStoreOperation(operation string, err error, start time.Time) {
	mu.RLock()
	ops, dur := storeOperations, storeDuration
	mu.RUnlock()

	if ops == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	ops.WithLabelValues(operation, status).Inc()
	dur.WithLabelValues(operation).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
