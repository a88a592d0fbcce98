package metrics

import (
	"time"

	"github.com/marmos91/bucketfs/pkg/filesystem/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// adapterMetrics is the Prometheus implementation of s3.Metrics.
//
// It collects:
//   - Operation counts by outcome (Write, Read, ListContents, ...)
//   - Operation latency
//   - Bytes transferred
//   - Error counts
type adapterMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
}

var _ s3.Metrics = (*adapterMetrics)(nil)

// NewAdapterMetrics creates an s3.Metrics backed by the global registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// makes the adapter use its built-in no-op implementation.
func NewAdapterMetrics() s3.Metrics {
	if !IsEnabled() {
		return nil
	}
	return NewAdapterMetricsWith(GetRegistry())
}

// NewAdapterMetricsWith registers the adapter collectors on reg.
//
// Registering twice on the same registry panics.
func NewAdapterMetricsWith(reg prometheus.Registerer) s3.Metrics {
	return &adapterMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bucketfs_operations_total",
				Help: "Total number of filesystem operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "bucketfs_operation_duration_seconds",
				Help: "Duration of filesystem operations in seconds",
				Buckets: []float64{
					0.005, // 5ms
					0.01,  // 10ms
					0.025, // 25ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.25,  // 250ms
					0.5,   // 500ms
					1.0,   // 1s
					2.5,   // 2.5s
					10.0,  // 10s
					60.0,  // 1min
				},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bucketfs_bytes_transferred_total",
				Help: "Total bytes read from or written to the object store",
			},
			[]string{"direction"}, // read or write
		),
		errorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bucketfs_errors_total",
				Help: "Total number of failed filesystem operations by operation",
			},
			[]string{"operation"},
		),
	}
}

// ObserveOperation implements s3.Metrics.ObserveOperation
func (m *adapterMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		m.errorsTotal.WithLabelValues(operation).Inc()
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBytes implements s3.Metrics.RecordBytes
func (m *adapterMetrics) RecordBytes(direction string, bytes int64) {
	if bytes <= 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(direction).Add(float64(bytes))
}
