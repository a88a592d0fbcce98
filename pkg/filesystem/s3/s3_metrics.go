package s3

import (
	"io"
	"time"
)

// Metrics provides observability for adapter operations.
//
// Implementations can use this interface to collect metrics about backend
// operations, latency, throughput and errors. It is optional: without
// WithMetrics the adapter records nothing.
//
// pkg/metrics provides the Prometheus implementation.
type Metrics interface {
	// ObserveOperation records an adapter operation with its duration and outcome
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordBytes records bytes transferred for read/write operations
	RecordBytes(operation string, bytes int64)
}

// noopMetrics is the default no-op metrics implementation
type noopMetrics struct{}

func (noopMetrics) ObserveOperation(operation string, duration time.Duration, err error) {}
func (noopMetrics) RecordBytes(operation string, bytes int64)                            {}

// metricsReadCloser wraps an io.ReadCloser to track bytes read
type metricsReadCloser struct {
	io.ReadCloser
	metrics   Metrics
	operation string
	bytesRead int64
}

func (m *metricsReadCloser) Read(p []byte) (n int, err error) {
	n, err = m.ReadCloser.Read(p)
	if n > 0 {
		m.bytesRead += int64(n)
	}
	return n, err
}

func (m *metricsReadCloser) Close() error {
	err := m.ReadCloser.Close()
	// Record bytes read regardless of close error
	if m.bytesRead > 0 {
		m.metrics.RecordBytes(m.operation, m.bytesRead)
	}
	return err
}

// countingReader tracks bytes consumed by an upload.
type countingReader struct {
	io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.n += int64(n)
	return n, err
}
