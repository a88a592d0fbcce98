// Package metrics provides Prometheus metrics collection for bucketfs.
//
// Metrics are optional. Until InitRegistry is called every constructor returns
// nil, and the filesystem adapter falls back to its no-op implementation.
//
// Usage:
//
//	// Initialize the global registry (typically in main.go)
//	metrics.InitRegistry()
//
//	// Hand the collector to the adapter
//	adapter, err := s3.NewAdapter(client, bucket, s3.WithMetrics(metrics.NewAdapterMetrics()))
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// registry is written once by InitRegistry and read by everything else
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// Besides bucketfs metrics the registry exports the standard Go runtime and
// process collectors. Calling it more than once has no effect.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// GetRegistry returns the global Prometheus registry, or nil if InitRegistry
// has not been called.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if metrics collection is enabled.
func IsEnabled() bool {
	return GetRegistry() != nil
}
