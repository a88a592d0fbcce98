package config

import (
	"github.com/marmos91/bucketfs/pkg/filesystem/s3"
	"github.com/marmos91/bucketfs/pkg/metrics"
)

// MetricsResult contains the metrics components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// AdapterMetrics is the collector handed to the adapter (nil if disabled)
	AdapterMetrics s3.Metrics
}

// InitializeMetrics creates the metrics components for cfg.
//
// When metrics are enabled the global registry is initialized and both the
// server and the adapter collector are created. Otherwise both are nil and the
// adapter falls back to its no-op collector.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Server: metrics.NewServer(metrics.ServerConfig{
			Port: cfg.Metrics.Port,
		}),
		AdapterMetrics: metrics.NewAdapterMetrics(),
	}
}
