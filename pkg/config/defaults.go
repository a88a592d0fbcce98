package config

import (
	"strings"

	"github.com/marmos91/bucketfs/pkg/filesystem/s3"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values ("", 0, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Backend sections get their keys filled so generated files list every option
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyStorageDefaults(&cfg.Storage)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}

	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}

	setDefault(cfg.S3, "region", "us-east-1")
	setDefault(cfg.S3, "bucket", "")
	setDefault(cfg.S3, "key_prefix", "")
	setDefault(cfg.S3, "endpoint", "")
	setDefault(cfg.S3, "force_path_style", false)
	setDefault(cfg.S3, "max_retries", 10)
	setDefault(cfg.S3, "part_size", int64(s3.DefaultPartSize))
	setDefault(cfg.S3, "requests_per_second", 0)
	setDefault(cfg.S3, "burst", 0)
	setDefault(cfg.S3, "public_url", "")
	setDefault(cfg.S3, "presign", true)

	setDefault(cfg.Memory, "bucket", "bucketfs")
	setDefault(cfg.Memory, "key_prefix", "")

	if cfg.Visibility.Default == "" {
		cfg.Visibility.Default = "private"
	}
	if cfg.Visibility.Directories == "" {
		cfg.Visibility.Directories = "public"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func setDefault(m map[string]any, key string, value any) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

// GetDefaultConfig returns a Config with all default values applied.
//
// Used to generate sample configuration files and in tests.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
