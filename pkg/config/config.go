package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete bucketfs configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (BUCKETFS_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Storage follows the per-backend section pattern: Storage.Type selects the
// backend and only the matching section (s3 or memory) is decoded, by the
// factory of that backend.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`

	// Storage selects and configures the object store backend
	Storage StorageConfig `mapstructure:"storage" yaml:"storage" json:"storage"`

	// Metrics controls the Prometheus endpoint
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" json:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" jsonschema:"enum=DEBUG,enum=INFO,enum=WARN,enum=ERROR"`

	// Format specifies the log output format
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"required,oneof=text json" jsonschema:"enum=text,enum=json"`

	// Output is stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" json:"output" validate:"required"`
}

// StorageConfig specifies the backend and its type-specific settings.
type StorageConfig struct {
	// Type selects the backend
	// Valid values: s3, memory
	Type string `mapstructure:"type" yaml:"type" json:"type" validate:"required,oneof=s3 memory" jsonschema:"enum=s3,enum=memory"`

	// S3 holds S3Options keys. Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3" yaml:"s3" json:"s3,omitempty"`

	// Memory holds MemoryOptions keys. Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory" json:"memory,omitempty"`

	// Visibility sets the defaults applied to writes and new directories
	Visibility VisibilityConfig `mapstructure:"visibility" yaml:"visibility" json:"visibility"`
}

// VisibilityConfig holds the default visibilities.
type VisibilityConfig struct {
	// Default applies to files written without an explicit visibility
	Default string `mapstructure:"default" yaml:"default" json:"default" validate:"required,oneof=public private" jsonschema:"enum=public,enum=private"`

	// Directories applies to directory markers created without an explicit visibility
	Directories string `mapstructure:"directories" yaml:"directories" json:"directories" validate:"required,oneof=public private" jsonschema:"enum=public,enum=private"`
}

// MetricsConfig controls the metrics HTTP server.
type MetricsConfig struct {
	// Enabled starts the /metrics endpoint
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Port is the metrics server port
	Port int `mapstructure:"port" yaml:"port" json:"port" validate:"omitempty,min=1,max=65535"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses the default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variables and the config file location.
//
// Environment variables use the BUCKETFS_ prefix and underscores, e.g.
// BUCKETFS_LOGGING_LEVEL=DEBUG or BUCKETFS_STORAGE_S3_BUCKET=photos.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("BUCKETFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys bound here are overridable from the environment even when the
	// config file does not mention them
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"storage.type", "storage.visibility.default", "storage.visibility.directories",
		"storage.s3.bucket", "storage.s3.region", "storage.s3.endpoint",
		"storage.s3.access_key_id", "storage.s3.secret_access_key", "storage.s3.key_prefix",
		"metrics.enabled", "metrics.port",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// A missing file is not an error: defaults and environment apply
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns $XDG_CONFIG_HOME/bucketfs, ~/.config/bucketfs, or "."
// when no home directory can be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "bucketfs")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "bucketfs")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
