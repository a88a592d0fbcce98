package config

import (
	"testing"

	"github.com/marmos91/bucketfs/pkg/filesystem/s3"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_LogLevelNormalized(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to 'DEBUG', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_Storage(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Storage.Type != "memory" {
		t.Errorf("Expected default storage type 'memory', got %q", cfg.Storage.Type)
	}

	if cfg.Storage.S3 == nil {
		t.Fatal("Expected S3 map to be initialized")
	}
	if region := cfg.Storage.S3["region"]; region != "us-east-1" {
		t.Errorf("Expected default region 'us-east-1', got %v", region)
	}
	if partSize := cfg.Storage.S3["part_size"]; partSize != int64(s3.DefaultPartSize) {
		t.Errorf("Expected default part_size %d, got %v", s3.DefaultPartSize, partSize)
	}
	if presign := cfg.Storage.S3["presign"]; presign != true {
		t.Errorf("Expected presign enabled by default, got %v", presign)
	}

	if cfg.Storage.Memory == nil {
		t.Fatal("Expected Memory map to be initialized")
	}
	if bucket := cfg.Storage.Memory["bucket"]; bucket != "bucketfs" {
		t.Errorf("Expected default memory bucket 'bucketfs', got %v", bucket)
	}
}

func TestApplyDefaults_Visibility(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Storage.Visibility.Default != "private" {
		t.Errorf("Expected default file visibility 'private', got %q", cfg.Storage.Visibility.Default)
	}
	if cfg.Storage.Visibility.Directories != "public" {
		t.Errorf("Expected default directory visibility 'public', got %q", cfg.Storage.Visibility.Directories)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "WARN", Format: "json", Output: "/var/log/bucketfs.log"},
		Storage: StorageConfig{
			Type: "s3",
			S3: map[string]any{
				"region":      "eu-central-1",
				"max_retries": 3,
				"presign":     false,
			},
			Visibility: VisibilityConfig{Default: "public", Directories: "private"},
		},
		Metrics: MetricsConfig{Enabled: true, Port: 9191},
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Format != "json" || cfg.Logging.Output != "/var/log/bucketfs.log" {
		t.Errorf("Logging values overwritten: %+v", cfg.Logging)
	}
	if cfg.Storage.Type != "s3" {
		t.Errorf("Expected storage type 's3', got %q", cfg.Storage.Type)
	}
	if cfg.Storage.S3["region"] != "eu-central-1" {
		t.Errorf("Expected region preserved, got %v", cfg.Storage.S3["region"])
	}
	if cfg.Storage.S3["max_retries"] != 3 {
		t.Errorf("Expected max_retries preserved, got %v", cfg.Storage.S3["max_retries"])
	}
	if cfg.Storage.S3["presign"] != false {
		t.Errorf("Expected presign preserved, got %v", cfg.Storage.S3["presign"])
	}
	if _, ok := cfg.Storage.S3["bucket"]; !ok {
		t.Error("Expected missing bucket key to be filled")
	}
	if cfg.Storage.Visibility.Default != "public" || cfg.Storage.Visibility.Directories != "private" {
		t.Errorf("Visibility values overwritten: %+v", cfg.Storage.Visibility)
	}
	if cfg.Metrics.Port != 9191 {
		t.Errorf("Expected metrics port preserved, got %d", cfg.Metrics.Port)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
}
