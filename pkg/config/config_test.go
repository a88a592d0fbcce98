package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoad_DefaultConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "info"

storage:
  type: "memory"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected normalized level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Storage.Memory["bucket"] != "bucketfs" {
		t.Errorf("Expected default memory bucket 'bucketfs', got %v", cfg.Storage.Memory["bucket"])
	}
	if cfg.Storage.Visibility.Default != "private" {
		t.Errorf("Expected default visibility 'private', got %q", cfg.Storage.Visibility.Default)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestLoad_S3Section(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
storage:
  type: s3
  s3:
    bucket: photos
    region: eu-west-1
    endpoint: http://localhost:9000
    part_size: 8388608
  visibility:
    default: public
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	opts, err := decodeS3Options(cfg.Storage.S3)
	if err != nil {
		t.Fatalf("Failed to decode S3 options: %v", err)
	}
	if opts.Bucket != "photos" || opts.Region != "eu-west-1" {
		t.Errorf("Unexpected bucket/region: %q/%q", opts.Bucket, opts.Region)
	}
	if opts.PartSize != 8388608 {
		t.Errorf("Expected part size 8388608, got %d", opts.PartSize)
	}
	if opts.MaxRetries != 10 {
		t.Errorf("Expected default max retries 10, got %d", opts.MaxRetries)
	}
	if !opts.Presign {
		t.Error("Expected presign enabled by default")
	}
	if cfg.Storage.Visibility.Default != "public" {
		t.Errorf("Expected visibility 'public', got %q", cfg.Storage.Visibility.Default)
	}
	if cfg.Storage.Visibility.Directories != "public" {
		t.Errorf("Expected directory visibility 'public', got %q", cfg.Storage.Visibility.Directories)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	nonExistentPath := filepath.Join(t.TempDir(), "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Expected default storage type 'memory', got %q", cfg.Storage.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid.yaml", `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
storage:
  type: s3
  s3:
    region: us-east-1
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected validation error for S3 storage without bucket")
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[logging]
level = "WARN"
format = "json"

[storage]
type = "memory"

[storage.memory]
bucket = "scratch"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.Storage.Memory["bucket"] != "scratch" {
		t.Errorf("Expected memory bucket 'scratch', got %v", cfg.Storage.Memory["bucket"])
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := GetConfigDir()
	if dir != filepath.Join(xdg, "bucketfs") {
		t.Errorf("Expected %q, got %q", filepath.Join(xdg, "bucketfs"), dir)
	}
}

func TestConfigExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if ConfigExists() {
		t.Fatal("Expected no config in an empty config directory")
	}
	if _, err := InitConfig(false); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if !ConfigExists() {
		t.Fatal("Expected config to exist after InitConfig")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("BUCKETFS_LOGGING_LEVEL", "ERROR")
	t.Setenv("BUCKETFS_METRICS_PORT", "9191")
	t.Setenv("BUCKETFS_STORAGE_S3_BUCKET", "from-env")

	configPath := writeConfig(t, "config.yaml", `
logging:
  level: "INFO"

storage:
  type: s3
  s3:
    region: us-east-1

metrics:
  port: 9090
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Port != 9191 {
		t.Errorf("Expected port 9191 from env var, got %d", cfg.Metrics.Port)
	}
	if cfg.Storage.S3["bucket"] != "from-env" {
		t.Errorf("Expected bucket 'from-env' from env var, got %v", cfg.Storage.S3["bucket"])
	}
}
