package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_LowercaseLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "debug"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected lowercase log level to be accepted, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidStorageType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Type = "ftp"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid storage type")
	}
	if !strings.Contains(err.Error(), "Type") {
		t.Errorf("Expected error to name the Type field, got: %v", err)
	}
}

func TestValidate_InvalidVisibility(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Visibility.Default = "world-readable"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid visibility")
	}
}

func TestValidate_S3Options(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]any
		wantErr string
	}{
		{
			name:    "valid",
			options: map[string]any{"bucket": "photos", "region": "us-east-1"},
		},
		{
			name:    "missing bucket",
			options: map[string]any{"region": "us-east-1"},
			wantErr: "Bucket",
		},
		{
			name:    "missing region",
			options: map[string]any{"bucket": "photos", "region": ""},
			wantErr: "Region",
		},
		{
			name:    "invalid endpoint",
			options: map[string]any{"bucket": "photos", "region": "us-east-1", "endpoint": "not a url"},
			wantErr: "Endpoint",
		},
		{
			name:    "part size too small",
			options: map[string]any{"bucket": "photos", "region": "us-east-1", "part_size": 1024},
			wantErr: "PartSize",
		},
		{
			name:    "negative retries",
			options: map[string]any{"bucket": "photos", "region": "us-east-1", "max_retries": -1},
			wantErr: "MaxRetries",
		},
		{
			name:    "access key without secret",
			options: map[string]any{"bucket": "photos", "region": "us-east-1", "access_key_id": "AKIA"},
			wantErr: "secret_access_key",
		},
		{
			name:    "undecodable value",
			options: map[string]any{"bucket": "photos", "region": "us-east-1", "max_retries": "many"},
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			cfg.Storage.Type = "s3"
			cfg.Storage.S3 = tt.options
			ApplyDefaults(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_MemoryOptions(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Memory["bucket"] = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for empty memory bucket")
	}
	if !strings.HasPrefix(err.Error(), "storage.memory") {
		t.Errorf("Expected storage.memory error, got: %v", err)
	}
}

func TestValidate_MetricsPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 70000

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for out of range metrics port")
	}

	cfg.Metrics.Port = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for enabled metrics without port")
	}
}
