package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Log level normalization happens in ApplyDefaults; validation accepts both
// cases.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules covers the backend sections, which are untyped maps.
func validateCustomRules(cfg *Config) error {
	switch cfg.Storage.Type {
	case "s3":
		opts, err := decodeS3Options(cfg.Storage.S3)
		if err != nil {
			return fmt.Errorf("storage.s3: %w", err)
		}
		if err := validate.Struct(opts); err != nil {
			return fmt.Errorf("storage.s3: %w", formatValidationError(err))
		}
		if opts.AccessKeyID != "" && opts.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3: secret_access_key is required when access_key_id is set")
		}
	case "memory":
		opts, err := decodeMemoryOptions(cfg.Storage.Memory)
		if err != nil {
			return fmt.Errorf("storage.memory: %w", err)
		}
		if err := validate.Struct(opts); err != nil {
			return fmt.Errorf("storage.memory: %w", formatValidationError(err))
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		return fmt.Errorf("metrics: port is required when metrics are enabled")
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
