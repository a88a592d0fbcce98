package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/internal/ratelimiter"
	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/marmos91/bucketfs/pkg/filesystem/s3"
	"github.com/marmos91/bucketfs/pkg/filesystem/s3/s3mem"
	"github.com/mitchellh/mapstructure"
)

// S3Options is the decoded form of the storage.s3 section.
type S3Options struct {
	Region          string `mapstructure:"region" validate:"required"`
	Bucket          string `mapstructure:"bucket" validate:"required"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`

	// ForcePathStyle selects path-style addressing. Always on with a custom endpoint.
	ForcePathStyle bool `mapstructure:"force_path_style"`

	// MaxRetries is the number of attempts for transient failures (0 = 10)
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// PartSize is the multipart upload part size in bytes (5MiB to 5GiB)
	PartSize int64 `mapstructure:"part_size" validate:"omitempty,min=5242880,max=5368709120"`

	// RequestsPerSecond paces backend requests (0 = unlimited)
	RequestsPerSecond uint `mapstructure:"requests_per_second"`
	Burst             uint `mapstructure:"burst"`

	// PublicURL is the base URL used by PublicURL, e.g. a CDN in front of the bucket
	PublicURL string `mapstructure:"public_url" validate:"omitempty,url"`

	// Presign enables TemporaryURL
	Presign bool `mapstructure:"presign"`
}

// MemoryOptions is the decoded form of the storage.memory section.
type MemoryOptions struct {
	Bucket    string `mapstructure:"bucket" validate:"required"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// CreateAdapter creates the filesystem adapter selected by cfg.Type.
//
// Supported types:
//   - "s3": Amazon S3 or a compatible service (MinIO, Localstack, R2)
//   - "memory": in-process object store, contents are lost on exit
//
// Parameters:
//   - ctx: Context for loading AWS configuration
//   - cfg: Storage configuration
//   - metrics: Optional collector (nil disables metrics)
//
// Returns:
//   - *s3.Adapter: configured adapter
//   - error: configuration or initialization error
func CreateAdapter(ctx context.Context, cfg *StorageConfig, metrics s3.Metrics) (*s3.Adapter, error) {
	common := []s3.Option{
		s3.WithMetrics(metrics),
		s3.WithDefaultVisibility(filesystem.Visibility(cfg.Visibility.Default)),
		s3.WithVisibilityConverter(s3.NewPortableVisibilityConverter(filesystem.Visibility(cfg.Visibility.Directories))),
	}

	switch cfg.Type {
	case "s3":
		return createS3Adapter(ctx, cfg.S3, common)
	case "memory":
		return createMemoryAdapter(cfg.Memory, common)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}

func decodeS3Options(options map[string]any) (*S3Options, error) {
	var opts S3Options
	if err := decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode S3 storage config: %w", err)
	}
	return &opts, nil
}

func decodeMemoryOptions(options map[string]any) (*MemoryOptions, error) {
	var opts MemoryOptions
	if err := decode(options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode memory storage config: %w", err)
	}
	return &opts, nil
}

// decode accepts the string values environment variables produce.
func decode(input map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// createS3Adapter creates an adapter backed by the AWS SDK client.
func createS3Adapter(ctx context.Context, options map[string]any, common []s3.Option) (*s3.Adapter, error) {
	opts, err := decodeS3Options(options)
	if err != nil {
		return nil, err
	}

	if opts.Bucket == "" {
		return nil, fmt.Errorf("S3 storage: bucket is required")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("S3 storage: region is required")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	configOptions := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(opts.Region),
	}

	// Static credentials when given, otherwise the default credential chain
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
		if opts.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create Adapter
	// ========================================================================

	adapterOpts := append(common,
		s3.WithPrefix(opts.KeyPrefix),
		s3.WithPublicURL(opts.PublicURL),
	)
	if opts.PartSize > 0 {
		adapterOpts = append(adapterOpts, s3.WithPartSize(opts.PartSize))
	}
	if opts.Presign {
		adapterOpts = append(adapterOpts, s3.WithPresigner(awss3.NewPresignClient(client)))
	}

	limiter := ratelimiter.New(opts.RequestsPerSecond, opts.Burst)
	adapter, err := s3.NewAdapter(s3.NewThrottledClient(client, limiter), opts.Bucket, adapterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 adapter: %w", err)
	}

	logger.Info("S3 storage initialized: bucket=%s, region=%s, prefix=%s", opts.Bucket, opts.Region, opts.KeyPrefix)
	if !limiter.Unlimited() {
		logger.Info("S3 requests limited to %.0f/s (burst %d)", limiter.Limit(), limiter.Burst())
	}

	return adapter, nil
}

// createMemoryAdapter creates an adapter over an in-memory object store.
func createMemoryAdapter(options map[string]any, common []s3.Option) (*s3.Adapter, error) {
	opts, err := decodeMemoryOptions(options)
	if err != nil {
		return nil, err
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("memory storage: bucket is required")
	}

	client := s3mem.New(s3mem.WithBucket(opts.Bucket))
	adapter, err := s3.NewAdapter(client, opts.Bucket, append(common, s3.WithPrefix(opts.KeyPrefix))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory adapter: %w", err)
	}

	logger.Debug("Memory storage initialized: bucket=%s", opts.Bucket)
	return adapter, nil
}
