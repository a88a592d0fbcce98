package s3

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/marmos91/bucketfs/pkg/filesystem/mimetype"
)

const (
	// DefaultPartSize is the multipart upload part size used when none is configured.
	DefaultPartSize = 10 * 1024 * 1024

	// MinPartSize and MaxPartSize are the S3 limits for multipart parts.
	MinPartSize = 5 * 1024 * 1024
	MaxPartSize = 5 * 1024 * 1024 * 1024
)

// Adapter implements filesystem.Adapter using Amazon S3 or S3-compatible storage.
//
// Key Design:
//   - Logical paths are normalized, then prefixed with the optional key prefix
//   - A key ending in "/" is a directory marker
//   - Directories without a marker exist implicitly through their children
//
// Example:
//
//	Path:       "documents/report.pdf"
//	Key Prefix: "tenant-a"
//	S3 Key:     "tenant-a/documents/report.pdf"
//
// Visibility is stored as an object ACL and translated by a VisibilityConverter.
//
// Thread Safety:
// All configuration is fixed by NewAdapter, so an Adapter is safe for
// concurrent use by multiple goroutines. Multi-call operations (Move, Copy,
// DeleteDirectory) are not atomic.
type Adapter struct {
	client      Client
	uploader    *manager.Uploader
	bucket      string
	prefixer    filesystem.Prefixer
	visibility  VisibilityConverter
	fileDefault filesystem.Visibility
	mimeTypes   mimetype.Detector
	metrics     Metrics
	partSize    int64
	presigner   Presigner
	publicURL   string
}

var (
	_ filesystem.Adapter               = (*Adapter)(nil)
	_ filesystem.ChecksumProvider      = (*Adapter)(nil)
	_ filesystem.TemporaryURLGenerator = (*Adapter)(nil)
	_ filesystem.PublicURLGenerator    = (*Adapter)(nil)
)

// Option customizes an Adapter.
type Option func(*Adapter)

// WithPrefix roots every key under prefix.
func WithPrefix(prefix string) Option {
	return func(a *Adapter) {
		a.prefixer = filesystem.NewPrefixer(prefix)
	}
}

// WithVisibilityConverter replaces the default PortableVisibilityConverter.
func WithVisibilityConverter(converter VisibilityConverter) Option {
	return func(a *Adapter) {
		a.visibility = converter
	}
}

// WithDefaultVisibility sets the visibility of files written without a
// visibility option. The default is private.
func WithDefaultVisibility(visibility filesystem.Visibility) Option {
	return func(a *Adapter) {
		a.fileDefault = visibility
	}
}

// WithMimeTypeDetector replaces the default content sniffing detector.
func WithMimeTypeDetector(detector mimetype.Detector) Option {
	return func(a *Adapter) {
		a.mimeTypes = detector
	}
}

// WithMetrics enables metrics collection.
func WithMetrics(metrics Metrics) Option {
	return func(a *Adapter) {
		a.metrics = metrics
	}
}

// WithPartSize sets the multipart upload part size (5MB to 5GB).
func WithPartSize(size int64) Option {
	return func(a *Adapter) {
		a.partSize = size
	}
}

// WithPresigner enables TemporaryURL.
func WithPresigner(presigner Presigner) Option {
	return func(a *Adapter) {
		a.presigner = presigner
	}
}

// WithPublicURL enables PublicURL, joining baseURL with object keys.
func WithPublicURL(baseURL string) Option {
	return func(a *Adapter) {
		a.publicURL = strings.TrimRight(baseURL, "/")
	}
}

// NewAdapter creates a new S3-backed filesystem adapter.
//
// The bucket must already exist; NewAdapter does not contact the backend.
//
// Parameters:
//   - client: S3 client (usually *s3.Client)
//   - bucket: bucket name
//   - opts: optional settings
//
// Returns:
//   - *Adapter: configured adapter
//   - error: when client or bucket is missing or the part size is out of range
func NewAdapter(client Client, bucket string, opts ...Option) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("S3 client is required")
	}

	if bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	a := &Adapter{
		client:      client,
		bucket:      bucket,
		visibility:  NewPortableVisibilityConverter(filesystem.Public),
		fileDefault: filesystem.Private,
		mimeTypes:   mimetype.NewDetector(nil),
		metrics:     noopMetrics{},
		partSize:    DefaultPartSize,
	}

	for _, opt := range opts {
		opt(a)
	}

	// Validate part size (S3 limits: 5MB to 5GB)
	if a.partSize < MinPartSize {
		return nil, fmt.Errorf("part size must be at least 5MB, got %d bytes", a.partSize)
	}
	if a.partSize > MaxPartSize {
		return nil, fmt.Errorf("part size must be at most 5GB, got %d bytes", a.partSize)
	}

	if a.metrics == nil {
		a.metrics = noopMetrics{}
	}

	a.uploader = manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = a.partSize
	})

	return a, nil
}

// Bucket returns the bucket the adapter operates on.
func (a *Adapter) Bucket() string {
	return a.bucket
}

// objectKey returns the full S3 key for a logical path.
//
// A trailing slash on the input survives normalization so that callers can
// address directory markers explicitly.
func (a *Adapter) objectKey(path string) (string, error) {
	normalized, err := filesystem.NormalizePath(path)
	if err != nil {
		return "", err
	}
	if normalized != "" && strings.HasSuffix(strings.ReplaceAll(path, "\\", "/"), "/") {
		normalized += "/"
	}
	return a.prefixer.PrefixPath(normalized), nil
}

// errDirectoryPath is returned when a file operation targets a directory key.
var errDirectoryPath = errors.New("path names a directory")

// fileKey returns the key of a path that must name a file. The root and
// paths with a trailing slash address directories and are rejected.
func (a *Adapter) fileKey(path string) (string, error) {
	key, err := a.objectKey(path)
	if err != nil {
		return "", err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return "", errDirectoryPath
	}
	return key, nil
}

// directoryKey returns the key prefix that every entry of directory path shares.
func (a *Adapter) directoryKey(path string) (string, error) {
	normalized, err := filesystem.NormalizePath(path)
	if err != nil {
		return "", err
	}
	return a.prefixer.PrefixDirectoryPath(normalized), nil
}
