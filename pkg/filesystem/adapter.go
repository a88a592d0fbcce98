// Package filesystem defines the storage-agnostic filesystem adapter contract
// used by bucketfs.
//
// An Adapter maps hierarchical file operations (read, write, delete, move, copy,
// list, visibility, metadata) onto a concrete backend. Paths are always relative,
// '/'-separated and normalized by the adapter before they reach the backend.
//
// Error Handling:
// Every operation that fails returns an *OperationError whose Kind is one of the
// sentinel errors in errors.go. Callers should match with errors.Is:
//
//	data, err := adapter.Read(ctx, "docs/report.pdf")
//	if errors.Is(err, filesystem.ErrUnableToReadFile) {
//	    ...
//	}
//
// The backend cause stays reachable through errors.As / errors.Unwrap.
package filesystem

import (
	"context"
	"io"
	"iter"
	"time"
)

// Adapter is the full filesystem capability set exposed by a storage backend.
//
// Implementations hold no mutable state after construction and must be safe
// for concurrent use by multiple goroutines. Operations spanning more than one
// backend call (Move, Copy, DeleteDirectory) are not atomic.
type Adapter interface {
	// FileExists reports whether a file exists at path.
	//
	// A backend "not found" answer is reported as (false, nil). Any other
	// failure (permission denied, throttling, network) is returned as an
	// ErrUnableToCheckExistence error instead of being folded into false.
	FileExists(ctx context.Context, path string) (bool, error)

	// DirectoryExists reports whether at least one entry lives under path.
	DirectoryExists(ctx context.Context, path string) (bool, error)

	// Write stores contents at path, replacing any existing file.
	Write(ctx context.Context, path string, contents []byte, cfg Config) error

	// WriteStream stores everything read from r at path.
	WriteStream(ctx context.Context, path string, r io.Reader, cfg Config) error

	// Read returns the full contents of the file at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// ReadStream returns a lazily consumed reader for the file at path.
	// The caller must close the returned reader.
	ReadStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the file at path. Deleting a missing file is not an error
	// on backends with idempotent deletes.
	Delete(ctx context.Context, path string) error

	// DeleteDirectory removes every entry below path. An empty directory is a no-op.
	DeleteDirectory(ctx context.Context, path string) error

	// CreateDirectory creates an explicit directory marker at path.
	CreateDirectory(ctx context.Context, path string, cfg Config) error

	// SetVisibility changes the visibility of the file at path.
	SetVisibility(ctx context.Context, path string, visibility Visibility) error

	// Visibility returns the attributes of path with only Visibility populated.
	Visibility(ctx context.Context, path string) (*FileAttributes, error)

	// MimeType returns the attributes of path with MimeType populated.
	MimeType(ctx context.Context, path string) (*FileAttributes, error)

	// LastModified returns the attributes of path with LastModified populated.
	LastModified(ctx context.Context, path string) (*FileAttributes, error)

	// FileSize returns the attributes of path with FileSize populated.
	FileSize(ctx context.Context, path string) (*FileAttributes, error)

	// ListContents lazily lists the entries under path.
	//
	// When deep is false only direct children are produced; nested entries are
	// collapsed into DirectoryAttributes. The sequence is single-pass and
	// drives backend pagination as it is consumed; stopping iteration stops
	// pagination. A backend failure is yielded once as a non-nil error, after
	// which the sequence ends.
	ListContents(ctx context.Context, path string, deep bool) iter.Seq2[StorageAttributes, error]

	// Move relocates source to destination (copy followed by delete).
	Move(ctx context.Context, source, destination string, cfg Config) error

	// Copy duplicates source at destination.
	Copy(ctx context.Context, source, destination string, cfg Config) error
}

// ChecksumProvider is implemented by adapters that can return a checksum
// without downloading the file.
type ChecksumProvider interface {
	Checksum(ctx context.Context, path string, cfg Config) (string, error)
}

// TemporaryURLGenerator is implemented by adapters that can issue
// time-limited download URLs.
type TemporaryURLGenerator interface {
	TemporaryURL(ctx context.Context, path string, expiresAt time.Time, cfg Config) (string, error)
}

// PublicURLGenerator is implemented by adapters that can compute a stable
// public URL for a file.
type PublicURLGenerator interface {
	PublicURL(path string, cfg Config) (string, error)
}
