package filesystem

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// Standard Filesystem Errors
// ============================================================================

// These sentinel errors classify every failure an Adapter can report. They are
// never returned bare: adapters wrap them in an *OperationError that carries the
// path, the backend cause and, for metadata lookups, the attribute name.
//
// Usage Pattern:
//
//	size, err := adapter.FileSize(ctx, "reports/q1.csv")
//	if err != nil {
//	    if errors.Is(err, filesystem.ErrUnableToRetrieveMetadata) {
//	        ...
//	    }
//	    var apiErr smithy.APIError
//	    if errors.As(err, &apiErr) {
//	        log.Printf("backend code: %s", apiErr.ErrorCode())
//	    }
//	}

var (
	// ErrUnableToReadFile indicates the file contents could not be fetched.
	ErrUnableToReadFile = errors.New("unable to read file")

	// ErrUnableToWriteFile indicates the upload failed.
	ErrUnableToWriteFile = errors.New("unable to write file")

	// ErrUnableToDeleteFile indicates the backend refused a single-file delete.
	ErrUnableToDeleteFile = errors.New("unable to delete file")

	// ErrUnableToDeleteDirectory indicates the listing or a batch delete failed,
	// or the backend reported per-key errors.
	ErrUnableToDeleteDirectory = errors.New("unable to delete directory")

	// ErrUnableToCreateDirectory indicates the directory marker could not be written.
	ErrUnableToCreateDirectory = errors.New("unable to create directory")

	// ErrUnableToMoveFile indicates either the copy or the delete step of a move
	// failed. A move is not rolled back: when the delete step fails the
	// destination already exists.
	ErrUnableToMoveFile = errors.New("unable to move file")

	// ErrUnableToCopyFile indicates the server-side copy failed, or the source
	// visibility could not be read.
	ErrUnableToCopyFile = errors.New("unable to copy file")

	// ErrUnableToSetVisibility indicates the ACL update failed.
	ErrUnableToSetVisibility = errors.New("unable to set visibility")

	// ErrUnableToRetrieveMetadata indicates a metadata lookup failed, the path
	// resolved to a directory, or the requested attribute was absent.
	ErrUnableToRetrieveMetadata = errors.New("unable to retrieve metadata")

	// ErrUnableToCheckExistence indicates the existence probe failed for a
	// reason other than "not found".
	ErrUnableToCheckExistence = errors.New("unable to check existence")

	// ErrUnableToListContents indicates a listing page could not be fetched.
	ErrUnableToListContents = errors.New("unable to list contents")

	// ErrUnableToProvideChecksum indicates the checksum could not be computed or
	// the requested algorithm is not supported.
	ErrUnableToProvideChecksum = errors.New("unable to provide checksum")

	// ErrUnableToGenerateTemporaryURL indicates presigning failed or is not configured.
	ErrUnableToGenerateTemporaryURL = errors.New("unable to generate temporary url")

	// ErrUnableToGeneratePublicURL indicates no public base URL is configured.
	ErrUnableToGeneratePublicURL = errors.New("unable to generate public url")

	// ErrPathTraversal indicates a path tried to escape the adapter root with "..".
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrCorruptedPath indicates a path contains control characters.
	ErrCorruptedPath = errors.New("corrupted path")
)

// MetadataType names the attribute requested from a metadata lookup.
type MetadataType string

const (
	MetadataMimeType     MetadataType = "mime_type"
	MetadataLastModified MetadataType = "last_modified"
	MetadataFileSize     MetadataType = "file_size"
	MetadataVisibility   MetadataType = "visibility"
)

// OperationError is the error returned by every failing Adapter operation.
type OperationError struct {
	// Kind is one of the sentinel errors above.
	Kind error

	// Path is the logical (unprefixed) path the operation targeted.
	Path string

	// Destination is set for Move and Copy.
	Destination string

	// Metadata is set for ErrUnableToRetrieveMetadata.
	Metadata MetadataType

	// Reason is a human readable explanation when there is no backend cause.
	Reason string

	// Err is the underlying backend cause, if any.
	Err error
}

func (e *OperationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Metadata != "" {
		fmt.Fprintf(&b, " %s", e.Metadata)
	}
	if e.Destination != "" {
		fmt.Fprintf(&b, " from %q to %q", e.Path, e.Destination)
	} else {
		fmt.Fprintf(&b, " at %q", e.Path)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the sentinel Kind of this error.
func (e *OperationError) Is(target error) bool {
	return e.Kind == target
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewError builds an *OperationError of the given kind.
func NewError(kind error, path string, err error) *OperationError {
	return &OperationError{Kind: kind, Path: path, Err: err}
}

// NewMetadataError builds an ErrUnableToRetrieveMetadata error for the given attribute.
func NewMetadataError(path string, metadata MetadataType, reason string, err error) *OperationError {
	return &OperationError{
		Kind:     ErrUnableToRetrieveMetadata,
		Path:     path,
		Metadata: metadata,
		Reason:   reason,
		Err:      err,
	}
}

// NewTransferError builds a move or copy error carrying both ends of the transfer.
func NewTransferError(kind error, source, destination string, err error) *OperationError {
	return &OperationError{Kind: kind, Path: source, Destination: destination, Err: err}
}
