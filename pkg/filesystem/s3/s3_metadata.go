package s3

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// Extra metadata keys reported in FileAttributes.ExtraMetadata.
const (
	ExtraMetadata     = "Metadata"
	ExtraStorageClass = "StorageClass"
	ExtraETag         = "ETag"
	ExtraVersionID    = "VersionId"
)

// ============================================================================
// Object Descriptors
// ============================================================================

// descriptorKind tags the backend response an objectDescriptor was built from.
type descriptorKind int

const (
	listedObject descriptorKind = iota
	headResult
	commonPrefix
)

// objectDescriptor is the backend-neutral view of a listing entry or a
// HeadObject response, before it is mapped to filesystem attributes.
type objectDescriptor struct {
	kind         descriptorKind
	key          string
	size         *int64
	lastModified *time.Time
	mimeType     string
	extra        map[string]any
}

func describeListedObject(obj types.Object) objectDescriptor {
	d := objectDescriptor{
		kind:         listedObject,
		key:          aws.ToString(obj.Key),
		size:         obj.Size,
		lastModified: obj.LastModified,
		extra:        map[string]any{},
	}
	if obj.StorageClass != "" {
		d.extra[ExtraStorageClass] = string(obj.StorageClass)
	}
	if etag := aws.ToString(obj.ETag); etag != "" {
		d.extra[ExtraETag] = etag
	}
	return d
}

func describeHeadResult(key string, out *s3.HeadObjectOutput) objectDescriptor {
	d := objectDescriptor{
		kind:         headResult,
		key:          key,
		size:         out.ContentLength,
		lastModified: out.LastModified,
		mimeType:     aws.ToString(out.ContentType),
		extra:        map[string]any{},
	}
	if len(out.Metadata) > 0 {
		d.extra[ExtraMetadata] = out.Metadata
	}
	if out.StorageClass != "" {
		d.extra[ExtraStorageClass] = string(out.StorageClass)
	}
	if etag := aws.ToString(out.ETag); etag != "" {
		d.extra[ExtraETag] = etag
	}
	if version := aws.ToString(out.VersionId); version != "" {
		d.extra[ExtraVersionID] = version
	}
	return d
}

func describeCommonPrefix(prefix types.CommonPrefix) objectDescriptor {
	return objectDescriptor{
		kind: commonPrefix,
		key:  aws.ToString(prefix.Prefix),
	}
}

// mapDescriptor converts a descriptor into file or directory attributes.
// Keys ending in "/" are directory markers.
func (a *Adapter) mapDescriptor(d objectDescriptor) filesystem.StorageAttributes {
	if d.kind == commonPrefix || strings.HasSuffix(d.key, "/") {
		return &filesystem.DirectoryAttributes{
			Path: a.prefixer.StripDirectoryPrefix(d.key),
		}
	}

	attrs := &filesystem.FileAttributes{
		Path:     a.prefixer.StripPrefix(d.key),
		FileSize: d.size,
		MimeType: d.mimeType,
	}
	if d.lastModified != nil {
		attrs.LastModified = aws.Int64(d.lastModified.Unix())
	}
	if len(d.extra) > 0 {
		attrs.ExtraMetadata = d.extra
	}
	return attrs
}

// ============================================================================
// Metadata Operations
// ============================================================================

// MimeType returns the attributes of path with the stored content type.
func (a *Adapter) MimeType(ctx context.Context, path string) (*filesystem.FileAttributes, error) {
	return a.fileMetadata(ctx, "MimeType", path, filesystem.MetadataMimeType)
}

// LastModified returns the attributes of path with its modification time.
func (a *Adapter) LastModified(ctx context.Context, path string) (*filesystem.FileAttributes, error) {
	return a.fileMetadata(ctx, "LastModified", path, filesystem.MetadataLastModified)
}

// FileSize returns the attributes of path with its size.
func (a *Adapter) FileSize(ctx context.Context, path string) (*filesystem.FileAttributes, error) {
	return a.fileMetadata(ctx, "FileSize", path, filesystem.MetadataFileSize)
}

// fileMetadata fetches the HeadObject attributes of path and checks that the
// requested attribute is present. Directory markers are rejected.
func (a *Adapter) fileMetadata(ctx context.Context, operation, path string, metadata filesystem.MetadataType) (attrs *filesystem.FileAttributes, err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation(operation, time.Since(start), err)
	}()

	key, err := a.objectKey(path)
	if err != nil {
		return nil, filesystem.NewMetadataError(path, metadata, "", err)
	}

	result, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, filesystem.NewMetadataError(path, metadata, "", err)
	}

	file, ok := a.mapDescriptor(describeHeadResult(key, result)).(*filesystem.FileAttributes)
	if !ok {
		return nil, filesystem.NewMetadataError(path, metadata, "path is a directory", nil)
	}

	var missing bool
	switch metadata {
	case filesystem.MetadataMimeType:
		missing = file.MimeType == ""
	case filesystem.MetadataLastModified:
		missing = file.LastModified == nil
	case filesystem.MetadataFileSize:
		missing = file.FileSize == nil
	}
	if missing {
		return nil, filesystem.NewMetadataError(path, metadata, "attribute not reported by backend", nil)
	}

	return file, nil
}

// ============================================================================
// Error Classification
// ============================================================================

// isNotFound reports whether err is a "key does not exist" answer from S3.
//
// HeadObject responses carry no body, so the SDK reports them as a bare
// NotFound API error or a 404 response error rather than *types.NoSuchKey.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "404":
			return true
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}

	return false
}
