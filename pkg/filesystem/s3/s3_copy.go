package s3

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// Copy duplicates source at destination with a server-side CopyObject.
//
// Visibility resolution:
//   - an explicit ACL option is used as is
//   - else the visibility option, when given
//   - else the source's current visibility, unless retain_visibility is false
//   - else no ACL is sent and the bucket default applies
//
// Metadata is copied from the source unless the MetadataDirective option is
// set to REPLACE. Copying a path onto itself is a no-op. A destination with a
// trailing slash names a directory and is rejected.
func (a *Adapter) Copy(ctx context.Context, source, destination string, cfg filesystem.Config) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("Copy", time.Since(start), err)
	}()

	sourceKey, destinationKey, err := a.transferKeys(source, destination)
	if err != nil {
		return filesystem.NewTransferError(filesystem.ErrUnableToCopyFile, source, destination, err)
	}
	if sourceKey == destinationKey {
		return nil
	}

	if err = a.copyObject(ctx, sourceKey, destinationKey, cfg); err != nil {
		return filesystem.NewTransferError(filesystem.ErrUnableToCopyFile, source, destination, err)
	}

	return nil
}

// Move relocates source to destination: a copy followed by a delete of the
// source.
//
// The two steps are independent requests. When the delete fails the
// destination has already been written and is left in place. Moving a path
// onto itself is a no-op. The destination follows the same rules as Copy.
func (a *Adapter) Move(ctx context.Context, source, destination string, cfg filesystem.Config) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("Move", time.Since(start), err)
	}()

	sourceKey, destinationKey, err := a.transferKeys(source, destination)
	if err != nil {
		return filesystem.NewTransferError(filesystem.ErrUnableToMoveFile, source, destination, err)
	}
	if sourceKey == destinationKey {
		return nil
	}

	if err = a.copyObject(ctx, sourceKey, destinationKey, cfg); err != nil {
		return filesystem.NewTransferError(filesystem.ErrUnableToMoveFile, source, destination, err)
	}

	if err = a.deleteObject(ctx, sourceKey); err != nil {
		return filesystem.NewTransferError(filesystem.ErrUnableToMoveFile, source, destination, err)
	}

	return nil
}

func (a *Adapter) transferKeys(source, destination string) (string, string, error) {
	sourceKey, err := a.objectKey(source)
	if err != nil {
		return "", "", err
	}
	destinationKey, err := a.fileKey(destination)
	if err != nil {
		return "", "", err
	}
	return sourceKey, destinationKey, nil
}

func (a *Adapter) copyObject(ctx context.Context, sourceKey, destinationKey string, cfg filesystem.Config) error {
	params, err := parseObjectParams(cfg)
	if err != nil {
		return err
	}

	if params.ACL == "" {
		visibility, ok := cfg.Visibility()
		if !ok && cfg.Bool(filesystem.OptionRetainVisibility, true) {
			current, err := a.fetchVisibility(ctx, sourceKey)
			if err != nil {
				return err
			}
			visibility, ok = current, true
		}
		if ok {
			params.ACL = a.visibility.VisibilityToACL(visibility)
		}
	}

	input := params.copyObjectInput(a.bucket, sourceKey, destinationKey)

	directive, ok := cfg.String(string(OptionMetadataDirective))
	if !ok {
		directive = string(types.MetadataDirectiveCopy)
	}
	input.MetadataDirective = types.MetadataDirective(strings.ToUpper(directive))

	_, err = a.client.CopyObject(ctx, input)
	return err
}

// copySource builds the URL-encoded "bucket/key" value of x-amz-copy-source.
func copySource(bucket, key string) string {
	return bucket + "/" + escapeKey(key)
}

// escapeKey URL-encodes every segment of key, keeping the "/" separators.
func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
