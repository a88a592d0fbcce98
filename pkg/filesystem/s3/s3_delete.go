package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// maxDeleteBatch is the S3 limit on keys per DeleteObjects request.
const maxDeleteBatch = 1000

// Delete removes the object at path.
//
// S3 deletes are idempotent: deleting a missing key succeeds.
func (a *Adapter) Delete(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("Delete", time.Since(start), err)
	}()

	key, err := a.objectKey(path)
	if err != nil {
		return filesystem.NewError(filesystem.ErrUnableToDeleteFile, path, err)
	}

	if err = a.deleteObject(ctx, key); err != nil {
		return filesystem.NewError(filesystem.ErrUnableToDeleteFile, path, err)
	}

	return nil
}

func (a *Adapter) deleteObject(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	return err
}

// DeleteDirectory removes every object under path, including its marker.
//
// Keys are collected from a recursive listing and removed with DeleteObjects
// in batches of up to 1000 keys (S3 limit). An empty directory is a no-op.
// Deletion stops at the first failed batch; batches already sent stay deleted.
//
// The root path maps to the key prefix. Without a prefix, deleting the root
// empties the whole bucket.
func (a *Adapter) DeleteDirectory(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("DeleteDirectory", time.Since(start), err)
	}()

	prefix, err := a.directoryKey(path)
	if err != nil {
		return filesystem.NewError(filesystem.ErrUnableToDeleteDirectory, path, err)
	}

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})

	batch := make([]types.ObjectIdentifier, 0, maxDeleteBatch)
	deleted := 0

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return filesystem.NewError(filesystem.ErrUnableToDeleteDirectory, path, err)
		}

		for _, obj := range page.Contents {
			batch = append(batch, types.ObjectIdentifier{Key: obj.Key})
			if len(batch) == maxDeleteBatch {
				if err := a.deleteBatch(ctx, batch); err != nil {
					return filesystem.NewError(filesystem.ErrUnableToDeleteDirectory, path, err)
				}
				deleted += len(batch)
				batch = batch[:0]
			}
		}
	}

	if len(batch) > 0 {
		if err := a.deleteBatch(ctx, batch); err != nil {
			return filesystem.NewError(filesystem.ErrUnableToDeleteDirectory, path, err)
		}
		deleted += len(batch)
	}

	if deleted > 0 {
		logger.Debug("Deleted %d objects under s3://%s/%s", deleted, a.bucket, prefix)
	}

	return nil
}

// deleteBatch sends a single DeleteObjects request and turns per-key errors
// into an error.
func (a *Adapter) deleteBatch(ctx context.Context, objects []types.ObjectIdentifier) error {
	result, err := a.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(a.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}

	if len(result.Errors) > 0 {
		failures := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			failures = append(failures, fmt.Sprintf("%s (%s: %s)",
				aws.ToString(e.Key), aws.ToString(e.Code), aws.ToString(e.Message)))
		}
		return fmt.Errorf("failed to delete %d objects: %s", len(result.Errors), strings.Join(failures, ", "))
	}

	return nil
}
