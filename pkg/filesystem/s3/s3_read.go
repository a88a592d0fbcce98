package s3

// This file contains read operations for the S3 adapter: existence checks,
// full reads and streaming reads.

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// FileExists checks whether an object exists at path.
//
// Only a "not found" answer from S3 is reported as false. Access denied,
// throttling and transport errors are returned as ErrUnableToCheckExistence so
// that callers never mistake an outage for a missing file.
func (a *Adapter) FileExists(ctx context.Context, path string) (exists bool, err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("FileExists", time.Since(start), err)
	}()

	key, err := a.objectKey(path)
	if err != nil {
		return false, filesystem.NewError(filesystem.ErrUnableToCheckExistence, path, err)
	}

	_, err = a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, filesystem.NewError(filesystem.ErrUnableToCheckExistence, path, err)
	}

	return true, nil
}

// DirectoryExists checks whether any object lives under path.
func (a *Adapter) DirectoryExists(ctx context.Context, path string) (exists bool, err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("DirectoryExists", time.Since(start), err)
	}()

	prefix, err := a.directoryKey(path)
	if err != nil {
		return false, filesystem.NewError(filesystem.ErrUnableToCheckExistence, path, err)
	}

	result, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(a.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
		MaxKeys:   aws.Int32(1),
	})
	if err != nil {
		return false, filesystem.NewError(filesystem.ErrUnableToCheckExistence, path, err)
	}

	return len(result.Contents) > 0 || len(result.CommonPrefixes) > 0, nil
}

// Read downloads the full contents of path.
func (a *Adapter) Read(ctx context.Context, path string) (data []byte, err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("Read", time.Since(start), err)
	}()

	body, err := a.getObject(ctx, path)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err = io.ReadAll(body)
	if err != nil {
		return nil, filesystem.NewError(filesystem.ErrUnableToReadFile, path, err)
	}

	a.metrics.RecordBytes("read", int64(len(data)))
	return data, nil
}

// ReadStream returns a reader over the contents of path.
//
// The body is streamed from S3 as the caller reads it. The caller is
// responsible for closing the returned ReadCloser.
func (a *Adapter) ReadStream(ctx context.Context, path string) (rc io.ReadCloser, err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("ReadStream", time.Since(start), err)
	}()

	body, err := a.getObject(ctx, path)
	if err != nil {
		return nil, err
	}

	// Wrap the body to track bytes read
	return &metricsReadCloser{
		ReadCloser: body,
		metrics:    a.metrics,
		operation:  "read",
	}, nil
}

func (a *Adapter) getObject(ctx context.Context, path string) (io.ReadCloser, error) {
	key, err := a.objectKey(path)
	if err != nil {
		return nil, filesystem.NewError(filesystem.ErrUnableToReadFile, path, err)
	}

	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, filesystem.NewError(filesystem.ErrUnableToReadFile, path, err)
	}

	return result.Body, nil
}
