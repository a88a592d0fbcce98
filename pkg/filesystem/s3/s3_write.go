package s3

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/marmos91/bucketfs/internal/logger"
	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// sniffLength is how much of a stream is buffered for MIME detection.
const sniffLength = 3072

// Write uploads contents to path, replacing any existing object.
//
// A path with a trailing slash names a directory and is rejected.
func (a *Adapter) Write(ctx context.Context, path string, contents []byte, cfg filesystem.Config) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("Write", time.Since(start), err)
	}()

	key, err := a.fileKey(path)
	if err != nil {
		return filesystem.NewError(filesystem.ErrUnableToWriteFile, path, err)
	}

	if err = a.upload(ctx, path, key, bytes.NewReader(contents), contents, cfg); err != nil {
		return filesystem.NewError(filesystem.ErrUnableToWriteFile, path, err)
	}

	a.metrics.RecordBytes("write", int64(len(contents)))
	return nil
}

// WriteStream uploads everything read from r to path.
//
// Streams larger than the configured part size are sent as a multipart
// upload. The first bytes of the stream are buffered for MIME detection.
func (a *Adapter) WriteStream(ctx context.Context, path string, r io.Reader, cfg filesystem.Config) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("WriteStream", time.Since(start), err)
	}()

	key, err := a.fileKey(path)
	if err != nil {
		return filesystem.NewError(filesystem.ErrUnableToWriteFile, path, err)
	}

	buffered := bufio.NewReaderSize(r, sniffLength)
	head, err := buffered.Peek(sniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return filesystem.NewError(filesystem.ErrUnableToWriteFile, path, err)
	}

	body := &countingReader{Reader: buffered}
	if err = a.upload(ctx, path, key, body, head, cfg); err != nil {
		return filesystem.NewError(filesystem.ErrUnableToWriteFile, path, err)
	}

	a.metrics.RecordBytes("write", body.n)
	return nil
}

// CreateDirectory writes an empty directory marker at path + "/".
//
// The marker visibility comes from the directory_visibility option, then the
// visibility option, then the converter's directory default. Creating the
// root directory is a no-op.
func (a *Adapter) CreateDirectory(ctx context.Context, path string, cfg filesystem.Config) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("CreateDirectory", time.Since(start), err)
	}()

	normalized, err := filesystem.NormalizePath(path)
	if err != nil {
		return filesystem.NewError(filesystem.ErrUnableToCreateDirectory, path, err)
	}
	if normalized == "" {
		return nil
	}

	visibility, ok := cfg.String(filesystem.OptionDirectoryVisibility)
	if !ok {
		visibility, ok = cfg.String(filesystem.OptionVisibility)
	}
	if !ok {
		visibility = string(a.visibility.DefaultForDirectories())
	}

	key := a.prefixer.PrefixDirectoryPath(normalized)
	cfg = cfg.Extend(map[string]any{filesystem.OptionVisibility: visibility})

	if err = a.upload(ctx, path, key, bytes.NewReader(nil), nil, cfg); err != nil {
		return filesystem.NewError(filesystem.ErrUnableToCreateDirectory, path, err)
	}

	return nil
}

// upload sends body to key through the multipart-capable uploader.
//
// The ACL comes from the explicit ACL option, else from the visibility option,
// else from the adapter default (WithDefaultVisibility). The content type is
// inferred from head only when the caller gave none and the body is not empty.
func (a *Adapter) upload(ctx context.Context, path, key string, body io.Reader, head []byte, cfg filesystem.Config) error {
	params, err := parseObjectParams(cfg)
	if err != nil {
		return err
	}

	if params.ACL == "" {
		visibility, ok := cfg.Visibility()
		if !ok {
			visibility = a.fileDefault
		}
		params.ACL = a.visibility.VisibilityToACL(visibility)
	}

	if params.ContentType == nil && len(head) > 0 {
		if mimeType := a.mimeTypes.DetectMimeType(path, head); mimeType != "" {
			params.ContentType = aws.String(mimeType)
		}
	}

	input := params.putObjectInput(a.bucket, key)
	input.Body = body

	result, err := a.uploader.Upload(ctx, input)
	if err != nil {
		return err
	}

	logger.Debug("Uploaded s3://%s/%s (etag %s)", a.bucket, key, aws.ToString(result.ETag))
	return nil
}
