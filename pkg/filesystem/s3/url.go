package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// ChecksumETag is the only checksum algorithm S3 can report without a download.
const ChecksumETag = "etag"

// Checksum returns the ETag of path without surrounding quotes.
//
// For single-part uploads this is the hex MD5 of the content. Multipart ETags
// carry a "-N" part count suffix and are only comparable to each other.
func (a *Adapter) Checksum(ctx context.Context, path string, cfg filesystem.Config) (sum string, err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveOperation("Checksum", time.Since(start), err)
	}()

	algorithm, ok := cfg.String(filesystem.OptionChecksumAlgorithm)
	if ok && !strings.EqualFold(algorithm, ChecksumETag) {
		return "", &filesystem.OperationError{
			Kind:   filesystem.ErrUnableToProvideChecksum,
			Path:   path,
			Reason: fmt.Sprintf("algorithm %q is not supported", algorithm),
		}
	}

	key, err := a.objectKey(path)
	if err != nil {
		return "", filesystem.NewError(filesystem.ErrUnableToProvideChecksum, path, err)
	}

	result, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", filesystem.NewError(filesystem.ErrUnableToProvideChecksum, path, err)
	}

	etag := strings.Trim(aws.ToString(result.ETag), `"`)
	if etag == "" {
		return "", &filesystem.OperationError{
			Kind:   filesystem.ErrUnableToProvideChecksum,
			Path:   path,
			Reason: "backend returned no ETag",
		}
	}

	return etag, nil
}

// TemporaryURL returns a presigned GET URL for path valid until expiresAt.
//
// Requires WithPresigner.
func (a *Adapter) TemporaryURL(ctx context.Context, path string, expiresAt time.Time, cfg filesystem.Config) (string, error) {
	if a.presigner == nil {
		return "", filesystem.NewError(filesystem.ErrUnableToGenerateTemporaryURL, path, errors.New("presigner not configured"))
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return "", filesystem.NewError(filesystem.ErrUnableToGenerateTemporaryURL, path, errors.New("expiry is in the past"))
	}

	key, err := a.objectKey(path)
	if err != nil {
		return "", filesystem.NewError(filesystem.ErrUnableToGenerateTemporaryURL, path, err)
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}
	if disposition, ok := cfg.String(string(OptionContentDisposition)); ok {
		input.ResponseContentDisposition = aws.String(disposition)
	}
	if contentType, ok := cfg.String(string(OptionContentType)); ok {
		input.ResponseContentType = aws.String(contentType)
	}

	request, err := a.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", filesystem.NewError(filesystem.ErrUnableToGenerateTemporaryURL, path, err)
	}

	return request.URL, nil
}

// PublicURL returns the stable public URL of path under the configured base URL.
//
// Requires WithPublicURL. The object must be public (or the base URL served
// by a CDN) for the URL to be reachable.
func (a *Adapter) PublicURL(path string, cfg filesystem.Config) (string, error) {
	if a.publicURL == "" {
		return "", filesystem.NewError(filesystem.ErrUnableToGeneratePublicURL, path, errors.New("public url not configured"))
	}

	key, err := a.objectKey(path)
	if err != nil {
		return "", filesystem.NewError(filesystem.ErrUnableToGeneratePublicURL, path, err)
	}

	return a.publicURL + "/" + escapeKey(key), nil
}
