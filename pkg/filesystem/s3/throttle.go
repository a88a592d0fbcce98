package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/bucketfs/internal/ratelimiter"
)

// ThrottledClient paces every request of the wrapped Client through a token
// bucket. It does not retry: failures from the wrapped client are returned
// unchanged. A cancelled context aborts the wait and skips the request.
type ThrottledClient struct {
	client  Client
	limiter *ratelimiter.RateLimiter
}

var _ Client = (*ThrottledClient)(nil)

// NewThrottledClient wraps client. A nil or unlimited limiter returns client unchanged.
func NewThrottledClient(client Client, limiter *ratelimiter.RateLimiter) Client {
	if limiter.Unlimited() {
		return client
	}
	return &ThrottledClient{client: client, limiter: limiter}
}

func (t *ThrottledClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.GetObject(ctx, params, optFns...)
}

func (t *ThrottledClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.HeadObject(ctx, params, optFns...)
}

func (t *ThrottledClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.PutObject(ctx, params, optFns...)
}

func (t *ThrottledClient) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.DeleteObject(ctx, params, optFns...)
}

func (t *ThrottledClient) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.DeleteObjects(ctx, params, optFns...)
}

func (t *ThrottledClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.ListObjectsV2(ctx, params, optFns...)
}

func (t *ThrottledClient) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.CopyObject(ctx, params, optFns...)
}

func (t *ThrottledClient) GetObjectAcl(ctx context.Context, params *s3.GetObjectAclInput, optFns ...func(*s3.Options)) (*s3.GetObjectAclOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.GetObjectAcl(ctx, params, optFns...)
}

func (t *ThrottledClient) PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.PutObjectAcl(ctx, params, optFns...)
}

func (t *ThrottledClient) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.CreateMultipartUpload(ctx, params, optFns...)
}

func (t *ThrottledClient) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.UploadPart(ctx, params, optFns...)
}

func (t *ThrottledClient) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.client.CompleteMultipartUpload(ctx, params, optFns...)
}

// AbortMultipartUpload bypasses the limiter.
func (t *ThrottledClient) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return t.client.AbortMultipartUpload(ctx, params, optFns...)
}
