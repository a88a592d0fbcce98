// Package s3mem provides an in-memory implementation of the S3 client subset
// used by the bucketfs S3 adapter.
//
// It is intended for tests and for the "memory" storage type. Objects live in
// process memory and are lost when the process exits.
//
// Supported behavior:
//   - Buckets must be created with CreateBucket (or WithBucket) before use
//   - ListObjectsV2 with Prefix, Delimiter, StartAfter, MaxKeys and continuation tokens
//   - Canned ACLs stored as grants, readable with GetObjectAcl
//   - Quoted MD5 ETags, multipart ETags with a "-N" suffix
//   - NoSuchBucket, NoSuchKey, NotFound and NoSuchUpload errors
//
// Thread Safety:
// All methods are safe for concurrent use.
package s3mem

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// defaultMaxKeys is the S3 page size limit.
const defaultMaxKeys = 1000

// AllUsersURI is the grantee URI of anonymous access.
const AllUsersURI = "http://acs.amazonaws.com/groups/global/AllUsers"

// authenticatedUsersURI is the grantee URI of any signed-in AWS account.
const authenticatedUsersURI = "http://acs.amazonaws.com/groups/global/AuthenticatedUsers"

const ownerID = "s3mem-owner"

type object struct {
	data               []byte
	etag               string
	lastModified       time.Time
	contentType        string
	cacheControl       string
	contentDisposition string
	contentEncoding    string
	storageClass       types.StorageClass
	metadata           map[string]string
	grants             []types.Grant
}

type upload struct {
	bucket string
	key    string
	input  *s3.CreateMultipartUploadInput
	parts  map[int32][]byte
}

// Client is an in-memory S3 client.
type Client struct {
	mu       sync.RWMutex
	buckets  map[string]map[string]*object
	uploads  map[string]*upload
	uploadID int
	maxKeys  int32
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBucket creates the named bucket.
func WithBucket(name string) Option {
	return func(c *Client) {
		c.buckets[name] = make(map[string]*object)
	}
}

// WithMaxKeys caps every ListObjectsV2 page at n entries, forcing pagination.
func WithMaxKeys(n int32) Option {
	return func(c *Client) {
		c.maxKeys = n
	}
}

// WithClock overrides the time source used for LastModified.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates an empty in-memory client.
func New(opts ...Option) *Client {
	c := &Client{
		buckets: make(map[string]map[string]*object),
		uploads: make(map[string]*upload),
		maxKeys: defaultMaxKeys,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateBucket creates an empty bucket. Creating an existing bucket is a no-op.
func (c *Client) CreateBucket(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.buckets[name]; !ok {
		c.buckets[name] = make(map[string]*object)
	}
}

// Keys returns the sorted keys stored in bucket.
func (c *Client) Keys(bucket string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Sorted(maps.Keys(c.buckets[bucket]))
}

// ============================================================================
// Object Operations
// ============================================================================

func (c *Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	if params.Body != nil {
		var err error
		data, err = io.ReadAll(params.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	objects, err := c.bucket(params.Bucket)
	if err != nil {
		return nil, err
	}

	obj := &object{
		data:               data,
		etag:               etagOf(data),
		lastModified:       c.now(),
		contentType:        aws.ToString(params.ContentType),
		cacheControl:       aws.ToString(params.CacheControl),
		contentDisposition: aws.ToString(params.ContentDisposition),
		contentEncoding:    aws.ToString(params.ContentEncoding),
		storageClass:       params.StorageClass,
		metadata:           maps.Clone(params.Metadata),
		grants:             cannedGrants(params.ACL),
	}
	objects[aws.ToString(params.Key)] = obj

	return &s3.PutObjectOutput{ETag: aws.String(obj.etag)}, nil
}

func (c *Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	obj, err := c.object(params.Bucket, params.Key)
	if err != nil {
		return nil, err
	}

	data := bytes.Clone(obj.data)
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   optionalString(obj.contentType),
		CacheControl:  optionalString(obj.cacheControl),
		ETag:          aws.String(obj.etag),
		LastModified:  aws.Time(obj.lastModified),
		Metadata:      maps.Clone(obj.metadata),
		StorageClass:  obj.storageClass,
	}, nil
}

func (c *Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	obj, err := c.object(params.Bucket, params.Key)
	if err != nil {
		// HEAD responses carry no error body
		if _, ok := err.(*types.NoSuchKey); ok {
			return nil, &types.NotFound{Message: aws.String("Not Found")}
		}
		return nil, err
	}

	return &s3.HeadObjectOutput{
		ContentLength:      aws.Int64(int64(len(obj.data))),
		ContentType:        optionalString(obj.contentType),
		CacheControl:       optionalString(obj.cacheControl),
		ContentDisposition: optionalString(obj.contentDisposition),
		ContentEncoding:    optionalString(obj.contentEncoding),
		ETag:               aws.String(obj.etag),
		LastModified:       aws.Time(obj.lastModified),
		Metadata:           maps.Clone(obj.metadata),
		StorageClass:       obj.storageClass,
	}, nil
}

func (c *Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	objects, err := c.bucket(params.Bucket)
	if err != nil {
		return nil, err
	}

	delete(objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (c *Client) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.Delete == nil {
		return nil, apiError("MalformedXML", "missing Delete")
	}
	if len(params.Delete.Objects) > defaultMaxKeys {
		return nil, apiError("MalformedXML", "too many objects in Delete request")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	objects, err := c.bucket(params.Bucket)
	if err != nil {
		return nil, err
	}

	out := &s3.DeleteObjectsOutput{}
	for _, id := range params.Delete.Objects {
		delete(objects, aws.ToString(id.Key))
		if !aws.ToBool(params.Delete.Quiet) {
			out.Deleted = append(out.Deleted, types.DeletedObject{Key: id.Key})
		}
	}

	return out, nil
}

func (c *Client) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sourceBucket, sourceKey, err := parseCopySource(aws.ToString(params.CopySource))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	source, err := c.object(aws.String(sourceBucket), aws.String(sourceKey))
	if err != nil {
		return nil, err
	}

	objects, err := c.bucket(params.Bucket)
	if err != nil {
		return nil, err
	}

	destinationKey := aws.ToString(params.Key)
	replace := params.MetadataDirective == types.MetadataDirectiveReplace
	if sourceBucket == aws.ToString(params.Bucket) && sourceKey == destinationKey && !replace {
		return nil, apiError("InvalidRequest", "This copy request is illegal because it is trying to copy an object to itself without changing the object's metadata.")
	}

	copied := &object{
		data:               bytes.Clone(source.data),
		etag:               source.etag,
		lastModified:       c.now(),
		contentType:        source.contentType,
		cacheControl:       source.cacheControl,
		contentDisposition: source.contentDisposition,
		contentEncoding:    source.contentEncoding,
		storageClass:       source.storageClass,
		metadata:           maps.Clone(source.metadata),
		grants:             cannedGrants(params.ACL),
	}
	if replace {
		copied.contentType = aws.ToString(params.ContentType)
		copied.cacheControl = aws.ToString(params.CacheControl)
		copied.contentDisposition = aws.ToString(params.ContentDisposition)
		copied.contentEncoding = aws.ToString(params.ContentEncoding)
		copied.metadata = maps.Clone(params.Metadata)
	}
	if params.StorageClass != "" {
		copied.storageClass = params.StorageClass
	}
	objects[destinationKey] = copied

	return &s3.CopyObjectOutput{
		CopyObjectResult: &types.CopyObjectResult{
			ETag:         aws.String(copied.etag),
			LastModified: aws.Time(copied.lastModified),
		},
	}, nil
}

// ============================================================================
// ACL Operations
// ============================================================================

func (c *Client) GetObjectAcl(ctx context.Context, params *s3.GetObjectAclInput, optFns ...func(*s3.Options)) (*s3.GetObjectAclOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	obj, err := c.object(params.Bucket, params.Key)
	if err != nil {
		return nil, err
	}

	return &s3.GetObjectAclOutput{
		Grants: slices.Clone(obj.grants),
		Owner:  &types.Owner{ID: aws.String(ownerID)},
	}, nil
}

func (c *Client) PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	obj, err := c.object(params.Bucket, params.Key)
	if err != nil {
		return nil, err
	}

	if params.AccessControlPolicy != nil {
		obj.grants = slices.Clone(params.AccessControlPolicy.Grants)
	} else {
		obj.grants = cannedGrants(params.ACL)
	}

	return &s3.PutObjectAclOutput{}, nil
}

// ============================================================================
// Listing
// ============================================================================

// ListObjectsV2 lists keys in lexicographic order.
//
// With a delimiter, keys sharing the part of their name up to the first
// delimiter after the prefix are rolled up into a single common prefix. The
// continuation token is the last entry (key or common prefix) of the page.
func (c *Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	objects, err := c.bucket(params.Bucket)
	if err != nil {
		return nil, err
	}

	prefix := aws.ToString(params.Prefix)
	delimiter := aws.ToString(params.Delimiter)

	maxKeys := c.maxKeys
	if requested := aws.ToInt32(params.MaxKeys); params.MaxKeys != nil && requested < maxKeys {
		maxKeys = requested
	}

	after := aws.ToString(params.StartAfter)
	if token := aws.ToString(params.ContinuationToken); token != "" {
		after = token
	}

	keys := make([]string, 0, len(objects))
	for key := range objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{
		Name:              params.Bucket,
		Prefix:            params.Prefix,
		Delimiter:         params.Delimiter,
		MaxKeys:           aws.Int32(maxKeys),
		ContinuationToken: params.ContinuationToken,
		StartAfter:        params.StartAfter,
		IsTruncated:       aws.Bool(false),
	}

	var count int32
	last := ""
	for _, key := range keys {
		entry := key
		isPrefix := false
		if delimiter != "" {
			if i := strings.Index(key[len(prefix):], delimiter); i >= 0 {
				entry = key[:len(prefix)+i+len(delimiter)]
				isPrefix = true
			}
		}

		if entry <= after || entry == last {
			continue
		}

		if count == maxKeys {
			out.IsTruncated = aws.Bool(true)
			out.NextContinuationToken = aws.String(last)
			break
		}

		if isPrefix {
			out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(entry)})
		} else {
			obj := objects[key]
			out.Contents = append(out.Contents, types.Object{
				Key:          aws.String(key),
				Size:         aws.Int64(int64(len(obj.data))),
				ETag:         aws.String(obj.etag),
				LastModified: aws.Time(obj.lastModified),
				StorageClass: types.ObjectStorageClass(storageClassOrStandard(obj.storageClass)),
			})
		}

		last = entry
		count++
	}

	out.KeyCount = aws.Int32(count)
	return out, nil
}

// ============================================================================
// Multipart Uploads
// ============================================================================

func (c *Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.bucket(params.Bucket); err != nil {
		return nil, err
	}

	c.uploadID++
	id := fmt.Sprintf("upload-%d", c.uploadID)
	c.uploads[id] = &upload{
		bucket: aws.ToString(params.Bucket),
		key:    aws.ToString(params.Key),
		input:  params,
		parts:  make(map[int32][]byte),
	}

	return &s3.CreateMultipartUploadOutput{
		Bucket:   params.Bucket,
		Key:      params.Key,
		UploadId: aws.String(id),
	}, nil
}

func (c *Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	if params.Body != nil {
		var err error
		data, err = io.ReadAll(params.Body)
		if err != nil {
			return nil, fmt.Errorf("read part: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	u, ok := c.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, &types.NoSuchUpload{Message: aws.String("The specified upload does not exist.")}
	}
	u.parts[aws.ToInt32(params.PartNumber)] = data

	return &s3.UploadPartOutput{ETag: aws.String(etagOf(data))}, nil
}

func (c *Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := aws.ToString(params.UploadId)
	u, ok := c.uploads[id]
	if !ok {
		return nil, &types.NoSuchUpload{Message: aws.String("The specified upload does not exist.")}
	}

	objects, err := c.bucket(aws.String(u.bucket))
	if err != nil {
		return nil, err
	}

	var parts []types.CompletedPart
	if params.MultipartUpload != nil {
		parts = slices.Clone(params.MultipartUpload.Parts)
	}
	slices.SortFunc(parts, func(a, b types.CompletedPart) int {
		return int(aws.ToInt32(a.PartNumber)) - int(aws.ToInt32(b.PartNumber))
	})

	var data bytes.Buffer
	digests := md5.New()
	for _, part := range parts {
		chunk, ok := u.parts[aws.ToInt32(part.PartNumber)]
		if !ok {
			return nil, apiError("InvalidPart", fmt.Sprintf("part %d was not uploaded", aws.ToInt32(part.PartNumber)))
		}
		data.Write(chunk)
		sum := md5.Sum(chunk)
		digests.Write(sum[:])
	}

	etag := fmt.Sprintf(`"%s-%d"`, hex.EncodeToString(digests.Sum(nil)), len(parts))
	objects[u.key] = &object{
		data:               data.Bytes(),
		etag:               etag,
		lastModified:       c.now(),
		contentType:        aws.ToString(u.input.ContentType),
		cacheControl:       aws.ToString(u.input.CacheControl),
		contentDisposition: aws.ToString(u.input.ContentDisposition),
		contentEncoding:    aws.ToString(u.input.ContentEncoding),
		storageClass:       u.input.StorageClass,
		metadata:           maps.Clone(u.input.Metadata),
		grants:             cannedGrants(u.input.ACL),
	}
	delete(c.uploads, id)

	return &s3.CompleteMultipartUploadOutput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(u.key),
		ETag:   aws.String(etag),
	}, nil
}

func (c *Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := aws.ToString(params.UploadId)
	if _, ok := c.uploads[id]; !ok {
		return nil, &types.NoSuchUpload{Message: aws.String("The specified upload does not exist.")}
	}
	delete(c.uploads, id)

	return &s3.AbortMultipartUploadOutput{}, nil
}

// PendingUploads returns the number of multipart uploads neither completed nor aborted.
func (c *Client) PendingUploads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.uploads)
}

// ============================================================================
// Helpers
// ============================================================================

// bucket returns the objects of a bucket. Callers must hold c.mu.
func (c *Client) bucket(name *string) (map[string]*object, error) {
	objects, ok := c.buckets[aws.ToString(name)]
	if !ok {
		return nil, &types.NoSuchBucket{Message: aws.String("The specified bucket does not exist")}
	}
	return objects, nil
}

// object returns a stored object. Callers must hold c.mu.
func (c *Client) object(bucket, key *string) (*object, error) {
	objects, err := c.bucket(bucket)
	if err != nil {
		return nil, err
	}
	obj, ok := objects[aws.ToString(key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return obj, nil
}

func cannedGrants(acl types.ObjectCannedACL) []types.Grant {
	grants := []types.Grant{{
		Grantee:    &types.Grantee{Type: types.TypeCanonicalUser, ID: aws.String(ownerID)},
		Permission: types.PermissionFullControl,
	}}

	group := func(uri string, permission types.Permission) types.Grant {
		return types.Grant{
			Grantee:    &types.Grantee{Type: types.TypeGroup, URI: aws.String(uri)},
			Permission: permission,
		}
	}

	switch acl {
	case types.ObjectCannedACLPublicRead:
		grants = append(grants, group(AllUsersURI, types.PermissionRead))
	case types.ObjectCannedACLPublicReadWrite:
		grants = append(grants,
			group(AllUsersURI, types.PermissionRead),
			group(AllUsersURI, types.PermissionWrite))
	case types.ObjectCannedACLAuthenticatedRead:
		grants = append(grants, group(authenticatedUsersURI, types.PermissionRead))
	}

	return grants
}

func parseCopySource(source string) (string, string, error) {
	if i := strings.Index(source, "?"); i >= 0 {
		source = source[:i]
	}
	unescaped, err := url.PathUnescape(strings.TrimPrefix(source, "/"))
	if err != nil {
		return "", "", apiError("InvalidArgument", "invalid copy source encoding")
	}
	bucket, key, ok := strings.Cut(unescaped, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", apiError("InvalidArgument", "copy source must be bucket/key")
	}
	return bucket, key, nil
}

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message, Fault: smithy.FaultClient}
}

func etagOf(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

func storageClassOrStandard(class types.StorageClass) string {
	if class == "" {
		return string(types.StorageClassStandard)
	}
	return string(class)
}
