package s3

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectParams(t *testing.T) {
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	cfg := filesystem.NewConfig(map[string]any{
		"ACL":                  "public-read",
		"CacheControl":         "no-cache",
		"ContentLength":        "42",
		"Expires":              expires.Format(time.RFC3339),
		"StorageClass":         "STANDARD_IA",
		"ServerSideEncryption": "AES256",
		"SSEKMSKeyId":          "key-id",
		"Tagging":              "a=b",
		"Metadata":             map[string]any{},
		"visibility":           "public",
	})

	p, err := parseObjectParams(cfg)
	require.NoError(t, err)
	assert.Equal(t, types.ObjectCannedACLPublicRead, p.ACL)
	assert.Equal(t, "no-cache", aws.ToString(p.CacheControl))
	assert.Equal(t, int64(42), aws.ToInt64(p.ContentLength))
	require.NotNil(t, p.Expires)
	assert.True(t, expires.Equal(*p.Expires))
	assert.Equal(t, types.StorageClassStandardIa, p.StorageClass)
	assert.Equal(t, types.ServerSideEncryptionAes256, p.ServerSideEncryption)
	assert.Equal(t, "key-id", aws.ToString(p.SSEKMSKeyID))
	assert.Equal(t, "a=b", aws.ToString(p.Tagging))
	assert.Nil(t, p.Metadata)
	assert.Nil(t, p.ContentType)

	put := p.putObjectInput("bucket", "key")
	assert.Equal(t, "bucket", aws.ToString(put.Bucket))
	assert.Equal(t, "key", aws.ToString(put.Key))
	assert.Equal(t, int64(42), aws.ToInt64(put.ContentLength))
	assert.Equal(t, "key-id", aws.ToString(put.SSEKMSKeyId))

	copyInput := p.copyObjectInput("bucket", "src key", "dst")
	assert.Equal(t, "bucket/src%20key", aws.ToString(copyInput.CopySource))
	assert.Equal(t, "dst", aws.ToString(copyInput.Key))
	assert.Equal(t, types.ObjectCannedACLPublicRead, copyInput.ACL)
}

func TestParseObjectParamsEmpty(t *testing.T) {
	p, err := parseObjectParams(filesystem.Config{})
	require.NoError(t, err)
	assert.Empty(t, p.ACL)
	assert.Nil(t, p.CacheControl)
	assert.Nil(t, p.ContentLength)
	assert.Nil(t, p.Expires)
	assert.Nil(t, p.Metadata)
}

func TestParseObjectParamsCoercion(t *testing.T) {
	for _, v := range []any{int(7), int32(7), int64(7), uint(7), uint32(7), uint64(7), float64(7), "7"} {
		p, err := parseObjectParams(filesystem.NewConfig(map[string]any{"ContentLength": v}))
		require.NoError(t, err, "%T", v)
		assert.Equal(t, int64(7), aws.ToInt64(p.ContentLength), "%T", v)
	}

	now := time.Unix(1767225600, 0).UTC()
	for _, v := range []any{now, &now, now.Format(time.RFC3339), int64(1767225600), 1767225600} {
		p, err := parseObjectParams(filesystem.NewConfig(map[string]any{"Expires": v}))
		require.NoError(t, err, "%T", v)
		require.NotNil(t, p.Expires, "%T", v)
		assert.True(t, now.Equal(*p.Expires), "%T: %v", v, *p.Expires)
	}

	p, err := parseObjectParams(filesystem.NewConfig(map[string]any{"Metadata": map[string]int{"a": 1}}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, p.Metadata)

	p, err = parseObjectParams(filesystem.NewConfig(map[string]any{"Metadata": map[string]any{"a": 1, "b": "x"}}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x"}, p.Metadata)

	p, err = parseObjectParams(filesystem.NewConfig(map[string]any{"ContentType": "", "Expires": nil}))
	require.NoError(t, err)
	assert.Nil(t, p.ContentType)
	assert.Nil(t, p.Expires)
}

func TestParseObjectParamsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"ContentLengthOverflow", "ContentLength", uint64(math.MaxUint64)},
		{"ContentLengthFraction", "ContentLength", 1.5},
		{"ContentLengthNegative", "ContentLength", -1},
		{"ContentLengthText", "ContentLength", "seven"},
		{"ExpiresText", "Expires", "tomorrow"},
		{"ExpiresOverflow", "Expires", uint64(math.MaxUint64)},
		{"MetadataNotMap", "Metadata", "a=1"},
		{"UnknownACL", "ACL", "world-readable"},
		{"UnknownStorageClass", "StorageClass", "FAST"},
		{"UnknownEncryption", "ServerSideEncryption", "rot13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseObjectParams(filesystem.NewConfig(map[string]any{tt.key: tt.value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestAdapter_InvalidObjectOptions(t *testing.T) {
	ctx := context.Background()
	client := newMemClient()
	adapter := newTestAdapter(t, client)

	err := adapter.Write(ctx, "f.txt", []byte("x"), filesystem.NewConfig(map[string]any{"ContentLength": uint64(math.MaxUint64)}))
	require.ErrorIs(t, err, filesystem.ErrUnableToWriteFile)
	assert.Empty(t, client.Keys(testBucket))

	require.NoError(t, adapter.Write(ctx, "f.txt", []byte("x"), filesystem.Config{}))
	err = adapter.Copy(ctx, "f.txt", "g.txt", filesystem.NewConfig(map[string]any{"StorageClass": "FAST"}))
	require.ErrorIs(t, err, filesystem.ErrUnableToCopyFile)
	assert.Equal(t, []string{"f.txt"}, client.Keys(testBucket))
}

func TestEscapeKey(t *testing.T) {
	tests := map[string]string{
		"plain/key.txt":      "plain/key.txt",
		"with space/a b.txt": "with%20space/a%20b.txt",
		"q?/h#.txt":          "q%3F/h%23.txt",
		"dir/":               "dir/",
	}
	for key, want := range tests {
		assert.Equal(t, want, escapeKey(key), key)
	}
}

func TestPortableVisibilityConverter(t *testing.T) {
	converter := NewPortableVisibilityConverter("")
	assert.Equal(t, filesystem.Public, converter.DefaultForDirectories())
	assert.Equal(t, filesystem.Private, NewPortableVisibilityConverter(filesystem.Private).DefaultForDirectories())

	assert.Equal(t, types.ObjectCannedACLPublicRead, converter.VisibilityToACL(filesystem.Public))
	assert.Equal(t, types.ObjectCannedACLPrivate, converter.VisibilityToACL(filesystem.Private))
	assert.Equal(t, types.ObjectCannedACLPrivate, converter.VisibilityToACL("unknown"))

	owner := types.Grant{
		Grantee:    &types.Grantee{Type: types.TypeCanonicalUser, ID: aws.String("owner")},
		Permission: types.PermissionFullControl,
	}
	allUsers := func(permission types.Permission) types.Grant {
		return types.Grant{
			Grantee:    &types.Grantee{Type: types.TypeGroup, URI: aws.String(allUsersURI)},
			Permission: permission,
		}
	}

	assert.Equal(t, filesystem.Private, converter.ACLToVisibility(nil))
	assert.Equal(t, filesystem.Private, converter.ACLToVisibility([]types.Grant{owner}))
	assert.Equal(t, filesystem.Private, converter.ACLToVisibility([]types.Grant{owner, allUsers(types.PermissionWrite)}))
	assert.Equal(t, filesystem.Public, converter.ACLToVisibility([]types.Grant{allUsers(types.PermissionRead), owner}))
	assert.Equal(t, filesystem.Public, converter.ACLToVisibility([]types.Grant{{Permission: types.PermissionRead}, allUsers(types.PermissionRead)}))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.False(t, isNotFound(errors.New("boom")))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &types.NotFound{})))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "404"}))
	assert.True(t, isNotFound(httpError(404)))
	assert.False(t, isNotFound(httpError(500)))
}
