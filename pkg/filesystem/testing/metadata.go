package testing

import (
	"testing"
	"time"

	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunMetadataTests executes size, timestamp and MIME type tests.
func (suite *AdapterTestSuite) RunMetadataTests(t *testing.T) {
	t.Run("FileSize", suite.testFileSize)
	t.Run("LastModified", suite.testLastModified)
	t.Run("MimeType_Explicit", suite.testMimeTypeExplicit)
	t.Run("MimeType_Inferred", suite.testMimeTypeInferred)
	t.Run("Metadata_NotFound", suite.testMetadataNotFound)
	t.Run("Metadata_DirectoryMarker", suite.testMetadataDirectoryMarker)
}

func (suite *AdapterTestSuite) testFileSize(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("size")

	mustWrite(t, adapter, path, generateTestData(1234), nil)

	attrs, err := adapter.FileSize(testContext(), path)
	require.NoError(t, err)
	require.NotNil(t, attrs.FileSize)
	assert.Equal(t, int64(1234), *attrs.FileSize)
	assert.Equal(t, path, attrs.Path)
}

func (suite *AdapterTestSuite) testLastModified(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("mtime")
	before := time.Now().Add(-time.Minute).Unix()

	mustWrite(t, adapter, path, []byte("x"), nil)

	attrs, err := adapter.LastModified(testContext(), path)
	require.NoError(t, err)
	require.NotNil(t, attrs.LastModified)
	assert.GreaterOrEqual(t, *attrs.LastModified, before)
}

func (suite *AdapterTestSuite) testMimeTypeExplicit(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("mime-explicit") + ".txt"

	mustWrite(t, adapter, path, []byte("<html></html>"), map[string]any{"ContentType": "text/plain+special"})

	attrs, err := adapter.MimeType(testContext(), path)
	require.NoError(t, err)
	assert.Equal(t, "text/plain+special", attrs.MimeType)
}

func (suite *AdapterTestSuite) testMimeTypeInferred(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("mime-inferred") + ".json"

	mustWrite(t, adapter, path, []byte(`{"hello":"world"}`), nil)

	attrs, err := adapter.MimeType(testContext(), path)
	require.NoError(t, err)
	assert.Equal(t, "application/json", attrs.MimeType)
}

func (suite *AdapterTestSuite) testMetadataNotFound(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("missing-metadata")

	_, err := adapter.FileSize(testContext(), path)
	assert.ErrorIs(t, err, filesystem.ErrUnableToRetrieveMetadata)

	_, err = adapter.MimeType(testContext(), path)
	assert.ErrorIs(t, err, filesystem.ErrUnableToRetrieveMetadata)

	_, err = adapter.LastModified(testContext(), path)
	assert.ErrorIs(t, err, filesystem.ErrUnableToRetrieveMetadata)
}

func (suite *AdapterTestSuite) testMetadataDirectoryMarker(t *testing.T) {
	adapter := suite.NewAdapter(t)
	dir := generateTestPath("marker")

	require.NoError(t, adapter.CreateDirectory(testContext(), dir, filesystem.Config{}))

	for name, fetch := range map[string]func() (*filesystem.FileAttributes, error){
		"FileSize":     func() (*filesystem.FileAttributes, error) { return adapter.FileSize(testContext(), dir+"/") },
		"MimeType":     func() (*filesystem.FileAttributes, error) { return adapter.MimeType(testContext(), dir+"/") },
		"LastModified": func() (*filesystem.FileAttributes, error) { return adapter.LastModified(testContext(), dir+"/") },
	} {
		_, err := fetch()
		assert.ErrorIs(t, err, filesystem.ErrUnableToRetrieveMetadata, name)
	}
}
