package testing

import (
	"bytes"
	"testing"

	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBasicTests executes read, write, existence and delete tests.
func (suite *AdapterTestSuite) RunBasicTests(t *testing.T) {
	t.Run("FileExists_NotFound", suite.testFileExistsNotFound)
	t.Run("FileExists_Success", suite.testFileExistsSuccess)
	t.Run("Read_NotFound", suite.testReadNotFound)
	t.Run("Write_Read", suite.testWriteRead)
	t.Run("Write_Empty", suite.testWriteEmpty)
	t.Run("Write_Overwrite", suite.testWriteOverwrite)
	t.Run("Write_DirectoryPath", suite.testWriteDirectoryPath)
	t.Run("WriteStream_Large", suite.testWriteStreamLarge)
	t.Run("ReadStream", suite.testReadStream)
	t.Run("Delete", suite.testDelete)
	t.Run("Delete_NotFound", suite.testDeleteNotFound)
	t.Run("Path_Normalization", suite.testPathNormalization)
	t.Run("Path_Traversal", suite.testPathTraversal)
}

// ============================================================================
// Existence Tests
// ============================================================================

func (suite *AdapterTestSuite) testFileExistsNotFound(t *testing.T) {
	adapter := suite.NewAdapter(t)

	assertFileExists(t, adapter, generateTestPath("missing")+".txt", false)
}

func (suite *AdapterTestSuite) testFileExistsSuccess(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("exists") + ".txt"

	mustWrite(t, adapter, path, []byte("present"), nil)

	assertFileExists(t, adapter, path, true)
}

// ============================================================================
// Read / Write Tests
// ============================================================================

func (suite *AdapterTestSuite) testReadNotFound(t *testing.T) {
	adapter := suite.NewAdapter(t)

	_, err := adapter.Read(testContext(), generateTestPath("missing"))
	assert.ErrorIs(t, err, filesystem.ErrUnableToReadFile)
}

func (suite *AdapterTestSuite) testWriteRead(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("write-read") + "/nested/file.txt"
	testData := []byte("Hello, World!")

	mustWrite(t, adapter, path, testData, nil)

	assert.Equal(t, testData, mustRead(t, adapter, path))
}

func (suite *AdapterTestSuite) testWriteEmpty(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("empty")

	mustWrite(t, adapter, path, []byte{}, nil)

	assert.Empty(t, mustRead(t, adapter, path))
	assertFileExists(t, adapter, path, true)
}

func (suite *AdapterTestSuite) testWriteOverwrite(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("overwrite")

	mustWrite(t, adapter, path, []byte("first version"), nil)
	mustWrite(t, adapter, path, []byte("second"), nil)

	assert.Equal(t, []byte("second"), mustRead(t, adapter, path))
}

func (suite *AdapterTestSuite) testWriteDirectoryPath(t *testing.T) {
	adapter := suite.NewAdapter(t)
	dir := generateTestPath("write-dir")

	err := adapter.Write(testContext(), dir+"/", []byte("hello"), filesystem.Config{})
	assert.ErrorIs(t, err, filesystem.ErrUnableToWriteFile)

	err = adapter.WriteStream(testContext(), dir+"/", bytes.NewReader([]byte("hello")), filesystem.Config{})
	assert.ErrorIs(t, err, filesystem.ErrUnableToWriteFile)

	_, err = adapter.Read(testContext(), dir+"/")
	assert.ErrorIs(t, err, filesystem.ErrUnableToReadFile)
	assert.Empty(t, collect(t, adapter, dir, true))

	exists, err := adapter.DirectoryExists(testContext(), dir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func (suite *AdapterTestSuite) testWriteStreamLarge(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("stream") + ".bin"
	testData := generateTestData(1024 * 1024)

	err := adapter.WriteStream(testContext(), path, bytes.NewReader(testData), filesystem.Config{})
	require.NoError(t, err)

	assert.Equal(t, testData, mustRead(t, adapter, path))
}

func (suite *AdapterTestSuite) testReadStream(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("read-stream")
	testData := generateTestData(64 * 1024)

	mustWrite(t, adapter, path, testData, nil)

	assert.Equal(t, testData, mustReadStream(t, adapter, path))
}

// ============================================================================
// Delete Tests
// ============================================================================

func (suite *AdapterTestSuite) testDelete(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("delete")

	mustWrite(t, adapter, path, []byte("doomed"), nil)
	require.NoError(t, adapter.Delete(testContext(), path))

	assertFileExists(t, adapter, path, false)
}

func (suite *AdapterTestSuite) testDeleteNotFound(t *testing.T) {
	adapter := suite.NewAdapter(t)

	assert.NoError(t, adapter.Delete(testContext(), generateTestPath("never-written")))
}

// ============================================================================
// Path Tests
// ============================================================================

func (suite *AdapterTestSuite) testPathNormalization(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("normalize")

	mustWrite(t, adapter, "/"+root+"/./a//b/../c.txt", []byte("normalized"), nil)

	assert.Equal(t, []byte("normalized"), mustRead(t, adapter, root+"/a/c.txt"))
	assert.Equal(t, []byte("normalized"), mustRead(t, adapter, root+`\a\c.txt`))
}

func (suite *AdapterTestSuite) testPathTraversal(t *testing.T) {
	adapter := suite.NewAdapter(t)

	err := adapter.Write(testContext(), "../outside.txt", []byte("x"), filesystem.Config{})
	assert.ErrorIs(t, err, filesystem.ErrUnableToWriteFile)
	assert.ErrorIs(t, err, filesystem.ErrPathTraversal)

	_, err = adapter.Read(testContext(), "a/../../outside.txt")
	assert.ErrorIs(t, err, filesystem.ErrPathTraversal)
}
