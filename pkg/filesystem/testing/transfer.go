package testing

import (
	"testing"

	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTransferTests executes copy and move tests.
func (suite *AdapterTestSuite) RunTransferTests(t *testing.T) {
	t.Run("Copy", suite.testCopy)
	t.Run("Copy_NotFound", suite.testCopyNotFound)
	t.Run("Copy_SamePath", suite.testCopySamePath)
	t.Run("Copy_DirectoryDestination", suite.testCopyDirectoryDestination)
	t.Run("Move", suite.testMove)
	t.Run("Move_NotFound", suite.testMoveNotFound)
	t.Run("Move_SamePath", suite.testMoveSamePath)
	t.Run("Move_DirectoryDestination", suite.testMoveDirectoryDestination)
}

func (suite *AdapterTestSuite) testCopy(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("copy")
	testData := []byte("copied data")

	mustWrite(t, adapter, root+"/source.txt", testData, nil)
	require.NoError(t, adapter.Copy(testContext(), root+"/source.txt", root+"/dir/destination.txt", filesystem.Config{}))

	assert.Equal(t, testData, mustRead(t, adapter, root+"/source.txt"))
	assert.Equal(t, testData, mustRead(t, adapter, root+"/dir/destination.txt"))
}

func (suite *AdapterTestSuite) testCopyNotFound(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("copy-missing")

	err := adapter.Copy(testContext(), root+"/nope", root+"/dest", filesystem.Config{})
	assert.ErrorIs(t, err, filesystem.ErrUnableToCopyFile)
	assertFileExists(t, adapter, root+"/dest", false)
}

func (suite *AdapterTestSuite) testCopySamePath(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("copy-self")

	mustWrite(t, adapter, path, []byte("self"), nil)

	require.NoError(t, adapter.Copy(testContext(), path, "./"+path, filesystem.Config{}))
	assert.Equal(t, []byte("self"), mustRead(t, adapter, path))
}

func (suite *AdapterTestSuite) testCopyDirectoryDestination(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("copy-to-dir")

	mustWrite(t, adapter, root+"/source.txt", []byte("data"), nil)

	err := adapter.Copy(testContext(), root+"/source.txt", root+"/dir/", filesystem.Config{})
	assert.ErrorIs(t, err, filesystem.ErrUnableToCopyFile)

	entries := collect(t, adapter, root, true)
	assert.Len(t, entries, 1)
	assert.Contains(t, entries, root+"/source.txt")
}

func (suite *AdapterTestSuite) testMove(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("move")
	testData := []byte("moved data")

	mustWrite(t, adapter, root+"/source.txt", testData, nil)
	require.NoError(t, adapter.Move(testContext(), root+"/source.txt", root+"/destination.txt", filesystem.Config{}))

	assertFileExists(t, adapter, root+"/source.txt", false)
	assert.Equal(t, testData, mustRead(t, adapter, root+"/destination.txt"))
}

func (suite *AdapterTestSuite) testMoveNotFound(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("move-missing")

	err := adapter.Move(testContext(), root+"/nope", root+"/dest", filesystem.Config{})
	assert.ErrorIs(t, err, filesystem.ErrUnableToMoveFile)
}

func (suite *AdapterTestSuite) testMoveSamePath(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("move-self")

	mustWrite(t, adapter, path, []byte("stay"), nil)

	require.NoError(t, adapter.Move(testContext(), path, path, filesystem.Config{}))
	assert.Equal(t, []byte("stay"), mustRead(t, adapter, path))
}

func (suite *AdapterTestSuite) testMoveDirectoryDestination(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("move-to-dir")

	mustWrite(t, adapter, root+"/source.txt", []byte("data"), nil)

	err := adapter.Move(testContext(), root+"/source.txt", root+"/dir/", filesystem.Config{})
	assert.ErrorIs(t, err, filesystem.ErrUnableToMoveFile)

	assert.Equal(t, []byte("data"), mustRead(t, adapter, root+"/source.txt"))
	assert.Empty(t, collect(t, adapter, root+"/dir", true))
}
