package testing

import (
	"testing"

	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDirectoryTests executes listing and directory lifecycle tests.
func (suite *AdapterTestSuite) RunDirectoryTests(t *testing.T) {
	t.Run("ListContents_Deep", suite.testListContentsDeep)
	t.Run("ListContents_Shallow", suite.testListContentsShallow)
	t.Run("ListContents_Missing", suite.testListContentsMissing)
	t.Run("ListContents_StopEarly", suite.testListContentsStopEarly)
	t.Run("CreateDirectory", suite.testCreateDirectory)
	t.Run("DirectoryExists", suite.testDirectoryExists)
	t.Run("DeleteDirectory", suite.testDeleteDirectory)
	t.Run("DeleteDirectory_Empty", suite.testDeleteDirectoryEmpty)
}

// writeTree creates root/a/0/x.txt and root/a/1/y/x.txt.
func writeTree(t *testing.T, adapter filesystem.Adapter, root string) {
	t.Helper()
	mustWrite(t, adapter, root+"/a/0/x.txt", []byte("0"), nil)
	mustWrite(t, adapter, root+"/a/1/y/x.txt", []byte("1"), nil)
}

// ============================================================================
// Listing Tests
// ============================================================================

func (suite *AdapterTestSuite) testListContentsDeep(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("list-deep")
	writeTree(t, adapter, root)

	entries := collect(t, adapter, root+"/a", true)

	files, dirs := countKinds(entries)
	assert.Equal(t, 2, files)
	assert.Equal(t, 0, dirs)
	assert.Contains(t, entries, root+"/a/0/x.txt")
	assert.Contains(t, entries, root+"/a/1/y/x.txt")
}

func (suite *AdapterTestSuite) testListContentsShallow(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("list-shallow")
	writeTree(t, adapter, root)

	entries := collect(t, adapter, root+"/a", false)

	files, dirs := countKinds(entries)
	assert.Equal(t, 0, files)
	assert.Equal(t, 2, dirs)
	require.Contains(t, entries, root+"/a/0")
	require.Contains(t, entries, root+"/a/1")
	assert.True(t, entries[root+"/a/0"].IsDir())
	assert.True(t, entries[root+"/a/1"].IsDir())
}

func (suite *AdapterTestSuite) testListContentsMissing(t *testing.T) {
	adapter := suite.NewAdapter(t)

	assert.Empty(t, collect(t, adapter, generateTestPath("nothing-here"), true))
}

func (suite *AdapterTestSuite) testListContentsStopEarly(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("list-stop")
	for _, name := range []string{"a", "b", "c", "d"} {
		mustWrite(t, adapter, root+"/"+name, []byte(name), nil)
	}

	seen := 0
	for _, err := range adapter.ListContents(testContext(), root, true) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}

	assert.Equal(t, 2, seen)
}

// ============================================================================
// Directory Lifecycle Tests
// ============================================================================

func (suite *AdapterTestSuite) testCreateDirectory(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("mkdir")

	require.NoError(t, adapter.CreateDirectory(testContext(), root+"/child", filesystem.Config{}))

	entries := collect(t, adapter, root, false)
	require.Contains(t, entries, root+"/child")
	assert.True(t, entries[root+"/child"].IsDir())

	// Listing the directory itself does not include its own marker
	assert.Empty(t, collect(t, adapter, root+"/child", true))
}

func (suite *AdapterTestSuite) testDirectoryExists(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("direxists")

	exists, err := adapter.DirectoryExists(testContext(), root)
	require.NoError(t, err)
	assert.False(t, exists)

	mustWrite(t, adapter, root+"/deep/file.txt", []byte("x"), nil)

	exists, err = adapter.DirectoryExists(testContext(), root)
	require.NoError(t, err)
	assert.True(t, exists)
}

func (suite *AdapterTestSuite) testDeleteDirectory(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("rmdir")
	writeTree(t, adapter, root)
	mustWrite(t, adapter, root+"-sibling.txt", []byte("keep"), nil)

	require.NoError(t, adapter.DeleteDirectory(testContext(), root))

	assert.Empty(t, collect(t, adapter, root, true))
	assertFileExists(t, adapter, root+"-sibling.txt", true)
}

func (suite *AdapterTestSuite) testDeleteDirectoryEmpty(t *testing.T) {
	adapter := suite.NewAdapter(t)

	assert.NoError(t, adapter.DeleteDirectory(testContext(), generateTestPath("empty-dir")))
}
