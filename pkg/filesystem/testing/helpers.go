package testing

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustWrite writes contents and fails the test if it errors.
func mustWrite(t *testing.T, adapter filesystem.Adapter, path string, data []byte, options map[string]any) {
	t.Helper()
	err := adapter.Write(testContext(), path, data, filesystem.NewConfig(options))
	require.NoError(t, err, "Write should succeed")
}

// mustRead reads a file and fails the test if it errors.
func mustRead(t *testing.T, adapter filesystem.Adapter, path string) []byte {
	t.Helper()
	data, err := adapter.Read(testContext(), path)
	require.NoError(t, err, "Read should succeed")
	return data
}

// mustReadStream reads a file through ReadStream and fails the test if it errors.
func mustReadStream(t *testing.T, adapter filesystem.Adapter, path string) []byte {
	t.Helper()
	reader, err := adapter.ReadStream(testContext(), path)
	require.NoError(t, err, "ReadStream should succeed")
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err, "Reading stream should succeed")
	return data
}

// assertFileExists checks file existence.
func assertFileExists(t *testing.T, adapter filesystem.Adapter, path string, expected bool) {
	t.Helper()
	exists, err := adapter.FileExists(testContext(), path)
	require.NoError(t, err, "FileExists should not error")
	assert.Equal(t, expected, exists, "File existence mismatch for %q", path)
}

// collect drains a listing into a map of location to attributes.
func collect(t *testing.T, adapter filesystem.Adapter, path string, deep bool) map[string]filesystem.StorageAttributes {
	t.Helper()
	entries := make(map[string]filesystem.StorageAttributes)
	for entry, err := range adapter.ListContents(testContext(), path, deep) {
		require.NoError(t, err, "ListContents should not error")
		entries[entry.Location()] = entry
	}
	return entries
}

// countKinds returns the number of files and directories in entries.
func countKinds(entries map[string]filesystem.StorageAttributes) (files, dirs int) {
	for _, entry := range entries {
		if entry.IsFile() {
			files++
		} else {
			dirs++
		}
	}
	return files, dirs
}

// generateTestData creates test data of specified size.
func generateTestData(size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = byte(i % 256)
	}
	return data
}

// generateTestPath generates a unique path so tests sharing a backend do not collide.
func generateTestPath(name string) string {
	return "test-" + name + "-" + uuid.NewString()
}
