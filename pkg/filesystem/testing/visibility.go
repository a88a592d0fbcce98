package testing

import (
	"testing"

	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunVisibilityTests executes visibility tests.
func (suite *AdapterTestSuite) RunVisibilityTests(t *testing.T) {
	t.Run("DefaultPrivate", suite.testVisibilityDefaultPrivate)
	t.Run("WriteWithVisibility", suite.testWriteWithVisibility)
	t.Run("SetVisibility_RoundTrip", suite.testSetVisibilityRoundTrip)
	t.Run("Copy_RetainsVisibility", suite.testCopyRetainsVisibility)
	t.Run("Copy_OverridesVisibility", suite.testCopyOverridesVisibility)
	t.Run("Visibility_NotFound", suite.testVisibilityNotFound)
}

func assertVisibility(t *testing.T, adapter filesystem.Adapter, path string, expected filesystem.Visibility) {
	t.Helper()
	attrs, err := adapter.Visibility(testContext(), path)
	require.NoError(t, err, "Visibility should succeed")
	assert.Equal(t, expected, attrs.Visibility, "visibility mismatch for %q", path)
}

func (suite *AdapterTestSuite) testVisibilityDefaultPrivate(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("vis-default")

	mustWrite(t, adapter, path, []byte("x"), nil)

	assertVisibility(t, adapter, path, filesystem.Private)
}

func (suite *AdapterTestSuite) testWriteWithVisibility(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("vis-write")

	mustWrite(t, adapter, path, []byte("x"), map[string]any{filesystem.OptionVisibility: "public"})

	assertVisibility(t, adapter, path, filesystem.Public)
}

func (suite *AdapterTestSuite) testSetVisibilityRoundTrip(t *testing.T) {
	adapter := suite.NewAdapter(t)
	path := generateTestPath("vis-roundtrip")
	mustWrite(t, adapter, path, []byte("x"), nil)

	for _, visibility := range []filesystem.Visibility{filesystem.Public, filesystem.Private, filesystem.Public} {
		require.NoError(t, adapter.SetVisibility(testContext(), path, visibility))
		assertVisibility(t, adapter, path, visibility)
	}
}

func (suite *AdapterTestSuite) testCopyRetainsVisibility(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("vis-copy")

	mustWrite(t, adapter, root+"/public.txt", []byte("x"), map[string]any{filesystem.OptionVisibility: "public"})
	require.NoError(t, adapter.Copy(testContext(), root+"/public.txt", root+"/copy.txt", filesystem.Config{}))

	assertVisibility(t, adapter, root+"/copy.txt", filesystem.Public)
}

func (suite *AdapterTestSuite) testCopyOverridesVisibility(t *testing.T) {
	adapter := suite.NewAdapter(t)
	root := generateTestPath("vis-copy-override")

	mustWrite(t, adapter, root+"/public.txt", []byte("x"), map[string]any{filesystem.OptionVisibility: "public"})
	err := adapter.Copy(testContext(), root+"/public.txt", root+"/copy.txt",
		filesystem.NewConfig(map[string]any{filesystem.OptionVisibility: "private"}))
	require.NoError(t, err)

	assertVisibility(t, adapter, root+"/copy.txt", filesystem.Private)
}

func (suite *AdapterTestSuite) testVisibilityNotFound(t *testing.T) {
	adapter := suite.NewAdapter(t)

	_, err := adapter.Visibility(testContext(), generateTestPath("vis-missing"))
	require.ErrorIs(t, err, filesystem.ErrUnableToRetrieveMetadata)

	var opErr *filesystem.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, filesystem.MetadataVisibility, opErr.Metadata)
}
