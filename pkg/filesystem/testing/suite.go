// Package testing provides a reusable contract test suite for
// filesystem.Adapter implementations.
package testing

import (
	"context"
	"testing"

	"github.com/marmos91/bucketfs/pkg/filesystem"
)

// AdapterTestSuite is a comprehensive test suite for filesystem.Adapter
// implementations. It tests the interface contract, not implementation
// details, making it reusable across backends.
//
// Usage:
//
//	func TestMyAdapter(t *testing.T) {
//	    suite := &fstesting.AdapterTestSuite{
//	        NewAdapter: func(t *testing.T) filesystem.Adapter {
//	            return myadapter.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type AdapterTestSuite struct {
	// NewAdapter is a factory function that creates a fresh Adapter instance
	// for each test. This ensures test isolation.
	NewAdapter func(t *testing.T) filesystem.Adapter

	// SkipVisibility disables the visibility tests for backends without ACLs.
	SkipVisibility bool
}

// Run executes all tests in the suite.
func (suite *AdapterTestSuite) Run(t *testing.T) {
	t.Run("BasicOperations", suite.RunBasicTests)
	t.Run("DirectoryOperations", suite.RunDirectoryTests)
	t.Run("MetadataOperations", suite.RunMetadataTests)
	t.Run("TransferOperations", suite.RunTransferTests)
	if !suite.SkipVisibility {
		t.Run("VisibilityOperations", suite.RunVisibilityTests)
	}
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
