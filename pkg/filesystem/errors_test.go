package filesystem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type backendError struct{ code string }

func (e *backendError) Error() string { return "backend: " + e.code }

func TestOperationError(t *testing.T) {
	cause := &backendError{code: "AccessDenied"}

	t.Run("MatchesKind", func(t *testing.T) {
		err := error(NewError(ErrUnableToReadFile, "a.txt", cause))
		assert.ErrorIs(t, err, ErrUnableToReadFile)
		assert.NotErrorIs(t, err, ErrUnableToWriteFile)
	})

	t.Run("UnwrapsCause", func(t *testing.T) {
		err := error(NewError(ErrUnableToDeleteFile, "a.txt", cause))

		var target *backendError
		assert.True(t, errors.As(err, &target))
		assert.Equal(t, "AccessDenied", target.code)
	})

	t.Run("MetadataMessage", func(t *testing.T) {
		err := NewMetadataError("dir", MetadataFileSize, "path is a directory", nil)
		assert.ErrorIs(t, err, ErrUnableToRetrieveMetadata)
		assert.Equal(t, MetadataFileSize, err.Metadata)
		assert.Equal(t, `unable to retrieve metadata file_size at "dir": path is a directory`, err.Error())
	})

	t.Run("TransferMessage", func(t *testing.T) {
		err := NewTransferError(ErrUnableToMoveFile, "a", "b", cause)
		assert.Equal(t, `unable to move file from "a" to "b": backend: AccessDenied`, err.Error())
	})

	t.Run("WrappedTwice", func(t *testing.T) {
		inner := NewError(ErrUnableToDeleteFile, "a", cause)
		outer := NewTransferError(ErrUnableToMoveFile, "a", "b", inner)
		assert.ErrorIs(t, outer, ErrUnableToMoveFile)
		assert.ErrorIs(t, outer, ErrUnableToDeleteFile)
	})
}
