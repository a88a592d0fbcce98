package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marmos91/bucketfs/pkg/filesystem"
	"github.com/marmos91/bucketfs/pkg/filesystem/s3"
	"github.com/marmos91/bucketfs/pkg/filesystem/s3/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) *s3.Adapter {
	t.Helper()
	fs, err := s3.NewAdapter(s3mem.New(s3mem.WithBucket("cli")), "cli",
		s3.WithPublicURL("https://cdn.example.test"))
	require.NoError(t, err)
	return fs
}

func runCmd(t *testing.T, fs filesystem.Adapter, name string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(context.Background(), fs, &out, name, args)
	return out.String(), err
}

func TestCommands_PutCatStat(t *testing.T) {
	fs := newTestFS(t)
	local := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello bucket"), 0644))

	_, err := runCmd(t, fs, "put", "-visibility", "public", "-content-type", "text/x-notes", local, "docs/notes.txt")
	require.NoError(t, err)

	out, err := runCmd(t, fs, "cat", "docs/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello bucket", out)

	out, err = runCmd(t, fs, "stat", "docs/notes.txt")
	require.NoError(t, err)
	assert.Regexp(t, `Size:\s+12\n`, out)
	assert.Contains(t, out, "text/x-notes")
	assert.Contains(t, out, "public")
}

func TestCommands_ListAndDirectories(t *testing.T) {
	ctx := context.Background()
	fs := newTestFS(t)
	require.NoError(t, fs.Write(ctx, "a/0/x.txt", []byte("x"), filesystem.Config{}))
	require.NoError(t, fs.Write(ctx, "a/1/y/x.txt", []byte("y"), filesystem.Config{}))
	require.NoError(t, fs.Write(ctx, "a/top.txt", []byte("t"), filesystem.Config{}))

	out, err := runCmd(t, fs, "ls", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "a/0/")
	assert.Contains(t, out, "a/1/")
	assert.Contains(t, out, "a/top.txt")
	assert.NotContains(t, out, "a/1/y/x.txt")

	out, err = runCmd(t, fs, "ls", "-r", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "a/1/y/x.txt")

	_, err = runCmd(t, fs, "mkdir", "empty")
	require.NoError(t, err)
	exists, err := fs.DirectoryExists(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = runCmd(t, fs, "rmdir", "a")
	require.NoError(t, err)
	exists, err = fs.DirectoryExists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCommands_MoveCopyRemove(t *testing.T) {
	ctx := context.Background()
	fs := newTestFS(t)
	require.NoError(t, fs.Write(ctx, "src.txt", []byte("data"), filesystem.Config{}))

	_, err := runCmd(t, fs, "cp", "src.txt", "copy.txt")
	require.NoError(t, err)
	_, err = runCmd(t, fs, "mv", "src.txt", "moved.txt")
	require.NoError(t, err)

	exists, err := fs.FileExists(ctx, "src.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	for _, path := range []string{"copy.txt", "moved.txt"} {
		data, err := fs.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
	}

	_, err = runCmd(t, fs, "rm", "copy.txt")
	require.NoError(t, err)
	exists, err = fs.FileExists(ctx, "copy.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCommands_Visibility(t *testing.T) {
	ctx := context.Background()
	fs := newTestFS(t)
	require.NoError(t, fs.Write(ctx, "file.txt", []byte("v"), filesystem.Config{}))

	out, err := runCmd(t, fs, "visibility", "file.txt")
	require.NoError(t, err)
	assert.Equal(t, "private\n", out)

	_, err = runCmd(t, fs, "visibility", "file.txt", "public")
	require.NoError(t, err)

	out, err = runCmd(t, fs, "visibility", "file.txt")
	require.NoError(t, err)
	assert.Equal(t, "public\n", out)

	_, err = runCmd(t, fs, "visibility", "file.txt", "everyone")
	assert.ErrorContains(t, err, "invalid visibility")
}

func TestCommands_URL(t *testing.T) {
	fs := newTestFS(t)

	out, err := runCmd(t, fs, "url", "img/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.test/img/logo.png\n", out)

	_, err = runCmd(t, fs, "url", "-expires", time.Hour.String(), "img/logo.png")
	assert.ErrorIs(t, err, filesystem.ErrUnableToGenerateTemporaryURL)
}

func TestCommands_Usage(t *testing.T) {
	fs := newTestFS(t)

	_, err := runCmd(t, fs, "frobnicate")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCmd(t, fs, "mv", "only-one")
	require.ErrorIs(t, err, errUsage)
	assert.True(t, strings.HasSuffix(err.Error(), "bucketfs mv <source> <destination>"))

	_, err = runCmd(t, fs, "ls", "-bogus")
	assert.ErrorIs(t, err, errUsage)
}

func TestCommands_BackendErrorsPassThrough(t *testing.T) {
	fs := newTestFS(t)

	_, err := runCmd(t, fs, "cat", "missing.txt")
	assert.ErrorIs(t, err, filesystem.ErrUnableToReadFile)
	assert.NotErrorIs(t, err, errUsage)
}
