package platform

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFileBasic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	data := []byte("IMG_0001.CR3 payload")
	require.NoError(t, os.WriteFile(src, data, 0644))

	result, err := CopyFile(CopyFileParams{
		SrcPath: src,
		DstPath: dst,
		SrcSize: int64(len(data)),
		Mode:    0644,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.BytesWritten)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyFileLarge(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	// 4 MiB — larger than the 1 MiB buffer.
	size := 4 * 1024 * 1024
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, data, 0644))

	result, err := CopyFile(CopyFileParams{
		SrcPath: src,
		DstPath: dst,
		SrcSize: int64(size),
		Mode:    0644,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(size), result.BytesWritten)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyFileEmpty(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, os.WriteFile(src, nil, 0644))

	result, err := CopyFile(CopyFileParams{
		SrcPath: src,
		DstPath: dst,
		SrcSize: 0,
		Mode:    0644,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.BytesWritten)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()

	_, err := CopyFile(CopyFileParams{
		SrcPath: filepath.Join(dir, "nope"),
		DstPath: filepath.Join(dir, "dst"),
		SrcSize: 10,
	})
	assert.Error(t, err)
}

func TestCopyFileDestinationExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0644))

	_, err := CopyFile(CopyFileParams{
		SrcPath: src,
		DstPath: dst,
		SrcSize: 3,
		Mode:    0644,
	})
	assert.Error(t, err)

	// The old contents survive.
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), got)
}

func TestCopyFilePreservesMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	data := []byte("mode test")
	require.NoError(t, os.WriteFile(src, data, 0600))

	_, err := CopyFile(CopyFileParams{
		SrcPath: src,
		DstPath: dst,
		SrcSize: int64(len(data)),
		Mode:    0600,
	})
	require.NoError(t, err)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCopyFileDefaultMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	_, err := CopyFile(CopyFileParams{
		SrcPath: src,
		DstPath: dst,
		SrcSize: 1,
	})
	require.NoError(t, err)

	// Zero Mode must not produce an unreadable file.
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestCopyMethodString(t *testing.T) {
	assert.Equal(t, "read_write", ReadWrite.String())
	assert.Equal(t, "copy_file_range", CopyFileRange.String())
	assert.Equal(t, "sendfile", Sendfile.String())
	assert.Equal(t, "clonefile", Clonefile.String())
	assert.Equal(t, "unknown", CopyMethod(99).String())
}
