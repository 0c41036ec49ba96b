package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sh")
	dst := filepath.Join(dir, "dst.sh")
	writeFile(t, src, "#!/bin/sh\necho hi\n")
	require.NoError(t, os.Chmod(src, 0o750))
	setMtime(t, src, testTime)

	n, err := copyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len("#!/bin/sh\necho hi\n")), n)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi\n", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(testTime), "mtime %v", info.ModTime())
}

func TestCopyFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := copyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	assert.Error(t, err)

	_, err = copyFile(dir, filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, ErrNotAFile)
}

func TestCopyTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	makeTree(t, src)
	require.NoError(t, os.Symlink("top.txt", filepath.Join(src, "link.txt")))
	require.NoError(t, os.Symlink("nowhere", filepath.Join(src, "dangling")))
	setMtime(t, filepath.Join(src, "sub"), testTime)

	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, os.Mkdir(dst, 0o755))

	stats, err := copyTree(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Files, "top, one, two and the followed link")
	assert.Equal(t, int64(len("top")*2+len("one")+len("two")), stats.Bytes)

	data, err := os.ReadFile(filepath.Join(dst, "sub", "deeper", "two.txt"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	fi, err := os.Lstat(filepath.Join(dst, "link.txt"))
	require.NoError(t, err)
	assert.True(t, fi.Mode().IsRegular(), "links to files are copied as files")

	target, err := os.Readlink(filepath.Join(dst, "dangling"))
	require.NoError(t, err)
	assert.Equal(t, "nowhere", target)

	info, err := os.Stat(filepath.Join(dst, "sub"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(testTime), "directory mtime %v", info.ModTime())

	h := NewHasher(SHA256)
	a, err := h.HashDirectory(src)
	require.NoError(t, err)
	b, err := h.HashDirectory(dst)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCopyTree_SymlinkedDirectory(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "inner.txt"), "inner")

	src := filepath.Join(t.TempDir(), "src")
	writeFile(t, filepath.Join(src, "a.txt"), "a")
	require.NoError(t, os.Symlink(outside, filepath.Join(src, "linked")))

	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, os.Mkdir(dst, 0o755))

	stats, err := copyTree(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)

	data, err := os.ReadFile(filepath.Join(dst, "linked", "inner.txt"))
	require.NoError(t, err)
	assert.Equal(t, "inner", string(data))
}
