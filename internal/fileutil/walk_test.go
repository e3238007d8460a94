package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("aaa"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("bb"), 0o644))
	return root
}

func TestWalkFullCapturesFilesAndDirs(t *testing.T) {
	root := buildTree(t)

	manifest, err := Walk(root, WalkFull)
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.FileCount)
	assert.Equal(t, 1, manifest.DirCount)
	assert.Equal(t, int64(5), manifest.TotalBytes)
	assert.True(t, manifest.ScanComplete)
	assert.Len(t, manifest.Files, 3) // 1 dir + 2 files
}

func TestWalkCountOnlyDoesNotBuildFileSlice(t *testing.T) {
	root := buildTree(t)

	manifest, err := Walk(root, WalkCountOnly)
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.FileCount)
	assert.Empty(t, manifest.Files)
}

func TestWalkEmptyDirectory(t *testing.T) {
	root := t.TempDir()

	manifest, err := Walk(root, WalkFull)
	require.NoError(t, err)
	assert.Equal(t, 0, manifest.FileCount)
	assert.Equal(t, 0, manifest.DirCount)
	assert.True(t, manifest.ScanComplete)
}

func TestWalkAgreesBetweenModes(t *testing.T) {
	root := buildTree(t)

	full, err := Walk(root, WalkFull)
	require.NoError(t, err)
	countOnly, err := Walk(root, WalkCountOnly)
	require.NoError(t, err)

	assert.Equal(t, full.FileCount, countOnly.FileCount)
	assert.Equal(t, full.DirCount, countOnly.DirCount)
	assert.Equal(t, full.TotalBytes, countOnly.TotalBytes)
}
