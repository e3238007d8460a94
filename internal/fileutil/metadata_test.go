package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModTimeUTCIsUTCAndNanoPrecise(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	want := time.Now().Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, want, want))

	got, err := ModTimeUTC(path)
	require.NoError(t, err)
	assert.Equal(t, want.UTC(), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestModTimeUTCMissingFile(t *testing.T) {
	_, err := ModTimeUTC(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestToFileInfoRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	fi, err := ToFileInfo("a.txt", info, false)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", fi.RelPath)
	assert.Equal(t, int64(5), fi.Size)
	assert.False(t, fi.IsDir)
	assert.False(t, fi.IsSymlink)
}

func TestToFileInfoDirectory(t *testing.T) {
	dir := t.TempDir()
	info, err := os.Stat(dir)
	require.NoError(t, err)

	fi, err := ToFileInfo(".", info, false)
	require.NoError(t, err)
	assert.True(t, fi.IsDir)
}
