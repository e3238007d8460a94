package copyengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsyncapp/synccore/internal/fileutil"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

func TestCopyFreshProducesExactByteCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	data := []byte("hello, this is the source content")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	result, err := Copy(src, dst, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.BytesCopied)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// No temp/partial file left behind.
	_, err = os.Stat(dst + fileutil.TempSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestCopyFreshPreservesMetadata(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	_, err := Copy(src, dst, Options{PreserveMetadata: true}, nil)
	require.NoError(t, err)

	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, mtime.Unix(), dstInfo.ModTime().Unix())
}

func TestCopyFreshVerifyIntegritySucceeds(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	data := []byte("verify me")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	srcMtime, err := fileutil.ModTimeUTC(src)
	require.NoError(t, err)
	hash, err := fileutil.HashFile(src)
	require.NoError(t, err)

	_, err = Copy(src, dst, Options{
		VerifyIntegrity:       true,
		PreCopySourceHash:     hash,
		HavePreCopyHash:       true,
		SourceMtimeBeforeCopy: srcMtime,
	}, nil)
	require.NoError(t, err)
}

func TestCopyFreshVerifyIntegrityDetectsSourceModified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("original"), 0o644))

	// Stale mtime, as if the source changed after the orchestrator recorded it.
	staleMtime := time.Now().Add(-time.Hour)

	_, err := Copy(src, dst, Options{
		VerifyIntegrity:       true,
		SourceMtimeBeforeCopy: staleMtime,
	}, nil)
	require.Error(t, err)
	se := synctypes.AsSyncError(err)
	assert.Equal(t, synctypes.EKind.SourceModifiedDuringCopy(), se.Kind)

	// No partial/final file should be left at dest.
	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCopyFreshProgressCallbackAbortCancels(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	data := make([]byte, DefaultBufferSize*2)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	calls := 0
	_, err := Copy(src, dst, Options{}, func(bytesSoFar int64, _ uint64) bool {
		calls++
		return false
	})
	require.Error(t, err)
	assert.True(t, synctypes.IsCancelled(err))
	assert.Equal(t, 1, calls)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCopyFreshMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := Copy(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"), Options{}, nil)
	require.Error(t, err)
	assert.Equal(t, synctypes.EKind.SourceNotFound(), synctypes.AsSyncError(err).Kind)
}

func TestCopyResumeAppendsFromOffset(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	full := []byte("0123456789ABCDEFGHIJ")
	require.NoError(t, os.WriteFile(src, full, 0o644))
	// Simulate a partial previous copy: first 10 bytes already on disk.
	require.NoError(t, os.WriteFile(dst, full[:10], 0o644))

	result, err := Copy(src, dst, Options{ResumeOffset: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(full)), result.BytesCopied)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, full, got)
}

func TestCleanStaleSiblingsRemovedBeforeFreshCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("new content"), 0o644))
	require.NoError(t, os.WriteFile(dst+fileutil.TempSuffix, []byte("stale"), 0o644))

	_, err := Copy(src, dst, Options{}, nil)
	require.NoError(t, err)

	_, err = os.Stat(dst + fileutil.TempSuffix)
	assert.True(t, os.IsNotExist(err))
}
