package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestExistingAncestorPathWalksUpToRealDir(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "not", "yet", "created.txt")

	got := nearestExistingAncestorPath(missing)
	assert.Equal(t, dir, got)
}

func TestNearestExistingAncestorPathReturnsSelfWhenItExists(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, nearestExistingAncestorPath(dir))
}

func TestResolveMountPointFallsBackToNearestAncestorOffRemovableRoots(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	// dir isn't under any platform removable root, so resolution falls
	// back to the nearest existing ancestor of the path itself.
	got := resolveMountPoint(filepath.Join(nested, "file.txt"))
	assert.Equal(t, nested, got)
}

func TestIsUnderRemovableRootFalseForOrdinaryPath(t *testing.T) {
	assert.False(t, isUnderRemovableRoot(t.TempDir()))
}

func TestGetVolumeInfoReportsAccessibleLocalDir(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	info, err := e.GetVolumeInfo(dir)
	require.NoError(t, err)
	assert.True(t, info.IsMounted)
	assert.GreaterOrEqual(t, info.TotalBytes, int64(0))
}

func TestIsVolumeAccessibleTrueForExistingDir(t *testing.T) {
	e := newTestEngine(t)
	assert.True(t, e.IsVolumeAccessible(t.TempDir()))
}

func TestIsVolumeAccessibleFalseWhenResolvedMountIsAFile(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	// nearestExistingAncestorPath resolves straight to the file itself
	// since it exists, so the readdir probe must fail.
	assert.False(t, e.IsVolumeAccessible(file))
}

func TestValidateSyncVolumesPassesForTwoAccessibleDirs(t *testing.T) {
	e := newTestEngine(t)
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out.txt")

	assert.NoError(t, e.ValidateSyncVolumes(src, dst))
}

func TestValidateSyncVolumesFailsWhenSourceResolvesToAFile(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
	dst := filepath.Join(t.TempDir(), "out.txt")

	err := e.ValidateSyncVolumes(src, dst)
	assert.Error(t, err)
}
