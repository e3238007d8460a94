package fileutil

import (
	"os"
	"path/filepath"

	"github.com/rsyncapp/synccore/internal/synclog"
)

// TempSuffix and PartialSuffix are the on-disk markers for in-progress and
// crashed-copy leftovers.
const (
	TempSuffix    = ".rsync-tmp"
	PartialSuffix = ".rsync-partial"
)

// AtomicPublish renames tempPath into place at finalPath and fsyncs the
// parent directory: the rename is the commit point, and the fsync is
// required for it to survive power loss. Parent-dir fsync errors are
// logged, never returned, because the rename itself already succeeded.
func AtomicPublish(tempPath, finalPath string) error {
	if err := os.Rename(tempPath, finalPath); err != nil {
		return err
	}
	if err := FsyncParentDir(finalPath); err != nil {
		synclog.Base().WithError(err).WithField("path", finalPath).
			Warn("parent directory fsync failed after atomic rename")
	}
	return nil
}

// FsyncParentDir opens and fsyncs the parent directory of path.
func FsyncParentDir(path string) error {
	dir := filepath.Dir(path)
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// CleanStaleSiblings removes any *.rsync-tmp / *.rsync-partial files
// adjacent to dest left over from a prior crashed copy.
func CleanStaleSiblings(dest string) {
	for _, suffix := range []string{TempSuffix, PartialSuffix} {
		_ = os.Remove(dest + suffix)
	}
}

// CleanStaleSiblingsRecursive walks root removing any stale temp/partial
// files found anywhere in the tree.
func CleanStaleSiblingsRecursive(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if filepath.Ext(path) == TempSuffix || filepath.Ext(path) == PartialSuffix {
			_ = os.Remove(path)
		}
		return nil
	})
}
