//go:build linux || darwin

package fileutil

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// DiskFree returns (available, total) bytes for the filesystem containing
// path, walking up to the nearest existing ancestor first — needed when
// pre-checking space under a not-yet-created directory.
func DiskFree(path string) (available, total int64, err error) {
	existing, err := nearestExistingAncestor(path)
	if err != nil {
		return 0, 0, err
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(existing, &stat); err != nil {
		return 0, 0, err
	}
	total = int64(stat.Blocks) * int64(stat.Bsize)
	available = int64(stat.Bavail) * int64(stat.Bsize)
	return available, total, nil
}

func nearestExistingAncestor(path string) (string, error) {
	cur := path
	for {
		if _, err := os.Stat(cur); err == nil {
			return cur, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return cur, nil
		}
		cur = parent
	}
}
