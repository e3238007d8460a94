//go:build windows

package volume

import (
	"fmt"
	"os"
)

// MountRootsForPlatform enumerates "C:\", "D:\", ... as pseudo mount roots
// on Windows, where mounts are drive letters rather than a single
// filesystem subtree. Watcher's generic reconcile loop still works because
// each drive letter is itself treated as one "mount point" entry.
func MountRootsForPlatform() []string {
	var roots []string
	for c := 'A'; c <= 'Z'; c++ {
		root := fmt.Sprintf("%c:\\", c)
		if _, err := os.Stat(root); err == nil {
			roots = append(roots, root)
		}
	}
	return roots
}
