//go:build linux || darwin

package volume

import (
	"os"
	"path/filepath"
	"runtime"
)

// MountRootsForPlatform returns the platform-appropriate mount root(s) spec
// §4.6 names: /Volumes on macOS; /media, /mnt, /run/media/$USER on Linux.
func MountRootsForPlatform() []string {
	if runtime.GOOS == "darwin" {
		return []string{"/Volumes"}
	}
	roots := []string{"/media", "/mnt"}
	if u := os.Getenv("USER"); u != "" {
		roots = append(roots, filepath.Join("/run/media", u))
	}
	return roots
}
