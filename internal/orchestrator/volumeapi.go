package orchestrator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rsyncapp/synccore/internal/fileutil"
	"github.com/rsyncapp/synccore/internal/synctypes"
	"github.com/rsyncapp/synccore/internal/volume"
)

// GetVolumeInfo resolves path to its mount point and reports its
// capacity/accessibility.
func (e *Engine) GetVolumeInfo(path string) (synctypes.VolumeSnapshot, error) {
	mount := resolveMountPoint(path)

	available, total, err := fileutil.DiskFree(path)
	accessible := err == nil
	if err != nil {
		if _, statErr := os.Stat(mount); statErr != nil {
			return synctypes.VolumeSnapshot{}, synctypes.Wrap(synctypes.EKind.DriveDisconnected(), mount, statErr)
		}
	}

	return synctypes.VolumeSnapshot{
		MountPoint:     mount,
		Name:           filepath.Base(mount),
		TotalBytes:     total,
		AvailableBytes: available,
		IsRemovable:    isUnderRemovableRoot(mount),
		IsMounted:      accessible,
	}, nil
}

// GetMountedVolumes enumerates every removable mount point currently
// visible on this platform.
func (e *Engine) GetMountedVolumes() []synctypes.VolumeSnapshot {
	var out []synctypes.VolumeSnapshot
	for _, root := range volume.MountRootsForPlatform() {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, ent := range entries {
			mp := filepath.Join(root, ent.Name())
			available, total, dfErr := fileutil.DiskFree(mp)
			out = append(out, synctypes.VolumeSnapshot{
				MountPoint:     mp,
				Name:           ent.Name(),
				TotalBytes:     total,
				AvailableBytes: available,
				IsRemovable:    true,
				IsMounted:      dfErr == nil,
			})
		}
	}
	return out
}

// IsVolumeAccessible runs a lightweight readdir probe, the same check the
// watcher uses for its Inaccessible event: a permission error does not
// count as inaccessible.
func (e *Engine) IsVolumeAccessible(path string) bool {
	mount := resolveMountPoint(path)
	_, err := os.ReadDir(mount)
	return err == nil || os.IsPermission(err)
}

// ValidateSyncVolumes requires both endpoints to resolve to an accessible
// volume before a sync is allowed to start.
func (e *Engine) ValidateSyncVolumes(src, dst string) error {
	if !e.IsVolumeAccessible(src) {
		return synctypes.New(synctypes.EKind.DriveDisconnected(), src)
	}
	if !e.IsVolumeAccessible(filepath.Dir(dst)) {
		return synctypes.New(synctypes.EKind.DriveDisconnected(), dst)
	}
	return nil
}

// resolveMountPoint walks up to the nearest existing ancestor of path and
// then to the longest-prefix-matching removable root, falling back to the
// nearest existing ancestor itself for paths on a fixed, non-removable
// volume. Works without a live Watcher.
func resolveMountPoint(path string) string {
	best := ""
	for _, root := range volume.MountRootsForPlatform() {
		if strings.HasPrefix(path, root) {
			entries, err := os.ReadDir(root)
			if err != nil {
				continue
			}
			for _, ent := range entries {
				mp := filepath.Join(root, ent.Name())
				if strings.HasPrefix(path, mp) && len(mp) > len(best) {
					best = mp
				}
			}
		}
	}
	if best != "" {
		return best
	}
	return nearestExistingAncestorPath(path)
}

func isUnderRemovableRoot(mount string) bool {
	for _, root := range volume.MountRootsForPlatform() {
		if strings.HasPrefix(mount, root) {
			return true
		}
	}
	return false
}

func nearestExistingAncestorPath(path string) string {
	cur := path
	for {
		if _, err := os.Stat(cur); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return cur
		}
		cur = parent
	}
}
