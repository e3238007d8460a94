//go:build linux || darwin

package fileutil

import (
	"errors"
	"os"
	"syscall"

	"github.com/rsyncapp/synccore/internal/synctypes"
)

// ClassifyError maps an OS error observed at path into the engine's
// SyncError taxonomy. removableMounts lists mount points known to back
// removable volumes, used to decide whether a not-found should be
// downgraded to DriveDisconnected.
func ClassifyError(err error, path string, removableMounts []string) *synctypes.SyncError {
	if err == nil {
		return nil
	}
	var se *synctypes.SyncError
	if errors.As(err, &se) {
		return se
	}

	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return synctypes.Wrap(synctypes.EKind.Io(), path, err)
	}

	switch errno {
	case syscall.EACCES, syscall.EPERM:
		return &synctypes.SyncError{Kind: synctypes.EKind.PermissionDenied(), Path: path, Message: err.Error()}
	case syscall.ENOENT:
		if underRemovableMount(path, removableMounts) {
			return &synctypes.SyncError{Kind: synctypes.EKind.DriveDisconnected(), Path: path, Message: "mount point vanished"}
		}
		return &synctypes.SyncError{Kind: synctypes.EKind.SourceNotFound(), Path: path, Message: err.Error()}
	case syscall.ENOSPC:
		return &synctypes.SyncError{Kind: synctypes.EKind.DiskFull(), Path: path, Message: err.Error()}
	case syscall.EBUSY, syscall.ETXTBSY:
		return &synctypes.SyncError{Kind: synctypes.EKind.FileLocked(), Path: path, Message: err.Error()}
	case syscall.EIO, syscall.ENODEV, syscall.ENXIO:
		return &synctypes.SyncError{Kind: synctypes.EKind.DriveDisconnected(), Path: path, Message: err.Error()}
	case syscall.ENAMETOOLONG:
		return &synctypes.SyncError{Kind: synctypes.EKind.PathTooLong(), Path: path, Message: err.Error(), MaxLength: 255}
	case syscall.ELOOP:
		return &synctypes.SyncError{Kind: synctypes.EKind.SymlinkLoop(), Path: path, Message: err.Error()}
	case syscall.EDQUOT:
		return &synctypes.SyncError{Kind: synctypes.EKind.QuotaExceeded(), Path: path, Message: err.Error()}
	default:
		return synctypes.Wrap(synctypes.EKind.Io(), path, err)
	}
}

func underRemovableMount(path string, mounts []string) bool {
	best := ""
	for _, m := range mounts {
		if len(m) > len(best) && (path == m || len(path) > len(m) && path[:len(m)+1] == m+string(os.PathSeparator)) {
			best = m
		}
	}
	return best != ""
}
