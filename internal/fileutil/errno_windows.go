//go:build windows

package fileutil

import (
	"errors"
	"syscall"

	"github.com/rsyncapp/synccore/internal/synctypes"
)

// ClassifyError is the Windows counterpart of the unix errno classifier.
// Windows syscall errors surface as syscall.Errno too, but with distinct
// numeric values from ERROR_* rather than POSIX errno.
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
	case syscall.ERROR_ACCESS_DENIED:
		return &synctypes.SyncError{Kind: synctypes.EKind.PermissionDenied(), Path: path, Message: err.Error()}
	case syscall.ERROR_FILE_NOT_FOUND, syscall.ERROR_PATH_NOT_FOUND:
		if underRemovableMount(path, removableMounts) {
			return &synctypes.SyncError{Kind: synctypes.EKind.DriveDisconnected(), Path: path, Message: "mount point vanished"}
		}
		return &synctypes.SyncError{Kind: synctypes.EKind.SourceNotFound(), Path: path, Message: err.Error()}
	case syscall.ERROR_DISK_FULL:
		return &synctypes.SyncError{Kind: synctypes.EKind.DiskFull(), Path: path, Message: err.Error()}
	case syscall.ERROR_SHARING_VIOLATION, syscall.ERROR_LOCK_VIOLATION:
		return &synctypes.SyncError{Kind: synctypes.EKind.FileLocked(), Path: path, Message: err.Error()}
	case syscall.ERROR_DEV_NOT_EXIST, syscall.ERROR_BAD_NETPATH:
		return &synctypes.SyncError{Kind: synctypes.EKind.DriveDisconnected(), Path: path, Message: err.Error()}
	case syscall.ERROR_FILENAME_EXCED_RANGE:
		return &synctypes.SyncError{Kind: synctypes.EKind.PathTooLong(), Path: path, Message: err.Error(), MaxLength: 260}
	default:
		return synctypes.Wrap(synctypes.EKind.Io(), path, err)
	}
}

func underRemovableMount(path string, mounts []string) bool {
	best := ""
	for _, m := range mounts {
		if len(m) > len(best) && len(path) >= len(m) && path[:len(m)] == m {
			best = m
		}
	}
	return best != ""
}
