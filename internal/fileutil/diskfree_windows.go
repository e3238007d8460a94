//go:build windows

package fileutil

import (
	"os"
	"path/filepath"
	"syscall"
	"unsafe"
)

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procGetDiskFreeSpace = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// DiskFree returns (available, total) bytes for the volume containing path,
// mirroring the unix implementation's ancestor-walk for not-yet-created
// directories.
func DiskFree(path string) (available, total int64, err error) {
	existing, err := nearestExistingAncestor(path)
	if err != nil {
		return 0, 0, err
	}
	ptr, err := syscall.UTF16PtrFromString(existing)
	if err != nil {
		return 0, 0, err
	}
	var freeAvail, totalBytes, totalFree uint64
	r, _, callErr := procGetDiskFreeSpace.Call(
		uintptr(unsafe.Pointer(ptr)),
		uintptr(unsafe.Pointer(&freeAvail)),
		uintptr(unsafe.Pointer(&totalBytes)),
		uintptr(unsafe.Pointer(&totalFree)),
	)
	if r == 0 {
		return 0, 0, callErr
	}
	return int64(freeAvail), int64(totalBytes), nil
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
