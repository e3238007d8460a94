//go:build linux || darwin

package fileutil

import "os"

func createSymlink(target, dest, _srcLink string) error {
	return os.Symlink(target, dest)
}
