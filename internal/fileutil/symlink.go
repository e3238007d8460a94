package fileutil

import "os"

// RecreateSymlink reads the link target, removes any existing destination
// entry, then recreates it as a symlink with the same target. On unix a
// single os.Symlink call suffices; Windows needs to know whether the
// target is a directory (see symlink_windows.go for that platform's
// directory-vs-file distinction).
func RecreateSymlink(srcLink, dest string) error {
	target, err := os.Readlink(srcLink)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return err
		}
	}
	return createSymlink(target, dest, srcLink)
}
