package fileutil

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/rsyncapp/synccore/internal/synctypes"
)

// WalkMode controls how much the walker captures per entry. CountOnly
// backs the quick-scan path: it accumulates totals without building the
// FileInfo slice, guaranteeing the quick and full scans agree on counts
// because they share this walker.
type WalkMode int

const (
	WalkFull WalkMode = iota
	WalkCountOnly
)

// Walk performs a depth-first, error-tolerant walk of root: every
// per-entry error is collected rather than aborting the walk, and
// ScanComplete reports whether any occurred.
func Walk(root string, mode WalkMode) (*synctypes.DirectoryManifest, error) {
	manifest := &synctypes.DirectoryManifest{Root: root}
	var errs *multierror.Error

	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			errs = multierror.Append(errs, err)
			return nil // keep walking; don't let one bad entry stop the scan
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			errs = multierror.Append(errs, relErr)
			return nil
		}

		isSymlink := info.Mode()&os.ModeSymlink != 0
		if info.IsDir() {
			manifest.DirCount++
		} else {
			manifest.FileCount++
			manifest.TotalBytes += info.Size()
		}

		if mode == WalkCountOnly {
			return nil
		}

		fi, convErr := ToFileInfo(rel, info, isSymlink)
		if convErr != nil {
			errs = multierror.Append(errs, convErr)
			return nil
		}
		manifest.Files = append(manifest.Files, fi)
		return nil
	})
	if walkErr != nil {
		errs = multierror.Append(errs, walkErr)
	}

	if errs != nil {
		for _, e := range errs.Errors {
			manifest.ScanErrors = append(manifest.ScanErrors, e.Error())
		}
	}
	manifest.ScanComplete = len(manifest.ScanErrors) == 0
	return manifest, nil
}
