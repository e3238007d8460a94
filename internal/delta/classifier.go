// Package delta classifies a source FileInfo against the destination tree
// to decide New / Modified / Unchanged.
package delta

import (
	"os"
	"path/filepath"

	"github.com/rsyncapp/synccore/internal/fileutil"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

// Info is the classifier's verdict for one file.
type Info struct {
	Status      synctypes.DeltaStatus
	SourceNewer bool
	SourceOlder bool
	SizeDiffers bool
	DestPath    string
	DestExists  bool
	DestModTime interface{} // kept loosely typed; orchestrator only needs Status/SourceNewer/SourceOlder/SizeDiffers
}

// Classify compares src against destRoot/src.RelPath. Ties (identical
// mtime and size) classify as Unchanged.
func Classify(src synctypes.FileInfo, destRoot string) (Info, error) {
	destPath := filepath.Join(destRoot, filepath.FromSlash(src.RelPath))

	destInfo, err := os.Stat(destPath)
	if os.IsNotExist(err) {
		return Info{Status: synctypes.EDelta.New(), DestPath: destPath}, nil
	}
	if err != nil {
		return Info{}, err
	}

	destMtime, err := fileutil.ModTimeUTC(destPath)
	if err != nil {
		return Info{}, err
	}

	sizeDiffers := src.Size != destInfo.Size()
	sourceNewer := src.ModTime.After(destMtime)
	sourceOlder := src.ModTime.Before(destMtime)

	if sizeDiffers || sourceNewer {
		return Info{
			Status:      synctypes.EDelta.Modified(),
			SourceNewer: sourceNewer,
			SourceOlder: sourceOlder,
			SizeDiffers: sizeDiffers,
			DestPath:    destPath,
			DestExists:  true,
		}, nil
	}

	return Info{Status: synctypes.EDelta.Unchanged(), DestPath: destPath, DestExists: true}, nil
}
