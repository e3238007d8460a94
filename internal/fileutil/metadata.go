package fileutil

import (
	"os"
	"time"

	"github.com/rsyncapp/synccore/internal/synctypes"
)

// ModTimeUTC reads path's modification time and converts it to UTC,
// nanosecond precision, failing with Internal on a pre-epoch timestamp.
func ModTimeUTC(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return modTimeFromInfo(info)
}

func modTimeFromInfo(info os.FileInfo) (time.Time, error) {
	mt := info.ModTime().UTC()
	if mt.Before(time.Unix(0, 0).UTC()) {
		return time.Time{}, synctypes.New(synctypes.EKind.Internal(), "pre-epoch modification time")
	}
	return mt, nil
}

// ToFileInfo converts an os.FileInfo (as seen during a walk) plus its
// scan-relative path into the engine's immutable FileInfo snapshot.
func ToFileInfo(relPath string, info os.FileInfo, isSymlink bool) (synctypes.FileInfo, error) {
	mt, err := modTimeFromInfo(info)
	if err != nil {
		return synctypes.FileInfo{}, err
	}
	return synctypes.FileInfo{
		RelPath:   relPath,
		Size:      info.Size(),
		ModTime:   mt,
		IsDir:     info.IsDir(),
		IsSymlink: isSymlink,
	}, nil
}
