package orchestrator

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rsyncapp/synccore/internal/delta"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

type fileAction int

const (
	actionSkip fileAction = iota
	actionCopy
	actionAsk
)

// decideAction decides what to do with one file given its delta status and
// the sync options in effect. destPath is the path the copy should actually
// land at: equal to d.DestPath except under a Rename resolution, where it is
// the generated conflict-name sibling.
func decideAction(d delta.Info, opts Options) (act fileAction, destPath string) {
	destPath = d.DestPath

	switch d.Status {
	case synctypes.EDelta.Unchanged():
		return actionSkip, destPath
	case synctypes.EDelta.New():
		return actionCopy, destPath
	}

	// Modified.
	if opts.SkipExisting {
		return actionSkip, destPath
	}
	if opts.OverwriteNewer && opts.OverwriteOlder {
		return actionCopy, destPath
	}
	if opts.OverwriteNewer {
		if d.SourceNewer || d.SizeDiffers {
			return actionCopy, destPath
		}
		return actionSkip, destPath
	}
	if opts.OverwriteOlder {
		if d.SourceOlder {
			return actionCopy, destPath
		}
		return actionSkip, destPath
	}

	switch opts.ConflictResolution {
	case synctypes.EConflict.Overwrite():
		return actionCopy, destPath
	case synctypes.EConflict.Rename():
		return actionCopy, conflictRenamePath(destPath)
	case synctypes.EConflict.Ask():
		return actionAsk, destPath
	default: // Skip
		return actionSkip, destPath
	}
}

// conflictRenamePath builds "<stem>_<YYYYMMDD_HHMMSS>.<ext>" alongside dest,
// used when conflict resolution is set to Rename.
func conflictRenamePath(dest string) string {
	dir := filepath.Dir(dest)
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(filepath.Base(dest), ext)
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, stem+"_"+stamp+ext)
}
