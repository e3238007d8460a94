package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rsyncapp/synccore/internal/copyengine"
	"github.com/rsyncapp/synccore/internal/fileutil"
	"github.com/rsyncapp/synccore/internal/synclog"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

// ResumeInterruptedTransfer re-scans the source (the filesystem may have
// changed since the original scan), skips files already Completed, rewinds
// each in-flight file's resume offset by BlocksToVerify blocks to
// re-establish trust in the trailing bytes already on disk, then copies the
// remainder: non-atomically into the partial file when the rewound offset is
// above zero, through the atomic fresh-copy path when it rewinds to zero.
// Files the original scan never saw are picked up
// as new Pending entries; files the re-scan can no longer find are left
// alone rather than deleted from the record.
func (e *Engine) ResumeInterruptedTransfer(ctx context.Context, id string) (Summary, error) {
	handle := e.state.GetTransfer(id)
	if handle == nil {
		return Summary{}, synctypes.New(synctypes.EKind.TransferNotFound(), id)
	}
	rec := handle.Snapshot()
	log, logCloser, logErr := synclog.NewTransferFileLogger(e.state.LogPath(id), id)
	if logErr != nil {
		log = synclog.ForTransfer(id)
	} else {
		defer logCloser.Close()
	}

	if _, err := os.Stat(rec.SourceRoot); err != nil {
		return e.fail(handle, synctypes.Wrap(synctypes.EKind.SourceNotFound(), rec.SourceRoot, err))
	}

	ctrl := e.registerControl(id)
	defer e.unregisterControl(id)
	if e.watcher != nil {
		e.watcher.RegisterTransfer(id, rec.SourceRoot, rec.DestRoot)
		defer e.watcher.UnregisterTransfer(id)
	}

	manifest, err := fileutil.Walk(rec.SourceRoot, fileutil.WalkFull)
	if err != nil {
		return e.fail(handle, synctypes.Wrap(synctypes.EKind.Internal(), rec.SourceRoot, err))
	}

	rec = handle.Snapshot()
	_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
		r.Status = synctypes.EStatus.Running()
		for _, f := range manifest.Files {
			if f.IsDir {
				continue
			}
			srcPath := filepath.Join(rec.SourceRoot, filepath.FromSlash(f.RelPath))
			if _, known := r.Files[srcPath]; known {
				continue
			}
			destPath := filepath.Join(rec.DestRoot, filepath.FromSlash(f.RelPath))
			r.Files[srcPath] = &synctypes.FileTransferRecord{
				SourcePath:    srcPath,
				DestPath:      destPath,
				TotalBytes:    f.Size,
				SourceModTime: f.ModTime,
				Status:        synctypes.EStatus.Pending(),
			}
			r.TotalFiles++
			r.TotalBytes += f.Size
		}
		return e.state.SaveState(r)
	})
	rec = handle.Snapshot()

	summary := Summary{FilesTotal: rec.TotalFiles, BytesTotal: rec.TotalBytes}
	var errs []string
	var bytesCopied int64
	speed := newSpeedTracker()

	for srcPath, ftr := range rec.Files {
		if ctrl.IsCancelled() {
			break
		}
		ctrl.WaitWhilePaused()
		if ctrl.IsCancelled() {
			break
		}

		if ftr.Status == synctypes.EStatus.Completed() {
			summary.FilesCopied++
			bytesCopied += ftr.BytesTransferred
			continue
		}

		if _, err := os.Stat(srcPath); err != nil {
			summary.FilesFailed++
			errs = append(errs, err.Error())
			continue
		}

		resumeOffset := resumeOffsetFor(ftr)
		relSrcPath := srcPath

		srcMtime, mtErr := fileutil.ModTimeUTC(relSrcPath)
		if mtErr != nil {
			summary.FilesFailed++
			errs = append(errs, mtErr.Error())
			continue
		}

		copyOpts := copyengine.Options{
			ResumeOffset:          resumeOffset,
			PreserveMetadata:      true,
			SourceMtimeBeforeCopy: srcMtime,
		}

		destPath := ftr.DestPath
		progress := func(bytesSoFar int64, _ uint64) bool {
			if ctrl.IsCancelled() {
				return false
			}
			ctrl.WaitWhilePaused()
			if ctrl.IsCancelled() {
				return false
			}
			_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
				if f, ok := r.Files[srcPath]; ok {
					f.BytesTransferred = bytesSoFar
					f.Status = synctypes.EStatus.Running()
				}
				r.CurrentFile = filepath.Base(srcPath)
				r.ObservedSpeed = speed.Update(bytesSoFar)
				r.UpdatedAt = time.Now().UTC()
				return e.state.SaveState(r)
			})
			return true
		}

		result, copyErr := copyengine.Copy(relSrcPath, destPath, copyOpts, progress)

		_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
			f, ok := r.Files[srcPath]
			if !ok {
				return nil
			}
			if copyErr != nil {
				f.Status = synctypes.EStatus.Failed()
				f.Error = copyErr.Error()
			} else {
				f.Status = synctypes.EStatus.Completed()
				f.BytesTransferred = result.BytesCopied
				f.LastVerifiedOffset = result.BytesCopied
			}
			return e.state.SaveState(r)
		})

		if copyErr != nil {
			summary.FilesFailed++
			errs = append(errs, copyErr.Error())
			continue
		}
		summary.FilesCopied++
		bytesCopied += result.BytesCopied
	}

	summary.BytesCopied = bytesCopied
	summary.Errors = errs

	finalStatus := synctypes.EStatus.Completed()
	if ctrl.IsCancelled() {
		finalStatus = synctypes.EStatus.Cancelled()
	} else if len(errs) > 0 {
		finalStatus = synctypes.EStatus.Failed()
	}

	now := time.Now().UTC()
	_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
		r.Status = finalStatus
		r.BytesTransferred = bytesCopied
		r.FilesCompleted = summary.FilesCopied
		r.FilesFailed = summary.FilesFailed
		r.CompletedAt = &now
		r.UpdatedAt = now
		if len(errs) > 0 {
			r.LastError = errs[len(errs)-1]
		}
		return e.state.SaveState(r)
	})

	log.WithField("files_copied", summary.FilesCopied).WithField("files_failed", summary.FilesFailed).Info("resume finished")
	return summary, nil
}

// resumeOffsetFor computes max(0, last_verified_offset -
// BlocksToVerify*BlockSize). Re-copying the trailing blocks re-establishes
// trust that they weren't half-written when the transfer was interrupted.
func resumeOffsetFor(ftr *synctypes.FileTransferRecord) int64 {
	offset := ftr.LastVerifiedOffset - int64(BlocksToVerify*BlockSize)
	if offset < 0 {
		return 0
	}
	return offset
}
