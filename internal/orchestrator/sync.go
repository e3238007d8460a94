package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rsyncapp/synccore/internal/copyengine"
	"github.com/rsyncapp/synccore/internal/delta"
	"github.com/rsyncapp/synccore/internal/fileutil"
	"github.com/rsyncapp/synccore/internal/synclog"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

// Sync runs a full source-to-destination sync: blocks until the transfer
// reaches a terminal status and returns its summary.
func (e *Engine) Sync(ctx context.Context, src, dst string, opts Options) (Summary, error) {
	opts = opts.Normalize()
	start := time.Now()

	handle, err := e.state.CreateTransfer(src, dst)
	if err != nil {
		return Summary{}, err
	}
	id := handle.Record.ID
	log, logCloser, logErr := synclog.NewTransferFileLogger(e.state.LogPath(id), id)
	if logErr != nil {
		log = synclog.ForTransfer(id)
	} else {
		defer logCloser.Close()
	}

	ctrl := e.registerControl(id)
	defer e.unregisterControl(id)

	if e.watcher != nil {
		e.watcher.RegisterTransfer(id, src, dst)
		defer e.watcher.UnregisterTransfer(id)
	}
	if e.metrics != nil {
		e.metrics.ActiveTransfers.Inc()
		defer e.metrics.ActiveTransfers.Dec()
	}

	if _, err := os.Stat(src); err != nil {
		return e.fail(handle, synctypes.Wrap(synctypes.EKind.SourceNotFound(), src, err))
	}

	if _, err := os.Stat(dst); err == nil {
		fileutil.CleanStaleSiblingsRecursive(dst)
	}

	manifest, err := fileutil.Walk(src, fileutil.WalkFull)
	if err != nil {
		return e.fail(handle, synctypes.Wrap(synctypes.EKind.Internal(), src, err))
	}
	log.WithField("files", manifest.FileCount).WithField("scan_complete", manifest.ScanComplete).Info("scan finished")

	_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
		r.Status = synctypes.EStatus.Running()
		r.TotalFiles = manifest.FileCount
		r.TotalBytes = manifest.TotalBytes
		for _, f := range manifest.Files {
			if f.IsDir {
				continue
			}
			destPath := filepath.Join(dst, filepath.FromSlash(f.RelPath))
			r.Files[filepath.Join(src, filepath.FromSlash(f.RelPath))] = &synctypes.FileTransferRecord{
				SourcePath:    filepath.Join(src, filepath.FromSlash(f.RelPath)),
				DestPath:      destPath,
				TotalBytes:    f.Size,
				SourceModTime: f.ModTime,
				Status:        synctypes.EStatus.Pending(),
			}
		}
		return e.state.SaveState(r)
	})

	matcher := newExcludeMatcher(opts.ExcludePatterns)

	dirs, symlinks, files, skippedExcluded := partition(manifest, matcher, opts.FollowSymlinks)

	summary := Summary{FilesTotal: manifest.FileCount, BytesTotal: manifest.TotalBytes}
	summary.FilesSkipped += skippedExcluded
	var summaryMu sync.Mutex
	var errs []string

	if !opts.DryRun {
		for _, d := range dirs {
			destDir := filepath.Join(dst, filepath.FromSlash(d.RelPath))
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}

	for _, s := range symlinks {
		if ctrl.IsCancelled() {
			break
		}
		if opts.DryRun {
			continue
		}
		srcLink := filepath.Join(src, filepath.FromSlash(s.RelPath))
		destLink := filepath.Join(dst, filepath.FromSlash(s.RelPath))
		if err := fileutil.RecreateSymlink(srcLink, destLink); err != nil {
			errs = append(errs, err.Error())
			summary.FilesFailed++
		} else {
			summary.FilesCopied++
		}
	}

	speed := newSpeedTracker()
	sem := semaphore.NewWeighted(int64(opts.MaxConcurrentFiles))
	var wg sync.WaitGroup

	for _, fi := range files {
		if ctrl.IsCancelled() {
			break
		}
		ctrl.WaitWhilePaused()
		if ctrl.IsCancelled() {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		fi := fi
		wg.Add(1)
		go func() {
			defer sem.Release(1)
			defer wg.Done()

			result := e.copyOneFile(ctx, handle, ctrl, src, dst, fi, opts, speed)

			summaryMu.Lock()
			defer summaryMu.Unlock()
			switch result.outcome {
			case outcomeCopied:
				summary.FilesCopied++
				summary.BytesCopied += result.bytes
				if e.metrics != nil {
					e.metrics.BytesCopiedTotal.Add(float64(result.bytes))
					e.metrics.FilesCopiedTotal.Inc()
				}
			case outcomeSkipped:
				summary.FilesSkipped++
			case outcomeFailed:
				summary.FilesFailed++
				errs = append(errs, result.err.Error())
				if e.metrics != nil {
					e.metrics.FilesFailedTotal.Inc()
				}
			}
		}()
	}
	wg.Wait()

	if opts.DeleteOrphans && !opts.DryRun {
		if !manifest.ScanComplete {
			errs = append(errs, "Orphan cleanup skipped: source scan was incomplete (IncompleteScan)")
		} else {
			sweepOrphans(dst, manifest)
		}
	}

	finalStatus := synctypes.EStatus.Completed()
	if ctrl.IsCancelled() {
		finalStatus = synctypes.EStatus.Cancelled()
	}

	now := time.Now().UTC()
	_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
		r.Status = finalStatus
		r.BytesTransferred = summary.BytesCopied
		r.FilesCompleted = summary.FilesCopied
		r.FilesFailed = summary.FilesFailed
		r.FilesSkipped = summary.FilesSkipped
		r.CompletedAt = &now
		r.UpdatedAt = now
		if len(errs) > 0 {
			r.LastError = errs[len(errs)-1]
		}
		return e.state.SaveState(r)
	})

	summary.Errors = errs
	summary.DurationMs = time.Since(start).Milliseconds()
	return summary, nil
}

func (e *Engine) fail(handle *synctypes.RecordHandle, err *synctypes.SyncError) (Summary, error) {
	now := time.Now().UTC()
	_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
		r.Status = synctypes.EStatus.Failed()
		r.LastError = err.Error()
		r.CompletedAt = &now
		r.UpdatedAt = now
		return e.state.SaveState(r)
	})
	return Summary{Errors: []string{err.Error()}}, err
}

type fileOutcome int

const (
	outcomeSkipped fileOutcome = iota
	outcomeCopied
	outcomeFailed
)

type fileResult struct {
	outcome fileOutcome
	bytes   int64
	err     error
}

// copyOneFile runs the classifier + decision + copy-engine pipeline for one
// source file, updating its FileTransferRecord as it goes.
func (e *Engine) copyOneFile(ctx context.Context, handle *synctypes.RecordHandle, ctrl *synctypes.TransferControl,
	src, dst string, fi synctypes.FileInfo, opts Options, speed *speedTracker) fileResult {

	srcPath := filepath.Join(src, filepath.FromSlash(fi.RelPath))

	d, err := delta.Classify(fi, dst)
	if err != nil {
		return fileResult{outcome: outcomeFailed, err: err}
	}

	act, destPath := decideAction(d, opts)

	if act == actionAsk {
		conflictID, decisionCh := e.conflicts.Register(handle.Record.ID, fi.RelPath)
		synclog.Base().WithField("conflict_id", conflictID).WithField("path", fi.RelPath).Info("awaiting conflict resolution")
		select {
		case decision := <-decisionCh:
			switch decision {
			case synctypes.EDecision.KeepSource():
				act = actionCopy
			case synctypes.EDecision.KeepBoth():
				act, destPath = actionCopy, conflictRenamePath(d.DestPath)
			default:
				act = actionSkip
			}
		case <-ctx.Done():
			act = actionSkip
		}
	}

	if act == actionSkip {
		return fileResult{outcome: outcomeSkipped}
	}

	if opts.DryRun {
		return fileResult{outcome: outcomeCopied, bytes: fi.Size}
	}

	srcMtime, mtErr := fileutil.ModTimeUTC(srcPath)
	if mtErr != nil {
		return fileResult{outcome: outcomeFailed, err: mtErr}
	}
	var preHash uint64
	haveHash := false
	if opts.VerifyIntegrity {
		if h, herr := fileutil.HashFile(srcPath); herr == nil {
			preHash, haveHash = h, true
		}
	}

	copyOpts := copyengine.Options{
		BufferSize:            opts.BufferSize,
		PreserveMetadata:      opts.PreserveMetadata,
		VerifyIntegrity:       opts.VerifyIntegrity,
		BandwidthLimit:        opts.BandwidthLimit,
		PreCopySourceHash:     preHash,
		HavePreCopyHash:       haveHash,
		SourceMtimeBeforeCopy: srcMtime,
	}

	onProgress := func(bytesSoFar int64, _ uint64) bool {
		if ctrl.IsCancelled() {
			return false
		}
		ctrl.WaitWhilePaused()
		if ctrl.IsCancelled() {
			return false
		}

		_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
			if ftr, ok := r.Files[srcPath]; ok {
				ftr.BytesTransferred = bytesSoFar
				ftr.Status = synctypes.EStatus.Running()
			}
			r.CurrentFile = fi.RelPath
			r.ObservedSpeed = speed.Update(bytesSoFar)
			r.UpdatedAt = time.Now().UTC()
			return e.state.SaveState(r)
		})

		e.progress.Publish(ProgressEvent{
			TransferID:          handle.Record.ID,
			CurrentFile:         fi.RelPath,
			CurrentFileProgress: float64(bytesSoFar) / float64(max64(fi.Size, 1)),
			BytesCopied:         bytesSoFar,
			BytesTotal:          fi.Size,
			SpeedBytesPerSec:    speed.Update(bytesSoFar),
		})
		return true
	}

	result, copyErr := copyengine.Copy(srcPath, destPath, copyOpts, onProgress)

	_ = handle.Mutate(func(r *synctypes.TransferRecord) error {
		ftr, ok := r.Files[srcPath]
		if !ok {
			ftr = &synctypes.FileTransferRecord{SourcePath: srcPath, DestPath: destPath, TotalBytes: fi.Size}
			r.Files[srcPath] = ftr
		}
		if copyErr != nil {
			ftr.Status = synctypes.EStatus.Failed()
			ftr.Error = copyErr.Error()
		} else {
			ftr.Status = synctypes.EStatus.Completed()
			ftr.BytesTransferred = result.BytesCopied
			ftr.LastVerifiedOffset = result.BytesCopied
		}
		return e.state.SaveState(r)
	})

	if copyErr != nil {
		return fileResult{outcome: outcomeFailed, err: copyErr}
	}

	if opts.Mode == synctypes.EMode.Move() {
		if err := os.Remove(srcPath); err != nil {
			synclog.Base().WithError(err).WithField("path", srcPath).Warn("move: failed to remove source after copy")
		}
	}

	return fileResult{outcome: outcomeCopied, bytes: result.BytesCopied}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func partition(manifest *synctypes.DirectoryManifest, matcher *excludeMatcher, followSymlinks bool) (dirs, symlinks, files []synctypes.FileInfo, skippedExcluded int) {
	for _, f := range manifest.Files {
		if matcher.Matches(f.RelPath) {
			if !f.IsDir {
				skippedExcluded++
			}
			continue
		}
		switch {
		case f.IsDir:
			dirs = append(dirs, f)
		case f.IsSymlink && !followSymlinks:
			symlinks = append(symlinks, f)
		default:
			files = append(files, f)
		}
	}
	return dirs, symlinks, files, skippedExcluded
}

// sweepOrphans does a contents-first walk of dst, removing any entry whose
// relative path isn't in the source manifest. Missing-entry failures are
// silently tolerated.
func sweepOrphans(dst string, manifest *synctypes.DirectoryManifest) {
	known := make(map[string]bool, len(manifest.Files))
	for _, f := range manifest.Files {
		known[filepath.Clean(f.RelPath)] = true
	}

	var toRemove []string
	_ = filepath.Walk(dst, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == dst {
			return nil
		}
		rel, relErr := filepath.Rel(dst, path)
		if relErr != nil {
			return nil
		}
		if !known[filepath.Clean(rel)] {
			toRemove = append(toRemove, path)
		}
		return nil
	})

	// Remove deepest paths first so directories empty out before rmdir.
	for i := len(toRemove) - 1; i >= 0; i-- {
		p := toRemove[i]
		if info, err := os.Lstat(p); err == nil && info.IsDir() {
			_ = os.Remove(p)
		} else {
			_ = os.Remove(p)
		}
	}
}
