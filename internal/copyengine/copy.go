package copyengine

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rsyncapp/synccore/internal/fileutil"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

// Copy produces at dest either an exact byte-copy of src as it existed at
// the start of the copy, with metadata preserved, or nothing at all — no
// partial/intermediate file is ever observable at dest. That guarantee
// holds for fresh copies (ResumeOffset == 0); with ResumeOffset > 0 the
// copy writes directly into the existing dest (see copyResume).
func Copy(src, dest string, opts Options, onProgress ProgressFunc) (Result, error) {
	if opts.ResumeOffset > 0 {
		return copyResume(src, dest, opts, onProgress)
	}
	return copyFresh(src, dest, opts, onProgress)
}

func copyFresh(src, dest string, opts Options, onProgress ProgressFunc) (Result, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.SourceNotFound(), src, err)
	}

	// 1. pre-check free space.
	avail, _, dfErr := fileutil.DiskFree(filepath.Dir(dest))
	if dfErr == nil {
		required := srcInfo.Size() + 4096
		if avail < required {
			return Result{}, synctypes.DiskFullError(dest, required, avail)
		}
	}

	// 2. clean stale siblings.
	fileutil.CleanStaleSiblings(dest)

	// 3. ensure parent dir exists.
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.Io(), dest, err)
	}

	// 4. open source, stat, open temp file.
	srcFile, err := os.Open(src)
	if err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.SourceNotFound(), src, err)
	}
	defer srcFile.Close()

	tempPath := dest + fileutil.TempSuffix
	tempFile, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.Io(), dest, err)
	}

	bytesCopied, copyErr := runCopyLoop(srcFile, tempFile, opts, onProgress)
	if copyErr != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return Result{}, copyErr
	}

	// 7. flush + fsync temp.
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return Result{}, synctypes.Wrap(synctypes.EKind.Io(), dest, err)
	}
	tempFile.Close()

	// 8. preserve metadata (best-effort).
	if opts.PreserveMetadata {
		_ = os.Chmod(tempPath, srcInfo.Mode().Perm())
		_ = os.Chtimes(tempPath, srcInfo.ModTime(), srcInfo.ModTime())
	}

	// 9. verify integrity.
	if opts.VerifyIntegrity {
		if err := verifyFreshCopy(src, tempPath, opts); err != nil {
			os.Remove(tempPath)
			return Result{}, err
		}
	}

	// 10. publish.
	if err := fileutil.AtomicPublish(tempPath, dest); err != nil {
		os.Remove(tempPath)
		return Result{}, synctypes.Wrap(synctypes.EKind.Io(), dest, err)
	}

	return Result{BytesCopied: bytesCopied}, nil
}

func verifyFreshCopy(src, tempPath string, opts Options) error {
	mtimeNow, err := fileutil.ModTimeUTC(src)
	if err != nil {
		return synctypes.Wrap(synctypes.EKind.Io(), src, err)
	}
	if !mtimeNow.Equal(opts.SourceMtimeBeforeCopy) {
		return synctypes.SourceModifiedError(src, opts.SourceMtimeBeforeCopy.String(), mtimeNow.String())
	}

	destHash, err := fileutil.HashFile(tempPath)
	if err != nil {
		return synctypes.Wrap(synctypes.EKind.Io(), tempPath, err)
	}

	expected := opts.PreCopySourceHash
	if !opts.HavePreCopyHash {
		// Less safe fallback for callers that never captured a pre-copy hash.
		expected, err = fileutil.HashFile(src)
		if err != nil {
			return synctypes.Wrap(synctypes.EKind.Io(), src, err)
		}
	}
	if destHash != expected {
		return synctypes.HashMismatchError(src)
	}
	return nil
}

// copyResume appends to a partially-written dest starting at ResumeOffset.
// Atomicity is waived here: dest already exists partially on disk, and
// integrity is re-established by the orchestrator rewinding resume_offset
// to re-verify the trailing blocks before calling in, not by an
// end-to-end hash in this function.
func copyResume(src, dest string, opts Options, onProgress ProgressFunc) (Result, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.SourceNotFound(), src, err)
	}
	defer srcFile.Close()

	if _, err := srcFile.Seek(opts.ResumeOffset, io.SeekStart); err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.Io(), src, err)
	}

	destFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.Io(), dest, err)
	}
	defer destFile.Close()

	if _, err := destFile.Seek(opts.ResumeOffset, io.SeekStart); err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.Io(), dest, err)
	}

	written, err := runCopyLoop(srcFile, destFile, opts, onProgress)
	if err != nil {
		return Result{}, err
	}
	if err := destFile.Sync(); err != nil {
		return Result{}, synctypes.Wrap(synctypes.EKind.Io(), dest, err)
	}
	if opts.PreserveMetadata {
		if srcInfo, statErr := os.Stat(src); statErr == nil {
			_ = os.Chmod(dest, srcInfo.Mode().Perm())
			_ = os.Chtimes(dest, srcInfo.ModTime(), srcInfo.ModTime())
		}
	}

	return Result{BytesCopied: opts.ResumeOffset + written}, nil
}

// runCopyLoop reads one buffer, writes one buffer, accumulates bytes,
// invokes the progress callback, and enforces the bandwidth cap. Returns
// bytes written by this call (not including any resume offset already on
// disk).
func runCopyLoop(src io.Reader, dst io.Writer, opts Options, onProgress ProgressFunc) (int64, error) {
	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	buf := make([]byte, bufSize)
	pacer := newBandwidthPacer(opts.BandwidthLimit)

	var total int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return total, synctypes.Wrap(synctypes.EKind.Io(), "", writeErr)
			}
			total += int64(n)
			chunkHash := fileutil.HashChunk(buf[:n])

			if onProgress != nil && !onProgress(opts.ResumeOffset+total, chunkHash) {
				return total, synctypes.New(synctypes.EKind.TransferCancelled(), "copy aborted by progress callback")
			}

			pacer.Consume(int64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return total, synctypes.Wrap(synctypes.EKind.Io(), "", readErr)
		}
	}
	return total, nil
}
