package orchestrator

import (
	"github.com/rsyncapp/synccore/internal/fileutil"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

// GetDirectoryInfo runs a synchronous full walk of path and returns its
// manifest.
func (e *Engine) GetDirectoryInfo(path string) (*synctypes.DirectoryManifest, error) {
	return fileutil.Walk(path, fileutil.WalkFull)
}

// QuickScan returns counts only, skipping per-file FileInfo. It shares the
// full walker with GetDirectoryInfo so the two APIs can never disagree on
// counts.
func (e *Engine) QuickScan(path string) (*synctypes.DirectoryManifest, error) {
	return fileutil.Walk(path, fileutil.WalkCountOnly)
}

// FileChunk is one chunk of a streamed directory scan.
type FileChunk struct {
	ScanID     string
	Files      []synctypes.FileInfo
	ChunkIndex int
	IsFinal    bool
}

const scanStreamChunkSize = 1000

// ScanStream walks path and emits it in chunks of up to 1000 files plus a
// final empty is_final chunk. Cancellable by the caller closing done
// (dropping the consumer).
func (e *Engine) ScanStream(path, scanID string, done <-chan struct{}) (<-chan FileChunk, <-chan error) {
	out := make(chan FileChunk)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)

		manifest, err := fileutil.Walk(path, fileutil.WalkFull)
		if err != nil {
			errCh <- err
			return
		}

		idx := 0
		for start := 0; start < len(manifest.Files); start += scanStreamChunkSize {
			end := start + scanStreamChunkSize
			if end > len(manifest.Files) {
				end = len(manifest.Files)
			}
			chunk := FileChunk{ScanID: scanID, Files: manifest.Files[start:end], ChunkIndex: idx}
			select {
			case out <- chunk:
			case <-done:
				return
			}
			idx++
		}

		final := FileChunk{ScanID: scanID, ChunkIndex: idx, IsFinal: true}
		select {
		case out <- final:
		case <-done:
		}
	}()

	return out, errCh
}
