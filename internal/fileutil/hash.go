// Package fileutil holds the synchronous, blocking-worker-safe file
// primitives the engine builds on: hashing, metadata reads, directory
// walk, disk-free queries, atomic publish, and errno classification.
package fileutil

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// HashBufferSize is the buffered-reader size used while streaming a file
// through the hasher; files are never loaded whole.
const HashBufferSize = 1 << 20 // 1 MiB

// HashFile streams path through a 64-bit non-cryptographic hash (xxh3-class;
// xxhash is the pack's available equivalent, used by rclone and objectfs).
// It never buffers more than HashBufferSize bytes at once.
func HashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return HashReader(f)
}

// HashReader hashes everything read from r.
func HashReader(r io.Reader) (uint64, error) {
	h := xxhash.New()
	buf := make([]byte, HashBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := h.Write(buf[:n]); werr != nil {
				return 0, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	return h.Sum64(), nil
}

// HashChunk hashes a single already-in-memory chunk; used by the copy
// engine's progress callback to report a per-chunk rolling hash without
// re-reading the file.
func HashChunk(chunk []byte) uint64 {
	return xxhash.Sum64(chunk)
}
