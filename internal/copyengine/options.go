// Package copyengine implements byte-level file replication with progress
// reporting, integrity verification, resume support, and crash-safe
// publication.
package copyengine

import "time"

const DefaultBufferSize = 8 << 20 // 8 MiB

// Options configures a single Copy call.
type Options struct {
	BufferSize       int
	PreserveMetadata bool
	VerifyIntegrity  bool
	ResumeOffset     int64
	BandwidthLimit   int64

	PreCopySourceHash     uint64
	HavePreCopyHash       bool
	SourceMtimeBeforeCopy time.Time
}

// ProgressFunc is the progress callback contract: called once per buffer
// written with the cumulative bytes copied and a hash of the just-written
// chunk. Returning false aborts the copy with TransferCancelled.
// Implementations may block briefly (pause waits, cancellation checks,
// progress-event emission) but must stay cheap.
type ProgressFunc func(totalBytesCopiedSoFar int64, chunkHash uint64) (cont bool)

// Result is returned by Copy on success.
type Result struct {
	BytesCopied int64
}
