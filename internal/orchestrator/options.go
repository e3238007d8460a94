// Package orchestrator drives a sync transfer through scan, plan, and
// parallel execute phases, with pause/resume/cancel and an optional orphan
// sweep.
package orchestrator

import "github.com/rsyncapp/synccore/internal/synctypes"

const (
	minConcurrency     = 1
	maxConcurrency     = 8
	defaultConcurrency = 4

	// BlockSize and BlocksToVerify feed the resume offset formula:
	// resume_offset = max(0, last_verified_offset - BlocksToVerify*BlockSize).
	BlockSize      = 256 * 1024
	BlocksToVerify = 4
)

// Options controls how a sync transfer handles conflicts, overwrite rules,
// concurrency, and bandwidth.
type Options struct {
	Mode               synctypes.SyncMode
	ConflictResolution synctypes.ConflictResolution

	OverwriteNewer   bool
	OverwriteOlder   bool
	SkipExisting     bool
	VerifyIntegrity  bool
	PreserveMetadata bool
	DeleteOrphans    bool
	DryRun           bool
	FollowSymlinks   bool

	MaxConcurrentFiles int
	ExcludePatterns    []string
	BandwidthLimit     int64
	BufferSize         int
}

// Normalize clamps MaxConcurrentFiles into [1,8] and applies the default
// when unset (zero or negative).
func (o Options) Normalize() Options {
	switch {
	case o.MaxConcurrentFiles <= 0:
		o.MaxConcurrentFiles = defaultConcurrency
	case o.MaxConcurrentFiles < minConcurrency:
		o.MaxConcurrentFiles = minConcurrency
	case o.MaxConcurrentFiles > maxConcurrency:
		o.MaxConcurrentFiles = maxConcurrency
	}
	return o
}

// Summary is the result of a completed sync transfer.
type Summary struct {
	FilesTotal   int `json:"filesTotal"`
	FilesCopied  int `json:"filesCopied"`
	FilesSkipped int `json:"filesSkipped"`
	FilesFailed  int `json:"filesFailed"`

	BytesTotal  int64 `json:"bytesTotal"`
	BytesCopied int64 `json:"bytesCopied"`

	DurationMs int64    `json:"durationMs"`
	Errors     []string `json:"errors"`
}
