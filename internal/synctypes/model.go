package synctypes

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// FileInfo is an immutable snapshot captured during a scan.
type FileInfo struct {
	RelPath   string    `json:"relPath"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"modTime"`
	IsDir     bool      `json:"isDir"`
	IsSymlink bool      `json:"isSymlink"`
}

// DirectoryManifest is the result of scanning a source tree.
type DirectoryManifest struct {
	Root       string     `json:"root"`
	TotalBytes int64      `json:"totalBytes"`
	FileCount  int        `json:"fileCount"`
	DirCount   int        `json:"dirCount"`
	Files      []FileInfo `json:"files"`

	ScanErrors   []string `json:"scanErrors"`
	ScanComplete bool     `json:"scanComplete"`
}

// FileTransferRecord is per-file state. Invariants:
//   - BytesTransferred <= TotalBytes
//   - LastVerifiedOffset <= BytesTransferred
//   - Status == Completed implies BytesTransferred == TotalBytes
type FileTransferRecord struct {
	SourcePath         string         `json:"sourcePath"`
	DestPath           string         `json:"destPath"`
	TotalBytes         int64          `json:"totalBytes"`
	BytesTransferred   int64          `json:"bytesTransferred"`
	LastVerifiedOffset int64          `json:"lastVerifiedOffset"`
	LastBlockHash      uint64         `json:"lastBlockHash"`
	SourceModTime      time.Time      `json:"sourceModTime"`
	Status             TransferStatus `json:"status"`
	Error              string         `json:"error,omitempty"`
}

// TransferRecord is per-sync state. Owned exclusively by the state manager;
// everyone else gets clones or a lock-guarded handle.
type TransferRecord struct {
	ID         string         `json:"id"`
	SourceRoot string         `json:"sourceRoot"`
	DestRoot   string         `json:"destRoot"`
	Status     TransferStatus `json:"status"`

	TotalBytes       int64 `json:"totalBytes"`
	BytesTransferred int64 `json:"bytesTransferred"`

	TotalFiles     int `json:"totalFiles"`
	FilesCompleted int `json:"filesCompleted"`
	FilesFailed    int `json:"filesFailed"`
	FilesSkipped   int `json:"filesSkipped"`

	Files map[string]*FileTransferRecord `json:"files"`

	StartedAt   time.Time  `json:"startedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CurrentFile   string  `json:"currentFile,omitempty"`
	ObservedSpeed float64 `json:"observedSpeedBytesPerSec"`
	LastError     string  `json:"lastError,omitempty"`
}

// NewTransferRecord mints a fresh record with a UUID id.
func NewTransferRecord(src, dst string) *TransferRecord {
	now := time.Now().UTC()
	return &TransferRecord{
		ID:         uuid.NewString(),
		SourceRoot: src,
		DestRoot:   dst,
		Status:     EStatus.Pending(),
		Files:      make(map[string]*FileTransferRecord),
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone deep-copies the record for safe hand-off to callers outside the
// state manager's lock.
func (t *TransferRecord) Clone() *TransferRecord {
	c := *t
	c.Files = make(map[string]*FileTransferRecord, len(t.Files))
	for k, v := range t.Files {
		fv := *v
		c.Files[k] = &fv
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return &c
}

// TransferControl is the per-in-flight-transfer runtime handle. Deliberately
// lock-free: two atomic bools plus a wakeup channel.
type TransferControl struct {
	paused    int32
	cancelled int32
	wake      chan struct{}
}

func NewTransferControl() *TransferControl {
	return &TransferControl{wake: make(chan struct{}, 1)}
}

func (c *TransferControl) Pause() {
	atomic.StoreInt32(&c.paused, 1)
}

func (c *TransferControl) Resume() {
	atomic.StoreInt32(&c.paused, 0)
	c.signal()
}

func (c *TransferControl) IsPaused() bool {
	return atomic.LoadInt32(&c.paused) == 1
}

func (c *TransferControl) Cancel() {
	atomic.StoreInt32(&c.cancelled, 1)
	c.signal()
}

func (c *TransferControl) IsCancelled() bool {
	return atomic.LoadInt32(&c.cancelled) == 1
}

func (c *TransferControl) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// WaitWhilePaused blocks while the transfer is paused and not cancelled,
// waking on Resume/Cancel or a 500ms fallback timeout that guards against a
// lost wakeup on the signal channel.
func (c *TransferControl) WaitWhilePaused() {
	for c.IsPaused() && !c.IsCancelled() {
		select {
		case <-c.wake:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// VolumeSnapshot describes a mount point.
type VolumeSnapshot struct {
	MountPoint     string `json:"mountPoint"`
	Name           string `json:"name"`
	FilesystemType string `json:"filesystemType"`
	TotalBytes     int64  `json:"totalBytes"`
	AvailableBytes int64  `json:"availableBytes"`
	IsRemovable    bool   `json:"isRemovable"`
	IsMounted      bool   `json:"isMounted"`
}

// RecordHandle bundles a TransferRecord with the per-record shared-read /
// exclusive-write lock that guards mutation.
type RecordHandle struct {
	mu     sync.RWMutex
	Record *TransferRecord
}

func NewRecordHandle(r *TransferRecord) *RecordHandle {
	return &RecordHandle{Record: r}
}

func (h *RecordHandle) Snapshot() *TransferRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.Record.Clone()
}

// Mutate runs fn under the record's exclusive lock and returns its error.
// Callers that need the mutation persisted should have fn call into the
// state manager's save path before returning.
func (h *RecordHandle) Mutate(fn func(*TransferRecord) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.Record)
}
