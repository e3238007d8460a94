// Package state is the authoritative, crash-safe, on-disk transfer
// registry. One JSON file per transfer under a per-user application-data
// directory, written tmp-then-rename-then-fsync so a reader never observes
// a torn write.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rsyncapp/synccore/internal/synclog"
	"github.com/rsyncapp/synccore/internal/synctypes"
)

const (
	jsonSuffix = ".json"
	tmpSuffix  = ".tmp"

	// DefaultRetentionDays is the default age, in days, at which terminal
	// records are swept from disk.
	DefaultRetentionDays = 7
)

// Manager owns the live set of TransferRecords, in memory and on disk.
type Manager struct {
	dir string

	mapMu   sync.RWMutex
	records map[string]*synctypes.RecordHandle
}

// New constructs a state manager rooted at dir. Initialization is
// explicit: the application owns one instance, and tests construct fresh
// ones against a temp directory.
func New(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	m := &Manager{dir: dir, records: make(map[string]*synctypes.RecordHandle)}

	m.sweepTerminal(DefaultRetentionDays * 24 * time.Hour)

	if err := m.loadAll(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) path(id string) string     { return filepath.Join(m.dir, id+jsonSuffix) }
func (m *Manager) tempPath(id string) string { return filepath.Join(m.dir, id+tmpSuffix) }

// LogPath returns the path of id's per-transfer operational log file,
// living alongside its JSON state file.
func (m *Manager) LogPath(id string) string { return filepath.Join(m.dir, id+".log") }

func (m *Manager) loadAll() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != jsonSuffix {
			continue // readers ignore .tmp siblings
		}
		data, err := os.ReadFile(filepath.Join(m.dir, e.Name()))
		if err != nil {
			synclog.Base().WithError(err).WithField("file", e.Name()).Warn("skipping unreadable transfer record")
			continue
		}
		var rec synctypes.TransferRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			synclog.Base().WithError(err).WithField("file", e.Name()).Warn("skipping corrupted transfer record")
			continue
		}
		// Only non-terminal records are retained in memory; terminal ones
		// stay on disk until discarded or swept.
		if !rec.Status.IsTerminal() {
			m.mapMu.Lock()
			m.records[rec.ID] = synctypes.NewRecordHandle(&rec)
			m.mapMu.Unlock()
		}
	}
	return nil
}

// sweepTerminal deletes terminal-status record files older than maxAge,
// based on file modification time. PurgeOldTransfers exposes this as a
// method the host can call on a timer, not just at construction.
func (m *Manager) sweepTerminal(maxAge time.Duration) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != jsonSuffix {
			continue
		}
		full := filepath.Join(m.dir, e.Name())
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		var rec synctypes.TransferRecord
		if json.Unmarshal(data, &rec) != nil {
			continue
		}
		if rec.Status.IsTerminal() {
			_ = os.Remove(full)
		}
	}
}

// PurgeOldTransfers runs the retention sweep against live state: records
// that are both terminal in memory and older than maxAge are dropped and
// their files removed.
func (m *Manager) PurgeOldTransfers(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	m.mapMu.Lock()
	var toRemove []string
	for id, h := range m.records {
		rec := h.Snapshot()
		if rec.Status.IsTerminal() && rec.UpdatedAt.Before(cutoff) {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		delete(m.records, id)
	}
	m.mapMu.Unlock()

	for _, id := range toRemove {
		_ = os.Remove(m.path(id))
	}
	m.sweepTerminal(maxAge)
}

// CreateTransfer mints a new record, persists it, and registers it.
func (m *Manager) CreateTransfer(src, dst string) (*synctypes.RecordHandle, error) {
	rec := synctypes.NewTransferRecord(src, dst)
	handle := synctypes.NewRecordHandle(rec)

	m.mapMu.Lock()
	m.records[rec.ID] = handle
	m.mapMu.Unlock()

	if err := m.persist(rec); err != nil {
		return nil, err
	}
	return handle, nil
}

// GetTransfer returns the shared handle for id, or nil if unknown.
func (m *Manager) GetTransfer(id string) *synctypes.RecordHandle {
	m.mapMu.RLock()
	defer m.mapMu.RUnlock()
	return m.records[id]
}

// GetState returns a cloned snapshot of id's record, or nil if unknown.
func (m *Manager) GetState(id string) *synctypes.TransferRecord {
	h := m.GetTransfer(id)
	if h == nil {
		return nil
	}
	return h.Snapshot()
}

// SaveState persists rec (caller must hold the record's write lock, i.e.
// call this from inside a RecordHandle.Mutate closure).
func (m *Manager) SaveState(rec *synctypes.TransferRecord) error {
	return m.persist(rec)
}

func (m *Manager) persist(rec *synctypes.TransferRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return synctypes.Wrap(synctypes.EKind.Serialization(), rec.ID, err)
	}

	tmp := m.tempPath(rec.ID)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return synctypes.Wrap(synctypes.EKind.Io(), rec.ID, err)
	}
	if err := os.Rename(tmp, m.path(rec.ID)); err != nil {
		return synctypes.Wrap(synctypes.EKind.Io(), rec.ID, err)
	}
	if f, err := os.Open(m.dir); err == nil {
		if err := f.Sync(); err != nil {
			synclog.Base().WithError(err).Warn("state directory fsync failed")
		}
		f.Close()
	}
	return nil
}

// RemoveTransfer drops id from memory and deletes its file.
func (m *Manager) RemoveTransfer(id string) error {
	m.mapMu.Lock()
	delete(m.records, id)
	m.mapMu.Unlock()

	err := os.Remove(m.path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// snapshotAll returns a clone of every record currently held in memory,
// terminal or not.
func (m *Manager) snapshotAll() []*synctypes.TransferRecord {
	m.mapMu.RLock()
	handles := make([]*synctypes.RecordHandle, 0, len(m.records))
	for _, h := range m.records {
		handles = append(handles, h)
	}
	m.mapMu.RUnlock()

	out := make([]*synctypes.TransferRecord, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.Snapshot())
	}
	return out
}

// GetActiveTransfers returns a snapshot of every non-terminal record.
func (m *Manager) GetActiveTransfers() []*synctypes.TransferRecord {
	var out []*synctypes.TransferRecord
	for _, rec := range m.snapshotAll() {
		if !rec.Status.IsTerminal() {
			out = append(out, rec)
		}
	}
	return out
}

// GetInterruptedTransfers returns records that are candidates for resume:
// Paused, Failed, Running-without-a-live-control, or Pending with partial
// progress. liveIDs is the set of transfer ids the orchestrator currently
// holds a TransferControl for. Built from the full in-memory set rather
// than GetActiveTransfers, since Failed is a terminal status and would
// otherwise be filtered out before this function ever saw it.
func (m *Manager) GetInterruptedTransfers(liveIDs map[string]bool) []*synctypes.TransferRecord {
	var out []*synctypes.TransferRecord
	for _, rec := range m.snapshotAll() {
		switch {
		case rec.Status == synctypes.EStatus.Paused():
			out = append(out, rec)
		case rec.Status == synctypes.EStatus.Failed():
			out = append(out, rec)
		case rec.Status == synctypes.EStatus.Running() && !liveIDs[rec.ID]:
			out = append(out, rec)
		case rec.Status == synctypes.EStatus.Pending() && rec.BytesTransferred > 0:
			out = append(out, rec)
		}
	}
	return out
}
