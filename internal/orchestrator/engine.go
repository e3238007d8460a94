package orchestrator

import (
	"sync"
	"time"

	"github.com/rsyncapp/synccore/internal/fileutil"
	"github.com/rsyncapp/synccore/internal/metrics"
	"github.com/rsyncapp/synccore/internal/state"
	"github.com/rsyncapp/synccore/internal/synctypes"
	"github.com/rsyncapp/synccore/internal/volume"
)

// Engine is the programmatic API of synccore: the single surface the UI,
// CLI, IPC bridge, and scheduler are meant to consume.
type Engine struct {
	state     *state.Manager
	watcher   *volume.Watcher
	metrics   *metrics.Collectors
	progress  *progressBus
	conflicts *ConflictRegistry

	mu       sync.Mutex
	controls map[string]*synctypes.TransferControl
}

// New constructs an Engine backed by a state manager rooted at stateDir. A
// nil watcher/collectors is fine; both are optional collaborators.
func New(stateDir string, watcher *volume.Watcher, collectors *metrics.Collectors) (*Engine, error) {
	mgr, err := state.New(stateDir)
	if err != nil {
		return nil, err
	}
	if watcher != nil && collectors != nil {
		watcher.SetCollectors(collectors)
	}
	return &Engine{
		state:     mgr,
		watcher:   watcher,
		metrics:   collectors,
		progress:  newProgressBus(),
		conflicts: NewConflictRegistry(),
		controls:  make(map[string]*synctypes.TransferControl),
	}, nil
}

// SubscribeProgress returns a channel of sync-progress events.
func (e *Engine) SubscribeProgress() <-chan ProgressEvent {
	return e.progress.Subscribe()
}

// SubscribeConflictResolved returns a channel of conflict-resolved events.
func (e *Engine) SubscribeConflictResolved() <-chan ConflictResolved {
	return e.conflicts.Subscribe()
}

func (e *Engine) GetActiveTransfers() []*synctypes.TransferRecord {
	return e.state.GetActiveTransfers()
}

func (e *Engine) GetInterruptedTransfers() []*synctypes.TransferRecord {
	e.mu.Lock()
	live := make(map[string]bool, len(e.controls))
	for id := range e.controls {
		live[id] = true
	}
	e.mu.Unlock()
	return e.state.GetInterruptedTransfers(live)
}

func (e *Engine) GetTransferState(id string) (*synctypes.TransferRecord, error) {
	rec := e.state.GetState(id)
	if rec == nil {
		return nil, synctypes.New(synctypes.EKind.TransferNotFound(), id)
	}
	return rec, nil
}

// PauseTransfer flips the in-flight transfer's paused flag.
func (e *Engine) PauseTransfer(id string) error {
	ctrl, err := e.controlFor(id)
	if err != nil {
		return err
	}
	ctrl.Pause()
	return e.setStatus(id, synctypes.EStatus.Paused())
}

func (e *Engine) ResumeTransfer(id string) error {
	ctrl, err := e.controlFor(id)
	if err != nil {
		return err
	}
	ctrl.Resume()
	return e.setStatus(id, synctypes.EStatus.Running())
}

func (e *Engine) CancelTransfer(id string) error {
	ctrl, err := e.controlFor(id)
	if err != nil {
		return err
	}
	ctrl.Cancel()
	return nil
}

func (e *Engine) controlFor(id string) (*synctypes.TransferControl, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctrl, ok := e.controls[id]
	if !ok {
		return nil, synctypes.New(synctypes.EKind.TransferNotFound(), id)
	}
	return ctrl, nil
}

func (e *Engine) setStatus(id string, status synctypes.TransferStatus) error {
	h := e.state.GetTransfer(id)
	if h == nil {
		return synctypes.New(synctypes.EKind.TransferNotFound(), id)
	}
	return h.Mutate(func(r *synctypes.TransferRecord) error {
		r.Status = status
		return e.state.SaveState(r)
	})
}

// DiscardTransfer removes persisted state and live control.
func (e *Engine) DiscardTransfer(id string) error {
	e.mu.Lock()
	delete(e.controls, id)
	e.mu.Unlock()
	if e.watcher != nil {
		e.watcher.UnregisterTransfer(id)
	}
	return e.state.RemoveTransfer(id)
}

// ResolveConflict delivers a UI decision for a pending Ask conflict.
func (e *Engine) ResolveConflict(conflictID string, decision synctypes.ConflictDecision) {
	e.conflicts.Resolve(conflictID, decision)
}

// ComputeFileHash hashes the file at path for integrity comparisons.
func (e *Engine) ComputeFileHash(path string) (uint64, error) {
	return fileutil.HashFile(path)
}

func (e *Engine) registerControl(id string) *synctypes.TransferControl {
	ctrl := synctypes.NewTransferControl()
	e.mu.Lock()
	e.controls[id] = ctrl
	e.mu.Unlock()
	return ctrl
}

func (e *Engine) unregisterControl(id string) {
	e.mu.Lock()
	delete(e.controls, id)
	e.mu.Unlock()
}

// PurgeOldTransfers exposes the state manager's retention sweep so a
// long-running host can call it on a timer.
func (e *Engine) PurgeOldTransfers() {
	e.state.PurgeOldTransfers(time.Duration(state.DefaultRetentionDays) * 24 * time.Hour)
}
