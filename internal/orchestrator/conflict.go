package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rsyncapp/synccore/internal/synctypes"
)

// ConflictResolved is the payload of the conflict-resolved event.
type ConflictResolved struct {
	ConflictID string
	Resolution synctypes.ConflictDecision
	TransferID string
	At         time.Time
}

// ConflictRegistry records pending Ask conflicts and their eventual
// resolutions, so an external UI can record the conflict and await a
// decision asynchronously. Resolutions are idempotent: resolving the same
// id twice simply overwrites.
type ConflictRegistry struct {
	mu        sync.Mutex
	pending   map[string]pendingConflict
	resolved  map[string]ConflictResolved
	listeners []chan ConflictResolved
}

type pendingConflict struct {
	transferID string
	relPath    string
	decisionCh chan synctypes.ConflictDecision
}

func NewConflictRegistry() *ConflictRegistry {
	return &ConflictRegistry{
		pending:  make(map[string]pendingConflict),
		resolved: make(map[string]ConflictResolved),
	}
}

// Register opens a new pending conflict for a file and returns its id plus
// a channel that receives the eventual decision.
func (r *ConflictRegistry) Register(transferID, relPath string) (string, <-chan synctypes.ConflictDecision) {
	id := uuid.NewString()
	ch := make(chan synctypes.ConflictDecision, 1)

	r.mu.Lock()
	r.pending[id] = pendingConflict{transferID: transferID, relPath: relPath, decisionCh: ch}
	r.mu.Unlock()

	return id, ch
}

// Resolve delivers a UI decision for conflictID.
// Resolving an unknown or already-resolved id is a no-op on the delivery
// channel but still records/overwrites the resolution, per the spec's
// idempotence note.
func (r *ConflictRegistry) Resolve(conflictID string, decision synctypes.ConflictDecision) {
	r.mu.Lock()
	pc, ok := r.pending[conflictID]
	var transferID string
	if ok {
		transferID = pc.transferID
		delete(r.pending, conflictID)
	} else if prev, ok2 := r.resolved[conflictID]; ok2 {
		transferID = prev.TransferID
	}
	resolved := ConflictResolved{ConflictID: conflictID, Resolution: decision, TransferID: transferID, At: time.Now().UTC()}
	r.resolved[conflictID] = resolved
	listeners := append([]chan ConflictResolved(nil), r.listeners...)
	r.mu.Unlock()

	if ok {
		pc.decisionCh <- decision
	}
	for _, l := range listeners {
		select {
		case l <- resolved:
		default:
		}
	}
}

// Subscribe registers a listener for conflict-resolved events.
func (r *ConflictRegistry) Subscribe() <-chan ConflictResolved {
	ch := make(chan ConflictResolved, 16)
	r.mu.Lock()
	r.listeners = append(r.listeners, ch)
	r.mu.Unlock()
	return ch
}
