// Package volume implements mount/unmount detection, mapping active
// transfers to the mount points they touch, and raising volume-event
// notifications so the orchestrator can fail fast on drive disconnect.
package volume

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rsyncapp/synccore/internal/metrics"
	"github.com/rsyncapp/synccore/internal/synclog"
)

// EventKind is the volume-event variant.
type EventKind int

const (
	Mounted EventKind = iota
	Unmounted
	UnmountPending
	Inaccessible
)

func (k EventKind) String() string {
	switch k {
	case Mounted:
		return "mounted"
	case Unmounted:
		return "unmounted"
	case UnmountPending:
		return "unmount_pending"
	case Inaccessible:
		return "inaccessible"
	default:
		return "unknown"
	}
}

// Event is the payload pushed to listeners.
type Event struct {
	Kind              EventKind
	MountPoint        string
	Name              string
	AffectedTransfers []string
}

const (
	defaultPollInterval = 2 * time.Second
	defaultDebounce     = 500 * time.Millisecond
)

// Watcher subscribes to platform mount roots via fsnotify (sub-second
// latency) plus a periodic poll as a backstop for anything the event
// stream drops.
type Watcher struct {
	mu           sync.Mutex
	roots        []string
	fsw          *fsnotify.Watcher
	pollInterval time.Duration
	debounce     time.Duration

	// transferMounts maps transfer id -> set of mount points it touches.
	transferMounts map[string]map[string]bool
	knownMounts    map[string]bool

	collectors *metrics.Collectors

	events chan Event
	cancel context.CancelFunc
}

// SetCollectors wires a metrics collector so subsequent volume events
// increment VolumeEventsTotal. Optional; a nil collectors is a no-op.
func (w *Watcher) SetCollectors(c *metrics.Collectors) {
	w.mu.Lock()
	w.collectors = c
	w.mu.Unlock()
}

// New builds a watcher over roots (existing ones only are subscribed; a
// missing root is skipped, not an error, since not every OS configuration
// has all of them).
func New(roots []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, r := range roots {
		if _, err := os.Stat(r); err == nil {
			if err := fsw.Add(r); err != nil {
				synclog.Base().WithError(err).WithField("root", r).Warn("failed to watch mount root")
			}
		}
	}
	return &Watcher{
		roots:          roots,
		fsw:            fsw,
		pollInterval:   defaultPollInterval,
		debounce:       defaultDebounce,
		transferMounts: make(map[string]map[string]bool),
		knownMounts:    snapshotMounts(roots),
		events:         make(chan Event, 32),
	}, nil
}

// Events returns the channel listeners should drain for volume-event
// notifications.
func (w *Watcher) Events() <-chan Event { return w.events }

// Start begins the fsnotify-plus-poll loop; Stop (which cancels the loop's
// internal context) or cancelling ctx ends it.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.runFsEventLoop(ctx)
	go w.runPollLoop(ctx)
}

func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	_ = w.fsw.Close()
}

func (w *Watcher) runFsEventLoop(ctx context.Context) {
	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				w.reconcile()
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			synclog.Base().WithError(err).Warn("volume watcher fsnotify error")
		}
	}
}

func (w *Watcher) runPollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reconcile()
			w.checkAccessibility()
		}
	}
}

func (w *Watcher) reconcile() {
	current := snapshotMounts(w.roots)

	w.mu.Lock()
	previous := w.knownMounts
	w.knownMounts = current
	affected := w.affectedTransfersLocked
	w.mu.Unlock()

	for mount := range current {
		if !previous[mount] {
			w.emit(Event{Kind: Mounted, MountPoint: mount, Name: filepath.Base(mount)})
		}
	}
	for mount := range previous {
		if !current[mount] {
			w.emit(Event{Kind: Unmounted, MountPoint: mount, Name: filepath.Base(mount), AffectedTransfers: affected(mount)})
		}
	}
}

// checkAccessibility independently probes volumes with active transfers via
// readdir; EIO/ENODEV emit Inaccessible, EACCES does not.
func (w *Watcher) checkAccessibility() {
	w.mu.Lock()
	mounts := make(map[string]bool)
	for _, m := range w.transferMounts {
		for mp := range m {
			mounts[mp] = true
		}
	}
	w.mu.Unlock()

	for mp := range mounts {
		if _, err := os.ReadDir(mp); err != nil {
			if os.IsPermission(err) {
				continue
			}
			w.emit(Event{Kind: Inaccessible, MountPoint: mp, Name: filepath.Base(mp), AffectedTransfers: w.affectedTransfersLocked(mp)})
		}
	}
}

// RegisterTransfer resolves src/dst to their longest-prefix-matching mount
// point(s) and records the association, so a later unmount can surface the
// affected transfer ids.
func (w *Watcher) RegisterTransfer(id, src, dst string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	mounts := make(map[string]bool)
	if mp := w.longestPrefixMount(src); mp != "" {
		mounts[mp] = true
	}
	if mp := w.longestPrefixMount(dst); mp != "" {
		mounts[mp] = true
	}
	w.transferMounts[id] = mounts
}

func (w *Watcher) UnregisterTransfer(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.transferMounts, id)
}

func (w *Watcher) longestPrefixMount(path string) string {
	best := ""
	for mp := range w.knownMounts {
		if strings.HasPrefix(path, mp) && len(mp) > len(best) {
			best = mp
		}
	}
	return best
}

// affectedTransfersLocked returns the transfer ids registered against mount.
// Named "Locked" by convention for helpers that assume the caller already
// holds w.mu, even though here it takes its own lock (reconcile and
// checkAccessibility snapshot transferMounts before calling out).
func (w *Watcher) affectedTransfersLocked(mount string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ids []string
	for id, mounts := range w.transferMounts {
		if mounts[mount] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (w *Watcher) emit(e Event) {
	w.mu.Lock()
	collectors := w.collectors
	w.mu.Unlock()
	if collectors != nil {
		collectors.VolumeEventsTotal.WithLabelValues(e.Kind.String()).Inc()
	}

	select {
	case w.events <- e:
	default:
		synclog.Base().WithField("mount", e.MountPoint).Warn("volume event dropped, listener not keeping up")
	}
}

func snapshotMounts(roots []string) map[string]bool {
	out := make(map[string]bool)
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			out[filepath.Join(root, e.Name())] = true
		}
	}
	return out
}
