package orchestrator

import (
	"sync"
	"time"

	"github.com/rsyncapp/synccore/internal/synclog"
)

// ProgressEvent is a sync-progress event payload published to subscribers.
type ProgressEvent struct {
	TransferID          string
	CurrentFile         string
	CurrentFileProgress float64
	OverallProgress     float64
	BytesCopied         int64
	BytesTotal          int64
	FilesCompleted      int
	FilesTotal          int
	SpeedBytesPerSec    float64
	ETASeconds          float64
}

const progressChannelCapacity = 64

// progressBus fans sync-progress events out to listeners over a bounded
// channel per listener. If a listener can't keep up, new events are
// dropped rather than blocking the copy worker: persisted state is
// authoritative, these events are advisory only.
type progressBus struct {
	mu        sync.RWMutex
	listeners []chan ProgressEvent
}

func newProgressBus() *progressBus {
	return &progressBus{}
}

func (b *progressBus) Subscribe() <-chan ProgressEvent {
	ch := make(chan ProgressEvent, progressChannelCapacity)
	b.mu.Lock()
	b.listeners = append(b.listeners, ch)
	b.mu.Unlock()
	return ch
}

func (b *progressBus) Publish(e ProgressEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.listeners {
		select {
		case ch <- e:
		default:
			synclog.Base().WithField("transfer_id", e.TransferID).Debug("dropping progress event, consumer not keeping up")
		}
	}
}

// speedTracker computes an exponentially-weighted moving average of bytes
// copied per second, so reported speed/ETA don't jitter on every chunk the
// way an instantaneous rate would.
type speedTracker struct {
	mu        sync.Mutex
	lastTime  time.Time
	lastBytes int64
	smoothed  float64
}

const speedSmoothingAlpha = 0.3

func newSpeedTracker() *speedTracker {
	return &speedTracker{lastTime: time.Now()}
}

func (s *speedTracker) Update(totalBytesCopied int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(s.lastTime).Seconds()
	if elapsed <= 0 {
		return s.smoothed
	}
	instantaneous := float64(totalBytesCopied-s.lastBytes) / elapsed
	if instantaneous < 0 {
		instantaneous = 0
	}
	if s.smoothed == 0 {
		s.smoothed = instantaneous
	} else {
		s.smoothed = speedSmoothingAlpha*instantaneous + (1-speedSmoothingAlpha)*s.smoothed
	}
	s.lastTime = now
	s.lastBytes = totalBytesCopied
	return s.smoothed
}
