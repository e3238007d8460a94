package synctypes

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransferRecordDefaults(t *testing.T) {
	rec := NewTransferRecord("/src", "/dst")
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, EStatus.Pending(), rec.Status)
	assert.NotNil(t, rec.Files)
	assert.Empty(t, rec.Files)
}

func TestTransferRecordCloneIsIndependent(t *testing.T) {
	rec := NewTransferRecord("/src", "/dst")
	rec.Files["/src/a"] = &FileTransferRecord{SourcePath: "/src/a", TotalBytes: 10}
	completed := time.Now()
	rec.CompletedAt = &completed

	clone := rec.Clone()
	clone.Files["/src/a"].BytesTransferred = 5
	*clone.CompletedAt = completed.Add(time.Hour)

	assert.Equal(t, int64(0), rec.Files["/src/a"].BytesTransferred)
	assert.Equal(t, completed, *rec.CompletedAt)
}

func TestRecordHandleMutateIsExclusive(t *testing.T) {
	h := NewRecordHandle(NewTransferRecord("/src", "/dst"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Mutate(func(r *TransferRecord) error {
				r.FilesCompleted++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Snapshot().FilesCompleted)
}

func TestTransferControlPauseResume(t *testing.T) {
	ctrl := NewTransferControl()
	assert.False(t, ctrl.IsPaused())

	ctrl.Pause()
	assert.True(t, ctrl.IsPaused())

	done := make(chan struct{})
	go func() {
		ctrl.WaitWhilePaused()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitWhilePaused returned while still paused")
	case <-time.After(50 * time.Millisecond):
	}

	ctrl.Resume()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitWhilePaused did not unblock after Resume")
	}
}

func TestTransferControlCancelUnblocksPause(t *testing.T) {
	ctrl := NewTransferControl()
	ctrl.Pause()

	done := make(chan struct{})
	go func() {
		ctrl.WaitWhilePaused()
		close(done)
	}()

	ctrl.Cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitWhilePaused did not unblock after Cancel")
	}
	assert.True(t, ctrl.IsCancelled())
}

func TestRecordHandleSnapshotDoesNotRace(t *testing.T) {
	h := NewRecordHandle(NewTransferRecord("/src", "/dst"))
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = h.Mutate(func(r *TransferRecord) error {
				r.BytesTransferred++
				return nil
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = h.Snapshot()
		}
	}()
	wg.Wait()
	require.Equal(t, int64(20), h.Snapshot().BytesTransferred)
}
