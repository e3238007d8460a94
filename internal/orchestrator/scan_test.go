package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(t.TempDir(), nil, nil)
	require.NoError(t, err)
	return e
}

func TestGetDirectoryInfoAndQuickScanAgree(t *testing.T) {
	e := newTestEngine(t)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("hi"), 0o644))

	full, err := e.GetDirectoryInfo(src)
	require.NoError(t, err)
	quick, err := e.QuickScan(src)
	require.NoError(t, err)

	assert.Equal(t, full.FileCount, quick.FileCount)
	assert.Equal(t, full.TotalBytes, quick.TotalBytes)
	assert.NotEmpty(t, full.Files)
	assert.Empty(t, quick.Files)
}

func TestScanStreamEmitsChunksAndFinal(t *testing.T) {
	e := newTestEngine(t)
	src := t.TempDir()
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(src, string(rune('a'+i))+".txt"), []byte("x"), 0o644))
	}

	done := make(chan struct{})
	defer close(done)
	chunks, errCh := e.ScanStream(src, "scan-1", done)

	var sawFinal bool
	var totalFiles int
	for c := range chunks {
		if c.IsFinal {
			sawFinal = true
			continue
		}
		totalFiles += len(c.Files)
	}
	assert.True(t, sawFinal)
	assert.Equal(t, 5, totalFiles)

	select {
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	default:
	}
}

func TestScanStreamRespectsDone(t *testing.T) {
	e := newTestEngine(t)
	src := t.TempDir()
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(src, string(rune('a'+i))+".txt"), []byte("x"), 0o644))
	}

	done := make(chan struct{})
	chunks, _ := e.ScanStream(src, "scan-2", done)
	close(done)

	// Draining should terminate instead of hanging even though the
	// producer may still be trying to send.
	for range chunks {
	}
}
