package synclog

import (
	"fmt"
	"os"
	"sync"
)

// rotatingWriter is a size-capped io.Writer: before a write that would take
// the current file past maxSize, the file is renamed aside with a numeric
// suffix and a fresh file is opened.
type rotatingWriter struct {
	mu            sync.Mutex
	path          string
	file          *os.File
	currentSize   int64
	maxSize       int64
	currentSuffix int
}

// NewRotatingWriter opens (or creates) path for append and rotates it before
// a write would take it past maxSize bytes.
func NewRotatingWriter(path string, maxSize int64) (*rotatingWriter, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &rotatingWriter{path: path, file: f, currentSize: info.Size(), maxSize: maxSize}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentSize+int64(len(p)) > w.maxSize {
		if err := w.rotateLocked(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.currentSize += int64(n)
	return n, err
}

func (w *rotatingWriter) rotateLocked() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.currentSuffix++
	rotated := fmt.Sprintf("%s.%d", w.path, w.currentSuffix)
	if err := os.Rename(w.path, rotated); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.currentSize = 0
	return nil
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
