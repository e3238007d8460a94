// Package synclog provides the engine's structured logging, built on
// logrus, with per-transfer child loggers carrying a transfer_id field.
package synclog

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base     *logrus.Logger
	baseOnce sync.Once
)

// Base returns the process-wide logger, created lazily with sane defaults
// (text formatter, Info level, stderr output).
func Base() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		base.SetLevel(logrus.InfoLevel)
		base.SetOutput(os.Stderr)
	})
	return base
}

// SetOutput redirects the base logger's output, e.g. to a rotating file.
func SetOutput(w io.Writer) {
	Base().SetOutput(w)
}

// ForTransfer returns a child entry tagged with transfer_id.
func ForTransfer(id string) *logrus.Entry {
	return Base().WithField("transfer_id", id)
}

const transferLogMaxBytes = 4 << 20

// NewTransferFileLogger opens (or appends to) a dedicated rotating log file
// for one transfer, living alongside its JSON state file. The caller must
// Close the returned io.Closer when the transfer finishes.
func NewTransferFileLogger(path, transferID string) (*logrus.Entry, io.Closer, error) {
	w, err := NewRotatingWriter(path, transferLogMaxBytes)
	if err != nil {
		return nil, nil, err
	}
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(w)
	return l.WithField("transfer_id", transferID), w, nil
}
