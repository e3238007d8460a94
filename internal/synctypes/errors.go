package synctypes

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/rsyncapp/synccore/internal/enumutil"
)

// ErrorKind is the error taxonomy, ordered from most to least specific.
type ErrorKind uint32

var EKind = ErrorKind(0)

func (ErrorKind) TransferNotFound() ErrorKind      { return ErrorKind(0) }
func (ErrorKind) TransferAlreadyExists() ErrorKind { return ErrorKind(1) }
func (ErrorKind) TransferCancelled() ErrorKind     { return ErrorKind(2) }
func (ErrorKind) TransferPaused() ErrorKind        { return ErrorKind(3) }
func (ErrorKind) TransferInterrupted() ErrorKind   { return ErrorKind(4) }

func (ErrorKind) SourceNotFound() ErrorKind         { return ErrorKind(10) }
func (ErrorKind) DestinationNotWritable() ErrorKind { return ErrorKind(11) }
func (ErrorKind) PermissionDenied() ErrorKind       { return ErrorKind(12) }
func (ErrorKind) InvalidPath() ErrorKind            { return ErrorKind(13) }
func (ErrorKind) PathTooLong() ErrorKind            { return ErrorKind(14) }
func (ErrorKind) SymlinkLoop() ErrorKind            { return ErrorKind(15) }

func (ErrorKind) DiskFull() ErrorKind          { return ErrorKind(20) }
func (ErrorKind) QuotaExceeded() ErrorKind     { return ErrorKind(21) }
func (ErrorKind) DriveDisconnected() ErrorKind { return ErrorKind(22) }
func (ErrorKind) NetworkTimeout() ErrorKind    { return ErrorKind(23) }
func (ErrorKind) FileLocked() ErrorKind        { return ErrorKind(24) }

func (ErrorKind) HashMismatch() ErrorKind               { return ErrorKind(30) }
func (ErrorKind) IntegrityCheckFailed() ErrorKind       { return ErrorKind(31) }
func (ErrorKind) FileModifiedDuringTransfer() ErrorKind { return ErrorKind(32) }
func (ErrorKind) SourceModifiedDuringCopy() ErrorKind   { return ErrorKind(33) }
func (ErrorKind) PartialFile() ErrorKind                { return ErrorKind(34) }
func (ErrorKind) CorruptedState() ErrorKind             { return ErrorKind(35) }
func (ErrorKind) IncompleteScan() ErrorKind             { return ErrorKind(36) }

func (ErrorKind) Conflict() ErrorKind      { return ErrorKind(40) }
func (ErrorKind) Timeout() ErrorKind       { return ErrorKind(41) }
func (ErrorKind) Io() ErrorKind            { return ErrorKind(42) }
func (ErrorKind) Serialization() ErrorKind { return ErrorKind(43) }
func (ErrorKind) Internal() ErrorKind      { return ErrorKind(44) }

func (k ErrorKind) String() string {
	return enumutil.Helper{}.String(k, reflect.TypeOf(k))
}

// SyncError is the concrete error type carried through the engine. Fields
// beyond Kind/Message are populated only when the corresponding Kind
// carries structured data (DiskFull, PathTooLong, DriveDisconnected,
// FileModifiedDuringTransfer/SourceModifiedDuringCopy, PartialFile,
// FileLocked, NetworkTimeout, TransferInterrupted).
type SyncError struct {
	Kind    ErrorKind
	Path    string
	Message string
	Cause   error

	RequiredBytes  int64
	AvailableBytes int64
	MaxLength      int
	DeviceName     string
	TimeoutSecs    int
	RetryAfterMs   int
	ExpectedMtime  string
	ActualMtime    string
	ExpectedBytes  int64
	ActualBytes    int64
	TransferID     string
	CanResume      bool
	LastFile       string
}

func (e *SyncError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SyncError) Unwrap() error { return e.Cause }

// New wraps a plain message into a classified error.
func New(kind ErrorKind, msg string) *SyncError {
	return &SyncError{Kind: kind, Message: msg}
}

// Wrap attaches a classified kind to an existing error using pkg/errors, so
// the original stack trace/cause chain survives.
func Wrap(kind ErrorKind, path string, cause error) *SyncError {
	return &SyncError{Kind: kind, Path: path, Message: cause.Error(), Cause: errors.WithStack(cause)}
}

// DiskFullError builds a DiskFull error carrying the required/available
// byte counts.
func DiskFullError(path string, required, available int64) *SyncError {
	return &SyncError{Kind: EKind.DiskFull(), Path: path, Message: "insufficient free space",
		RequiredBytes: required, AvailableBytes: available}
}

// HashMismatchError builds a HashMismatch error for path.
func HashMismatchError(path string) *SyncError {
	return &SyncError{Kind: EKind.HashMismatch(), Path: path, Message: "destination hash does not match source"}
}

// SourceModifiedError builds a SourceModifiedDuringCopy error carrying the
// expected and actual mtimes.
func SourceModifiedError(path, expected, actual string) *SyncError {
	return &SyncError{Kind: EKind.SourceModifiedDuringCopy(), Path: path,
		Message: "source mtime changed during copy", ExpectedMtime: expected, ActualMtime: actual}
}

// AsSyncError extracts a *SyncError from err, classifying unknown errors as
// Internal rather than dropping their information.
func AsSyncError(err error) *SyncError {
	if err == nil {
		return nil
	}
	var se *SyncError
	if errors.As(err, &se) {
		return se
	}
	return &SyncError{Kind: EKind.Internal(), Message: err.Error(), Cause: err}
}

func IsCancelled(err error) bool {
	se := AsSyncError(err)
	return se != nil && se.Kind == EKind.TransferCancelled()
}
