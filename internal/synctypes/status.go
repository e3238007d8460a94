package synctypes

import (
	"encoding/json"
	"reflect"
	"sync/atomic"

	"github.com/rsyncapp/synccore/internal/enumutil"
)

// TransferStatus is the lifecycle status of a TransferRecord. Must stay
// 32-bit so it can be mutated atomically by concurrent workers.
type TransferStatus uint32

var EStatus = TransferStatus(0)

func (TransferStatus) Pending() TransferStatus   { return TransferStatus(0) }
func (TransferStatus) Running() TransferStatus   { return TransferStatus(1) }
func (TransferStatus) Paused() TransferStatus    { return TransferStatus(2) }
func (TransferStatus) Completed() TransferStatus { return TransferStatus(3) }
func (TransferStatus) Failed() TransferStatus    { return TransferStatus(4) }
func (TransferStatus) Cancelled() TransferStatus { return TransferStatus(5) }

func (s TransferStatus) String() string {
	return enumutil.Helper{}.String(s, reflect.TypeOf(s))
}

func (s TransferStatus) IsTerminal() bool {
	return s == EStatus.Completed() || s == EStatus.Failed() || s == EStatus.Cancelled()
}

func (s TransferStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TransferStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	val, err := enumutil.Helper{}.Parse(reflect.TypeOf(*s), str)
	if err != nil {
		return err
	}
	*s = val.(TransferStatus)
	return nil
}

func (s *TransferStatus) AtomicLoad() TransferStatus {
	return TransferStatus(atomic.LoadUint32((*uint32)(s)))
}

func (s *TransferStatus) AtomicStore(v TransferStatus) {
	atomic.StoreUint32((*uint32)(s), uint32(v))
}

// DeltaStatus is the per-file classifier outcome.
type DeltaStatus uint32

var EDelta = DeltaStatus(0)

func (DeltaStatus) New() DeltaStatus       { return DeltaStatus(0) }
func (DeltaStatus) Modified() DeltaStatus  { return DeltaStatus(1) }
func (DeltaStatus) Unchanged() DeltaStatus { return DeltaStatus(2) }
func (DeltaStatus) Orphan() DeltaStatus    { return DeltaStatus(3) }

func (d DeltaStatus) String() string {
	return enumutil.Helper{}.String(d, reflect.TypeOf(d))
}

// ConflictResolution is the strategy applied when a destination file has
// changed independently of the source.
type ConflictResolution uint32

var EConflict = ConflictResolution(0)

func (ConflictResolution) Overwrite() ConflictResolution { return ConflictResolution(0) }
func (ConflictResolution) Skip() ConflictResolution      { return ConflictResolution(1) }
func (ConflictResolution) Rename() ConflictResolution    { return ConflictResolution(2) }
func (ConflictResolution) Ask() ConflictResolution       { return ConflictResolution(3) }

func (c ConflictResolution) String() string {
	return enumutil.Helper{}.String(c, reflect.TypeOf(c))
}

func (c ConflictResolution) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ConflictResolution) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	val, err := enumutil.Helper{}.Parse(reflect.TypeOf(*c), str)
	if err != nil {
		return err
	}
	*c = val.(ConflictResolution)
	return nil
}

// SyncMode selects whether a transfer copies or moves source files.
type SyncMode uint32

var EMode = SyncMode(0)

func (SyncMode) Copy() SyncMode { return SyncMode(0) }
func (SyncMode) Move() SyncMode { return SyncMode(1) }

func (m SyncMode) String() string {
	return enumutil.Helper{}.String(m, reflect.TypeOf(m))
}

// ConflictDecision is the resolution an external UI delivers for an Ask
// conflict.
type ConflictDecision uint32

var EDecision = ConflictDecision(0)

func (ConflictDecision) KeepSource() ConflictDecision { return ConflictDecision(0) }
func (ConflictDecision) KeepDest() ConflictDecision   { return ConflictDecision(1) }
func (ConflictDecision) KeepBoth() ConflictDecision   { return ConflictDecision(2) }
func (ConflictDecision) Skip() ConflictDecision       { return ConflictDecision(3) }

func (d ConflictDecision) String() string {
	return enumutil.Helper{}.String(d, reflect.TypeOf(d))
}
