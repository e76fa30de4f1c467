// Package transaction provides a two-phase staging buffer used at a protocol
// boundary: inbound argument records are accumulated first, then an opaque
// response byte sequence is streamed back out. It is a pure in-memory
// structure with no transport of its own.
package transaction

import (
	"errors"

	"github.com/google/uuid"

	"github.com/treefs-io/treefs/internal/util"
)

var (
	// ErrResponded is returned by AddArg once the transaction has started
	// responding. The rejection is sticky: draining the response does not
	// re-open the argument phase.
	ErrResponded = errors.New("transaction already responded")

	// ErrDrained is returned by SetResp after the response has been fully
	// read out; a drained transaction is finished.
	ErrDrained = errors.New("transaction drained")
)

// Trans is a single request/response staging buffer. It performs no internal
// synchronization: one transaction instance belongs to one request cycle and
// must not be shared across goroutines without external locking.
type Trans struct {
	id        uuid.UUID
	args      [][]byte
	resp      []byte
	responded bool // latched by the first SetResp that appends at least one byte
}

// New creates an empty transaction in argument mode, tagged with a fresh
// correlation ID.
func New() *Trans {
	t := &Trans{id: uuid.New()}

	logger := util.GetLogger("Trans")
	logger.Trace().Str("id", t.id.String()).Msg("Transaction opened")
	return t
}

// ID returns the transaction's correlation ID.
func (t *Trans) ID() uuid.UUID {
	return t.id
}

// ArgMode reports whether the response sequence is currently empty. Note the
// flag is derived, not sticky: a transaction whose response has been fully
// drained by ReadResp reports argument mode again, even though AddArg keeps
// rejecting.
func (t *Trans) ArgMode() bool {
	return len(t.resp) == 0
}

// AddArg appends one argument record. Valid only before the first response
// byte is appended; afterwards it fails with [ErrResponded].
func (t *Trans) AddArg(record []byte) error {
	if t.responded {
		return ErrResponded
	}
	t.args = append(t.args, record)
	return nil
}

// TakeArgs takes all buffered argument records if there are at least n,
// returning the first n in insertion order. Records beyond position n are
// discarded with the drain, not kept for a later call. If fewer than n
// records are buffered it returns ok=false and leaves the buffer untouched.
func (t *Trans) TakeArgs(n int) (records [][]byte, ok bool) {
	if len(t.args) < n {
		return nil, false
	}
	records = t.args
	t.args = nil
	return records[:n], true
}

// SetResp appends b to the response sequence; repeated calls concatenate.
// The first call that appends at least one byte moves the transaction out of
// argument mode. Appending after the response has been drained fails with
// [ErrDrained].
func (t *Trans) SetResp(b []byte) error {
	if t.responded && len(t.resp) == 0 {
		return ErrDrained
	}
	t.resp = append(t.resp, b...)
	if len(t.resp) > 0 {
		t.responded = true
	}
	return nil
}

// ReadResp removes and returns up to n bytes from the front of the response
// sequence, fewer if fewer remain and an empty slice once drained. This is a
// consuming FIFO read with no re-read capability.
func (t *Trans) ReadResp(n int) []byte {
	n = min(n, len(t.resp))
	out := make([]byte, n)
	copy(out, t.resp[:n])
	t.resp = t.resp[n:]
	return out
}
