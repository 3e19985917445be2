package jstream

import (
	"bytes"
	"io"
	"sync/atomic"
)

// ValueSource is the raw byte stream of a single JSON value, handed out by
// Reader.NextSource for callers that want to copy a subtree verbatim
// without decoding and re-encoding it. It is produced by running the same
// recursive-descent scan StreamValue uses, synchronously, into an in-memory
// buffer when NextSource is called; reads are then served from that buffer.
// The whole value is therefore held in memory, and the parent Reader's
// source is already positioned just past the value when NextSource returns.
//
// Any subsequent call on the parent discards whatever the caller has not
// read (see Reader.drainStreamingValueIfOpen).
type ValueSource struct {
	data *bytes.Reader
	err  error
	eof  atomic.Bool
}

func newValueSource(r *Reader) *ValueSource {
	var buf bytes.Buffer
	err := r.StreamValue(&buf)
	return &ValueSource{data: bytes.NewReader(buf.Bytes()), err: err}
}

// Read implements io.Reader. If scanning the value failed, the bytes
// scanned before the failure are returned first, then the scan error in
// place of io.EOF.
func (vs *ValueSource) Read(p []byte) (int, error) {
	n, err := vs.data.Read(p)
	if err == io.EOF {
		if vs.err != nil {
			return n, vs.err
		}
		vs.eof.Store(true)
	}
	return n, err
}

// drained reports whether the caller has read the value through to
// io.EOF. Reader.Close consults this to decide whether an open
// ValueSource blocks closing (SPEC_FULL.md §5); abandoning one early via
// Close does not count as draining it.
func (vs *ValueSource) drained() bool {
	return vs.eof.Load()
}

// Close abandons the remainder of the value. The parent Reader's next
// operation will drain whatever is left.
func (vs *ValueSource) Close() error {
	return nil
}
