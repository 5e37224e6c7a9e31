// write.go
//
// Producer-side transaction.  TryWrite reserves header space at the `end`
// cursor and stamps the timestamp immediately; the 4-byte length prefix is
// deferred until Commit, and nothing becomes visible to the consumer until
// the release increment of the occupancy counter.  Aborting via Invalidate
// leaves the counter untouched, so partially appended bytes simply get
// overwritten by the next transaction.

package tring

import "unsafe"

// WriteTx is a scoped producer handle.  Obtain one with TryWrite, append
// with PushBack/PushBackN/PushBackBytes, then Commit — typically through
//
//	wt := buf.TryWrite(ts)
//	defer wt.Commit()
//
// Commit is idempotent, so an explicit early Commit plus the deferred one
// is harmless.  A WriteTx must not be copied while live: committing both
// copies would publish the record twice.
type WriteTx[TS Value] struct {
	buf       *Buffer[TS]
	header    header[TS]
	index     uint32 // arena cursor for the next append
	available uint32 // appendable bytes, cached; resynced on demand
}

// TryWrite opens a write transaction stamped with ts.  The handle is
// invalid if the buffer has no arena, another write transaction is live,
// or fewer than header-size bytes are free.  Producer-side only.
func (b *Buffer[TS]) TryWrite(ts TS) WriteTx[TS] {
	wt := WriteTx[TS]{buf: b, index: invalidIndex}
	if !b.valid || b.writing {
		return wt
	}

	hs := headerSize[TS]()
	free := b.capacity - loadAcquireUint32(&b.size)
	if free < hs {
		return wt
	}

	// Stamp the timestamp now; the length slot is filled on Commit.
	llstore(b, b.indexOf(b.end+lenSize), ts)

	wt.header.size = hs
	wt.header.timestamp = ts
	wt.index = b.indexOf(b.end + hs)
	wt.available = free - hs
	b.writing = true
	return wt
}

// Valid reports whether the transaction can accept appends and commit.
func (w *WriteTx[TS]) Valid() bool {
	return w.buf != nil && w.index != invalidIndex
}

// Size returns the payload bytes appended so far.  Undefined on an
// invalid handle.
func (w *WriteTx[TS]) Size() uint32 {
	return w.header.size - headerSize[TS]()
}

// Timestamp returns the stamp given to TryWrite.  Undefined on an invalid
// handle.
func (w *WriteTx[TS]) Timestamp() TS {
	return w.header.timestamp
}

// canWrite checks room for n more bytes.  `available` is cached from
// transaction creation; before failing, resync it once against the
// occupancy counter, which may have shrunk if the consumer drained records
// in the meantime.
func (w *WriteTx[TS]) canWrite(n uint32) bool {
	if !w.Valid() {
		return false
	}
	if w.available < n {
		w.available = w.buf.capacity - loadAcquireUint32(&w.buf.size) - w.header.size
		if w.available < n {
			return false
		}
	}
	return true
}

// PushBackBytes appends raw bytes.  All or nothing: on false the record is
// unchanged and the transaction stays valid for smaller appends.
func (w *WriteTx[TS]) PushBackBytes(p []byte) bool {
	n := uint32(len(p))
	if !w.canWrite(n) {
		return false
	}
	w.buf.llwrite(w.index, p)
	w.advance(n)
	return true
}

// PushBack appends one fixed-width value.  Same failure contract as
// PushBackBytes.  (A free function because Go methods cannot introduce
// type parameters.)
func PushBack[T Value, TS Value](w *WriteTx[TS], v T) bool {
	n := uint32(unsafe.Sizeof(v))
	if !w.canWrite(n) {
		return false
	}
	llstore(w.buf, w.index, v)
	w.advance(n)
	return true
}

// PushBackN appends vals in order and returns how many were accepted,
// stopping at the first failure.  A short count does not invalidate the
// transaction.
func PushBackN[T Value, TS Value](w *WriteTx[TS], vals ...T) int {
	for i, v := range vals {
		if !PushBack(w, v) {
			return i
		}
	}
	return len(vals)
}

//go:nosplit
func (w *WriteTx[TS]) advance(n uint32) {
	w.index = w.buf.indexOf(w.index + n)
	w.available -= n
	w.header.size += n
}

// Commit publishes the record: the final length lands in the deferred
// prefix slot, `end` advances past the record, and the release increment
// of the occupancy counter makes every byte written above visible to the
// consumer.  No-op on an invalid handle.
func (w *WriteTx[TS]) Commit() {
	if !w.Valid() {
		return
	}
	b := w.buf
	llstore(b, b.end, w.header.size)
	b.end = b.indexOf(b.end + w.header.size)
	addReleaseUint32(&b.size, w.header.size)
	w.Invalidate()
}

// Invalidate abandons the transaction: the occupancy counter and `end`
// stay put, the write slot frees up, and the bytes already staged become
// garbage for the next transaction to overwrite.
func (w *WriteTx[TS]) Invalidate() {
	if w.index == invalidIndex {
		return
	}
	w.buf.writing = false
	w.index = invalidIndex
}
