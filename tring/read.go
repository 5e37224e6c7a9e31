// read.go
//
// Consumer-side transaction.  TryRead snapshots the next record's header
// after an acquire load of the occupancy counter proved a committed record
// exists, so every byte it goes on to read is already visible.  Commit
// reclaims the whole declared record — drained or not — and returns the
// bytes to the producer with a release decrement.

package tring

import "unsafe"

// ReadTx is a scoped consumer handle.  Obtain one with TryRead, drain with
// PopFront/PopFrontInto/PopFrontFunc, then Commit — typically through
//
//	rt := buf.TryRead()
//	defer rt.Commit()
//
// A record need not be fully drained; Commit discards the rest.  Commit is
// idempotent.  A ReadTx must not be copied while live.
type ReadTx[TS Value] struct {
	buf       *Buffer[TS]
	header    header[TS]
	index     uint32 // arena cursor for the next pop
	available uint32 // payload bytes still readable
}

// TryRead opens a read transaction on the oldest committed record.  The
// handle is invalid if the buffer has no arena, another read transaction
// is live, or the ring is empty.  Consumer-side only.
func (b *Buffer[TS]) TryRead() ReadTx[TS] {
	rt := ReadTx[TS]{buf: b, index: invalidIndex}
	if !b.valid || b.reading || loadAcquireUint32(&b.size) == 0 {
		return rt
	}

	// Records are committed whole, so a non-zero occupancy guarantees a
	// complete header at `start`.
	rt.header.size = llload[uint32](b, b.start)
	rt.header.timestamp = llload[TS](b, b.indexOf(b.start+lenSize))

	hs := headerSize[TS]()
	rt.index = b.indexOf(b.start + hs)
	rt.available = rt.header.size - hs
	b.reading = true
	return rt
}

// Valid reports whether the transaction has a record to drain.
func (r *ReadTx[TS]) Valid() bool {
	return r.buf != nil && r.index != invalidIndex
}

// Size returns the record's total payload length.  It does not shrink as
// payload is popped.  Undefined on an invalid handle.
func (r *ReadTx[TS]) Size() uint32 {
	return r.header.size - headerSize[TS]()
}

// Timestamp returns the record's stamp.  Undefined on an invalid handle.
func (r *ReadTx[TS]) Timestamp() TS {
	return r.header.timestamp
}

// canRead checks that n payload bytes remain.  No partial reads: a short
// remainder fails the whole pop and leaves the cursor where it was.
//
//go:nosplit
func (r *ReadTx[TS]) canRead(n uint32) bool {
	return r.Valid() && r.available >= n
}

// PopFront reads one fixed-width value, returning the zero value and
// false when fewer than sizeof(T) payload bytes remain.  (A free function
// because Go methods cannot introduce type parameters.)
func PopFront[T Value, TS Value](r *ReadTx[TS]) (T, bool) {
	var v T
	n := uint32(unsafe.Sizeof(v))
	if !r.canRead(n) {
		return v, false
	}
	v = llload[T](r.buf, r.index)
	r.index = r.buf.indexOf(r.index + n)
	r.available -= n
	return v, true
}

// PopFrontInto is PopFront into a caller-provided slot.
func PopFrontInto[T Value, TS Value](r *ReadTx[TS], dst *T) bool {
	n := uint32(unsafe.Sizeof(*dst))
	if !r.canRead(n) {
		return false
	}
	*dst = llload[T](r.buf, r.index)
	r.index = r.buf.indexOf(r.index + n)
	r.available -= n
	return true
}

// PopFrontFunc hands n payload bytes to fn without copying them out of the
// arena: once when the run is contiguous, twice when it straddles the wrap
// boundary.  The slices alias arena memory and are valid only until fn
// returns — copy them to keep them.  A nil fn skips the bytes.
func (r *ReadTx[TS]) PopFrontFunc(n uint32, fn func(p []byte)) bool {
	if !r.canRead(n) {
		return false
	}
	if fn != nil {
		b := r.buf
		if r.index+n <= b.capacity {
			fn(b.mem[r.index : r.index+n])
		} else {
			first := b.capacity - r.index
			fn(b.mem[r.index:b.capacity])
			fn(b.mem[:n-first])
		}
	}
	r.index = r.buf.indexOf(r.index + n)
	r.available -= n
	return true
}

// Commit reclaims the record: `start` advances past the declared record
// length regardless of how much was drained, and the release decrement of
// the occupancy counter lets the producer reuse the bytes.  No-op on an
// invalid handle.
func (r *ReadTx[TS]) Commit() {
	if !r.Valid() {
		return
	}
	b := r.buf
	b.start = b.indexOf(b.start + r.header.size)
	subReleaseUint32(&b.size, r.header.size)
	b.reading = false
	r.index = invalidIndex
}

// Invalidate abandons the transaction without reclaiming the record: the
// cursor and occupancy counter stay put and the same record is served to
// the next TryRead.  Fully suppresses the commit, symmetric with the write
// side.
func (r *ReadTx[TS]) Invalidate() {
	if r.index == invalidIndex {
		return
	}
	r.buf.reading = false
	r.index = invalidIndex
}
