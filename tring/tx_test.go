package tring

import "testing"

// TestHeaderOnlyWriteCommit covers the smallest possible record: a commit
// with no payload still occupies one full header.
func TestHeaderOnlyWriteCommit(t *testing.T) {
	var b Buffer[float32]
	if !b.Reserve(0) {
		t.Fatal("Reserve failed")
	}
	if rt := b.TryRead(); rt.Valid() {
		t.Fatal("TryRead on empty buffer must fail")
	}

	wt := b.TryWrite(0.0)
	if !wt.Valid() {
		t.Fatal("TryWrite failed")
	}
	if wt.Size() != 0 {
		t.Fatalf("payload size = %d, want 0", wt.Size())
	}
	wt.Commit()

	if got := b.Size(); got != 8 {
		t.Fatalf("occupancy after header-only commit = %d, want 8", got)
	}
}

// TestWriteFailsWhenHeaderCannotFit fills a 16-byte ring with uint64
// timestamps (12-byte header): the first record fits, the second must be
// refused and the occupancy stays at one header.
func TestWriteFailsWhenHeaderCannotFit(t *testing.T) {
	var b Buffer[uint64]
	if !b.Reserve(16) {
		t.Fatal("Reserve failed")
	}

	wt := b.TryWrite(1)
	if !wt.Valid() {
		t.Fatal("first TryWrite must succeed")
	}
	wt.Commit()

	wt = b.TryWrite(2)
	if wt.Valid() {
		t.Fatal("second TryWrite must fail: 4 free bytes < 12-byte header")
	}
	if got := b.Size(); got != 12 {
		t.Fatalf("occupancy = %d, want 12", got)
	}
}

// TestSecondTransactionSameRoleFails pins the one-transaction-per-role
// rule for both roles, and that the slot frees after commit.
func TestSecondTransactionSameRoleFails(t *testing.T) {
	var b Buffer[float32]
	if !b.Reserve(64) {
		t.Fatal("Reserve failed")
	}

	wt := b.TryWrite(1.0)
	if !wt.Valid() {
		t.Fatal("TryWrite failed")
	}
	if wt2 := b.TryWrite(2.0); wt2.Valid() {
		t.Fatal("second concurrent TryWrite must fail")
	}
	wt.Commit()
	if wt3 := b.TryWrite(3.0); !wt3.Valid() {
		t.Fatal("TryWrite after commit must succeed")
	} else {
		wt3.Commit()
	}

	rt := b.TryRead()
	if !rt.Valid() {
		t.Fatal("TryRead failed")
	}
	if rt2 := b.TryRead(); rt2.Valid() {
		t.Fatal("second concurrent TryRead must fail")
	}
	rt.Commit()
}

// TestInvalidateDiscardsAppendedBytes covers the append-then-invalidate
// scenario: occupancy returns to its pre-transaction value and the next
// write starts at the same cursor.
func TestInvalidateDiscardsAppendedBytes(t *testing.T) {
	var b Buffer[float32]
	if !b.Reserve(32) {
		t.Fatal("Reserve failed")
	}

	wt := b.TryWrite(0.0)
	if !wt.Valid() {
		t.Fatal("TryWrite failed")
	}
	if !PushBack(&wt, uint32(42)) || !PushBack(&wt, uint32(42)) {
		t.Fatal("appends must succeed")
	}
	endBefore := b.end
	wt.Invalidate()

	if got := b.Size(); got != 0 {
		t.Fatalf("occupancy after invalidate = %d, want 0", got)
	}
	if b.end != endBefore {
		t.Fatalf("end cursor moved on invalidate: %d → %d", endBefore, b.end)
	}

	// The slot is free again and the commit publishes from the same spot.
	wt = b.TryWrite(1.0)
	if !wt.Valid() {
		t.Fatal("TryWrite after invalidate must succeed")
	}
	wt.Commit()
	if got := b.Size(); got != 8 {
		t.Fatalf("occupancy = %d, want 8", got)
	}
}

// TestCommitAfterInvalidateIsNoOp guards the deferred-commit idiom: an
// explicit Invalidate must also neuter a later (deferred) Commit.
func TestCommitAfterInvalidateIsNoOp(t *testing.T) {
	var b Buffer[float32]
	if !b.Reserve(32) {
		t.Fatal("Reserve failed")
	}

	func() {
		wt := b.TryWrite(0.0)
		defer wt.Commit()
		PushBack(&wt, uint32(7))
		wt.Invalidate()
	}()
	if got := b.Size(); got != 0 {
		t.Fatalf("occupancy = %d, want 0 after invalidated scope", got)
	}

	// Same on the read side: Invalidate fully suppresses the commit and
	// the record is served again.
	wt := b.TryWrite(3.0)
	PushBack(&wt, uint32(99))
	wt.Commit()

	func() {
		rt := b.TryRead()
		defer rt.Commit()
		rt.Invalidate()
	}()
	if got := b.Size(); got != 12 {
		t.Fatalf("occupancy = %d, want 12 after invalidated read", got)
	}
	rt := b.TryRead()
	if !rt.Valid() {
		t.Fatal("record must be redelivered after an invalidated read")
	}
	if v, ok := PopFront[uint32](&rt); !ok || v != 99 {
		t.Fatalf("redelivered payload = %d/%v, want 99/true", v, ok)
	}
	rt.Commit()
}

// TestTypedRoundTripInOrder writes a sequence of mixed-width values and
// reads them back in order through every typed pop variant.
func TestTypedRoundTripInOrder(t *testing.T) {
	var b Buffer[uint64]
	if !b.Reserve(128) {
		t.Fatal("Reserve failed")
	}

	wt := b.TryWrite(7777)
	if !wt.Valid() {
		t.Fatal("TryWrite failed")
	}
	if !PushBack(&wt, uint8(0x5A)) ||
		!PushBack(&wt, uint32(0xDEADBEEF)) ||
		!PushBack(&wt, float64(3.25)) ||
		!PushBack(&wt, int16(-12345)) {
		t.Fatal("appends must succeed")
	}
	if got := wt.Size(); got != 1+4+8+2 {
		t.Fatalf("payload size = %d, want 15", got)
	}
	wt.Commit()

	rt := b.TryRead()
	if !rt.Valid() {
		t.Fatal("TryRead failed")
	}
	if rt.Timestamp() != 7777 {
		t.Fatalf("timestamp = %d, want 7777", rt.Timestamp())
	}
	if rt.Size() != 15 {
		t.Fatalf("record payload size = %d, want 15", rt.Size())
	}

	if v, ok := PopFront[uint8](&rt); !ok || v != 0x5A {
		t.Fatalf("uint8 pop = %#x/%v", v, ok)
	}
	var u32 uint32
	if !PopFrontInto(&rt, &u32) || u32 != 0xDEADBEEF {
		t.Fatalf("uint32 pop = %#x", u32)
	}
	if v, ok := PopFront[float64](&rt); !ok || v != 3.25 {
		t.Fatalf("float64 pop = %v/%v", v, ok)
	}
	if v, ok := PopFront[int16](&rt); !ok || v != -12345 {
		t.Fatalf("int16 pop = %d/%v", v, ok)
	}
	if _, ok := PopFront[uint8](&rt); ok {
		t.Fatal("pop past the payload end must fail")
	}
	rt.Commit()

	if got := b.Size(); got != 0 {
		t.Fatalf("occupancy after drain = %d, want 0", got)
	}
}

// TestWrapAroundRecordRoundTrip drives a record across the wrap boundary
// and verifies the split-aware callback delivers every payload byte.
func TestWrapAroundRecordRoundTrip(t *testing.T) {
	var b Buffer[float32]
	if !b.Reserve(32) {
		t.Fatal("Reserve failed")
	}

	// Record 1: 12 bytes of 0xAA, consumed and dropped to move the
	// cursors to offset 20.
	wt := b.TryWrite(1.0)
	payload := make([]byte, 12)
	for i := range payload {
		payload[i] = 0xAA
	}
	if !wt.PushBackBytes(payload) {
		t.Fatal("first payload append failed")
	}
	wt.Commit()
	rt := b.TryRead()
	if !rt.Valid() {
		t.Fatal("TryRead failed")
	}
	rt.Commit() // drop unread

	// Record 2: 24 bytes total, spans the wrap.
	wt = b.TryWrite(2.0)
	if !wt.Valid() {
		t.Fatal("second TryWrite failed")
	}
	payload = make([]byte, 16)
	for i := range payload {
		payload[i] = 0xBB
	}
	if !wt.PushBackBytes(payload) {
		t.Fatal("second payload append failed")
	}
	wt.Commit()

	rt = b.TryRead()
	if !rt.Valid() {
		t.Fatal("second TryRead failed")
	}
	if rt.Timestamp() != 2.0 {
		t.Fatalf("timestamp = %v, want 2.0", rt.Timestamp())
	}
	var got []byte
	calls := 0
	if !rt.PopFrontFunc(16, func(p []byte) {
		calls++
		got = append(got, p...)
	}) {
		t.Fatal("PopFrontFunc failed")
	}
	rt.Commit()

	if calls != 1 && calls != 2 {
		t.Fatalf("callback invoked %d times, want 1 or 2", calls)
	}
	if len(got) != 16 {
		t.Fatalf("delivered %d bytes, want 16", len(got))
	}
	for i, c := range got {
		if c != 0xBB {
			t.Fatalf("payload byte %d = %#x, want 0xBB", i, c)
		}
	}
}

// TestCommitDiscardsUnreadRemainder checks that a partially drained
// record still advances the cursor past its full declared length.
func TestCommitDiscardsUnreadRemainder(t *testing.T) {
	var b Buffer[float32]
	if !b.Reserve(64) {
		t.Fatal("Reserve failed")
	}

	wt := b.TryWrite(1.0)
	PushBackN(&wt, uint32(1), uint32(2), uint32(3))
	wt.Commit()
	wt = b.TryWrite(2.0)
	PushBack(&wt, uint32(4))
	wt.Commit()

	rt := b.TryRead()
	if v, ok := PopFront[uint32](&rt); !ok || v != 1 {
		t.Fatalf("pop = %d/%v, want 1/true", v, ok)
	}
	rt.Commit() // values 2 and 3 discarded with the record

	rt = b.TryRead()
	if !rt.Valid() {
		t.Fatal("second record must be readable")
	}
	if rt.Timestamp() != 2.0 {
		t.Fatalf("timestamp = %v, want 2.0", rt.Timestamp())
	}
	if v, ok := PopFront[uint32](&rt); !ok || v != 4 {
		t.Fatalf("pop = %d/%v, want 4/true", v, ok)
	}
	rt.Commit()
	if got := b.Size(); got != 0 {
		t.Fatalf("occupancy = %d, want 0", got)
	}
}

// TestPushBackNStopsAtFirstFailure fills a small ring and checks the
// homogeneous variadic append reports a short count without invalidating
// the transaction.
func TestPushBackNStopsAtFirstFailure(t *testing.T) {
	var b Buffer[float32]
	if !b.Reserve(16) { // header 8 → 8 payload bytes at most
		t.Fatal("Reserve failed")
	}

	wt := b.TryWrite(0.0)
	if !wt.Valid() {
		t.Fatal("TryWrite failed")
	}
	if got := PushBackN(&wt, uint32(1), uint32(2), uint32(3)); got != 2 {
		t.Fatalf("PushBackN accepted %d items, want 2", got)
	}
	if !wt.Valid() {
		t.Fatal("short variadic append must not invalidate the transaction")
	}
	// A narrower append must still fit nothing: the record is full.
	if PushBack(&wt, uint8(9)) {
		t.Fatal("append into a full record must fail")
	}
	wt.Commit()

	if got := b.Size(); got != 16 {
		t.Fatalf("occupancy = %d, want 16", got)
	}
}

// TestWriteResyncsAfterConsumerDrains starts an append that exceeds the
// cached availability, drains a record on the consumer side, and checks
// the producer's re-sync against the occupancy counter picks it up.
func TestWriteResyncsAfterConsumerDrains(t *testing.T) {
	var b Buffer[float32]
	if !b.Reserve(32) {
		t.Fatal("Reserve failed")
	}

	wt := b.TryWrite(1.0)
	if !wt.PushBackBytes(make([]byte, 12)) { // record 1: 20 bytes
		t.Fatal("append failed")
	}
	wt.Commit()

	wt = b.TryWrite(2.0) // 12 free, header takes 8, 4 appendable
	if !wt.Valid() {
		t.Fatal("second TryWrite failed")
	}
	if wt.PushBackBytes(make([]byte, 8)) {
		t.Fatal("8-byte append must fail with 4 bytes available")
	}

	// Consumer drains record 1 while the write transaction is live.
	rt := b.TryRead()
	if !rt.Valid() {
		t.Fatal("TryRead failed")
	}
	rt.Commit()

	if !wt.PushBackBytes(make([]byte, 8)) {
		t.Fatal("append must succeed after re-sync against drained bytes")
	}
	wt.Commit()

	if got := b.Size(); got != 16 {
		t.Fatalf("occupancy = %d, want 16", got)
	}
}

// TestSizeAccounting tracks the occupancy counter through a mixed
// commit/drain sequence: +k per committed write, -k per committed read.
func TestSizeAccounting(t *testing.T) {
	var b Buffer[uint64]
	if !b.Reserve(256) {
		t.Fatal("Reserve failed")
	}

	sizes := []uint32{0, 5, 17, 32}
	var want uint32
	for _, n := range sizes {
		wt := b.TryWrite(uint64(n))
		if !wt.Valid() {
			t.Fatalf("TryWrite for %d-byte payload failed", n)
		}
		if n > 0 && !wt.PushBackBytes(make([]byte, n)) {
			t.Fatalf("append of %d bytes failed", n)
		}
		wt.Commit()
		want += 12 + n
		if got := b.Size(); got != want {
			t.Fatalf("occupancy = %d, want %d", got, want)
		}
	}

	for _, n := range sizes {
		rt := b.TryRead()
		if !rt.Valid() {
			t.Fatal("TryRead failed")
		}
		if rt.Size() != n {
			t.Fatalf("record payload = %d, want %d", rt.Size(), n)
		}
		rt.Commit()
		want -= 12 + n
		if got := b.Size(); got != want {
			t.Fatalf("occupancy = %d, want %d", got, want)
		}
	}
	if b.HasData() {
		t.Fatal("buffer must be empty after the drain")
	}
}

// TestBorrowedArenaRoundTrip runs a write/read cycle over caller-owned
// memory and verifies the record bytes physically land in that region.
func TestBorrowedArenaRoundTrip(t *testing.T) {
	region := make([]byte, 64)
	var b Buffer[uint32]
	if !b.Borrow(region) {
		t.Fatal("Borrow failed")
	}

	wt := b.TryWrite(0xABCD)
	if !PushBack(&wt, uint64(42)) {
		t.Fatal("append failed")
	}
	wt.Commit()

	if region[0] == 0 && region[4] == 0 {
		t.Fatal("record header must be visible in the borrowed region")
	}

	rt := b.TryRead()
	if rt.Timestamp() != 0xABCD {
		t.Fatalf("timestamp = %#x, want 0xABCD", rt.Timestamp())
	}
	if v, ok := PopFront[uint64](&rt); !ok || v != 42 {
		t.Fatalf("pop = %d/%v, want 42/true", v, ok)
	}
	rt.Commit()
}
