// pinned_consumer.go
//
// Low-latency consumer loop for the transactional ring.
//
//   • Dedicated OS thread pinned to `core`.
//   • Stays in **hot-spin** (tight loop, no cpuRelax) while
//       – a record has arrived within hotTimeout, OR
//       – the producer keeps the hot flag == 1.
//   • After the grace window *and* once hot == 0 it drops to the
//     **cold-spin** path: cpuRelax every iteration.
//   • Exits only when *stop == 1 and closes `done` exactly once.
//
// Rationale: keep nanosecond latency during bursts yet avoid burning a
// full core when the feed is quiet.
//
// hot flag contract:
//     Producer             Consumer
//     --------             ------------------------------
//     Store 1  ─────────▶  read (wake / stay hot-spin)
//     ...write records…
//     (optionally) Store 0  ◀─ consumer never writes

package tring

import (
	"runtime"
	"sync/atomic"
	"time"
)

// hotTimeout is the hot-spin grace window after the last delivery.
const hotTimeout = 15 * time.Second

// PinnedConsumer drains b until *stop is set, delivering each committed
// record's payload to fn.  Payload straddling the wrap boundary arrives as
// two calls with the same timestamp; the slices alias arena memory and
// must not be retained.  This goroutine is the buffer's single consumer —
// no other thread may call TryRead while it runs.
func PinnedConsumer[TS Value](
	core int,
	b *Buffer[TS],
	stop, hot *uint32,
	fn func(ts TS, chunk []byte),
	done chan<- struct{},
) {
	go func() {
		// ── thread & affinity ─────────────────────────────
		runtime.LockOSThread()
		setAffinity(core) // stub on non-Linux
		defer func() {
			runtime.UnlockOSThread()
			close(done)
		}()

		last := time.Now() // last time a record was delivered

		// ── main loop ─────────────────────────────────────
		for {
			// fast path: a record is pending → drain & mark activity
			if rt := b.TryRead(); rt.Valid() {
				ts := rt.Timestamp()
				if n := rt.available; n > 0 {
					rt.PopFrontFunc(n, func(p []byte) { fn(ts, p) })
				} else {
					fn(ts, nil) // header-only record
				}
				rt.Commit()
				last = time.Now()
				continue
			}

			// stop request?
			if atomic.LoadUint32(stop) != 0 {
				return
			}

			// ---------- choose spin mode ------------------
			hotSpin := atomic.LoadUint32(hot) != 0 ||
				time.Since(last) <= hotTimeout

			if hotSpin {
				// tight loop: no cpuRelax
				continue
			}

			// cold-spin path: power-friendlier
			cpuRelax()
		}
	}()
}
