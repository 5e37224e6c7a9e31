// main.go — stream-equivalence demo harness.
//
// One producer goroutine ships a pseudorandom byte stream through the
// transactional ring in random-sized chunks; one consumer goroutine
// reconstructs it through the split-aware pop and both sides digest what
// they saw.  Matching digests prove the SPSC hand-off delivered the
// stream byte-for-byte.  Chunk framing inside each record:
//
//	uint32 length | length payload bytes
//
// with length 0xFFffFFff closing the stream.

package main

import (
	"errors"
	"hash"
	"hash/crc32"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"txring/benchlog"
	"txring/debug"
	"txring/tring"

	"github.com/spf13/pflag"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/blake2b"
)

// endOfStream closes the chunk stream.
const endOfStream = 0xFFffFFff

// stats is the machine-readable run report printed to stdout.
type stats struct {
	Capacity     uint32  `json:"capacity"`
	DataBytes    uint64  `json:"data_bytes"`
	Digest       string  `json:"digest"`
	Reference    string  `json:"reference"`
	Checksum     string  `json:"checksum"`
	Match        bool    `json:"match"`
	ElapsedNS    int64   `json:"elapsed_ns"`
	MiBPerSec    float64 `json:"mib_per_sec"`
	FailedWrites uint64  `json:"failed_writes"`
	FailedReads  uint64  `json:"failed_reads"`
}

///////////////////////////////////////////////////////////////////////////////
// Digest selection
///////////////////////////////////////////////////////////////////////////////

// newDigest returns the configured stream digest.  CRC32C uses the
// hardware-accelerated stdlib implementation; blake2b is the
// cryptographic alternative.
func newDigest(kind string) hash.Hash {
	if kind == "blake2b" {
		h, _ := blake2b.New256(nil) // nil key never fails
		return h
	}
	return crc32.New(crc32.MakeTable(crc32.Castagnoli))
}

///////////////////////////////////////////////////////////////////////////////
// Sample generation
///////////////////////////////////////////////////////////////////////////////

// generateSample fills n pseudorandom bytes, one deterministic shard per
// CPU so large samples build quickly.
func generateSample(n int, seed int64) []byte {
	data := make([]byte, n)
	shards := runtime.NumCPU()
	step := (n + shards - 1) / shards

	var wg sync.WaitGroup
	for i := 0; i < shards; i++ {
		lo := i * step
		if lo >= n {
			break
		}
		hi := lo + step
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(shard []byte, shardSeed int64) {
			defer wg.Done()
			rand.New(rand.NewSource(shardSeed)).Read(shard)
		}(data[lo:hi], seed+int64(i))
	}
	wg.Wait()
	return data
}

///////////////////////////////////////////////////////////////////////////////
// Producer / consumer
///////////////////////////////////////////////////////////////////////////////

// producer ships data in random-sized chunks, retrying with a fresh size
// whenever the ring has no room, then appends the end-of-stream sentinel.
func producer(b *tring.Buffer[uint64], data []byte, seed int64, failed *uint64) {
	rng := rand.New(rand.NewSource(seed))
	maxChunk := int(b.Capacity()) - 1
	pc := 0
	for pc < len(data) {
		chunk := rng.Intn(maxChunk) + 1
		if rest := len(data) - pc; chunk > rest {
			chunk = rest
		}
		ok := false
		if wt := b.TryWrite(uint64(time.Now().UnixNano())); wt.Valid() {
			if tring.PushBack(&wt, uint32(chunk)) && wt.PushBackBytes(data[pc:pc+chunk]) {
				pc += chunk
				ok = true
				wt.Commit()
			} else {
				wt.Invalidate()
			}
		}
		if !ok {
			atomic.AddUint64(failed, 1)
		}
	}

	for {
		wt := b.TryWrite(uint64(time.Now().UnixNano()))
		if wt.Valid() && tring.PushBack(&wt, uint32(endOfStream)) {
			wt.Commit()
			return
		}
		wt.Invalidate()
	}
}

// consumer drains chunks into the digest until the sentinel arrives.
func consumer(b *tring.Buffer[uint64], h hash.Hash, failed *uint64, done chan<- struct{}) {
	defer close(done)
	for {
		rt := b.TryRead()
		if !rt.Valid() {
			atomic.AddUint64(failed, 1)
			continue
		}
		n, ok := tring.PopFront[uint32](&rt)
		if !ok {
			debug.DropError("CONSUMER", errors.New("record without a chunk length"))
			rt.Commit()
			return
		}
		if n == endOfStream {
			rt.Commit()
			return
		}
		if !rt.PopFrontFunc(n, func(p []byte) { h.Write(p) }) {
			debug.DropError("CONSUMER", errors.New("record shorter than its declared chunk"))
			rt.Commit()
			return
		}
		rt.Commit()
	}
}

///////////////////////////////////////////////////////////////////////////////
// Orchestration
///////////////////////////////////////////////////////////////////////////////

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		debug.DropError("CONFIG", err)
		os.Exit(2)
	}

	// Phase 1: build the reference stream and its digest.
	debug.DropMessage("INIT", "generating "+utoa(uint64(cfg.DataMiB))+" MiB sample")
	data := generateSample(int(cfg.DataMiB)<<20, cfg.Seed)

	ref := newDigest(cfg.Digest)
	ref.Write(data)
	want := hexBytes(ref.Sum(nil))
	debug.DropMessage("DIGEST", cfg.Digest+" reference "+want)

	// Phase 2: set up the ring.
	var buf tring.Buffer[uint64]
	if !buf.Reserve(cfg.Capacity) {
		debug.DropError("INIT", errors.New("ring reservation failed"))
		os.Exit(1)
	}
	debug.DropMessage("BUFFER", utoa(uint64(buf.Capacity()))+" bytes capacity")

	// Phase 3: run the two roles and time the transfer.
	var failedWrites, failedReads uint64
	sink := newDigest(cfg.Digest)
	done := make(chan struct{})
	startedAt := time.Now()

	go consumer(&buf, sink, &failedReads, done)
	producer(&buf, data, cfg.Seed+1000, &failedWrites)
	<-done
	elapsed := time.Since(startedAt)

	got := hexBytes(sink.Sum(nil))
	mibPerSec := float64(len(data)) / (1 << 20) / elapsed.Seconds()

	st := stats{
		Capacity:     buf.Capacity(),
		DataBytes:    uint64(len(data)),
		Digest:       cfg.Digest,
		Reference:    want,
		Checksum:     got,
		Match:        got == want,
		ElapsedNS:    elapsed.Nanoseconds(),
		MiBPerSec:    mibPerSec,
		FailedWrites: atomic.LoadUint64(&failedWrites),
		FailedReads:  atomic.LoadUint64(&failedReads),
	}

	if st.Match {
		debug.DropMessage("RESULT", "PASSED ("+cfg.Digest+" "+got+")")
	} else {
		debug.DropMessage("RESULT", "ERROR ("+cfg.Digest+" "+got+" != "+want+")")
	}
	debug.DropMessage("STATS", "transfer "+ftoa2(mibPerSec)+" MiB/sec, "+
		utoa(st.FailedWrites)+" failed writes, "+utoa(st.FailedReads)+" failed reads")

	if out, err := sonnet.Marshal(st); err == nil {
		os.Stdout.Write(append(out, '\n'))
	}

	// Phase 4: optional stats sink.
	if cfg.DB != "" {
		rec, err := benchlog.Open(cfg.DB)
		if err != nil {
			debug.DropError("BENCHLOG", err)
			os.Exit(1)
		}
		defer rec.Close()
		err = rec.Record(benchlog.Run{
			StartedAt:    startedAt,
			Capacity:     st.Capacity,
			DataBytes:    st.DataBytes,
			Digest:       st.Digest,
			Checksum:     st.Checksum,
			ElapsedNS:    st.ElapsedNS,
			MiBPerSec:    st.MiBPerSec,
			FailedWrites: st.FailedWrites,
			FailedReads:  st.FailedReads,
		})
		if err != nil {
			debug.DropError("BENCHLOG", err)
			os.Exit(1)
		}
	}

	if !st.Match {
		os.Exit(1)
	}
}
