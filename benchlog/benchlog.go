// benchlog.go — SQLite recorder for harness runs.
//
// Every stream-equivalence run can be appended to a local SQLite file so
// throughput regressions show up across machines and revisions.  Cold
// path only; the recorder is touched once per process, after the
// producer/consumer threads have joined.

package benchlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one completed harness execution.
type Run struct {
	StartedAt    time.Time
	Capacity     uint32
	DataBytes    uint64
	Digest       string // "crc32c" or "blake2b"
	Checksum     string // hex digest of the reconstructed stream
	ElapsedNS    int64
	MiBPerSec    float64
	FailedWrites uint64
	FailedReads  uint64
}

// Recorder appends runs to a SQLite database.
type Recorder struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at    INTEGER NOT NULL,
	capacity      INTEGER NOT NULL,
	data_bytes    INTEGER NOT NULL,
	digest        TEXT    NOT NULL,
	checksum      TEXT    NOT NULL,
	elapsed_ns    INTEGER NOT NULL,
	mib_per_sec   REAL    NOT NULL,
	failed_writes INTEGER NOT NULL,
	failed_reads  INTEGER NOT NULL
);`

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("benchlog: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("benchlog: create schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Record appends one run.
func (r *Recorder) Record(run Run) error {
	_, err := r.db.Exec(
		`INSERT INTO runs (started_at, capacity, data_bytes, digest, checksum,
		                   elapsed_ns, mib_per_sec, failed_writes, failed_reads)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UnixNano(), run.Capacity, run.DataBytes, run.Digest,
		run.Checksum, run.ElapsedNS, run.MiBPerSec,
		int64(run.FailedWrites), int64(run.FailedReads),
	)
	if err != nil {
		return fmt.Errorf("benchlog: insert run: %w", err)
	}
	return nil
}

// Last returns up to n runs, newest first.
func (r *Recorder) Last(n int) ([]Run, error) {
	rows, err := r.db.Query(
		`SELECT started_at, capacity, data_bytes, digest, checksum,
		        elapsed_ns, mib_per_sec, failed_writes, failed_reads
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("benchlog: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, failedWrites, failedReads int64
		if err := rows.Scan(&startedAt, &run.Capacity, &run.DataBytes,
			&run.Digest, &run.Checksum, &run.ElapsedNS, &run.MiBPerSec,
			&failedWrites, &failedReads); err != nil {
			return nil, fmt.Errorf("benchlog: scan run: %w", err)
		}
		run.StartedAt = time.Unix(0, startedAt)
		run.FailedWrites = uint64(failedWrites)
		run.FailedReads = uint64(failedReads)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}
