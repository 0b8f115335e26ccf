package stats

import "time"

// Reader is the read-only view presenters use. Writing stays with the
// engine and its workers.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
	RollingFilesPerSec(seconds int) float64
	SparklineData(n int) []float64
	ETA() time.Duration
	Elapsed() time.Duration
}

// ReadTicker is a Reader that also advances the throughput ring. The
// presenter owns the clock: exactly one goroutine calls Tick.
type ReadTicker interface {
	Reader
	Tick()
}

var (
	_ Reader     = (*Collector)(nil)
	_ ReadTicker = (*Collector)(nil)
)
