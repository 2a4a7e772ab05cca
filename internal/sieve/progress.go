package sieve

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// IntervalStats accumulates per-interval counters (§9, "Per-interval
// statistics object"). It is reset at each print point and never shared
// across goroutines.
type IntervalStats struct {
	PrimesProcessed uint64
	LastPrime       uint64
	started         time.Time
}

// Reset clears the accumulator and starts a fresh interval clock.
func (s *IntervalStats) Reset() {
	s.PrimesProcessed = 0
	s.started = time.Now()
}

// Reporter logs interval throughput at a geometrically-spaced checkpoint
// cadence, mirroring the original's method2_increment_print.
type Reporter struct {
	logger   log.Logger
	verbose  int
	interval IntervalStats
	nextAt   uint64
}

// NewReporter returns a Reporter logging through logger at the given
// verbosity tier (-1 quiet, 0 normal, 1/2 more detail).
func NewReporter(logger log.Logger, verbose int) *Reporter {
	r := &Reporter{logger: logger, verbose: verbose, nextAt: 1 << 20}
	r.interval.Reset()
	return r
}

// Tick records one more prime processed and, at a checkpoint, logs
// throughput and resets the interval accumulator. It returns true exactly
// at checkpoints, so callers can use it to service cancellation.
func (r *Reporter) Tick(p uint64) bool {
	r.interval.PrimesProcessed++
	r.interval.LastPrime = p
	if p < r.nextAt {
		return false
	}
	r.report()
	r.nextAt = p + r.nextAt
	r.interval.Reset()
	return true
}

func (r *Reporter) report() {
	elapsed := time.Since(r.interval.started)
	rate := float64(r.interval.PrimesProcessed) / elapsed.Seconds()
	lvl := level.Debug
	if r.verbose >= 0 {
		lvl = level.Info
	}
	lvl(r.logger).Log(
		"msg", "sieve progress",
		"last_prime", r.interval.LastPrime,
		"primes_this_interval", r.interval.PrimesProcessed,
		"primes_per_sec", rate,
	)
}
