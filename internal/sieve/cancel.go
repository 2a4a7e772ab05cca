package sieve

import (
	"os"
	"os/signal"
	"sync/atomic"
)

// Canceler is the sole process-wide state of the run (§9): an atomic flag
// set by a signal handler installed at sieve start and torn down at sieve
// end. A second signal forces immediate exit.
type Canceler struct {
	stopped atomic.Bool
	forced  atomic.Bool
	ch      chan os.Signal
	done    chan struct{}
}

// NewCanceler installs a SIGINT handler and returns the Canceler watching
// it. Call Stop when the sieve run ends to tear the handler down.
func NewCanceler() *Canceler {
	c := &Canceler{
		ch:   make(chan os.Signal, 2),
		done: make(chan struct{}),
	}
	signal.Notify(c.ch, os.Interrupt)
	go func() {
		for {
			select {
			case <-c.ch:
				if c.stopped.Swap(true) {
					c.forced.Store(true)
					os.Exit(2)
				}
			case <-c.done:
				return
			}
		}
	}()
	return c
}

// Stopped reports whether cancellation has been requested.
func (c *Canceler) Stopped() bool { return c.stopped.Load() }

// Stop tears down the signal handler.
func (c *Canceler) Stop() {
	signal.Stop(c.ch)
	close(c.done)
}

// TruncateMaxPrime rounds maxPrime down to the nearest round-million
// boundary, per the cancellation semantics of §5. Values below one million
// are returned unchanged.
func TruncateMaxPrime(maxPrime uint64) uint64 {
	const million = 1_000_000
	if maxPrime < million {
		return maxPrime
	}
	return (maxPrime / million) * million
}
