package sieve

import (
	"container/heap"

	"github.com/jannismilz/primegap/internal/bigmath"
	"github.com/jannismilz/primegap/internal/modsearch"
	"github.com/jannismilz/primegap/internal/primestream"
	"github.com/jannismilz/primegap/internal/sieveconfig"
)

// smallPrimeThreshold is the boundary between Method 1's two prime bands
// (§4.5). The window has width 2*SL+1, so a prime p <= 2*SL can still hit a
// row twice; only above 2*SL is a single touch per row guaranteed, which is
// what the pending-queue/Operation A path below assumes. At or below the
// threshold every row is marked by direct per-row striding instead, which
// correctly marks every multiple of p in the window, however many there are.
func smallPrimeThreshold(sl uint64) uint64 { return 2 * sl }

// pendingEntry is one large prime waiting for its next touched row, kept
// in the pending-queue side buffer of §4.5 until its row comes up.
type pendingEntry struct {
	nextMi uint64
	p, r   uint64
}

type pendingHeap []pendingEntry

func (h pendingHeap) Len() int           { return len(h) }
func (h pendingHeap) Less(i, j int) bool { return h[i].nextMi < h[j].nextMi }
func (h pendingHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *pendingHeap) Push(x any) { *h = append(*h, x.(pendingEntry)) }

func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// RunMethod1 implements §4.5: a combined sieve with no wheel reindexing,
// queue-driven for large primes. matrix has one dense row of 2*SL+1 bits
// per entry of der.ValidMi, in the same order. It returns early, with a
// nil error, if canc reports cancellation. workers bounds how many
// goroutines the small-prime pass partitions der.ValidMi across (§5);
// workers <= 1 runs that pass on the calling goroutine.
func RunMethod1(cfg sieveconfig.Config, der *sieveconfig.Derived, matrix *CompositeMatrix, canc *Canceler, rep *Reporter, workers int) error {
	threshold := smallPrimeThreshold(cfg.SL)

	stream := primestream.New(0, cfg.MaxPrime)
	var pending pendingHeap
	var small []smallPrimeEntry

	for {
		p, ok := stream.Next()
		if !ok {
			break
		}
		if rep.Tick(p) && canc.Stopped() {
			break
		}
		r := bigmath.ModUI(der.K, p)

		if p <= threshold {
			small = append(small, smallPrimeEntry{p, r})
			continue
		}

		if mi, found := modsearch.NextTouch(cfg.MStart, cfg.D, 0, cfg.MInc, cfg.SL, p, r); found {
			heap.Push(&pending, pendingEntry{nextMi: mi, p: p, r: r})
		}
	}

	markSmallPrimesMethod1(cfg, der, matrix, small, workers)
	drainPending(cfg, der, matrix, &pending)
	return nil
}

// markSmallPrimesMethod1 marks every multiple of every collected small
// prime within every row's window, partitioning rows across workers; p <=
// 2*SL guarantees at least one touch per row.
func markSmallPrimesMethod1(cfg sieveconfig.Config, der *sieveconfig.Derived, matrix *CompositeMatrix, small []smallPrimeEntry, workers int) {
	partitionRows(len(der.ValidMi), workers, func(lo, hi int) {
		for row := lo; row < hi; row++ {
			m := cfg.MStart + der.ValidMi[row]
			for _, e := range small {
				base := modsearch.Touch(m, cfg.SL, e.p, e.r)
				for x := base; x <= 2*cfg.SL; x += e.p {
					matrix.Set(row, int(x))
				}
			}
		}
	})
}

// drainPending processes every remaining large-prime touch in ascending mi
// order, marking its row and rescheduling the prime to its next touch.
func drainPending(cfg sieveconfig.Config, der *sieveconfig.Derived, matrix *CompositeMatrix, pending *pendingHeap) {
	for pending.Len() > 0 {
		e := heap.Pop(pending).(pendingEntry)
		row := der.RowOf(e.nextMi)
		m := cfg.MStart + e.nextMi
		x := modsearch.Touch(m, cfg.SL, e.p, e.r)
		matrix.Set(row, int(x))

		if next, found := modsearch.NextTouch(cfg.MStart, cfg.D, e.nextMi+1, cfg.MInc, cfg.SL, e.p, e.r); found {
			heap.Push(pending, pendingEntry{nextMi: next, p: e.p, r: e.r})
		}
	}
}
