package sieve

import (
	"container/heap"

	"github.com/jannismilz/primegap/internal/bigmath"
	"github.com/jannismilz/primegap/internal/modsearch"
	"github.com/jannismilz/primegap/internal/primestream"
	"github.com/jannismilz/primegap/internal/sieveconfig"
	"github.com/jannismilz/primegap/internal/wheel"
)

// smallBandLimit is method2's boundary for the small band (§4.6). The
// window has width 2*SL+1, so a prime p <= 2*SL can touch a row twice; the
// direct stride below handles that correctly regardless, but the medium
// band's pending-queue successor (drainLargeBand) assumes at most one touch
// per row, so this threshold also floors mediumLimit at a value that keeps
// every multi-touch prime out of the large band.
func smallBandLimit(sl uint64) uint64 { return 2 * sl }

type method2Pending struct {
	nextMi uint64
	p, r   uint64
}

type method2Heap []method2Pending

func (h method2Heap) Len() int           { return len(h) }
func (h method2Heap) Less(i, j int) bool { return h[i].nextMi < h[j].nextMi }
func (h method2Heap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *method2Heap) Push(x any) { *h = append(*h, x.(method2Pending)) }

func (h *method2Heap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// RunMethod2 implements §4.6: a three-band combined sieve over the
// coprime-wheel-compacted composite matrix of §4.4. matrix rows follow
// der.ValidMi order; row bit capacities must equal tbl.Size[residue] for
// that row's m mod tbl.W. workers bounds how many goroutines the small
// band partitions der.ValidMi across (§5); workers <= 1 runs that band on
// the calling goroutine.
func RunMethod2(cfg sieveconfig.Config, der *sieveconfig.Derived, tbl *wheel.Table, matrix *CompositeMatrix, canc *Canceler, rep *Reporter, workers int) error {
	small := smallBandLimit(cfg.SL)
	// mediumLimit bounds the medium band, which enumerates every touch of
	// a prime via Operation B in one pass; beyond it primes touch few
	// enough rows that a pending queue driven by Operation A (skipping
	// untouched rows entirely) is cheaper.
	mediumLimit := cfg.MInc
	if mediumLimit < small {
		mediumLimit = small
	}

	// The wheel build (§4.4) only bakes in primes <= 7 (the wheel modulus
	// W = gcd(D, 210) can only ever carry those) and primes <= P that are
	// factors of K rather than D (those are residue-independent, marked
	// unconditionally by baseComposite). A prime q with 7 < q <= P that
	// divides D is baked in nowhere, so the loop still has to cover the
	// full range from 0; small/medium-band dispatch below is a no-op for
	// every prime the wheel already excluded, since their dense index is
	// always 0.
	stream := primestream.New(0, cfg.MaxPrime)
	var pending method2Heap
	var smallPrimes []smallPrimeEntry

	for {
		p, ok := stream.Next()
		if !ok {
			break
		}
		if rep.Tick(p) && canc.Stopped() {
			break
		}
		r := bigmath.ModUI(der.K, p)

		switch {
		case p <= small:
			smallPrimes = append(smallPrimes, smallPrimeEntry{p, r})
		case p <= mediumLimit:
			markMediumBand(cfg, der, tbl, matrix, p, r)
		default:
			if mi, found := modsearch.NextTouch(cfg.MStart, cfg.D, 0, cfg.MInc, cfg.SL, p, r); found {
				heap.Push(&pending, method2Pending{nextMi: mi, p: p, r: r})
			}
		}
	}

	markSmallBand(cfg, der, tbl, matrix, smallPrimes, workers)
	drainLargeBand(cfg, der, tbl, matrix, &pending)
	return nil
}

// markSmallBand strides every multiple of every collected small prime
// across every row's window, mapping each physical offset through that
// row's residue-specific dense index (an index of 0 means the offset is
// already known composite), partitioning rows across workers.
func markSmallBand(cfg sieveconfig.Config, der *sieveconfig.Derived, tbl *wheel.Table, matrix *CompositeMatrix, small []smallPrimeEntry, workers int) {
	partitionRows(len(der.ValidMi), workers, func(lo, hi int) {
		for row := lo; row < hi; row++ {
			m := cfg.MStart + der.ValidMi[row]
			idx := tbl.ResidueIndex(m)
			for _, e := range small {
				base := modsearch.Touch(m, cfg.SL, e.p, e.r)
				for x := base; x <= 2*cfg.SL; x += e.p {
					if d := idx[x]; d != 0 {
						matrix.Set(row, int(d))
					}
				}
			}
		}
	})
}

// markMediumBand enumerates every row p touches via Operation B in a
// single pass, applying the D-coprimality filter itself since Operation B
// does not.
func markMediumBand(cfg sieveconfig.Config, der *sieveconfig.Derived, tbl *wheel.Table, matrix *CompositeMatrix, p, r uint64) {
	modsearch.AllTouches(cfg.MStart, cfg.MInc, cfg.SL, p, r, func(mi, first uint64) {
		m := cfg.MStart + mi
		if modsearch.Gcd(m, cfg.D) != 1 {
			return
		}
		row := der.RowOf(mi)
		if d := tbl.ResidueIndex(m)[first]; d != 0 {
			matrix.Set(row, int(d))
		}
	})
}

// drainLargeBand processes every remaining large-prime touch in ascending
// mi order, marking its row and rescheduling the prime to its next touch.
func drainLargeBand(cfg sieveconfig.Config, der *sieveconfig.Derived, tbl *wheel.Table, matrix *CompositeMatrix, pending *method2Heap) {
	for pending.Len() > 0 {
		e := heap.Pop(pending).(method2Pending)
		m := cfg.MStart + e.nextMi
		row := der.RowOf(e.nextMi)
		x := modsearch.Touch(m, cfg.SL, e.p, e.r)
		if d := tbl.ResidueIndex(m)[x]; d != 0 {
			matrix.Set(row, int(d))
		}

		if next, found := modsearch.NextTouch(cfg.MStart, cfg.D, e.nextMi+1, cfg.MInc, cfg.SL, e.p, e.r); found {
			heap.Push(pending, method2Pending{nextMi: next, p: e.p, r: e.r})
		}
	}
}
