package sieveconfig

import (
	"math/big"

	"github.com/jannismilz/primegap/internal/bigmath"
	"github.com/jannismilz/primegap/internal/modsearch"
)

// Derived holds the configuration-dependent constants computed once before
// sieving begins (§3, "Derived constants" and "Coprime sets").
type Derived struct {
	K             *big.Int
	SieveInterval uint64
	W             uint64
	KModW         uint64

	// ValidMi lists mi in [0, MInc) with gcd(MStart+mi, D) == 1, in
	// ascending order.
	ValidMi []uint64
	// MReindex maps mi to its dense row index in ValidMi, or -1 if mi is
	// not coprime to D.
	MReindex []int32
}

// Derive computes the derived constants for cfg. cfg is assumed already
// validated.
func Derive(cfg Config) (*Derived, error) {
	k, err := bigmath.K(cfg.P, cfg.D)
	if err != nil {
		return nil, err
	}

	d := &Derived{
		K:             k,
		SieveInterval: 2*cfg.SL + 1,
		W:             cfg.WheelModulus(),
		MReindex:      make([]int32, cfg.MInc),
	}
	d.KModW = bigmath.ModUI(k, maxU64(d.W, 1))

	for mi := uint64(0); mi < cfg.MInc; mi++ {
		if modsearch.Gcd(cfg.MStart+mi, cfg.D) == 1 {
			d.MReindex[mi] = int32(len(d.ValidMi))
			d.ValidMi = append(d.ValidMi, mi)
		} else {
			d.MReindex[mi] = -1
		}
	}

	return d, nil
}

// RowOf returns the dense row index for a known-valid mi. Panics if mi is
// not coprime to D: callers (sieve Operation A/B consumers) are expected
// to have already filtered for that, per §3's invariants.
func (d *Derived) RowOf(mi uint64) int {
	row := d.MReindex[mi]
	if row < 0 {
		panic("sieveconfig: RowOf called on an mi not coprime to D")
	}
	return int(row)
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
