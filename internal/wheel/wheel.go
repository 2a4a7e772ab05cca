// Package wheel builds the coprime-wheel reindexing tables of §4.4: it
// maps the logical offset axis x ∈ [0, 2*SL] down to a dense per-residue
// index, pre-excluding offsets that share a small factor with K or with D.
package wheel

import "github.com/jannismilz/primegap/internal/primestream"

// Table is the build-time output of the reindexer: a dense index array per
// m-mod-W residue (or a single entry under key 0 when the wheel is
// disabled, W == 1).
type Table struct {
	SL uint64
	W  uint64

	// Index maps residue -> per-offset dense index (0 means "known
	// composite", i.e. excluded). len(Index[w]) == 2*SL+1 for every w.
	Index map[uint64][]uint32
	// Size maps residue -> n_w, the count of coprime offsets for that
	// residue (the highest assigned dense index).
	Size map[uint64]int
}

// Build constructs the reindexing tables for a sieve of half-length sl
// against primorial bound primeP and divisor d, with wheel modulus w
// (1 disables the wheel) and kModW = K mod w.
func Build(sl, primeP, d, w, kModW uint64) *Table {
	t := &Table{
		SL:    sl,
		W:     w,
		Index: make(map[uint64][]uint32),
		Size:  make(map[uint64]int),
	}

	base := baseComposite(sl, primeP, d)
	wheelPrimes := smallFactors(w)

	residues := []uint64{0}
	if w > 1 {
		residues = coprimeResidues(w)
	}

	for _, res := range residues {
		comp := make([]bool, 2*sl+1)
		copy(comp, base)
		if w > 1 {
			refineForResidue(comp, sl, res, kModW, wheelPrimes)
		}
		idx := densify(comp, sl)
		n := 0
		for _, v := range idx {
			if int(v) > n {
				n = int(v)
			}
		}
		t.Index[res] = idx
		t.Size[res] = n
	}

	return t
}

// baseComposite implements build step 1: mark x composite for every prime
// q <= P with q not dividing D (those are exactly K's prime factors, so
// every candidate at that offset is divisible by q regardless of m).
func baseComposite(sl, primeP, d uint64) []bool {
	comp := make([]bool, 2*sl+1)
	comp[sl] = true // center is always composite

	stream := primestream.New(0, primeP)
	for {
		q, ok := stream.Next()
		if !ok {
			break
		}
		if d%q == 0 {
			continue
		}
		start := sl % q
		for x := start; x <= 2*sl; x += q {
			comp[x] = true
		}
	}
	return comp
}

// refineForResidue implements build step 3: for m ≡ res (mod w), mark
// additional offsets that share a factor with a wheel prime dividing D.
func refineForResidue(comp []bool, sl, res, kModW uint64, wheelPrimes []uint64) {
	for _, q := range wheelPrimes {
		mModQ := res % q
		kModQ := kModW % q
		base := (mModQ * kModQ) % q
		target := ((sl % q) + q - base%q) % q
		for x := target; x <= 2*sl; x += q {
			comp[x] = true
		}
	}
}

// densify assigns dense indices 1..n to the offsets not marked composite.
func densify(comp []bool, sl uint64) []uint32 {
	idx := make([]uint32, 2*sl+1)
	n := uint32(0)
	for x := uint64(0); x <= 2*sl; x++ {
		if comp[x] {
			continue
		}
		n++
		idx[x] = n
	}
	return idx
}

// ResidueIndex returns the dense offset index for m's residue class,
// falling back to the single wheel-disabled table (key 0) when W <= 1.
func (t *Table) ResidueIndex(m uint64) []uint32 {
	if t.W <= 1 {
		return t.Index[0]
	}
	return t.Index[m%t.W]
}

// SizeFor returns n_w, the row bit capacity for m's residue class.
func (t *Table) SizeFor(m uint64) int {
	if t.W <= 1 {
		return t.Size[0]
	}
	return t.Size[m%t.W]
}

// smallFactors returns the prime factors of w, which by construction
// (w = gcd(D, 2*3*5*7)) are a subset of {2, 3, 5, 7}.
func smallFactors(w uint64) []uint64 {
	var out []uint64
	for _, q := range []uint64{2, 3, 5, 7} {
		if w%q == 0 {
			out = append(out, q)
		}
	}
	return out
}

// coprimeResidues returns every residue in [0, w) coprime to w.
func coprimeResidues(w uint64) []uint64 {
	var out []uint64
	for r := uint64(0); r < w; r++ {
		if gcd(r, w) == 1 {
			out = append(out, r)
		}
	}
	return out
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
