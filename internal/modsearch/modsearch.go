// Package modsearch implements the modular-inverse search of §4.3: for a
// large prime p and base remainder r = K mod p, locate every m in
// [M_start, M_start+M_inc) whose candidate falls inside the sieve window.
//
// Every touch reduces to the same congruence. The candidate for m at
// offset x (x = i+SL, i in [-SL,SL]) is divisible by p exactly when
//
//	x ≡ SL - r*m (mod p)
//
// (see Touch). As a function of mi = m - M_start this is itself affine mod
// p: Touch(M_start+mi,...) ≡ Touch(M_start,...) - r*mi (mod p). Finding
// the smallest mi whose value falls at or below the window bound is
// therefore "smallest x with (a*x+b) mod p <= L" for constants a, b, L —
// solved without walking the window by counting how many x in [0,n) hit
// the window (countLE, built from the Euclidean floor-sum identity) and
// binary-searching that count for its first increment (firstHit).
package modsearch

// NextTouch implements Operation A: the smallest mi in [fromMi, mInc) with
// gcd(mStart+mi, d) == 1 AND Touch(mStart+mi, sl, p, r) <= 2*sl. Returns
// ok=false if no such mi exists in range.
func NextTouch(mStart, d, fromMi, mInc, sl, p, r uint64) (mi uint64, ok bool) {
	window := windowBound(sl, p)
	a := r % p

	if a == 0 {
		first0 := sl % p
		if first0 > window {
			return mInc, false
		}
		for cand := fromMi; cand < mInc; cand++ {
			if Gcd(mStart+cand, d) == 1 {
				return cand, true
			}
		}
		return mInc, false
	}

	coeff := p - a
	base := Touch(mStart, sl, p, r)

	for cur := fromMi; cur < mInc; {
		cand, found := firstHit(coeff, base, p, window, cur, mInc)
		if !found {
			return mInc, false
		}
		if Gcd(mStart+cand, d) == 1 {
			return cand, true
		}
		cur = cand + 1
	}
	return mInc, false
}

// AllTouches implements Operation B: invokes cb(mi, first) for every mi in
// [0, mInc) with Touch(mStart+mi, sl, p, r) <= 2*sl, in increasing mi
// order, where first is that touch offset. Unlike NextTouch, it applies no
// coprimality filter — callers needing one (Method 2's medium band) apply
// it themselves against whatever modulus they care about.
func AllTouches(mStart, mInc, sl, p, r uint64, cb func(mi, first uint64)) {
	window := windowBound(sl, p)
	a := r % p

	if a == 0 {
		first0 := sl % p
		if first0 > window {
			return
		}
		for mi := uint64(0); mi < mInc; mi++ {
			cb(mi, first0)
		}
		return
	}

	coeff := p - a
	base := Touch(mStart, sl, p, r)

	for cur := uint64(0); cur < mInc; {
		mi, found := firstHit(coeff, base, p, window, cur, mInc)
		if !found {
			return
		}
		cb(mi, Touch(mStart+mi, sl, p, r))
		cur = mi + 1
	}
}

// windowBound clamps the [0, 2*sl] window to [0, p-1]: Touch can never
// reach or exceed p, so a window wider than p-1 means every residue
// (hence every mi) qualifies.
func windowBound(sl, p uint64) uint64 {
	w := 2 * sl
	if w > p-1 {
		return p - 1
	}
	return w
}
