package modsearch

// floorSum returns sum_{x=0}^{n-1} floor((a*x+b)/m), via the Euclidean-style
// reduction that swaps the roles of a and m at each step until one side
// vanishes. O(log(max(a,m))).
func floorSum(n, m, a, b uint64) uint64 {
	var ans uint64
	if a >= m {
		ans += (n - 1) * n / 2 * (a / m)
		a %= m
	}
	if b >= m {
		ans += n * (b / m)
		b %= m
	}
	yMax := (a*n + b) / m
	if yMax == 0 {
		return ans
	}
	xMax := yMax*m - b
	ans += (n - (xMax+a-1)/a) * yMax
	ans += floorSum(yMax, a, m, (a-xMax%a)%a)
	return ans
}

// countLE returns the number of x in [0,n) with (a*x+b) mod p <= l, for
// 0 <= b < p and 0 <= l < p. It rests on the identity
//
//	[v mod p <= l] == floor(v/p) - floor((v-l-1)/p)
//
// applied to v = a*x+b, with the two floor-sums taken over x in [0,n). When
// b <= l the (v-l-1) side can go negative for small x, so it is evaluated
// at the shifted offset (b-l-1) mod p = b-l-1+p instead; that adds exactly
// 1 to each of the n terms, which the k*n term gives back.
func countLE(a, b, p, l, n uint64) uint64 {
	shifted := modSub(b, l+1, p)
	k := uint64(0)
	if b <= l {
		k = 1
	}
	return floorSum(n, p, a, b) - floorSum(n, p, a, shifted) + k*n
}

// firstHit returns the smallest x in [lo,hi) with (a*x+b) mod p <= l, or
// ok=false if none exists. countLE(...,n) is monotonically non-decreasing
// in n, so the smallest qualifying x is found by binary search over that
// count rather than by testing each x in turn.
func firstHit(a, b, p, l, lo, hi uint64) (x uint64, ok bool) {
	if lo >= hi {
		return hi, false
	}
	base := countLE(a, b, p, l, lo)
	if countLE(a, b, p, l, hi) == base {
		return hi, false
	}
	loX, hiX := lo, hi-1
	for loX < hiX {
		mid := loX + (hiX-loX)/2
		if countLE(a, b, p, l, mid+1)-base >= 1 {
			hiX = mid
		} else {
			loX = mid + 1
		}
	}
	return loX, true
}
