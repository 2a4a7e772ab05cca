package modsearch

import "math/bits"

// Gcd returns the greatest common divisor of a and b.
func Gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// MulModU64 returns a*b mod m for m < 2^63. Uses a 128-bit product via
// math/bits so neither operand needs to fit in 32 bits.
func MulModU64(a, b, m uint64) uint64 {
	a %= m
	b %= m
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, m)
	return rem
}

// AddModU64 returns a+b mod m.
func AddModU64(a, b, m uint64) uint64 {
	a %= m
	b %= m
	s := a + b
	if s >= m || s < a {
		s -= m
	}
	return s
}

// modSub returns (a-b) mod m for m > 0.
func modSub(a, b, m uint64) uint64 {
	a %= m
	b %= m
	if a >= b {
		return a - b
	}
	return m - (b - a)
}

// Touch returns the offset x in [0, p-1] at which the candidate m*K+i is
// divisible by p, i.e. i = x-sl where x ≡ sl - r*m (mod p) and r = K mod p.
func Touch(m, sl, p, r uint64) uint64 {
	rm := MulModU64(r%p, m%p, p)
	return modSub(sl%p, rm, p)
}

// InverseModU64 returns the modular inverse of a mod m, when it exists
// (gcd(a, m) == 1).
func InverseModU64(a, m uint64) (uint64, bool) {
	if m == 0 {
		return 0, false
	}
	g, x, _ := extGCD(int64(a%m), int64(m))
	if g != 1 {
		return 0, false
	}
	x %= int64(m)
	if x < 0 {
		x += int64(m)
	}
	return uint64(x), true
}

func extGCD(a, b int64) (g, x, y int64) {
	if a == 0 {
		return b, 0, 1
	}
	g, x1, y1 := extGCD(b%a, a)
	return g, y1 - (b/a)*x1, x1
}
