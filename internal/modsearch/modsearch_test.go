package modsearch

import "testing"

func bruteNextTouch(mStart, d, fromMi, mInc, sl, p, r uint64) (uint64, bool) {
	for mi := fromMi; mi < mInc; mi++ {
		m := mStart + mi
		if Gcd(m, d) != 1 {
			continue
		}
		if Touch(m, sl, p, r) <= 2*sl {
			return mi, true
		}
	}
	return mInc, false
}

func TestNextTouchMatchesBruteForce(t *testing.T) {
	cases := []struct {
		mStart, d, mInc, sl, p, r uint64
	}{
		{1, 1, 500, 37, 101, 59},
		{1000, 6, 2000, 17, 97, 41},
		{7, 30, 300, 5, 13, 6},
	}
	for _, c := range cases {
		got, gotOK := NextTouch(c.mStart, c.d, 0, c.mInc, c.sl, c.p, c.r)
		want, wantOK := bruteNextTouch(c.mStart, c.d, 0, c.mInc, c.sl, c.p, c.r)
		if got != want || gotOK != wantOK {
			t.Fatalf("case %+v: got (%d,%v), want (%d,%v)", c, got, gotOK, want, wantOK)
		}
	}
}

func TestAllTouchesMatchesBruteForce(t *testing.T) {
	mStart, mInc, sl, p, r := uint64(1000), uint64(3000), uint64(11), uint64(97), uint64(41)

	var got []uint64
	AllTouches(mStart, mInc, sl, p, r, func(mi, first uint64) {
		m := mStart + mi
		want := Touch(m, sl, p, r)
		if want != first {
			t.Fatalf("mi=%d: first=%d, want %d", mi, first, want)
		}
		got = append(got, mi)
	})

	var want []uint64
	for mi := uint64(0); mi < mInc; mi++ {
		m := mStart + mi
		if Touch(m, sl, p, r) <= 2*sl {
			want = append(want, mi)
		}
	}

	if len(got) != len(want) {
		t.Fatalf("got %d hits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hit %d: got mi=%d, want mi=%d", i, got[i], want[i])
		}
	}
}

func TestInverseModU64(t *testing.T) {
	inv, ok := InverseModU64(3, 11)
	if !ok || MulModU64(3, inv, 11) != 1 {
		t.Fatalf("inverse of 3 mod 11 wrong: %d", inv)
	}
}

func TestTouchMatchesDirectCongruence(t *testing.T) {
	sl, p, r := uint64(17), uint64(97), uint64(41)
	for m := uint64(0); m < 300; m++ {
		x := Touch(m, sl, p, r)
		// x should satisfy r*m + x ≡ sl (mod p).
		lhs := AddModU64(MulModU64(r, m%p, p), x, p)
		if lhs != sl%p {
			t.Fatalf("m=%d: Touch=%d breaks r*m+x≡sl (mod p): got %d, want %d", m, x, lhs, sl%p)
		}
	}
}
