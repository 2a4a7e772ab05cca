package primestream

import "testing"

func collect(start, bound uint64) []uint64 {
	s := New(start, bound)
	var out []uint64
	for {
		p, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

func TestSmallRange(t *testing.T) {
	got := collect(0, 30)
	want := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRestartFromBound(t *testing.T) {
	first := collect(0, 50)
	second := collect(50, 100)
	for _, p := range second {
		if p <= 50 {
			t.Fatalf("restart leaked prime <= 50: %d", p)
		}
	}
	if first[len(first)-1] >= second[0] {
		t.Fatalf("restart not strictly increasing across boundary")
	}
}

func TestCrossesSegmentBoundary(t *testing.T) {
	s := New(0, 100)
	s.segSize = 16 // force several tiny segments
	s.segStart = 2
	s.loadSegment()
	var out []uint64
	for {
		p, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	want := collect(0, 100)
	if len(out) != len(want) {
		t.Fatalf("segmented run got %d primes, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], want[i])
		}
	}
}
