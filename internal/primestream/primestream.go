// Package primestream enumerates primes in increasing order over a bounded
// range, using a segmented sieve of Eratosthenes so the working set stays
// proportional to sqrt(bound) plus one segment rather than the full range.
package primestream

import "math"

const defaultSegmentSize = 1 << 20

// Stream produces primes p with start < p <= bound, restartable from any
// starting bound by constructing a fresh Stream.
type Stream struct {
	bound     uint64
	base      []uint64
	segSize   uint64
	segStart  uint64
	segment   []bool // true = composite
	segIdx    int
	exhausted bool
}

// New returns a Stream over primes in (start, bound].
func New(start, bound uint64) *Stream {
	s := &Stream{bound: bound, segSize: defaultSegmentSize}
	limit := uint64(math.Sqrt(float64(bound))) + 1
	s.base = sieveSmall(limit)
	s.segStart = start + 1
	if s.segStart < 2 {
		s.segStart = 2
	}
	s.loadSegment()
	return s
}

// sieveSmall returns every prime <= n via the plain sieve of Eratosthenes.
// Mirrors the teacher's SimpleSieve, generalized to an arbitrary bound.
func sieveSmall(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	composite := make([]bool, n+1)
	var primes []uint64
	for i := uint64(2); i <= n; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j <= n; j += i {
			composite[j] = true
		}
	}
	return primes
}

// loadSegment sieves [segStart, segStart+segSize) against the base primes.
// Mirrors the teacher's SieveBetween, windowed and chained across segments.
func (s *Stream) loadSegment() {
	if s.segStart > s.bound {
		s.segment = nil
		s.exhausted = true
		return
	}
	end := s.segStart + s.segSize - 1
	if end > s.bound {
		end = s.bound
	}
	size := end - s.segStart + 1
	segment := make([]bool, size)

	for _, p := range s.base {
		if p*p > end {
			break
		}
		first := p * p
		if first < s.segStart {
			first = ((s.segStart + p - 1) / p) * p
		}
		for j := first; j <= end; j += p {
			segment[j-s.segStart] = true
		}
	}

	s.segment = segment
	s.segIdx = 0
}

// Next returns the next prime in the stream, or ok=false once the bound is
// exhausted.
func (s *Stream) Next() (uint64, bool) {
	for {
		if s.exhausted {
			return 0, false
		}
		for s.segIdx < len(s.segment) {
			if !s.segment[s.segIdx] {
				p := s.segStart + uint64(s.segIdx)
				s.segIdx++
				return p, true
			}
			s.segIdx++
		}
		s.segStart += s.segSize
		s.loadSegment()
	}
}
