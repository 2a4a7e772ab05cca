// Package sieve implements the two combined-sieve cores (§4.5 Method 1,
// §4.6 Method 2) over the composite bit-matrix of §3.
package sieve

import (
	"fmt"

	"github.com/alecthomas/units"
)

// MaxMatrixBytes bounds the single large allocation of the run (§5,
// "Shared resources"): the composite matrix must never exceed this
// regardless of configuration.
const MaxMatrixBytes = uint64(7 * units.GiB)

// CompositeMatrix is the compact bit-matrix indexed by dense row (one per
// valid m) and dense per-row offset (from the wheel reindexer). Bit 0 of
// every row is pre-set, per §3's invariants.
type CompositeMatrix struct {
	rows [][]uint64
}

// NewCompositeMatrix allocates one bit-row per entry of rowSizes (n_w+1
// bits each) with bit 0 pre-set.
func NewCompositeMatrix(rowSizes []int) (*CompositeMatrix, error) {
	total := uint64(0)
	for _, n := range rowSizes {
		words := (n + 64) / 64 // n+1 bits, rounded up
		total += uint64(words) * 8
	}
	if total > MaxMatrixBytes {
		return nil, fmt.Errorf("sieve: composite matrix would require %s, exceeding the %s budget",
			units.Base2Bytes(total), units.Base2Bytes(MaxMatrixBytes))
	}

	m := &CompositeMatrix{rows: make([][]uint64, len(rowSizes))}
	for i, n := range rowSizes {
		words := (n + 64) / 64
		row := make([]uint64, words)
		row[0] |= 1
		m.rows[i] = row
	}
	return m, nil
}

// Set marks bit as composite in row. bit == 0 is a no-op (already set).
func (m *CompositeMatrix) Set(row, bit int) {
	if bit == 0 {
		return
	}
	m.rows[row][bit/64] |= 1 << uint(bit%64)
}

// Get reports whether bit is marked composite in row.
func (m *CompositeMatrix) Get(row, bit int) bool {
	return m.rows[row][bit/64]&(1<<uint(bit%64)) != 0
}

// Bytes returns the matrix's total allocated size.
func (m *CompositeMatrix) Bytes() uint64 {
	var total uint64
	for _, row := range m.rows {
		total += uint64(len(row)) * 8
	}
	return total
}

// EstimateMatrixBytes approximates the composite matrix footprint before
// allocation, for the §5/§7.1 pre-flight resource check: countRows valid
// m values, each with roughly avgRowBits coprime offsets.
func EstimateMatrixBytes(countRows int, avgRowBits float64) uint64 {
	words := (avgRowBits + 64) / 64
	return uint64(float64(countRows) * words * 8)
}
