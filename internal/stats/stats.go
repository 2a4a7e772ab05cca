// Package stats implements the statistics evaluator described abstractly
// in §4.7: given the serialized unknowns for one m, it estimates the
// probability that the true gap centered there is a record, a missing
// gap, or above a merit threshold, under a geometric model of prime
// density among the surviving coprime offsets.
package stats

import (
	"math"

	"github.com/jannismilz/primegap/internal/unknowns"
)

// RecordTable is the external gaps-database collaborator (§4.7): the
// conditional and constant record probabilities it returns come from a
// reference table of known record gaps, outside this package's scope.
type RecordTable interface {
	// ConditionalRecordProb returns the probability of a new record when
	// one side's prime lands at distance near inside the sieve and the
	// other side is extended beyond it, for the given wheel residue.
	ConditionalRecordProb(residue, near uint64) float64
	// BothExtendedRecordProb returns the record probability when both
	// sides extend beyond the sieve, for the given wheel residue.
	BothExtendedRecordProb(residue uint64) float64
}

// ConstantRecordTable is a RecordTable that ignores residue and distance
// and always returns the same probabilities. Used when no real gaps
// database is configured (records_db unset).
type ConstantRecordTable struct {
	Conditional  float64
	BothExtended float64
}

func (t ConstantRecordTable) ConditionalRecordProb(residue, near uint64) float64 { return t.Conditional }
func (t ConstantRecordTable) BothExtendedRecordProb(residue uint64) float64      { return t.BothExtended }

// Result is one m's evaluated probabilities (§4.7).
type Result struct {
	Mi             uint64
	ProbExtended   float64
	ProbRecord     float64
	ProbMissingGap float64
	ProbMerit      float64
}

// Evaluator computes Result from a Row, the geometric density of primes
// among coprime candidates, and an external RecordTable.
type Evaluator struct {
	// Density is P(a given surviving offset is prime), 0 < Density <= 1.
	Density float64
	// LogN is log(m*K), used to convert a gap into a merit.
	LogN float64
	// Residue is m mod W, used to select the record table's row.
	Residue uint64

	RecordTable RecordTable
}

// Evaluate implements §4.7's per-m computation over the surviving offsets
// of row, reporting the result for row.Mi.
func (e Evaluator) Evaluate(row unknowns.Row, minMerit float64) Result {
	pLowExtended := sideExtendedProb(e.Density, len(row.Lower))
	pUpExtended := sideExtendedProb(e.Density, len(row.Upper))
	probExtended := pLowExtended * pUpExtended

	probBoth := e.probBothWithinSieve(row)
	probOneSide := e.probOneSideExtended(row, pLowExtended, pUpExtended)
	probBothExtended := probExtended * e.RecordTable.BothExtendedRecordProb(e.Residue)

	return Result{
		Mi:             row.Mi,
		ProbExtended:   probExtended,
		ProbRecord:     probBoth + probOneSide + probBothExtended,
		ProbMissingGap: probExtended,
		ProbMerit:      e.probMeritAbove(row, minMerit),
	}
}

// probBothWithinSieve sums the record-setting probability over every pair
// of candidates, one from each side, weighted by the chance each is the
// first prime on its side (§4.7 component (a)).
func (e Evaluator) probBothWithinSieve(row unknowns.Row) float64 {
	total := 0.0
	for li, lo := range row.Lower {
		pLo := pointPrimeProb(e.Density, li)
		for ui, up := range row.Upper {
			pUp := pointPrimeProb(e.Density, ui)
			near := lo
			if up < near {
				near = up
			}
			total += pLo * pUp * e.RecordTable.ConditionalRecordProb(e.Residue, near)
		}
	}
	return total
}

// probOneSideExtended covers the case where exactly one side's prime
// falls within the sieve and the other extends beyond it (§4.7 component
// (b)).
func (e Evaluator) probOneSideExtended(row unknowns.Row, pLowExtended, pUpExtended float64) float64 {
	total := 0.0
	for li, lo := range row.Lower {
		pLo := pointPrimeProb(e.Density, li)
		total += pLo * pUpExtended * e.RecordTable.ConditionalRecordProb(e.Residue, lo)
	}
	for ui, up := range row.Upper {
		pUp := pointPrimeProb(e.Density, ui)
		total += pUp * pLowExtended * e.RecordTable.ConditionalRecordProb(e.Residue, up)
	}
	return total
}

// probMeritAbove sums the probability mass of candidate pairs whose
// implied gap/log(N) merit reaches minMerit. Pairs where either side
// extends beyond the sieve have unknown merit and are excluded.
func (e Evaluator) probMeritAbove(row unknowns.Row, minMerit float64) float64 {
	if e.LogN <= 0 {
		return 0
	}
	total := 0.0
	for li, lo := range row.Lower {
		pLo := pointPrimeProb(e.Density, li)
		for ui, up := range row.Upper {
			pUp := pointPrimeProb(e.Density, ui)
			merit := float64(lo+up) / e.LogN
			if merit >= minMerit {
				total += pLo * pUp
			}
		}
	}
	return total
}

// pointPrimeProb is P(the priorMisses-th closer candidate wasn't prime,
// but this one is), under the geometric model named in §4.7.
func pointPrimeProb(density float64, priorMisses int) float64 {
	return density * math.Pow(1-density, float64(priorMisses))
}

// sideExtendedProb is P(none of count surviving candidates on a side are
// prime).
func sideExtendedProb(density float64, count int) float64 {
	return math.Pow(1-density, float64(count))
}
