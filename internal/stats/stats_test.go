package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jannismilz/primegap/internal/unknowns"
)

type constRecordTable struct {
	conditional float64
	bothExt     float64
}

func (t constRecordTable) ConditionalRecordProb(residue, near uint64) float64 { return t.conditional }
func (t constRecordTable) BothExtendedRecordProb(residue uint64) float64      { return t.bothExt }

func TestEvaluateProbabilitiesAreBounded(t *testing.T) {
	eval := Evaluator{
		Density:     0.1,
		LogN:        50,
		Residue:     1,
		RecordTable: constRecordTable{conditional: 0.01, bothExt: 0.001},
	}
	row := unknowns.Row{Mi: 5, Lower: []uint64{2, 9, 40}, Upper: []uint64{3, 15}}

	res := eval.Evaluate(row, 20)
	require.Equal(t, uint64(5), res.Mi)
	for _, p := range []float64{res.ProbExtended, res.ProbRecord, res.ProbMissingGap, res.ProbMerit} {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestEvaluateEmptyRowIsFullyExtended(t *testing.T) {
	eval := Evaluator{
		Density:     0.2,
		LogN:        50,
		Residue:     1,
		RecordTable: constRecordTable{conditional: 0.01, bothExt: 0.001},
	}
	row := unknowns.Row{Mi: 0}

	res := eval.Evaluate(row, 20)
	assert.Equal(t, 1.0, res.ProbExtended)
	assert.Equal(t, 0.0, res.ProbMerit)
	assert.InDelta(t, eval.RecordTable.BothExtendedRecordProb(1), res.ProbRecord, 1e-9)
}

func TestMoreSurvivorsIncreaseMeritProbability(t *testing.T) {
	eval := Evaluator{
		Density:     0.1,
		LogN:        1,
		Residue:     1,
		RecordTable: constRecordTable{conditional: 0, bothExt: 0},
	}
	small := unknowns.Row{Mi: 0, Lower: []uint64{1}, Upper: []uint64{1}}
	large := unknowns.Row{Mi: 0, Lower: []uint64{1, 100}, Upper: []uint64{1, 100}}

	smallMerit := eval.Evaluate(small, 50).ProbMerit
	largeMerit := eval.Evaluate(large, 50).ProbMerit
	assert.Greater(t, largeMerit, smallMerit)
}
