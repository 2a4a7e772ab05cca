package sieve

import (
	"math/big"
	"testing"

	"github.com/go-kit/log"
	"github.com/jannismilz/primegap/internal/primestream"
	"github.com/jannismilz/primegap/internal/sieveconfig"
)

// nopLogger discards every log line, for tests that don't care about
// progress output.
type nopLogger struct{}

func (nopLogger) Log(_ ...interface{}) error { return nil }

var _ log.Logger = nopLogger{}

func TestRunMethod1MatchesBruteForce(t *testing.T) {
	cfg := sieveconfig.Config{
		P: 5, D: 1, MStart: 1, MInc: 20, SL: 30, MaxPrime: 1000,
		Method: sieveconfig.Method1, SaveUnknowns: true,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	der, err := sieveconfig.Derive(cfg)
	if err != nil {
		t.Fatal(err)
	}

	rowSizes := make([]int, len(der.ValidMi))
	for i := range rowSizes {
		rowSizes[i] = int(2 * cfg.SL)
	}
	matrix, err := NewCompositeMatrix(rowSizes)
	if err != nil {
		t.Fatal(err)
	}

	canc := &Canceler{}
	rep := NewReporter(nopLogger{}, -1)
	if err := RunMethod1(cfg, der, matrix, canc, rep, 4); err != nil {
		t.Fatal(err)
	}

	for row, mi := range der.ValidMi {
		m := cfg.MStart + mi
		for x := uint64(0); x <= 2*cfg.SL; x++ {
			want := bruteComposite(der.K, m, x, cfg.SL, cfg.MaxPrime)
			if got := matrix.Get(row, int(x)); got != want {
				t.Fatalf("row %d (m=%d) x=%d: got %v want %v", row, m, x, got, want)
			}
		}
	}
}

func TestRunMethod1SkipsNonCoprimeRows(t *testing.T) {
	cfg := sieveconfig.Config{
		P: 5, D: 6, MStart: 1, MInc: 15, SL: 30, MaxPrime: 500,
		Method: sieveconfig.Method1, SaveUnknowns: true,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	der, err := sieveconfig.Derive(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(der.ValidMi) >= int(cfg.MInc) {
		t.Fatalf("expected some mi excluded by D=6, got all %d valid", len(der.ValidMi))
	}

	rowSizes := make([]int, len(der.ValidMi))
	for i := range rowSizes {
		rowSizes[i] = int(2 * cfg.SL)
	}
	matrix, err := NewCompositeMatrix(rowSizes)
	if err != nil {
		t.Fatal(err)
	}
	canc := &Canceler{}
	rep := NewReporter(nopLogger{}, -1)
	if err := RunMethod1(cfg, der, matrix, canc, rep, 1); err != nil {
		t.Fatal(err)
	}
	// Just confirm it runs without panicking on a matrix sized to ValidMi
	// only, i.e. RowOf never sees a non-coprime mi.
}

func bruteComposite(k *big.Int, m, x, sl, maxPrime uint64) bool {
	i := int64(x) - int64(sl)
	cand := new(big.Int).Mul(new(big.Int).SetUint64(m), k)
	cand.Add(cand, big.NewInt(i))

	stream := primestream.New(0, maxPrime)
	for {
		p, ok := stream.Next()
		if !ok {
			break
		}
		pBig := new(big.Int).SetUint64(p)
		mod := new(big.Int).Mod(cand, pBig)
		if mod.Sign() == 0 {
			return true
		}
	}
	return false
}
