package wheel

import "testing"

func TestCenterAlwaysComposite(t *testing.T) {
	tb := Build(30, 11, 6, 1, 0)
	if tb.Index[0][30] != 0 {
		t.Fatalf("center index = %d, want 0", tb.Index[0][30])
	}
}

func TestNoWheelDegeneratesToIdentity(t *testing.T) {
	// D=1, W=1: step 3 never runs, and no prime divides D, so step 1 marks
	// every prime q <= P except none are excluded -- all primes <= P sieve
	// their residues out of the window.
	tb := Build(30, 11, 1, 1, 0)
	if len(tb.Index) != 1 {
		t.Fatalf("expected a single residue class, got %d", len(tb.Index))
	}
	if _, ok := tb.Index[0]; !ok {
		t.Fatal("expected residue 0 table present")
	}
}

func TestWheelResiduesCoprimeToW(t *testing.T) {
	tb := Build(30, 11, 6, 6, 0) // W = gcd(6, 210) = 6
	for res := range tb.Index {
		if gcd(res, 6) != 1 {
			t.Fatalf("residue %d not coprime to W=6", res)
		}
	}
	// residues coprime to 6 in [0,6): 1, 5
	if len(tb.Index) != 2 {
		t.Fatalf("expected 2 residues coprime to 6, got %d", len(tb.Index))
	}
}

func TestCenterAlwaysCompositePerResidue(t *testing.T) {
	tb := Build(30, 11, 6, 6, 3)
	for res, idx := range tb.Index {
		if idx[30] != 0 {
			t.Fatalf("residue %d: center index = %d, want 0", res, idx[30])
		}
	}
}
