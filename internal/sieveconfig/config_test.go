package sieveconfig

import "testing"

func baseConfig() Config {
	return Config{
		P: 503, D: 1, MStart: 1, MInc: 1, SL: 3018, MaxPrime: 1_000_000_000,
		MinMerit: 10, Method: Method2, SaveUnknowns: true,
	}
}

func TestValidateRejectsMissingSaveUnknowns(t *testing.T) {
	c := baseConfig()
	c.SaveUnknowns = false
	if err := c.Validate(); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateRejectsSieveLengthOutOfRange(t *testing.T) {
	c := baseConfig()
	c.SL = 1 // far below 6*P
	if err := c.Validate(); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateRejectsMaxPrimeTooSmall(t *testing.T) {
	c := baseConfig()
	c.MaxPrime = 2 * c.SL // < 2*SL+1
	if err := c.Validate(); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateAccepts(t *testing.T) {
	c := baseConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWheelModulusDisabledForMethod1(t *testing.T) {
	c := baseConfig()
	c.Method = Method1
	c.D = 210
	if w := c.WheelModulus(); w != 1 {
		t.Fatalf("method 1 wheel modulus = %d, want 1", w)
	}
}

func TestWheelModulusMethod2(t *testing.T) {
	c := baseConfig()
	c.D = 2310 // 2*3*5*7*11
	if w := c.WheelModulus(); w != 210 {
		t.Fatalf("wheel modulus = %d, want 210", w)
	}
}

func TestDeriveValidMi(t *testing.T) {
	c := baseConfig()
	c.D = 210
	c.MStart = 1
	c.MInc = 100
	c.SL = 6 * c.P // satisfy bound with P=503 -> SL huge, override P to keep bound reasonable
	c.P = 7        // 7# = 210, so D=210 divides P# (K = 1)
	c.SL = 42
	c.MaxPrime = 1000

	der, err := Derive(c)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for mi := uint64(0); mi < c.MInc; mi++ {
		m := c.MStart + mi
		coprime := true
		for _, q := range []uint64{2, 3, 5, 7} {
			if c.D%q == 0 && m%q == 0 {
				coprime = false
			}
		}
		if coprime {
			count++
		}
	}
	if len(der.ValidMi) != count {
		t.Fatalf("got %d valid mi, want %d", len(der.ValidMi), count)
	}
	for i, mi := range der.ValidMi {
		if der.RowOf(mi) != i {
			t.Fatalf("RowOf(%d) = %d, want %d", mi, der.RowOf(mi), i)
		}
	}
}
