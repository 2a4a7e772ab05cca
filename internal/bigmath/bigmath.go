// Package bigmath computes the primorial-derived base K = P#/D once per
// run and reduces it modulo arbitrary 64-bit primes, per §4.1.
package bigmath

import (
	"fmt"
	"math"
	"math/big"

	"github.com/jannismilz/primegap/internal/primestream"
)

// K returns P#/D as a big.Int, where P# is the product of every prime <= p.
// D must evenly divide P#; every prime factor of D is assumed <= p.
func K(p, d uint64) (*big.Int, error) {
	if d == 0 {
		return nil, fmt.Errorf("bigmath: d must be positive")
	}
	primorial := big.NewInt(1)
	stream := primestream.New(0, p)
	for {
		prime, ok := stream.Next()
		if !ok {
			break
		}
		primorial.Mul(primorial, new(big.Int).SetUint64(prime))
	}

	dBig := new(big.Int).SetUint64(d)
	k, rem := new(big.Int), new(big.Int)
	k.QuoRem(primorial, dBig, rem)
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("bigmath: d=%d does not evenly divide %d#", d, p)
	}
	return k, nil
}

// ModUI reduces k modulo p. Callers assume p < 2^63.
func ModUI(k *big.Int, p uint64) uint64 {
	if p == 0 {
		panic("bigmath: ModUI by zero")
	}
	r := new(big.Int).Mod(k, new(big.Int).SetUint64(p))
	return r.Uint64()
}

// LogF returns the natural log of k as a float64, for k > 0. Used by the
// statistics evaluator to turn K into log(N) without materializing N.
func LogF(k *big.Int) float64 {
	if k.Sign() <= 0 {
		return 0
	}
	f := new(big.Float).SetInt(k)
	var mant big.Float
	exp := f.MantExp(&mant)
	m, _ := mant.Float64()
	return math.Log(m) + float64(exp)*math.Ln2
}
