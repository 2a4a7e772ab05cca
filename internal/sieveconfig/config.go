// Package sieveconfig holds the immutable run configuration of §3, its
// derived constants, and the validation rules of §7.1.
package sieveconfig

import (
	"fmt"

	"github.com/jannismilz/primegap/internal/modsearch"
)

// Method selects which sieve core processes the configuration.
type Method int

const (
	Method1 Method = 1
	Method2 Method = 2
)

// Config is the immutable configuration of a sieve run, per §3.
type Config struct {
	P        uint64
	D        uint64
	MStart   uint64
	MInc     uint64
	SL       uint64
	MaxPrime uint64
	MinMerit float64
	Method   Method
	RLE      bool

	SaveUnknowns bool
	SearchDB     string
	RecordsDB    string
	Verbose      int
}

// ConfigError reports a configuration-time failure (§7.1), mapped to exit
// code 1 by the CLI layer.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// Validate checks the configuration-time invariants of §7.1 and the
// sieve_length bound named in combined_sieve's own startup checks.
func (c Config) Validate() error {
	if !c.SaveUnknowns {
		return &ConfigError{Msg: "must set save_unknowns"}
	}
	if c.P == 0 {
		return &ConfigError{Msg: "p must be positive"}
	}
	if c.D == 0 {
		return &ConfigError{Msg: "d must be positive"}
	}
	if c.MInc == 0 {
		return &ConfigError{Msg: "m_inc must be positive"}
	}
	low, high := 6*c.P, 22*c.P
	if c.SL < low || c.SL > high {
		return &ConfigError{Msg: fmt.Sprintf("sieve_length(%d) should be between [%d, %d]", c.SL, low, high)}
	}
	if c.MaxPrime < 2*c.SL+1 {
		return &ConfigError{Msg: fmt.Sprintf("max_prime(%d) must be >= 2*sieve_length+1 (%d)", c.MaxPrime, 2*c.SL+1)}
	}
	if c.Method != Method1 && c.Method != Method2 {
		return &ConfigError{Msg: fmt.Sprintf("unknown method %d", c.Method)}
	}
	return nil
}

// WheelModulus returns W = gcd(D, 2*3*5*7) for Method 2, or 1 when the
// wheel is disabled (Method 1 never uses it).
func (c Config) WheelModulus() uint64 {
	if c.Method != Method2 {
		return 1
	}
	return modsearch.Gcd(c.D, 210)
}
