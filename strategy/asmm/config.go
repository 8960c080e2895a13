package asmm

import (
	"errors"
	"math"
)

// Config holds the parameters of the reservation pricer.
type Config struct {
	Gamma    float64 `yaml:"gamma"`    // risk aversion
	K        float64 `yaml:"k"`        // order book liquidity density
	TickSize int64   `yaml:"tickSize"` // minor units per tick
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		Gamma:    0.05,
		K:        1,
		TickSize: 100,
	}
}

// Validate checks that the pricer parameters are usable.
func (c Config) Validate() error {
	if c.Gamma <= 0 || math.IsNaN(c.Gamma) || math.IsInf(c.Gamma, 0) {
		return errors.New("gamma must be > 0")
	}
	if c.K <= 0 || math.IsNaN(c.K) || math.IsInf(c.K, 0) {
		return errors.New("k must be > 0")
	}
	if c.TickSize <= 0 {
		return errors.New("tickSize must be > 0")
	}
	return nil
}
