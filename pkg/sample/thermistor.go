package sample

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// AbsoluteZero is 0 K in degrees Celsius.
const AbsoluteZero float32 = -273.15

var (
	ErrReferenceOpen   = errors.New("reference reading is not positive")
	ErrThermistorShort = errors.New("thermistor reading is not positive")
	ErrOutOfRange      = errors.New("temperature out of range")
)

// ThermistorConfig describes an NTC thermistor in series with a reference resistor.
type ThermistorConfig struct {
	RReference float64 `yaml:"r_reference"` // Reference resistor (Ohm)
	BConstant  float32 `yaml:"b_constant"`  // Beta constant (K)
	R0         float32 `yaml:"r0"`          // Resistance at T0 (Ohm)
	T0         float32 `yaml:"t0"`          // Rated temperature (K)
}

// DefaultThermistorConfig returns the NCP18XH103F03RB on a 10k reference.
func DefaultThermistorConfig() ThermistorConfig {
	return ThermistorConfig{
		RReference: 10000,
		BConstant:  3380,
		R0:         10000,
		T0:         298.15,
	}
}

// RInfinity returns R0 * e^(-B/T0).
func (c ThermistorConfig) RInfinity() float32 {
	return c.R0 * math32.Exp(-c.BConstant/c.T0)
}

// TemperatureFromCounts converts filtered thermistor and reference readings
// into degrees Celsius using the Beta model.
//
// The two legs carry the same current, so R_therm = therm * R_ref / ref.
// Non-positive readings are reported as errors instead of producing Inf/NaN.
func TemperatureFromCounts(therm, ref int32, cfg ThermistorConfig) (float64, error) {
	if ref <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrReferenceOpen, ref)
	}
	if therm <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrThermistorShort, therm)
	}

	r := float64(therm) * cfg.RReference / float64(ref)

	// ln is taken in single precision.
	t := cfg.BConstant/math32.Log(float32(r/float64(cfg.RInfinity()))) + AbsoluteZero
	v := float64(t)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: R=%.1f", ErrOutOfRange, r)
	}
	return v, nil
}

// CountsForTemperature is the inverse model: the thermistor reading expected
// for a temperature given the reference reading. Used by the simulator.
func CountsForTemperature(c float64, ref int32, cfg ThermistorConfig) int32 {
	k := c - float64(AbsoluteZero)
	if k <= 0 {
		return 0
	}
	r := float64(cfg.RInfinity()) * math.Exp(float64(cfg.BConstant)/k)
	return int32(math.Round(float64(ref) * r / cfg.RReference))
}
