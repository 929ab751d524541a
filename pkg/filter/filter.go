// Package filter implements the per-channel fixed-point low-pass filter bank.
//
// Each channel is a single-pole IIR filter held in a 32-bit accumulator with
// 8 fractional bits:
//
//	state += ((input<<8 - state) >> 8) * gain
//	output = state>>8 + bit7(state)
//
// The cut-off frequency is Fs / (2*pi*256/gain). At 400 sps a gain of 160
// gives roughly 40Hz, a gain of 4 roughly 1Hz.
package filter

import (
	"errors"
	"fmt"

	"github.com/itohio/lpsense/pkg/sar"
)

const (
	// FracBits is the number of fractional bits of the accumulator.
	FracBits = 8
	// MaxGain keeps the recurrence stable (no overshoot) and within 32 bits.
	MaxGain = 1 << FracBits
	// InputBits is the widest raw input the 32-bit accumulator supports with MaxGain.
	InputBits = 16

	roundBit = 1 << (FracBits - 1)
)

var (
	ErrChannel   = errors.New("invalid channel")
	ErrNotSeeded = errors.New("filter not seeded")
	ErrGain      = errors.New("gain out of range")
)

// Config holds the per-channel gains.
type Config struct {
	Reference  int32 `yaml:"reference"`
	Thermistor int32 `yaml:"thermistor"`
	Light      int32 `yaml:"light"`
}

// DefaultConfig returns ~40Hz for the bridge channels and ~1Hz for light.
func DefaultConfig() Config {
	return Config{
		Reference:  160,
		Thermistor: 160,
		Light:      4,
	}
}

// Gains returns the gains indexed by channel.
func (c Config) Gains() [sar.NumChannels]int32 {
	var g [sar.NumChannels]int32
	g[sar.Reference] = c.Reference
	g[sar.Thermistor] = c.Thermistor
	g[sar.Light] = c.Light
	return g
}

// Validate checks every gain is in [1, MaxGain].
func (c Config) Validate() error {
	for ch, g := range c.Gains() {
		if g < 1 || g > MaxGain {
			return fmt.Errorf("%w: %s gain %d", ErrGain, sar.Channel(ch), g)
		}
	}
	return nil
}

// Bank holds the filter state of all channels. Seeding and the first-run flag
// always change together; the recurrence refuses to run on an unseeded channel.
type Bank struct {
	state  [sar.NumChannels]int32
	seeded [sar.NumChannels]bool
	gain   [sar.NumChannels]int32
}

// NewBank creates a bank with every channel awaiting its first sample.
func NewBank(cfg Config) (*Bank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bank{gain: cfg.Gains()}, nil
}

// FirstRun reports whether the channel still awaits its first sample.
func (b *Bank) FirstRun(c sar.Channel) bool {
	if !c.Valid() {
		return false
	}
	return !b.seeded[c]
}

// Seed initializes the channel directly from value and clears its first-run flag.
// The returned output equals value.
func (b *Bank) Seed(c sar.Channel, value int32) (int32, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrChannel, c)
	}
	b.state[c] = value << FracBits
	b.seeded[c] = true
	return value, nil
}

// Step runs one recurrence step on a seeded channel and returns the rounded output.
// Arithmetic is 32-bit two's complement; inputs up to InputBits wide cannot overflow.
func (b *Bank) Step(c sar.Channel, input int32) (int32, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrChannel, c)
	}
	if !b.seeded[c] {
		return 0, fmt.Errorf("%w: %s", ErrNotSeeded, c)
	}

	s := b.state[c]
	s += ((input<<FracBits - s) >> FracBits) * b.gain[c]
	b.state[c] = s

	return Output(s), nil
}

// Output decodes an accumulator value, rounding to nearest.
func Output(state int32) int32 {
	return state>>FracBits + (state&roundBit)>>(FracBits-1)
}

// State returns the raw accumulator of a channel.
func (b *Bank) State(c sar.Channel) int32 {
	if !c.Valid() {
		return 0
	}
	return b.state[c]
}

// Gain returns the gain of a channel.
func (b *Bank) Gain(c sar.Channel) int32 {
	if !c.Valid() {
		return 0
	}
	return b.gain[c]
}
