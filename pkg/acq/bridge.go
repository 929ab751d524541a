// Package acq hands converter results from the FIFO to the filter bank.
package acq

import (
	"fmt"

	"github.com/itohio/lpsense/pkg/filter"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/itohio/lpsense/pkg/sar"
)

// Queue is the converter FIFO as seen by the consumer.
type Queue interface {
	Count() int
	Read() (sar.RawSample, error)
}

// Readings are the latest filtered values indexed by channel.
type Readings [sar.NumChannels]int32

// Bridge drains the FIFO through the filter bank. It is owned by the sampling
// loop; only OnWatermark may be called from the interrupt side.
type Bridge struct {
	bank      *filter.Bank
	signal    *sar.Signal
	darkRaw   uint16
	darkValue int32
	readings  Readings
}

// New creates a bridge. A first light reading at or above light.DarkRaw is
// replaced by light.DarkValue.
func New(bank *filter.Bank, signal *sar.Signal, light sample.LightConfig) *Bridge {
	return &Bridge{
		bank:      bank,
		signal:    signal,
		darkRaw:   light.DarkRaw,
		darkValue: light.DarkValue,
	}
}

// OnWatermark is the FIFO level interrupt handler. It only raises the signal.
func (b *Bridge) OnWatermark() {
	b.signal.Raise()
}

// Signal returns the signal raised by OnWatermark.
func (b *Bridge) Signal() *sar.Signal {
	return b.signal
}

// Drain reads as many entries as the queue reports pending and routes each
// through the filter bank. It returns the number of entries consumed.
// An entry with an invalid channel tag stops the drain with ErrChannelRange.
func (b *Bridge) Drain(q Queue) (int, error) {
	n := q.Count()
	for i := 0; i < n; i++ {
		s, err := q.Read()
		if err != nil {
			return i, fmt.Errorf("fifo read %d/%d: %w", i, n, err)
		}
		if !s.Channel.Valid() {
			return i + 1, fmt.Errorf("%w: tag %d value %#04x", ErrChannelRange, s.Channel, s.Value)
		}
		if err := b.route(s); err != nil {
			return i + 1, err
		}
	}
	return n, nil
}

func (b *Bridge) route(s sar.RawSample) error {
	c := s.Channel

	var (
		out int32
		err error
	)
	if b.bank.FirstRun(c) {
		v := int32(s.Value)
		if c == sar.Light && s.Value >= b.darkRaw {
			v = b.darkValue
		}
		out, err = b.bank.Seed(c, v)
	} else {
		// The result register is signed.
		out, err = b.bank.Step(c, int32(int16(s.Value)))
	}
	if err != nil {
		return err
	}

	b.readings[c] = out
	return nil
}

// Readings returns the latest filtered values.
func (b *Bridge) Readings() Readings {
	return b.readings
}

// Reading returns the latest filtered value of a channel.
func (b *Bridge) Reading(c sar.Channel) int32 {
	if !c.Valid() {
		return 0
	}
	return b.readings[c]
}

// FirstRun reports whether a channel has not been seeded yet.
func (b *Bridge) FirstRun(c sar.Channel) bool {
	return b.bank.FirstRun(c)
}
