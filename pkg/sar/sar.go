package sar

import "time"

// Channel identifies the physical quantity a raw sample belongs to.
type Channel uint8

const (
	Reference  Channel = 0 // Reference resistor leg of the thermistor bridge
	Thermistor Channel = 1 // Thermistor leg of the bridge
	Light      Channel = 2 // Ambient light photo-transistor

	// NumChannels is the number of scanned channels.
	NumChannels = 3
)

func (c Channel) String() string {
	switch c {
	case Reference:
		return "reference"
	case Thermistor:
		return "thermistor"
	case Light:
		return "light"
	default:
		return "invalid"
	}
}

// Valid reports whether the channel tag is one of the scanned channels.
func (c Channel) Valid() bool {
	return c < NumChannels
}

// RawSample is a single FIFO entry produced by the converter.
type RawSample struct {
	Channel Channel
	Value   uint16 // Result register contents
}

// Config describes the acquisition timing.
type Config struct {
	TriggerInterval time.Duration `yaml:"trigger_interval"` // Time between scans of all channels
	Watermark       int           `yaml:"watermark"`        // FIFO level that raises the interrupt
}

// DefaultConfig returns 2.5ms scans (400 sps per channel) and a 120 entry watermark,
// which wakes the sampler every 100ms.
func DefaultConfig() Config {
	return Config{
		TriggerInterval: 2500 * time.Microsecond,
		Watermark:       120,
	}
}

// WakePeriod returns how often the watermark is reached.
func (c Config) WakePeriod() time.Duration {
	if c.Watermark <= 0 {
		return 0
	}
	return c.TriggerInterval * time.Duration(c.Watermark) / NumChannels
}
