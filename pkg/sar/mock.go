package sar

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/itohio/lpsense/pkg/sample"
)

// DarkRaw is what the light channel converts to with the photo-transistor fully dark.
const DarkRaw = 0xFFF0

// MockConfig describes the simulated scene.
type MockConfig struct {
	Temperature     float64       `yaml:"temperature"`      // Thermistor temperature (C)
	Light           int           `yaml:"light"`            // Ambient light (%), negative = fully dark
	ReferenceCounts uint16        `yaml:"reference_counts"` // Reference leg reading
	Noise           float64       `yaml:"noise"`            // Noise amplitude (counts)
	SpuriousWake    time.Duration `yaml:"spurious_wake"`    // Period of non-FIFO wake-ups (0 = none)
}

// DefaultMockConfig returns a room temperature, moderately lit scene.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		Temperature:     25,
		Light:           50,
		ReferenceCounts: 2048,
		Noise:           2,
	}
}

// Mock simulates the converter: a trigger timer scans all channels into the FIFO.
type Mock struct {
	acq   Config
	cfg   MockConfig
	therm sample.ThermistorConfig
	light sample.LightConfig

	fifo *FIFO

	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	running     bool
	done        chan struct{}
	scans       uint64
	temperature float64
	lightLevel  int
	onWake      func()
}

// NewMock creates a simulated converter.
func NewMock(acq Config, cfg MockConfig, therm sample.ThermistorConfig, light sample.LightConfig) *Mock {
	if acq.TriggerInterval <= 0 {
		acq.TriggerInterval = DefaultConfig().TriggerInterval
	}
	if cfg.ReferenceCounts == 0 {
		cfg.ReferenceCounts = DefaultMockConfig().ReferenceCounts
	}
	return &Mock{
		acq:         acq,
		cfg:         cfg,
		therm:       therm,
		light:       light,
		fifo:        NewFIFO(DefaultFIFODepth, acq.Watermark),
		temperature: cfg.Temperature,
		lightLevel:  cfg.Light,
	}
}

// FIFO returns the result queue.
func (m *Mock) FIFO() *FIFO {
	return m.fifo
}

// SetWakeHandler registers a callback for wake-ups that are not FIFO interrupts.
func (m *Mock) SetWakeHandler(h func()) {
	m.mu.Lock()
	m.onWake = h
	m.mu.Unlock()
}

// SetTemperature changes the simulated thermistor temperature.
func (m *Mock) SetTemperature(c float64) {
	m.mu.Lock()
	m.temperature = c
	m.mu.Unlock()
}

// SetLight changes the simulated ambient light.
func (m *Mock) SetLight(percent int) {
	m.mu.Lock()
	m.lightLevel = percent
	m.mu.Unlock()
}

// Start enables the trigger timer.
func (m *Mock) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrRunning
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.done = make(chan struct{})
	m.running = true

	go m.run(m.ctx, m.done)
	return nil
}

// Stop disables the trigger timer and waits for it to exit.
func (m *Mock) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	done := m.done
	m.running = false
	m.mu.Unlock()

	<-done
	return nil
}

// IsRunning reports whether the trigger timer is enabled.
func (m *Mock) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Mock) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	trigger := time.NewTicker(m.acq.TriggerInterval)
	defer trigger.Stop()

	var spurious <-chan time.Time
	if m.cfg.SpuriousWake > 0 {
		t := time.NewTicker(m.cfg.SpuriousWake)
		defer t.Stop()
		spurious = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-trigger.C:
			m.Trigger()
		case <-spurious:
			m.mu.RLock()
			h := m.onWake
			m.mu.RUnlock()
			if h != nil {
				h()
			}
		}
	}
}

// Trigger performs one scan of all channels.
func (m *Mock) Trigger() {
	m.mu.Lock()
	n := m.scans
	m.scans++
	temp := m.temperature
	light := m.lightLevel
	m.mu.Unlock()

	ref := m.cfg.ReferenceCounts
	therm := sample.CountsForTemperature(temp, int32(ref), m.therm)

	var als uint16
	if light < 0 {
		als = DarkRaw
	} else {
		als = clampCounts(float64(sample.CountsForLight(light, m.light)) + m.noise(n, 1))
	}

	scan := [NumChannels]RawSample{
		{Channel: Reference, Value: clampCounts(float64(ref) + m.noise(n, 0))},
		{Channel: Thermistor, Value: clampCounts(float64(therm) + m.noise(n, 2))},
		{Channel: Light, Value: als},
	}
	for _, s := range scan {
		if err := m.fifo.Push(s); err != nil {
			log.Printf("Mock SAR: dropping %s sample: %v", s.Channel, err)
		}
	}
}

// noise is a deterministic pseudo-noise term, different per channel.
func (m *Mock) noise(scan uint64, phase float64) float64 {
	if m.cfg.Noise == 0 {
		return 0
	}
	x := float64(scan)
	return (math.Sin(x*0.37+phase) + math.Cos(x*0.113+2*phase)) * m.cfg.Noise * 0.5
}

func clampCounts(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	return uint16(math.Round(v))
}
