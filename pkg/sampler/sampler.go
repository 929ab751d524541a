// Package sampler runs the wake/drain/convert/report cycle.
package sampler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itohio/lpsense/pkg/acq"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/itohio/lpsense/pkg/sar"
)

// State of the loop.
type State int

const (
	Sleeping State = iota
	Processing
)

func (s State) String() string {
	if s == Processing {
		return "processing"
	}
	return "sleeping"
}

// Indicator is the two-state status output.
type Indicator interface {
	Set(on bool)
}

// Reporter emits the periodic report. Report returns once the report has left.
type Reporter interface {
	Report(s sample.Sample) error
}

// Config holds the loop parameters.
type Config struct {
	ReportEvery int `yaml:"report_every"` // Report once every N processed cycles
}

// DefaultConfig reports every 5th cycle (500ms at a 100ms wake period).
func DefaultConfig() Config {
	return Config{ReportEvery: 5}
}

// Loop is the sampling loop. Step and Run must be called from one goroutine;
// the accessors and OnUpdate are safe from any goroutine.
type Loop struct {
	cfg   Config
	therm sample.ThermistorConfig
	light sample.LightConfig

	bridge    *acq.Bridge
	queue     acq.Queue
	indicator Indicator
	reporter  Reporter
	now       func() time.Time

	cadence int

	mu      sync.RWMutex
	state   State
	led     bool
	cycles  uint64
	reports uint64
	last    sample.Sample

	callbacks []func(sample.Sample)
	cbMu      sync.RWMutex
}

// New creates a loop. A nil indicator or reporter discards its output.
func New(cfg Config, therm sample.ThermistorConfig, light sample.LightConfig, bridge *acq.Bridge, queue acq.Queue, indicator Indicator, reporter Reporter) *Loop {
	if cfg.ReportEvery <= 0 {
		cfg.ReportEvery = DefaultConfig().ReportEvery
	}
	if indicator == nil {
		indicator = discard{}
	}
	if reporter == nil {
		reporter = discard{}
	}
	return &Loop{
		cfg:       cfg,
		therm:     therm,
		light:     light,
		bridge:    bridge,
		queue:     queue,
		indicator: indicator,
		reporter:  reporter,
		now:       time.Now,
	}
}

// OnUpdate registers a callback invoked after every processed cycle.
func (l *Loop) OnUpdate(cb func(sample.Sample)) {
	l.cbMu.Lock()
	l.callbacks = append(l.callbacks, cb)
	l.cbMu.Unlock()
}

// Run suspends until woken and processes each wake-up. It returns only when
// ctx is done or a cycle fails.
func (l *Loop) Run(ctx context.Context) error {
	signal := l.bridge.Signal()
	for {
		if err := signal.Wait(ctx); err != nil {
			return err
		}
		if _, err := l.Step(); err != nil {
			return err
		}
	}
}

// Step handles one wake-up. Without a pending watermark signal it does nothing
// and returns false. Errors are data-integrity faults and must halt the caller.
func (l *Loop) Step() (bool, error) {
	if !l.bridge.Signal().Take() {
		return false, nil
	}

	l.setState(Processing)
	defer l.setState(Sleeping)

	if _, err := l.bridge.Drain(l.queue); err != nil {
		return true, fmt.Errorf("drain: %w", err)
	}

	r := l.bridge.Readings()
	m := sample.Derive(r[sar.Thermistor], r[sar.Reference], r[sar.Light], l.therm, l.light)
	if m.TemperatureErr != nil {
		log.Printf("Temperature conversion failed: %v", m.TemperatureErr)
	}

	led := l.updateIndicator(m.Light)

	s := sample.Sample{
		Timestamp:        l.now(),
		Temperature:      m.Temperature,
		TemperatureValid: m.TemperatureErr == nil,
		Light:            m.Light,
		Indicator:        led,
		Reference:        r[sar.Reference],
		Thermistor:       r[sar.Thermistor],
		LightCount:       r[sar.Light],
	}

	reported := false
	if l.cadence == l.cfg.ReportEvery-1 {
		if err := l.reporter.Report(s); err != nil {
			log.Printf("Failed to emit report: %v", err)
		}
		l.cadence = 0
		reported = true
	} else {
		l.cadence++
	}

	l.mu.Lock()
	l.cycles++
	if reported {
		l.reports++
	}
	l.last = s
	l.mu.Unlock()

	l.notifyCallbacks(s)
	return true, nil
}

// updateIndicator applies the hysteresis band and returns the indicator state.
func (l *Loop) updateIndicator(light uint8) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	on := l.light.Indicator(l.led, light)
	// Inside the band the output is left alone.
	if light < l.light.LowThreshold || light > l.light.HighThreshold {
		l.indicator.Set(on)
	}
	l.led = on
	return on
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Loop) notifyCallbacks(s sample.Sample) {
	l.cbMu.RLock()
	callbacks := make([]func(sample.Sample), len(l.callbacks))
	copy(callbacks, l.callbacks)
	l.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(s)
	}
}

// State returns the current loop state.
func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Indicator returns the current indicator state.
func (l *Loop) Indicator() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.led
}

// Cycles returns the number of processed cycles.
func (l *Loop) Cycles() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cycles
}

// Reports returns the number of emitted reports.
func (l *Loop) Reports() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reports
}

// Last returns the sample of the latest processed cycle.
func (l *Loop) Last() sample.Sample {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}

type discard struct{}

func (discard) Set(bool)                   {}
func (discard) Report(sample.Sample) error { return nil }
