package device

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/itohio/lpsense/pkg/acq"
	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/filter"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/itohio/lpsense/pkg/sampler"
	"github.com/itohio/lpsense/pkg/sar"
)

// Simulator runs the complete sampling core against the simulated converter
// in-process and delivers its reports.
type Simulator struct {
	cfg     *config.Config
	bufSize int

	mu        sync.RWMutex
	mock      *sar.Mock
	loop      *sampler.Loop
	samples   chan sample.Sample
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// NewSimulator creates a simulator using the acquisition, filter, conversion
// and mock scene settings from cfg.
func NewSimulator(cfg *config.Config, bufSize int) *Simulator {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Simulator{
		cfg:     cfg,
		bufSize: bufSize,
		samples: make(chan sample.Sample, bufSize),
	}
}

// Connect builds the sampling chain and starts the converter.
func (s *Simulator) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return ErrConnected
	}

	bank, err := filter.NewBank(s.cfg.Filter)
	if err != nil {
		return fmt.Errorf("failed to create filter bank: %w", err)
	}

	mock := sar.NewMock(s.cfg.Acquisition, s.cfg.Mock, s.cfg.Thermistor, s.cfg.Light)
	bridge := acq.New(bank, sar.NewSignal(), s.cfg.Light)
	mock.FIFO().SetLevelHandler(bridge.OnWatermark)
	mock.SetWakeHandler(bridge.Signal().Wake)

	out := make(chan sample.Sample, s.bufSize)
	loop := sampler.New(s.cfg.Sampler, s.cfg.Thermistor, s.cfg.Light, bridge, mock.FIFO(), nil, chanReporter(out))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Simulator sampling halted: %v", err)
		}
	}()

	if err := mock.Start(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("failed to start converter: %w", err)
	}

	s.mock = mock
	s.loop = loop
	s.samples = out
	s.cancel = cancel
	s.done = done
	s.connected = true

	return nil
}

// Close stops the converter and the sampling loop. The samples channel is
// closed once the loop exits.
func (s *Simulator) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	mock := s.mock
	cancel := s.cancel
	done := s.done
	s.connected = false
	s.mu.Unlock()

	if err := mock.Stop(); err != nil {
		log.Printf("Error stopping converter: %v", err)
	}
	cancel()
	<-done
	return nil
}

// Samples returns the channel of reports for the current connection.
func (s *Simulator) Samples() <-chan sample.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples
}

// IsConnected returns whether the simulator is running.
func (s *Simulator) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// SetTemperature changes the simulated thermistor temperature.
func (s *Simulator) SetTemperature(c float64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return ErrNotConnected
	}
	s.mock.SetTemperature(c)
	return nil
}

// SetLight changes the simulated ambient light. Negative means fully dark.
func (s *Simulator) SetLight(percent int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return ErrNotConnected
	}
	s.mock.SetLight(percent)
	return nil
}

// Cycles returns the number of processed cycles of the running loop.
func (s *Simulator) Cycles() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loop == nil {
		return 0
	}
	return s.loop.Cycles()
}

// chanReporter delivers reports to a channel without blocking the loop.
type chanReporter chan<- sample.Sample

func (c chanReporter) Report(s sample.Sample) error {
	select {
	case c <- s:
		return nil
	default:
		return errors.New("samples channel full")
	}
}
