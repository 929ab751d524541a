package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/itohio/lpsense/pkg/report"
	"github.com/itohio/lpsense/pkg/sample"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the board's debug UART rate.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

var (
	ErrConnected    = errors.New("already connected")
	ErrNotConnected = errors.New("not connected")
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Serial reads report lines from a board's UART.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	light    sample.LightConfig

	conn      serial.Port
	samples   chan sample.Sample
	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// NewSerial creates a serial device. Reports carry no indicator state, so it
// is reconstructed on the host with the light thresholds.
func NewSerial(port string, baudRate int, bufSize int, light sample.LightConfig) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		light:    light,
		samples:  make(chan sample.Sample, bufSize),
	}
}

// Connect opens the serial port and starts reading reports.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrConnected
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = port
	d.cancel = cancel
	d.done = make(chan struct{})
	d.samples = make(chan sample.Sample, d.bufSize)
	d.connected = true

	go d.readSamples(ctx, port, d.samples, d.done)

	return nil
}

// Close closes the port. The samples channel is closed once the reader exits.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.cancel()
	if err := d.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	d.conn = nil
	d.connected = false
	done := d.done
	d.mu.Unlock()

	<-done
	return nil
}

// Samples returns the channel of parsed reports for the current connection.
func (d *Serial) Samples() <-chan sample.Sample {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.samples
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines until the reader fails or ctx is cancelled, then
// closes the samples channel.
func (d *Serial) readSamples(ctx context.Context, r io.Reader, out chan<- sample.Sample, done chan struct{}) {
	defer close(done)
	defer close(out)

	led := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		s, err := report.Parse(line, time.Now())
		if err != nil {
			// Banner and other chatter are expected.
			if !errors.Is(err, report.ErrFormat) {
				log.Printf("Failed to parse line '%s': %v", line, err)
			}
			continue
		}
		led = d.light.Indicator(led, s.Light)
		s.Indicator = led

		select {
		case out <- s:
		case <-ctx.Done():
			return
		default:
			log.Printf("Samples channel full, dropping sample")
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("Error reading from serial port: %v", err)
	}
}
