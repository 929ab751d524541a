package device

import "github.com/itohio/lpsense/pkg/sample"

// Device is a source of report samples (a board on a serial port or the simulator).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan sample.Sample
	IsConnected() bool
}

var _ Device = (*Serial)(nil)

var _ Device = (*Simulator)(nil)
