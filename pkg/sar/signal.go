package sar

import (
	"context"
	"sync/atomic"
)

// Signal is the single cross-context hand-off between the watermark interrupt
// and the sampling loop. It carries at most one pending notification: raising
// an already raised signal is a no-op.
type Signal struct {
	raised atomic.Bool
	wake   chan struct{}
}

// NewSignal creates a cleared signal.
func NewSignal() *Signal {
	return &Signal{wake: make(chan struct{}, 1)}
}

// Raise sets the flag and wakes the waiter. Safe to call from the interrupt side.
func (s *Signal) Raise() {
	s.raised.Store(true)
	s.Wake()
}

// Wake releases Wait without setting the flag, like any other interrupt would.
func (s *Signal) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Take clears the flag and reports whether it was set.
func (s *Signal) Take() bool {
	return s.raised.Swap(false)
}

// Raised reports the flag without clearing it.
func (s *Signal) Raised() bool {
	return s.raised.Load()
}

// Wait suspends until the next wake-up or until ctx is done.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
