package sar

import "sync"

// DefaultFIFODepth matches the hardware result FIFO depth.
const DefaultFIFODepth = 256

// FIFO is the converter result queue. The producer side (scan timer) pushes
// entries, the consumer drains them. When the number of pending entries
// reaches the watermark the level handler is invoked once.
type FIFO struct {
	mu        sync.Mutex
	buf       []RawSample
	head      int
	count     int
	watermark int
	overflows int
	onLevel   func()
}

// NewFIFO creates a FIFO with the given depth and watermark.
func NewFIFO(depth, watermark int) *FIFO {
	if depth <= 0 {
		depth = DefaultFIFODepth
	}
	if watermark <= 0 || watermark > depth {
		watermark = depth
	}
	return &FIFO{
		buf:       make([]RawSample, depth),
		watermark: watermark,
	}
}

// SetLevelHandler registers the watermark interrupt handler.
// The handler runs on the producer's goroutine and must not block.
func (f *FIFO) SetLevelHandler(h func()) {
	f.mu.Lock()
	f.onLevel = h
	f.mu.Unlock()
}

// Push appends an entry. A full FIFO drops the entry and returns ErrFIFOOverflow.
func (f *FIFO) Push(s RawSample) error {
	f.mu.Lock()
	if f.count == len(f.buf) {
		f.overflows++
		f.mu.Unlock()
		return ErrFIFOOverflow
	}
	f.buf[(f.head+f.count)%len(f.buf)] = s
	f.count++
	fire := f.count == f.watermark
	h := f.onLevel
	f.mu.Unlock()

	if fire && h != nil {
		h()
	}
	return nil
}

// Count returns the number of pending entries.
func (f *FIFO) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// Read pops the oldest entry.
func (f *FIFO) Read() (RawSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.count == 0 {
		return RawSample{}, ErrFIFOEmpty
	}
	s := f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.count--
	return s, nil
}

// Watermark returns the configured level.
func (f *FIFO) Watermark() int {
	return f.watermark
}

// Overflows returns how many entries were dropped because the FIFO was full.
func (f *FIFO) Overflows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overflows
}
