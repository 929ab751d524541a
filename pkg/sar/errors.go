package sar

// error definitions
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrFIFOEmpty    = Error("fifo empty")
	ErrFIFOOverflow = Error("fifo overflow")
	ErrRunning      = Error("already running")
)
