package acq

// error definitions
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrChannelRange = Error("channel tag out of range")
)
