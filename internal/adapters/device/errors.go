package device

import "errors"

var (
	// ErrNoDevice is returned by every sink when no phone app is connected.
	ErrNoDevice = errors.New("no device session connected")
	// ErrSendBufferFull is returned when every connected session is backed up.
	ErrSendBufferFull = errors.New("device send buffer full")
	// ErrUnknownFrame is reported back to a session that sent an unsupported frame.
	ErrUnknownFrame = errors.New("unknown frame type")
)
