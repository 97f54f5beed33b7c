package queue

import "errors"

// Sentinel errors returned by Enqueue.
var (
	ErrFull   = errors.New("event queue full")
	ErrClosed = errors.New("event queue closed")
)
