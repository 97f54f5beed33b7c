package worker

import "errors"

var (
	ErrUnknownEvent = errors.New("unknown event kind")
	ErrNilTimer     = errors.New("timer event without callback")
)
