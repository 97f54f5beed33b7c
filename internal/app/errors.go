package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrBackpressure = errors.New("event queue full")
	ErrEmptyInput   = errors.New("empty input")
)
