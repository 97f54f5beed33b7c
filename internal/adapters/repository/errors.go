package repository

import "errors"

// Sentinel kinds for audit store errors.
var (
	ErrInvalidLimit = errors.New("invalid alerts limit")
	ErrUnavailable  = errors.New("audit store unavailable")
)
