package notify

import "errors"

var (
	ErrNoSinks       = errors.New("no sinks configured")
	ErrNoCredentials = errors.New("firebase credentials not configured")
)
