package escalation

import "errors"

// ErrNoSink is logged when an escalation finds no dialer configured.
var ErrNoSink = errors.New("no sink configured")
