package device

import (
	"time"

	"github.com/ridershield/ridershield/pkg/logger"
)

// Defaults for session pumps.
const (
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 64 * 1024
	defaultSendBuffer     = 64
)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithInbound sets where device frames are submitted.
func WithInbound(in Inbound) Option {
	return func(h *Hub) { h.inbound = in }
}

// WithPongWait sets how long a silent session is kept; pings go out at 90% of it.
func WithPongWait(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pongWait = d
		}
	}
}

// WithSendBuffer sets the per-session outbound buffer.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithCheckOrigin overrides the upgrader origin check.
func WithCheckOrigin(fn func(origin string) bool) Option {
	return func(h *Hub) { h.checkOrigin = fn }
}
