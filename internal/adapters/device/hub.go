// Package device connects the phone app over a websocket. The app is both a
// source (telemetry, recognized speech) and the sink for every physical side
// effect: dialing, speech, camera capture, vibration and the recognizer.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
	"github.com/ridershield/ridershield/pkg/metrics"
)

// Inbound receives stream input from devices.
type Inbound interface {
	SubmitTelemetry(ctx context.Context, eventID string, s model.TelemetrySample) error
	SubmitTranscript(ctx context.Context, eventID, text string) error
}

// Hub tracks connected sessions and fans commands out to all of them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	inbound  Inbound

	upgrader    websocket.Upgrader
	checkOrigin func(string) bool
	writeWait   time.Duration
	pongWait    time.Duration
	maxMessage  int64
	sendBuffer  int

	log logger.Logger
}

// NewHub creates a hub with no sessions.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:   make(map[string]*session),
		writeWait:  defaultWriteWait,
		pongWait:   defaultPongWait,
		maxMessage: defaultMaxMessageSize,
		sendBuffer: defaultSendBuffer,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if h.checkOrigin == nil {
				return true
			}
			return h.checkOrigin(r.Header.Get("Origin"))
		},
	}
	return h
}

// SetInbound wires the inbound sink after construction.
func (h *Hub) SetInbound(in Inbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inbound = in
}

// ServeHTTP upgrades the request and starts the session pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	s := newSession(uuid.NewString(), conn, h.sendBuffer, h)
	h.register(s)

	go s.writePump()
	go s.readPump()
}

// Sessions returns the number of connected sessions.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.close()
		delete(h.sessions, id)
	}
	metrics.UpdateDeviceSessions(0)
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	n := len(h.sessions)
	h.mu.Unlock()

	metrics.UpdateDeviceSessions(n)
	h.log.Info(context.Background(), "device connected", logger.String("session", s.id), logger.Int("sessions", n))
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.id)
	s.close()
	n := len(h.sessions)
	h.mu.Unlock()

	metrics.UpdateDeviceSessions(n)
	h.log.Info(context.Background(), "device disconnected", logger.String("session", s.id), logger.Int("sessions", n))
}

// broadcast queues f on every session without blocking.
func (h *Hub) broadcast(ctx context.Context, f Frame) error { //nolint:gocritic // hugeParam: frame is marshalled once
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", f.Type, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.sessions) == 0 {
		metrics.RecordErrorByComponent("device", "no_device")
		return ErrNoDevice
	}
	delivered := 0
	for _, s := range h.sessions {
		if s.trySend(data) {
			delivered++
			continue
		}
		h.log.Warn(ctx, "device send buffer full, frame dropped",
			logger.String("session", s.id), logger.String("type", f.Type))
	}
	if delivered == 0 {
		metrics.RecordErrorByComponent("device", "send_buffer_full")
		return ErrSendBufferFull
	}
	return nil
}

// Dial asks the phone to call a contact.
func (h *Hub) Dial(ctx context.Context, c model.EmergencyContact) error {
	return h.broadcast(ctx, Frame{Type: FrameDial, Contact: &c})
}

// Announce asks the phone to speak the alert message.
func (h *Hub) Announce(ctx context.Context, p model.AlertPayload) error {
	return h.broadcast(ctx, Frame{Type: FrameAnnounce, Message: p.Message, Payload: &p})
}

// StartCapture starts the evidence recorder and returns its handle.
func (h *Hub) StartCapture(ctx context.Context, maxDuration time.Duration) (string, error) {
	handle := uuid.NewString()
	err := h.broadcast(ctx, Frame{Type: FrameCaptureStart, Handle: handle, MaxSeconds: int(maxDuration / time.Second)})
	if err != nil {
		return "", err
	}
	return handle, nil
}

// StopCapture stops the recording identified by handle.
func (h *Hub) StopCapture(ctx context.Context, handle string) error {
	return h.broadcast(ctx, Frame{Type: FrameCaptureStop, Handle: handle})
}

// Vibrate plays a vibration pattern.
func (h *Hub) Vibrate(ctx context.Context, pattern []time.Duration) error {
	ms := make([]int64, len(pattern))
	for i, d := range pattern {
		ms[i] = d.Milliseconds()
	}
	return h.broadcast(ctx, Frame{Type: FrameVibrate, PatternMs: ms})
}

// StartRecognition starts continuous speech recognition in locale.
func (h *Hub) StartRecognition(ctx context.Context, locale string) error {
	return h.broadcast(ctx, Frame{Type: FrameListenStart, Locale: locale})
}

// StopRecognition stops speech recognition.
func (h *Hub) StopRecognition(ctx context.Context) error {
	return h.broadcast(ctx, Frame{Type: FrameListenStop})
}

// PublishState pushes a display update. Having no device is not an error here.
func (h *Hub) PublishState(ctx context.Context, state interface{}) {
	if err := h.broadcast(ctx, Frame{Type: FrameState, State: state}); err != nil && !errors.Is(err, ErrNoDevice) {
		h.log.Debug(ctx, "state publish failed", logger.Error(err))
	}
}

// handleFrame processes one inbound frame from s.
func (h *Hub) handleFrame(ctx context.Context, s *session, f Frame) { //nolint:gocritic // hugeParam: decoded frame
	h.mu.RLock()
	in := h.inbound
	h.mu.RUnlock()

	var err error
	switch f.Type {
	case FramePing:
		s.reply(Frame{Type: FramePong, ID: f.ID})
		return
	case FrameTelemetry:
		if f.Telemetry == nil {
			err = fmt.Errorf("%w: telemetry frame without sample", ErrUnknownFrame)
			break
		}
		if in != nil {
			err = in.SubmitTelemetry(ctx, f.ID, *f.Telemetry)
		}
	case FrameTranscript:
		if in != nil {
			err = in.SubmitTranscript(ctx, f.ID, f.Text)
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
	}

	if err != nil {
		h.log.Warn(ctx, "device frame rejected",
			logger.String("session", s.id), logger.String("type", f.Type), logger.Error(err))
		s.reply(Frame{Type: FrameError, ID: f.ID, Error: err.Error()})
	}
}
