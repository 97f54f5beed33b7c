package device

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ridershield/ridershield/pkg/logger"
)

// session is one connected phone app.
type session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	closeOnce sync.Once
	closed    chan struct{}
}

func newSession(id string, conn *websocket.Conn, buffer int, hub *Hub) *session {
	return &session{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, buffer),
		hub:    hub,
		closed: make(chan struct{}),
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *session) done() <-chan struct{} { return s.closed }

// trySend queues data without blocking.
func (s *session) trySend(data []byte) bool {
	select {
	case <-s.done():
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

func (s *session) reply(f Frame) { //nolint:gocritic // hugeParam: small envelope
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	s.trySend(data)
}

func (s *session) readPump() {
	ctx := context.Background()
	defer func() {
		s.hub.unregister(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(s.hub.maxMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.hub.pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.hub.pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.log.Warn(ctx, "device read error", logger.String("session", s.id), logger.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.hub.pongWait))

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.hub.log.Warn(ctx, "malformed device frame", logger.String("session", s.id), logger.Error(err))
			s.reply(Frame{Type: FrameError, Error: "malformed frame"})
			continue
		}
		s.hub.handleFrame(ctx, s, f)
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(s.hub.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-s.done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
