package device

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/ridershield/ridershield/internal/domain/model"
)

type recordingInbound struct {
	mu          sync.Mutex
	telemetry   []model.TelemetrySample
	transcripts []string
	got         chan struct{}
	reject      error
}

func newRecordingInbound() *recordingInbound {
	return &recordingInbound{got: make(chan struct{}, 8)}
}

func (r *recordingInbound) SubmitTelemetry(_ context.Context, _ string, s model.TelemetrySample) error {
	r.mu.Lock()
	r.telemetry = append(r.telemetry, s)
	err := r.reject
	r.mu.Unlock()
	r.got <- struct{}{}
	return err
}

func (r *recordingInbound) SubmitTranscript(_ context.Context, _ string, text string) error {
	r.mu.Lock()
	r.transcripts = append(r.transcripts, text)
	err := r.reject
	r.mu.Unlock()
	r.got <- struct{}{}
	return err
}

func connect(srv *httptest.Server) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	return conn, err
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func readFrame(conn *websocket.Conn) (Frame, error) {
	var f Frame
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	err := conn.ReadJSON(&f)
	return f, err
}

func TestHubWithoutDevice(t *testing.T) {
	Convey("Given a hub with no sessions", t, func() {
		h := NewHub()
		ctx := context.Background()

		Convey("Then every sink reports ErrNoDevice", func() {
			So(errors.Is(h.Dial(ctx, model.EmergencyContact{Name: "Wife"}), ErrNoDevice), ShouldBeTrue)
			So(errors.Is(h.Announce(ctx, model.AlertPayload{}), ErrNoDevice), ShouldBeTrue)
			_, err := h.StartCapture(ctx, 15*time.Second)
			So(errors.Is(err, ErrNoDevice), ShouldBeTrue)
			So(errors.Is(h.Vibrate(ctx, nil), ErrNoDevice), ShouldBeTrue)
			So(errors.Is(h.StartRecognition(ctx, "en-US"), ErrNoDevice), ShouldBeTrue)
		})

		Convey("Then publishing state is silent", func() {
			So(func() { h.PublishState(ctx, map[string]string{"state": "idle"}) }, ShouldNotPanic)
		})
	})
}

func TestHubSession(t *testing.T) {
	Convey("Given a connected phone app", t, func() {
		in := newRecordingInbound()
		h := NewHub(WithInbound(in))
		srv := httptest.NewServer(h)
		defer srv.Close()
		defer h.Close()

		conn, err := connect(srv)
		So(err, ShouldBeNil)
		defer conn.Close()
		So(waitFor(func() bool { return h.Sessions() == 1 }), ShouldBeTrue)
		ctx := context.Background()

		Convey("When the engine dials a contact", func() {
			So(h.Dial(ctx, model.EmergencyContact{Name: "Wife", Phone: "+60123456789", Priority: 2}), ShouldBeNil)
			f, err := readFrame(conn)

			Convey("Then the device receives a dial frame", func() {
				So(err, ShouldBeNil)
				So(f.Type, ShouldEqual, FrameDial)
				So(f.Contact.Phone, ShouldEqual, "+60123456789")
			})
		})

		Convey("When capture starts", func() {
			handle, err := h.StartCapture(ctx, 15*time.Second)
			So(err, ShouldBeNil)
			f, _ := readFrame(conn)

			Convey("Then the frame carries the handle and the window", func() {
				So(handle, ShouldNotBeEmpty)
				So(f.Type, ShouldEqual, FrameCaptureStart)
				So(f.Handle, ShouldEqual, handle)
				So(f.MaxSeconds, ShouldEqual, 15)
			})
		})

		Convey("When the device vibrates", func() {
			So(h.Vibrate(ctx, []time.Duration{time.Second, 500 * time.Millisecond}), ShouldBeNil)
			f, _ := readFrame(conn)

			Convey("Then the pattern is in milliseconds", func() {
				So(f.Type, ShouldEqual, FrameVibrate)
				So(f.PatternMs, ShouldResemble, []int64{1000, 500})
			})
		})

		Convey("When the device pushes telemetry and speech", func() {
			speed := 42.0
			So(conn.WriteJSON(Frame{Type: FrameTelemetry, ID: "t1", Telemetry: &model.TelemetrySample{Latitude: 2.7, Longitude: 101.9, SpeedKmh: &speed}}), ShouldBeNil)
			So(conn.WriteJSON(Frame{Type: FrameTranscript, ID: "s1", Text: "call wife"}), ShouldBeNil)
			<-in.got
			<-in.got

			Convey("Then both reach the inbound sink", func() {
				in.mu.Lock()
				defer in.mu.Unlock()
				So(in.telemetry, ShouldHaveLength, 1)
				So(in.telemetry[0].Speed(), ShouldEqual, 42.0)
				So(in.transcripts, ShouldResemble, []string{"call wife"})
			})
		})

		Convey("When the inbound sink rejects a frame", func() {
			in.mu.Lock()
			in.reject = errors.New("event queue full")
			in.mu.Unlock()
			So(conn.WriteJSON(Frame{Type: FrameTranscript, ID: "s2", Text: "cancel"}), ShouldBeNil)
			f, err := readFrame(conn)

			Convey("Then the device gets an error frame", func() {
				So(err, ShouldBeNil)
				So(f.Type, ShouldEqual, FrameError)
				So(f.ID, ShouldEqual, "s2")
				So(f.Error, ShouldContainSubstring, "queue full")
			})
		})

		Convey("When the device pings", func() {
			So(conn.WriteJSON(Frame{Type: FramePing, ID: "p1"}), ShouldBeNil)
			f, _ := readFrame(conn)

			Convey("Then it gets a pong", func() {
				So(f.Type, ShouldEqual, FramePong)
				So(f.ID, ShouldEqual, "p1")
			})
		})

		Convey("When the device sends an unknown frame", func() {
			So(conn.WriteJSON(Frame{Type: "selfie"}), ShouldBeNil)
			f, _ := readFrame(conn)

			Convey("Then it gets an error frame", func() {
				So(f.Type, ShouldEqual, FrameError)
			})
		})

		Convey("When the device disconnects", func() {
			_ = conn.Close()

			Convey("Then the session is dropped", func() {
				So(waitFor(func() bool { return h.Sessions() == 0 }), ShouldBeTrue)
			})
		})
	})
}
