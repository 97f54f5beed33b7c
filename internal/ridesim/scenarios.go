package ridesim

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ridershield/ridershield/pkg/logger"
)

type rideResponse struct {
	Riding  bool `json:"riding"`
	Changed bool `json:"changed"`
}

type cancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

type listenResponse struct {
	Listening bool `json:"listening"`
}

type episodeRecord struct {
	Episode     string `json:"episode"`
	Outcome     string `json:"outcome"`
	CancelledBy string `json:"cancelled_by"`
}

// playRide starts a ride and streams the route.
func (r *Runner) playRide(ctx context.Context, stats *Stats) error {
	var ride rideResponse
	code, err := r.client.Post(ctx, "/ride/start", nil, &ride)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: POST /ride/start status %d", ErrUnexpected, code)
	}

	if err := r.submitRoute(ctx, stats); err != nil {
		return err
	}

	st, err := r.state(ctx)
	if err != nil {
		return err
	}
	stats.FinalState = st.Engine.State
	if !st.Riding {
		return fmt.Errorf("%w: riding mode is off after the ride started", ErrUnexpected)
	}
	return nil
}

// submitRoute pushes the generated samples one by one.
func (r *Runner) submitRoute(ctx context.Context, stats *Stats) error {
	for _, sample := range generateRoute(r.cfg.Samples, r.cfg.Interval, r.cfg.SpeedKmh, time.Now()) {
		var ack AckResponse
		code, err := r.client.Post(ctx, "/telemetry", sample, &ack)
		stats.SamplesSubmitted++
		switch {
		case err != nil:
			stats.SamplesFailed++
			r.log.Warn(ctx, "telemetry rejected", logger.Error(err))
		case code == http.StatusAccepted:
			stats.SamplesAccepted++
		case code == http.StatusOK && ack.Duplicate:
			stats.SamplesDuplicate++
		default:
			stats.SamplesFailed++
			r.log.Warn(ctx, "telemetry rejected", logger.Int("status", code))
		}
		if r.cfg.Verbose {
			r.log.Info(ctx, "telemetry", logger.String("event", sample.EventID),
				logger.Float64("lat", sample.Latitude), logger.Float64("lon", sample.Longitude))
		}
		if err := r.sleep(ctx, r.cfg.Interval); err != nil {
			return err
		}
	}
	return nil
}

// trigger arms the alert and returns its episode.
func (r *Runner) trigger(ctx context.Context) (string, error) {
	var snap Snapshot
	code, err := r.client.Post(ctx, "/alert/trigger", map[string]string{"severity": r.cfg.Severity}, &snap)
	if err != nil {
		return "", err
	}
	switch code {
	case http.StatusOK:
		r.log.Info(ctx, "crash alert armed", logger.String("episode", snap.Episode),
			logger.Int("countdown", snap.RemainingSeconds))
		return snap.Episode, nil
	case http.StatusConflict:
		return "", fmt.Errorf("%w: an alert is already in progress", ErrUnexpected)
	default:
		return "", fmt.Errorf("%w: POST /alert/trigger status %d", ErrUnexpected, code)
	}
}

// playCancel crashes mid-ride and presses I AM OK.
func (r *Runner) playCancel(ctx context.Context, stats *Stats) error {
	if err := r.playRide(ctx, stats); err != nil {
		return err
	}
	episode, err := r.trigger(ctx)
	if err != nil {
		return err
	}
	stats.Episode = episode

	if _, err := r.waitFor(ctx, "armed", func(st State) bool { return st.Engine.State == "armed" }); err != nil {
		return err
	}

	var resp cancelResponse
	if _, err := r.client.Post(ctx, "/alert/cancel", nil, &resp); err != nil {
		return err
	}
	if !resp.Cancelled {
		return fmt.Errorf("%w: cancel reported no armed alert", ErrUnexpected)
	}

	st, err := r.waitFor(ctx, "idle", func(st State) bool { return st.Engine.State == "idle" })
	if err != nil {
		return err
	}
	stats.FinalState = st.Engine.State
	return r.verifyOutcome(ctx, episode, "cancelled")
}

// playEscalate crashes mid-ride and lets the countdown run out.
func (r *Runner) playEscalate(ctx context.Context, stats *Stats) error {
	if err := r.playRide(ctx, stats); err != nil {
		return err
	}
	episode, err := r.trigger(ctx)
	if err != nil {
		return err
	}
	stats.Episode = episode

	st, err := r.waitFor(ctx, "escalation", func(st State) bool {
		return st.Engine.LastPayload != nil && st.Engine.LastPayload.Episode == episode
	})
	if err != nil {
		return err
	}
	stats.FinalState = st.Engine.State

	p := st.Engine.LastPayload
	if !p.LocationKnown {
		return fmt.Errorf("%w: escalated without the streamed location", ErrUnexpected)
	}
	r.log.Info(ctx, "alert escalated", logger.String("episode", episode),
		logger.Float64("lat", p.Latitude), logger.Float64("lon", p.Longitude), logger.String("message", p.Message))
	return r.verifyOutcome(ctx, episode, "escalated")
}

// playVoice connects as the phone, crashes, and speaks the configured phrase.
func (r *Runner) playVoice(ctx context.Context, stats *Stats) error {
	conn, err := r.connectDevice(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	go drainFrames(conn)

	var listen listenResponse
	if _, err := r.client.Post(ctx, "/voice/listen", map[string]bool{"active": true}, &listen); err != nil {
		return err
	}
	if !listen.Listening {
		return fmt.Errorf("%w: recognizer did not start", ErrUnexpected)
	}

	if err := r.playRide(ctx, stats); err != nil {
		return err
	}
	episode, err := r.trigger(ctx)
	if err != nil {
		return err
	}
	stats.Episode = episode

	var ack AckResponse
	code, err := r.client.Post(ctx, "/voice/transcripts", Transcript{EventID: uuid.NewString(), Text: r.cfg.Phrase}, &ack)
	if err != nil {
		return err
	}
	if code != http.StatusAccepted {
		return fmt.Errorf("%w: POST /voice/transcripts status %d", ErrUnexpected, code)
	}

	st, err := r.waitFor(ctx, "voice command", func(st State) bool { return st.LastCommand != nil })
	if err != nil {
		return err
	}
	stats.FinalState = st.Engine.State
	r.log.Info(ctx, "voice command recognized",
		logger.String("kind", st.LastCommand.Kind), logger.String("feedback", st.LastCommand.Feedback))

	if st.LastCommand.Kind == "cancel_alert" {
		return r.verifyOutcome(ctx, episode, "cancelled")
	}
	return nil
}

// connectDevice opens the phone websocket.
func (r *Runner) connectDevice(ctx context.Context) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(r.client.baseURL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("connect device: %w", err)
	}
	return conn, nil
}

// drainFrames discards commands sent to the simulated phone until it closes.
func drainFrames(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// verifyOutcome waits for the episode to appear as the newest audit record.
func (r *Runner) verifyOutcome(ctx context.Context, episode, outcome string) error {
	deadline := time.Now().Add(r.cfg.Wait)
	for {
		var records []episodeRecord
		code, err := r.client.Get(ctx, "/alerts?limit=1", &records)
		if err != nil {
			return err
		}
		if code != http.StatusOK {
			return fmt.Errorf("%w: GET /alerts status %d", ErrUnexpected, code)
		}
		if len(records) > 0 && records[0].Episode == episode {
			if records[0].Outcome != outcome {
				return fmt.Errorf("%w: episode %s ended %s, want %s", ErrUnexpected, episode, records[0].Outcome, outcome)
			}
			r.log.Info(ctx, "audit record verified", logger.String("episode", episode), logger.String("outcome", outcome))
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: audit record for %s", ErrTimeout, episode)
		}
		if err := r.sleep(ctx, r.cfg.Poll); err != nil {
			return err
		}
	}
}
