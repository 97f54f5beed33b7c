package ridesim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ridershield/ridershield/pkg/logger"
)

// Errors returned by Run.
var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnhealthy       = errors.New("service unhealthy")
	ErrUnexpected      = errors.New("unexpected service response")
	ErrTimeout         = errors.New("timed out waiting for state")
)

// PercentageMultiplier converts ratios to percentages in the summary.
const PercentageMultiplier = 100

// Runner plays scenarios against one service.
type Runner struct {
	cfg    *Config
	client *Client
	log    logger.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *Config, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		cfg:    cfg,
		client: NewClient(cfg.BaseURL, cfg.Timeout),
		log:    log,
		sleep:  sleepCtx,
	}
}

// Run executes the named scenario end to end.
func (r *Runner) Run(ctx context.Context, scenario string) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	r.log.Info(ctx, "starting ride simulation",
		logger.String("baseURL", r.cfg.BaseURL),
		logger.String("scenario", scenario),
		logger.Int("samples", r.cfg.Samples),
		logger.Float64("speedKmh", r.cfg.SpeedKmh),
		logger.String("severity", r.cfg.Severity))

	var play func(context.Context, *Stats) error
	switch scenario {
	case ScenarioRide:
		play = r.playRide
	case ScenarioCancel:
		play = r.playCancel
	case ScenarioEscalate:
		play = r.playEscalate
	case ScenarioVoice:
		play = r.playVoice
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}

	if err := r.checkServiceHealth(ctx); err != nil {
		return nil, err
	}
	if err := play(ctx, stats); err != nil {
		return stats, fmt.Errorf("%s scenario: %w", scenario, err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	r.displayFinalStats(ctx, scenario, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func (r *Runner) checkServiceHealth(ctx context.Context) error {
	code, err := r.client.Get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, code)
	}
	r.log.Info(ctx, "service is healthy")
	return nil
}

// state fetches GET /state.
func (r *Runner) state(ctx context.Context) (State, error) {
	var st State
	code, err := r.client.Get(ctx, "/state", &st)
	if err != nil {
		return st, err
	}
	if code != http.StatusOK {
		return st, fmt.Errorf("%w: GET /state status %d", ErrUnexpected, code)
	}
	return st, nil
}

// waitFor polls /state until cond holds or the configured wait elapses.
func (r *Runner) waitFor(ctx context.Context, what string, cond func(State) bool) (State, error) {
	deadline := time.Now().Add(r.cfg.Wait)
	for {
		st, err := r.state(ctx)
		if err != nil {
			return st, err
		}
		if cond(st) {
			return st, nil
		}
		if r.cfg.Verbose {
			r.log.Info(ctx, "waiting", logger.String("for", what),
				logger.String("state", st.Engine.State), logger.Int("remaining", st.Engine.RemainingSeconds))
		}
		if time.Now().After(deadline) {
			return st, fmt.Errorf("%w: %s (last state %q)", ErrTimeout, what, st.Engine.State)
		}
		if err := r.sleep(ctx, r.cfg.Poll); err != nil {
			return st, err
		}
	}
}

// displayFinalStats logs the simulation summary.
func (r *Runner) displayFinalStats(ctx context.Context, scenario string, stats *Stats) {
	var acceptRate float64
	if stats.SamplesSubmitted > 0 {
		acceptRate = float64(stats.SamplesAccepted) / float64(stats.SamplesSubmitted) * PercentageMultiplier
	}
	r.log.Info(ctx, "simulation finished",
		logger.String("scenario", scenario),
		logger.Int("samplesSubmitted", stats.SamplesSubmitted),
		logger.Int("samplesAccepted", stats.SamplesAccepted),
		logger.Int("samplesDuplicate", stats.SamplesDuplicate),
		logger.Int("samplesFailed", stats.SamplesFailed),
		logger.Float64("acceptRate", acceptRate),
		logger.String("finalState", stats.FinalState),
		logger.String("episode", stats.Episode),
		logger.String("duration", stats.Duration.String()))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
