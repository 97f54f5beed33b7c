package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridershield/ridershield/internal/ridesim"
	"github.com/ridershield/ridershield/pkg/logger"
)

const defaultRunTimeout = 5 * time.Minute

var (
	cfg        = ridesim.DefaultConfig()
	runTimeout time.Duration
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "ridesim",
	Short: "Drive a RiderShield service with simulated rides",
	Long: `ridesim plays scripted rides against a running RiderShield service.

Scenarios:
  ride      start riding mode and stream GPS samples
  cancel    ride, crash, then press I AM OK
  escalate  ride, crash, and let the countdown run out
  voice     connect as the phone, crash, then speak a phrase

Examples:
  ridesim escalate --url http://localhost:9080
  ridesim voice --phrase "call my wife"
  ridesim ride --samples 100 --interval 1s --speed 95`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logger.Init(logger.WithFile(logFile))
	},
}

func scenarioCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()
			defer func() { _ = logger.Sync() }()

			_, err := ridesim.NewRunner(cfg, logger.Get()).Run(ctx, name)
			return err
		},
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	flags.IntVar(&cfg.Samples, "samples", cfg.Samples, "GPS samples streamed before the crash")
	flags.DurationVar(&cfg.Interval, "interval", cfg.Interval, "delay between GPS samples")
	flags.Float64Var(&cfg.SpeedKmh, "speed", cfg.SpeedKmh, "cruising speed in km/h")
	flags.StringVar(&cfg.Severity, "severity", cfg.Severity, "crash severity: Low, Medium or High")
	flags.DurationVar(&cfg.Wait, "wait", cfg.Wait, "how long to wait for a state change")
	flags.DurationVar(&cfg.Poll, "poll", cfg.Poll, "state polling interval")
	flags.DurationVar(&runTimeout, "deadline", defaultRunTimeout, "overall run deadline")
	flags.StringVar(&logFile, "log", "", "mirror output into this log file")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every request")

	voice := scenarioCmd(ridesim.ScenarioVoice, "Connect as the phone, crash, then speak a phrase")
	voice.Flags().StringVar(&cfg.Phrase, "phrase", cfg.Phrase, "transcript sent while the alert is armed")

	rootCmd.AddCommand(
		scenarioCmd(ridesim.ScenarioRide, "Start riding mode and stream GPS samples"),
		scenarioCmd(ridesim.ScenarioCancel, "Ride, crash, then press I AM OK"),
		scenarioCmd(ridesim.ScenarioEscalate, "Ride, crash, and let the countdown run out"),
		voice,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
