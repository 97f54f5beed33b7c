package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/ridershield/ridershield/internal/config"
)

var configEnvVars = []string{ //nolint:gochecknoglobals // test fixture
	"RIDERSHIELD_CONFIG",
	"RIDERSHIELD_ADDR",
	"RIDERSHIELD_QUEUE_SIZE",
	"RIDERSHIELD_COUNTDOWN_SECONDS",
	"RIDERSHIELD_AUTO_SAVE",
	"RIDERSHIELD_LANGUAGE",
	"RIDERSHIELD_RIDER_FULL_NAME",
	"RIDERSHIELD_RIDING_SPEED_KMH",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.CountdownSeconds, convey.ShouldEqual, 30)
				convey.So(cfg.CaptureWindowSeconds, convey.ShouldEqual, 15)
				convey.So(cfg.RidingSpeedKmh, convey.ShouldEqual, 15)
				convey.So(cfg.AutoSave, convey.ShouldBeTrue)
				convey.So(cfg.Language, convey.ShouldEqual, "EN")
				convey.So(cfg.Rider.FullName, convey.ShouldEqual, "John Rider")
				convey.So(cfg.Contacts, convey.ShouldHaveLength, 4)
				convey.So(cfg.Contacts[0].Protected, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RIDERSHIELD_ADDR", ":8080")
			_ = os.Setenv("RIDERSHIELD_QUEUE_SIZE", "64")
			_ = os.Setenv("RIDERSHIELD_COUNTDOWN_SECONDS", "10")
			_ = os.Setenv("RIDERSHIELD_AUTO_SAVE", "false")
			_ = os.Setenv("RIDERSHIELD_LANGUAGE", "bm")
			_ = os.Setenv("RIDERSHIELD_RIDER_FULL_NAME", "Siti Rider")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.CountdownSeconds, convey.ShouldEqual, 10)
				convey.So(cfg.AutoSave, convey.ShouldBeFalse)
				convey.So(cfg.Language, convey.ShouldEqual, "BM")
				convey.So(cfg.Rider.FullName, convey.ShouldEqual, "Siti Rider")
				convey.So(cfg.Rider.LicensePlate, convey.ShouldEqual, "ABC 1234")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := filepath.Join(t.TempDir(), "ridershield.yaml")
			yaml := `
addr: ":7000"
capture_window_seconds: 20
nearby_label: "Jalan Duta Toll Plaza"
contacts:
  - name: Mum
    phone: "+60111111111"
    priority: 1
  - name: Friend
    phone: "+60122222222"
    priority: 6
`
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("RIDERSHIELD_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values replace the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
				convey.So(cfg.CaptureWindowSeconds, convey.ShouldEqual, 20)
				convey.So(cfg.NearbyLabel, convey.ShouldEqual, "Jalan Duta Toll Plaza")
				convey.So(cfg.Contacts, convey.ShouldHaveLength, 2)
				convey.So(cfg.Contacts[1].Name, convey.ShouldEqual, "Friend")
				convey.So(cfg.Contacts[1].Priority, convey.ShouldEqual, 6)
			})

			convey.Convey("Then env vars still win over the file", func() {
				_ = os.Setenv("RIDERSHIELD_ADDR", ":7001")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7001")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("RIDERSHIELD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then ErrLoadConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When values are invalid", func() {
			_ = os.Setenv("RIDERSHIELD_COUNTDOWN_SECONDS", "0")
			_ = os.Setenv("RIDERSHIELD_LANGUAGE", "FR")
			_ = os.Setenv("RIDERSHIELD_RIDING_SPEED_KMH", "-5")
			_, err := config.Load(ctx)

			convey.Convey("Then ErrInvalidConfig lists the problems", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "countdown_seconds")
				convey.So(err.Error(), convey.ShouldContainSubstring, "language")
				convey.So(err.Error(), convey.ShouldContainSubstring, "riding_speed_kmh")
			})
		})
	})
}

func TestConfigHelpers(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then durations and language are derived", func() {
			convey.So(cfg.CaptureWindow().Seconds(), convey.ShouldEqual, 15)
			convey.So(cfg.CountdownDuration().Seconds(), convey.ShouldEqual, 30)
			convey.So(string(cfg.Lang()), convey.ShouldEqual, "EN")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then an empty address fails validation", func() {
			cfg.Addr = " "
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
