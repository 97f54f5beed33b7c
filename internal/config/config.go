// Package config defines service configuration and its defaults.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ridershield/ridershield/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile mirrors logs into a rotated file when set.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxBackups int    `koanf:"log_max_backups"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the stream event queue.
	EventQueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the pushed event id cache.
	DedupeSize int `koanf:"dedupe_size"`

	CountdownSeconds     int     `koanf:"countdown_seconds"`
	CaptureWindowSeconds int     `koanf:"capture_window_seconds"`
	RidingSpeedKmh       float64 `koanf:"riding_speed_kmh"`

	// AutoSave starts evidence capture when an alert arms.
	AutoSave bool `koanf:"auto_save"`

	// Language is EN, CN or BM.
	Language string `koanf:"language"`

	// NearbyLabel is the human readable location used in announcements.
	NearbyLabel string `koanf:"nearby_label"`

	// MaxAlertsLimit caps GET /alerts?limit.
	MaxAlertsLimit int `koanf:"max_alerts_limit"`

	// AuditCapacity is how many finished episodes are retained.
	AuditCapacity int `koanf:"audit_capacity"`

	// Redis keeps the audit trail when RedisAddr is set; memory otherwise.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`

	// FirebaseCredentials enables FCM push announcements.
	FirebaseCredentials string `koanf:"firebase_credentials"`
	FirebaseTopic       string `koanf:"firebase_topic"`

	// Metrics naming and labels for the Prometheus registry.
	MetricsNamespace      string            `koanf:"metrics_namespace"`
	MetricsSubsystem      string            `koanf:"metrics_subsystem"`
	MetricsLabels         map[string]string `koanf:"metrics_labels"`
	MetricsLatencyBuckets []float64         `koanf:"metrics_latency_buckets"`

	Rider    model.RiderProfile       `koanf:"rider"`
	Contacts []model.EmergencyContact `koanf:"contacts"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogMaxSizeMB:         50,
		LogMaxBackups:        5,
		Addr:                 ":9080",
		EventQueueSize:       1024,
		DedupeSize:           50_000,
		CountdownSeconds:     30,
		CaptureWindowSeconds: 15,
		RidingSpeedKmh:       15,
		AutoSave:             true,
		Language:             string(model.LanguageEN),
		NearbyLabel:          "KM 254.3 PLUS North-South Expressway (Near Seremban)",
		MaxAlertsLimit:       100,
		MetricsNamespace:     "ridershield",
		MetricsSubsystem:     "escalation",
		AuditCapacity:        500,
		RedisKey:             "ridershield:episodes",
		FirebaseTopic:        "ridershield-alerts",
		Rider:                DefaultRider(),
	}
}

// DefaultRider is the demo rider profile.
func DefaultRider() model.RiderProfile {
	return model.RiderProfile{
		FullName:     "John Rider",
		IDNumber:     "950101-14-5555",
		IDVerified:   true,
		BloodType:    "O+",
		Allergies:    "Penicillin",
		Medications:  "None",
		Conditions:   "None",
		VehicleBrand: "Honda CBR500R",
		VehicleColor: "Matte Black",
		LicensePlate: "ABC 1234",
	}
}

// DefaultContacts is the demo directory. Emergency services is protected.
func DefaultContacts() []model.EmergencyContact {
	return []model.EmergencyContact{
		{ID: "emergency-services", Name: "Emergency Services", Phone: "999", Priority: 1, Protected: true},
		{Name: "Wife", Phone: "+60123456789", Priority: 2},
		{Name: "Insurance Hotline", Phone: "+6018882221", Priority: 3},
		{Name: "Brother", Phone: "+60199998888", Priority: 4},
	}
}

// CountdownDuration is the countdown as a duration.
func (c *Config) CountdownDuration() time.Duration {
	return time.Duration(c.CountdownSeconds) * time.Second
}

// CaptureWindow is the evidence capture window.
func (c *Config) CaptureWindow() time.Duration {
	return time.Duration(c.CaptureWindowSeconds) * time.Second
}

// Lang returns the parsed language. Validate must have passed.
func (c *Config) Lang() model.Language {
	l, err := model.ParseLanguage(c.Language)
	if err != nil {
		return model.LanguageEN
	}
	return l
}

// Validate checks the values the service cannot run without.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "addr must not be empty")
	}
	if c.CountdownSeconds <= 0 {
		problems = append(problems, "countdown_seconds must be positive")
	}
	if c.CaptureWindowSeconds <= 0 {
		problems = append(problems, "capture_window_seconds must be positive")
	}
	if c.RidingSpeedKmh < 0 {
		problems = append(problems, "riding_speed_kmh must not be negative")
	}
	if _, err := model.ParseLanguage(c.Language); err != nil {
		problems = append(problems, "language must be one of EN, CN, BM")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
