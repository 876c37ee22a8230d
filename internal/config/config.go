package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config captures environment driven configuration values for the gateway.
type Config struct {
	HTTPPort   int    `env:"LIVECLASS_HTTP_PORT" envDefault:"8080"`
	SQLitePath string `env:"LIVECLASS_SQLITE_PATH" envDefault:"liveclass.db"`

	// RedisAddr enables the display-name cache when set. Empty disables it.
	RedisAddr     string `env:"LIVECLASS_REDIS_ADDR"`
	RedisPassword string `env:"LIVECLASS_REDIS_PASSWORD"`

	ProviderBaseURL string `env:"MEETING_PROVIDER_BASE_URL,required"`
	// ProviderName tags meeting references so leases created against a
	// different provider are recognised as stale and replaced.
	ProviderName      string `env:"MEETING_PROVIDER_NAME" envDefault:"dyte"`
	ProviderOrgID     string `env:"MEETING_PROVIDER_ORG_ID,required"`
	ProviderAPIKey    string `env:"MEETING_PROVIDER_API_KEY,required"`
	HostPreset        string `env:"MEETING_HOST_PRESET" envDefault:"group_call_host"`
	ParticipantPreset string `env:"MEETING_PARTICIPANT_PRESET" envDefault:"group_call_participant"`

	IdentityBaseURL string `env:"IDENTITY_SERVICE_URL"`

	// DedupeDailyAttendance collapses repeated joins by the same student on
	// the same day into a single attendance record. Off by default: each
	// successful join is recorded as its own event.
	DedupeDailyAttendance bool `env:"ATTENDANCE_DEDUPE_DAILY" envDefault:"false"`

	LogLevel string `env:"LIVECLASS_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the current process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.HTTPPort <= 0 {
		return Config{}, fmt.Errorf("invalid LIVECLASS_HTTP_PORT: %d", cfg.HTTPPort)
	}
	cfg.ProviderBaseURL = strings.TrimRight(strings.TrimSpace(cfg.ProviderBaseURL), "/")
	cfg.IdentityBaseURL = strings.TrimRight(strings.TrimSpace(cfg.IdentityBaseURL), "/")
	return cfg, nil
}
