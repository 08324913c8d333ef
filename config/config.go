// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"fee-engine"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		// Path is the SQLite database file; ":memory:" for ephemeral runs.
		Path string `envconfig:"DB_PATH" default:"fees.db"`
	}

	School struct {
		// ConfigPath points at the school configuration JSON (fee schedules,
		// class sequence, allowed payment modes and accounts).
		ConfigPath string `envconfig:"SCHOOL_CONFIG" default:"school.json"`

		// ScheduleFallback serves missing fee schedules from the most recent
		// earlier priced year instead of failing the rollover.
		ScheduleFallback bool `envconfig:"SCHEDULE_FALLBACK" default:"true"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"json"`
	}
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.App.Port)
	}
	return cfg, nil
}
