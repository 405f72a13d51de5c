// Package config loads tokenreplay defaults from the environment. Command
// flags override every value loaded here.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds defaults read from TOKENREPLAY_* variables.
type Env struct {
	SilentMarker string `env:"TOKENREPLAY_SILENT_MARKER" envDefault:"tau"`
	Workers      int    `env:"TOKENREPLAY_WORKERS" envDefault:"1"`
	LogLevel     string `env:"TOKENREPLAY_LOG_LEVEL" envDefault:"warn"`
	Format       string `env:"TOKENREPLAY_FORMAT" envDefault:"text"`
	DB           string `env:"TOKENREPLAY_DB"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Env from the process environment.
func Load() (Env, error) {
	var cfg Env
	if err := ParseEnv(&cfg); err != nil {
		return Env{}, err
	}
	if cfg.Workers < 1 {
		return Env{}, fmt.Errorf("parse env: TOKENREPLAY_WORKERS must be at least 1, got %d", cfg.Workers)
	}
	return cfg, nil
}
