package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all server settings, loaded from the environment.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	CORSOrigin      string        `env:"CORS_ORIGIN" envDefault:"*"`
	LeaderboardDB   string        `env:"LEADERBOARD_DB" envDefault:"leaderboard.sqlite"`
	LeaderboardSize int           `env:"LEADERBOARD_SIZE" envDefault:"10"`
	Countdown       time.Duration `env:"COUNTDOWN" envDefault:"4s"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
