package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Env holds settings taken from the process environment.
type Env struct {
	DatabaseURL string `envconfig:"DATABASE_URL" default:"newsfetcher.db"`
	ConfigFile  string `envconfig:"NEWSFETCHER_CONFIG"`
	LogLevel    string `envconfig:"NEWSFETCHER_LOG_LEVEL"`
}

// LoadEnv reads .env files (when present) and then the environment.
// Variables already set in the environment win over .env entries.
func LoadEnv(files ...string) (*Env, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return &env, nil
}

// Load resolves the configuration for a run: the file named by
// NEWSFETCHER_CONFIG when set, the defaults otherwise. A valid
// NEWSFETCHER_LOG_LEVEL overrides the configured level.
func Load(env *Env) (*Config, error) {
	cfg := DefaultConfig()

	if env.ConfigFile != "" {
		loaded, err := LoadConfig(env.ConfigFile)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if env.LogLevel != "" {
		if !ValidLogLevel(env.LogLevel) {
			return nil, fmt.Errorf("NEWSFETCHER_LOG_LEVEL: %w", ErrInvalidLogLevel)
		}

		cfg.Logging.Level = env.LogLevel
	}

	return cfg, nil
}
