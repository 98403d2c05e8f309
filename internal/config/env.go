package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds service endpoints and process-level switches.
type Env struct {
	PerceptionURL string `env:"FOCUSCAM_PERCEPTION_URL"`
	APIKey        string `env:"FOCUSCAM_API_KEY"`
	NarrationURL  string `env:"FOCUSCAM_NARRATION_URL"`
	NarrationKey  string `env:"FOCUSCAM_NARRATION_KEY"`
	DataDir       string `env:"FOCUSCAM_DATA_DIR"`
	LogLevel      string `env:"FOCUSCAM_LOG_LEVEL" envDefault:"info"`
	OTelEndpoint  string `env:"FOCUSCAM_OTEL_ENDPOINT" envDefault:"http://localhost:4318"`
	OTelEnabled   bool   `env:"FOCUSCAM_OTEL_ENABLED" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses Env from the process environment.
// The narration key falls back to the perception key.
func LoadEnv() (Env, error) {
	var cfg Env
	if err := ParseEnv(&cfg); err != nil {
		return Env{}, err
	}
	if cfg.NarrationKey == "" {
		cfg.NarrationKey = cfg.APIKey
	}
	return cfg, nil
}
