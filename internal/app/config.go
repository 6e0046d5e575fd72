package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModulesPath string // extra manifests on disk, loaded after the embedded ones

	LogFormat string
	LogLevel  string
	// Output selects how the catalog is printed: "text" or "json".
	Output string
	// Resolve names a module to instantiate after boot. Empty skips it.
	Resolve string

	HealthcheckPort int
	AnnounceURL     string
	AnnounceTimeout time.Duration
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Output {
	case "":
		cfg.Output = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid output %q: must be 'text' or 'json'", cfg.Output)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.AnnounceURL != "" && cfg.AnnounceTimeout <= 0 {
		return nil, errors.New("announce timeout must be positive when an announce URL is set")
	}
	return &cfg, nil
}
