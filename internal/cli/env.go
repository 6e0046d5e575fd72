package cli

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envDefaults holds the defaults flags fall back to, read from PERFBRIDGE_*
// environment variables.
type envDefaults struct {
	ModulesPath     string        `env:"PERFBRIDGE_MODULES_PATH"`
	LogFormat       string        `env:"PERFBRIDGE_LOG_FORMAT"       envDefault:"text"`
	LogLevel        string        `env:"PERFBRIDGE_LOG_LEVEL"        envDefault:"info"`
	Output          string        `env:"PERFBRIDGE_OUTPUT"           envDefault:"text"`
	HealthcheckPort int           `env:"PERFBRIDGE_HEALTHCHECK_PORT" envDefault:"0"`
	AnnounceURL     string        `env:"PERFBRIDGE_ANNOUNCE_URL"`
	AnnounceTimeout time.Duration `env:"PERFBRIDGE_ANNOUNCE_TIMEOUT" envDefault:"10s"`
}

// loadEnvDefaults parses environ, or the process environment when environ is nil.
func loadEnvDefaults(environ map[string]string) (envDefaults, error) {
	var d envDefaults
	if err := env.ParseWithOptions(&d, env.Options{Environment: environ}); err != nil {
		return envDefaults{}, fmt.Errorf("parse env: %w", err)
	}
	return d, nil
}
