package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/perfbridge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments with defaults from the process
// environment. It returns a populated Config, a boolean indicating if the
// program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return ParseWithEnv(args, nil, output)
}

// ParseWithEnv is Parse with an explicit environment. A nil environ means
// the process environment.
func ParseWithEnv(args []string, environ map[string]string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	defaults, err := loadEnvDefaults(environ)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("perfbridge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
perfbridge - native module registry for the performance monitoring bridge.

Loads the module manifests, boots an application context (constructing
every eagerly initialized module), and prints the module catalog.

Usage:
  perfbridge [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	modulesPathFlag := flagSet.String("modules-path", defaults.ModulesPath, "Path to extra module manifests (.hcl), loaded after the built-in ones.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	outputFlag := flagSet.String("output", defaults.Output, "Catalog output format. Options: 'text' or 'json'.")
	resolveFlag := flagSet.String("resolve", "", "Name of a module to construct after boot.")
	healthPortFlag := flagSet.Int("healthcheck-port", defaults.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled.")
	announceURLFlag := flagSet.String("announce-url", defaults.AnnounceURL, "Socket.IO URL of a development host to announce the catalog to.")
	announceTimeoutFlag := flagSet.Duration("announce-timeout", defaults.AnnounceTimeout, "Timeout for announcing the catalog.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}
	slog.Debug("Arguments parsed successfully.")

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ModulesPath:     *modulesPathFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		Output:          strings.ToLower(*outputFlag),
		Resolve:         *resolveFlag,
		HealthcheckPort: *healthPortFlag,
		AnnounceURL:     *announceURLFlag,
		AnnounceTimeout: *announceTimeoutFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
