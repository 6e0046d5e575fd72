package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, exit, err := ParseWithEnv(nil, map[string]string{}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.Output)
	require.Equal(t, 10*time.Second, cfg.AnnounceTimeout)
	require.Empty(t, cfg.ModulesPath)
	require.Empty(t, cfg.Resolve)
}

func TestParse_EnvDefaultsAndFlagPrecedence(t *testing.T) {
	t.Parallel()

	environ := map[string]string{
		"PERFBRIDGE_MODULES_PATH": "/etc/perfbridge",
		"PERFBRIDGE_LOG_LEVEL":    "debug",
		"PERFBRIDGE_OUTPUT":       "json",
	}

	cfg, _, err := ParseWithEnv(nil, environ, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "/etc/perfbridge", cfg.ModulesPath)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.Output)

	cfg, _, err = ParseWithEnv([]string{"-log-level", "WARN", "-output", "text", "-resolve", "BugsnagPerformance"}, environ, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "text", cfg.Output)
	require.Equal(t, "BugsnagPerformance", cfg.Resolve)
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, exit, err := ParseWithEnv([]string{"-h"}, map[string]string{}, out)
	require.NoError(t, err)
	require.True(t, exit)
	require.Nil(t, cfg)
	require.Contains(t, out.String(), "Usage:")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		environ map[string]string
		wantMsg string
	}{
		{"unknown flag", []string{"-nope"}, nil, "flag provided but not defined"},
		{"positional", []string{"extra"}, nil, "unexpected arguments: extra"},
		{"log format", []string{"-log-format", "xml"}, nil, "invalid log-format"},
		{"log level", []string{"-log-level", "trace"}, nil, "invalid log-level"},
		{"output", []string{"-output", "yaml"}, nil, "invalid output"},
		{"bad env", nil, map[string]string{"PERFBRIDGE_HEALTHCHECK_PORT": "abc"}, "parse env"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			environ := tc.environ
			if environ == nil {
				environ = map[string]string{}
			}
			_, exit, err := ParseWithEnv(tc.args, environ, &bytes.Buffer{})
			require.False(t, exit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			require.Equal(t, 2, exitErr.Code)
			require.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
