package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("KBC_STORAGE_TOKEN", "10025-abcdef")
	t.Setenv("KBC_STORAGE_API_URL", "https://connection.keboola.com")
	t.Setenv("KBC_LOG_LEVEL", "INFO")

	cfg, err := loadConfig(serverOptions{
		apiURL:   "https://connection.eu-central-1.keboola.com",
		logLevel: "DEBUG",
	})
	require.NoError(t, err)

	assert.Equal(t, "10025-abcdef", cfg.StorageToken)
	assert.Equal(t, "https://connection.eu-central-1.keboola.com", cfg.StorageAPIURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(serverOptions{configPath: "/nonexistent/config.yaml"})
	require.Error(t, err)
}
