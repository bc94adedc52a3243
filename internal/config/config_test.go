package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "STORAGE_BACKEND", "DATA_FILE", "DATABASE_URL",
		"DATABASE_SSL", "MIGRATIONS_PATH", "ROSTER_FILE", "PROMETHEUS_PORT",
		"CORS_ALLOWED_ORIGINS", "STATIC_DIR", "TELEGRAM_TOKEN", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "10000", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, BackendFile, cfg.StorageBackend)
	require.Equal(t, "wishlist-data.json", cfg.DataFile)
	require.Equal(t, "migrations", cfg.MigrationsPath)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.True(t, cfg.MetricsEnabled())
	require.False(t, cfg.TelegramEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("STORAGE_BACKEND", "MEMORY")
	t.Setenv("PROMETHEUS_PORT", "off")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "8081", cfg.Port)
	require.Equal(t, BackendMemory, cfg.StorageBackend)
	require.False(t, cfg.MetricsEnabled())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.True(t, cfg.TelegramEnabled())
	require.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnv_Postgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "postgres")

	_, err := FromEnv()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/wishlist")
	t.Setenv("DATABASE_SSL", "true")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@db:5432/wishlist?sslmode=require", cfg.DatabaseURL)

	t.Setenv("DATABASE_SSL", "false")
	t.Setenv("DATABASE_URL", "host=db user=u dbname=wishlist")
	cfg, err = FromEnv()
	require.NoError(t, err)
	require.Equal(t, "host=db user=u dbname=wishlist sslmode=disable", cfg.DatabaseURL)

	t.Setenv("DATABASE_URL", "postgres://db/wishlist?sslmode=verify-full")
	cfg, err = FromEnv()
	require.NoError(t, err)
	require.Equal(t, "postgres://db/wishlist?sslmode=verify-full", cfg.DatabaseURL)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":  {"STORAGE_BACKEND": "redis"},
		"bad port":         {"PORT": "http"},
		"port range":       {"PORT": "70000"},
		"bad metrics port": {"PROMETHEUS_PORT": "-1"},
		"bad ssl flag":     {"DATABASE_SSL": "maybe"},
		"bad timeout":      {"SHUTDOWN_TIMEOUT": "soon"},
		"bad log format":   {"LOG_FORMAT": "xml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}
