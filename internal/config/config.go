package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends understood by STORAGE_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Port            string
	LogLevel        string
	LogFormat       string
	StorageBackend  string
	DataFile        string
	DatabaseURL     string
	DatabaseSSL     bool
	MigrationsPath  string
	RosterFile      string
	PrometheusPort  string
	AllowedOrigins  []string
	StaticDir       string
	TelegramToken   string
	ShutdownTimeout time.Duration
}

// MetricsEnabled reports whether the Prometheus listener should be started.
func (c *Config) MetricsEnabled() bool {
	return c.PrometheusPort != "" && !strings.EqualFold(c.PrometheusPort, "off")
}

// TelegramEnabled reports whether the chat bot should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Load loads configuration from environment variables. Values from a .env
// file in the working directory are applied first without overriding the
// real environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "10000"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
		StorageBackend: strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", BackendFile)),
		DataFile:       getEnvOrDefault("DATA_FILE", "wishlist-data.json"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
		RosterFile:     os.Getenv("ROSTER_FILE"),
		PrometheusPort: getEnvOrDefault("PROMETHEUS_PORT", "9090"),
		AllowedOrigins: splitCSV(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		StaticDir:      os.Getenv("STATIC_DIR"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("unknown LOG_FORMAT %q (want text or json)", cfg.LogFormat)
	}

	var err error
	if err = validatePort("PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled() {
		if err = validatePort("PROMETHEUS_PORT", cfg.PrometheusPort); err != nil {
			return nil, err
		}
	}

	if cfg.DatabaseSSL, err = parseBool("DATABASE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	switch cfg.StorageBackend {
	case BackendFile:
		if cfg.DataFile == "" {
			return nil, fmt.Errorf("DATA_FILE must not be empty for the file backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres backend")
		}
		if cfg.DatabaseURL, err = withSSLMode(cfg.DatabaseURL, cfg.DatabaseSSL); err != nil {
			return nil, err
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want %s, %s or %s)",
			cfg.StorageBackend, BackendFile, BackendPostgres, BackendMemory)
	}

	return cfg, nil
}

// withSSLMode sets sslmode on the connection string unless it is already
// present. Both URL and key=value connection strings are supported.
func withSSLMode(dsn string, ssl bool) (string, error) {
	mode := "disable"
	if ssl {
		mode = "require"
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", mode)
			u.RawQuery = q.Encode()
		}
		return u.String(), nil
	}

	if strings.Contains(dsn, "sslmode=") {
		return dsn, nil
	}
	return strings.TrimSpace(dsn) + " sslmode=" + mode, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return b, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}

func validatePort(key, value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s %d is out of range", key, port)
	}
	return nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
