package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Supported persistence backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config contains runtime configuration required by the service.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	Port     string `env:"PORT"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DBURL       string `env:"DB_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"telemetry.db"`

	// TelemetryKeys, when non-empty, restricts X-Telemetry-Key to these values.
	// Left empty, header presence alone authenticates a request.
	TelemetryKeys []string `env:"TELEMETRY_KEYS" envSeparator:","`

	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"102400"`
	OTelEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"telemetry-ingest"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (Config, error) {
	// Local development convenience; a missing file is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if p := strings.TrimSpace(cfg.Port); p != "" {
		cfg.Addr = ":" + p
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.DBURL = strings.TrimSpace(cfg.DBURL)

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			return Config{}, errors.New("DB_URL required")
		}
	case DriverSQLite:
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return Config{}, errors.New("SQLITE_PATH required")
		}
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.StoreDriver)
	}

	if cfg.MaxBodyBytes <= 0 {
		return Config{}, errors.New("MAX_BODY_BYTES must be positive")
	}

	keys := cfg.TelemetryKeys[:0]
	for _, k := range cfg.TelemetryKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	cfg.TelemetryKeys = keys

	return cfg, nil
}
