// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/statline/statline/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the ingestion service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	DBURL          string

	FetchTimeout            time.Duration
	FetchMaxRetries         int
	FetchBackoffBase        time.Duration
	FetchBackoffMax         time.Duration
	FetchDelayMin           time.Duration
	FetchDelayMax           time.Duration
	FetchBreakerFailures    int
	FetchBreakerOpenTimeout time.Duration

	IngestMaxWorkers int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string

	PprofEnabled bool
	PprofAddr    string

	BetterStackEnabled  bool
	BetterStackEndpoint string
	BetterStackToken    string
	BetterStackTimeout  time.Duration
	BetterStackMinLevel logging.Level

	LogLevel logging.Level
}

func Load() (Config, error) {
	cfg := Config{}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}
	cfg.AppEnv = appEnv
	cfg.ServiceName = getEnv("APP_SERVICE_NAME", "statline")
	cfg.ServiceVersion = getEnv("APP_SERVICE_VERSION", "dev")

	cfg.DBURL = strings.TrimSpace(getEnv("DATABASE_URL", ""))
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	fetchTimeout, err := time.ParseDuration(getEnv("FETCH_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_TIMEOUT: %w", err)
	}
	cfg.FetchTimeout = fetchTimeout

	fetchMaxRetries, err := getEnvAsInt("FETCH_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_MAX_RETRIES: %w", err)
	}
	if fetchMaxRetries < 1 {
		return Config{}, fmt.Errorf("FETCH_MAX_RETRIES must be >= 1")
	}
	cfg.FetchMaxRetries = fetchMaxRetries

	fetchBackoffBase, err := time.ParseDuration(getEnv("FETCH_BACKOFF_BASE", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_BACKOFF_BASE: %w", err)
	}
	cfg.FetchBackoffBase = fetchBackoffBase

	fetchBackoffMax, err := time.ParseDuration(getEnv("FETCH_BACKOFF_MAX", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_BACKOFF_MAX: %w", err)
	}
	cfg.FetchBackoffMax = fetchBackoffMax

	fetchDelayMin, err := time.ParseDuration(getEnv("FETCH_DELAY_MIN", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_DELAY_MIN: %w", err)
	}
	fetchDelayMax, err := time.ParseDuration(getEnv("FETCH_DELAY_MAX", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_DELAY_MAX: %w", err)
	}
	if fetchDelayMax < fetchDelayMin {
		return Config{}, fmt.Errorf("FETCH_DELAY_MAX must be >= FETCH_DELAY_MIN")
	}
	cfg.FetchDelayMin = fetchDelayMin
	cfg.FetchDelayMax = fetchDelayMax

	fetchBreakerFailures, err := getEnvAsInt("FETCH_BREAKER_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_BREAKER_FAILURE_COUNT: %w", err)
	}
	if fetchBreakerFailures < 1 {
		return Config{}, fmt.Errorf("FETCH_BREAKER_FAILURE_COUNT must be >= 1")
	}
	cfg.FetchBreakerFailures = fetchBreakerFailures

	fetchBreakerOpenTimeout, err := time.ParseDuration(getEnv("FETCH_BREAKER_OPEN_TIMEOUT", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_BREAKER_OPEN_TIMEOUT: %w", err)
	}
	if fetchBreakerOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FETCH_BREAKER_OPEN_TIMEOUT must be > 0")
	}
	cfg.FetchBreakerOpenTimeout = fetchBreakerOpenTimeout

	ingestMaxWorkers, err := getEnvAsInt("INGEST_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse INGEST_MAX_WORKERS: %w", err)
	}
	if ingestMaxWorkers < 1 || ingestMaxWorkers > 16 {
		return Config{}, fmt.Errorf("INGEST_MAX_WORKERS must be in [1, 16]")
	}
	cfg.IngestMaxWorkers = ingestMaxWorkers

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceEnabled = uptraceEnabled
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeEnabled = pyroscopeEnabled
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName)
	cfg.PyroscopeAuthToken = getEnv("PYROSCOPE_AUTH_TOKEN", "")
	cfg.PyroscopeBasicAuthUser = getEnv("PYROSCOPE_BASIC_AUTH_USER", "")
	cfg.PyroscopeBasicAuthPassword = getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofEnabled = pprofEnabled
	cfg.PprofAddr = getEnv("PPROF_ADDR", "localhost:6060")

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	cfg.BetterStackEnabled = betterStackEnabled
	cfg.BetterStackEndpoint = strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if cfg.BetterStackEnabled && cfg.BetterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	cfg.BetterStackToken = strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", ""))
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	cfg.BetterStackTimeout = betterStackTimeout
	cfg.BetterStackMinLevel = parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	switch v {
	case EnvDev, EnvStage, EnvProd:
		return v, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}
