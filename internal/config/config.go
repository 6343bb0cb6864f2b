package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppEnv string

const (
	AppEnvDev   AppEnv = "dev"
	AppEnvStage AppEnv = "stage"
	AppEnvProd  AppEnv = "prod"
)

// Config holds the runtime configuration, loaded once at startup from
// environment variables.
type Config struct {
	AppEnv  AppEnv
	AppName string

	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	CORSAllowOrigins []string

	DatabaseURL             string
	DBDisablePreparedBinary bool
	DBMaxOpenConns          int
	DBMaxIdleConns          int

	InternalJobToken string

	CalculationCooldown time.Duration

	CacheEnabled bool
	CacheTTL     time.Duration

	NotifierEnabled  bool
	NotifierEndpoint string
	NotifierToken    string
	NotifierTimeout  time.Duration

	RescrapeEnabled bool
	RescrapeBaseURL string
	RescrapeWorkers int

	MetricsEnabled bool
	PprofEnabled   bool
	PprofAddr      string

	UptraceDSN         string
	PyroscopeEnabled   bool
	PyroscopeServerURL string

	LogLevel string
}

// Load reads configuration from the environment and fails fast on anything
// malformed, so misconfiguration surfaces at startup instead of mid-request.
func Load() (*Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	readTimeout, err := getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	writeTimeout, err := getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cooldown, err := getEnvAsDuration("CALCULATION_COOLDOWN", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cacheTTL, err := getEnvAsDuration("CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	notifierTimeout, err := getEnvAsDuration("ADMIN_NOTIFIER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	maxOpen, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	maxIdle, err := getEnvAsInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	rescrapeWorkers, err := getEnvAsInt("RESCRAPE_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := &Config{
		AppEnv:  appEnv,
		AppName: getEnv("APP_NAME", "peloton-api"),

		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		HTTPReadTimeout:  readTimeout,
		HTTPWriteTimeout: writeTimeout,
		CORSAllowOrigins: splitCSV(getEnv("CORS_ALLOW_ORIGINS", "*")),

		DatabaseURL:             os.Getenv("DATABASE_URL"),
		DBDisablePreparedBinary: getEnvAsBool("DB_DISABLE_PREPARED_BINARY", false),
		DBMaxOpenConns:          maxOpen,
		DBMaxIdleConns:          maxIdle,

		InternalJobToken: os.Getenv("INTERNAL_JOB_TOKEN"),

		CalculationCooldown: cooldown,

		CacheEnabled: getEnvAsBool("CACHE_ENABLED", true),
		CacheTTL:     cacheTTL,

		NotifierEnabled:  getEnvAsBool("ADMIN_NOTIFIER_ENABLED", false),
		NotifierEndpoint: os.Getenv("ADMIN_NOTIFIER_ENDPOINT"),
		NotifierToken:    os.Getenv("ADMIN_NOTIFIER_TOKEN"),
		NotifierTimeout:  notifierTimeout,

		RescrapeEnabled: getEnvAsBool("RESCRAPE_ENABLED", false),
		RescrapeBaseURL: os.Getenv("RESCRAPE_BASE_URL"),
		RescrapeWorkers: rescrapeWorkers,

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		PprofEnabled:   getEnvAsBool("PPROF_ENABLED", false),
		PprofAddr:      getEnv("PPROF_ADDR", "localhost:6060"),

		UptraceDSN:         os.Getenv("UPTRACE_DSN"),
		PyroscopeEnabled:   getEnvAsBool("PYROSCOPE_ENABLED", false),
		PyroscopeServerURL: os.Getenv("PYROSCOPE_SERVER_URL"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppEnv != AppEnvDev && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required outside dev")
	}
	if c.AppEnv != AppEnvDev && c.InternalJobToken == "" {
		return fmt.Errorf("INTERNAL_JOB_TOKEN is required outside dev")
	}
	if c.NotifierEnabled && c.NotifierEndpoint == "" {
		return fmt.Errorf("ADMIN_NOTIFIER_ENDPOINT is required when the admin notifier is enabled")
	}
	if c.RescrapeEnabled && c.RescrapeBaseURL == "" {
		return fmt.Errorf("RESCRAPE_BASE_URL is required when rescrape publishing is enabled")
	}
	if c.RescrapeWorkers < 1 {
		return fmt.Errorf("RESCRAPE_WORKERS must be at least 1")
	}
	if c.CalculationCooldown < 0 {
		return fmt.Errorf("CALCULATION_COOLDOWN must not be negative")
	}
	return nil
}

// IsDev reports whether idempotency guards and internal-token auth are
// relaxed for local development.
func (c *Config) IsDev() bool {
	return c.AppEnv == AppEnvDev
}

func parseAppEnv(raw string) (AppEnv, error) {
	switch AppEnv(strings.ToLower(strings.TrimSpace(raw))) {
	case AppEnvDev:
		return AppEnvDev, nil
	case AppEnvStage:
		return AppEnvStage, nil
	case AppEnvProd:
		return AppEnvProd, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q (want dev, stage, or prod)", raw)
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
