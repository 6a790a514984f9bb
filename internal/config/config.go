package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/resilience"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service and the CLI.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	LogLevel                logging.Level
	LogFormat               string
	DBURL                   string
	DBDisablePreparedBinary bool
	DBSeedEnabled           bool
	CacheEnabled            bool
	CacheTTL                time.Duration
	CORSAllowedOrigins      []string
	InternalJobToken        string

	AnomalyMinMinutes       int
	AnomalyAttackMultiplier float64
	OwnershipAlertThreshold float64
	PositionCodeMaxLength   int
	PositionExtractMaxDepth int
	ExportEnabled           bool
	ExportDir               string
	IngestDispatchAlerts    bool
	AlertDispatchWorkers    int
	AlertDispatchDelay      time.Duration

	FotMobBaseURL           string
	FotMobUserAgent         string
	FotMobTimeout           time.Duration
	FotMobMaxRetries        int
	FotMobRequestsPerSecond float64
	FotMobCircuit           resilience.CircuitBreakerConfig
	SeedLeagueIDs           []int64
	SeedLookbackDays        int
	SeedMatchesPerDay       int
	SeedWorkers             int

	QStashEnabled       bool
	QStashBaseURL       string
	QStashToken         string
	QStashTargetBaseURL string
	QStashRetries       int
	QStashCircuit       resilience.CircuitBreakerConfig

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// UsesDatabase reports whether the Record Store is Postgres rather than memory.
func (c Config) UsesDatabase() bool {
	return strings.TrimSpace(c.DBURL) != ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "pl-lineup-bot"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                  strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", logging.FormatJSON))),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:           strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		ExportDir:                  strings.TrimSpace(getEnv("EXPORT_DIR", "exports")),
		FotMobBaseURL:              strings.TrimSpace(getEnv("FOTMOB_BASE_URL", "https://www.fotmob.com/api")),
		FotMobUserAgent:            strings.TrimSpace(getEnv("FOTMOB_USER_AGENT", "Mozilla/5.0")),
		QStashBaseURL:              strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io")),
		QStashToken:                strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		QStashTargetBaseURL:        strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if cfg.LogFormat != logging.FormatJSON && cfg.LogFormat != logging.FormatConsole {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", cfg.LogFormat, logging.FormatJSON, logging.FormatConsole)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", "true"); err != nil {
		return Config{}, err
	}
	if cfg.DBSeedEnabled, err = getEnvAsBool("DB_SEED_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "60s"); err != nil {
		return Config{}, err
	}

	if err := loadEngine(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadFotMob(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadQStash(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEngine(cfg *Config) error {
	var err error
	if cfg.AnomalyMinMinutes, err = getEnvAsInt("ANOMALY_MIN_MINUTES", 300); err != nil {
		return fmt.Errorf("parse ANOMALY_MIN_MINUTES: %w", err)
	}
	if cfg.AnomalyMinMinutes <= 0 {
		return fmt.Errorf("ANOMALY_MIN_MINUTES must be > 0")
	}
	if cfg.AnomalyAttackMultiplier, err = getEnvAsFloat("ANOMALY_ATTACK_MULTIPLIER", 2.0); err != nil {
		return fmt.Errorf("parse ANOMALY_ATTACK_MULTIPLIER: %w", err)
	}
	if cfg.AnomalyAttackMultiplier <= 0 {
		return fmt.Errorf("ANOMALY_ATTACK_MULTIPLIER must be > 0")
	}
	if cfg.OwnershipAlertThreshold, err = getEnvAsFloat("OWNERSHIP_ALERT_THRESHOLD", 20.0); err != nil {
		return fmt.Errorf("parse OWNERSHIP_ALERT_THRESHOLD: %w", err)
	}
	if cfg.OwnershipAlertThreshold <= 0 || cfg.OwnershipAlertThreshold > 100 {
		return fmt.Errorf("OWNERSHIP_ALERT_THRESHOLD must be within (0, 100]")
	}
	if cfg.PositionCodeMaxLength, err = getEnvAsInt("POSITION_CODE_MAX_LENGTH", 3); err != nil {
		return fmt.Errorf("parse POSITION_CODE_MAX_LENGTH: %w", err)
	}
	if cfg.PositionCodeMaxLength <= 0 {
		return fmt.Errorf("POSITION_CODE_MAX_LENGTH must be > 0")
	}
	if cfg.PositionExtractMaxDepth, err = getEnvAsInt("POSITION_EXTRACT_MAX_DEPTH", 64); err != nil {
		return fmt.Errorf("parse POSITION_EXTRACT_MAX_DEPTH: %w", err)
	}
	if cfg.PositionExtractMaxDepth <= 0 {
		return fmt.Errorf("POSITION_EXTRACT_MAX_DEPTH must be > 0")
	}

	if cfg.ExportEnabled, err = getEnvAsBool("EXPORT_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.ExportEnabled && cfg.ExportDir == "" {
		return fmt.Errorf("EXPORT_DIR is required when EXPORT_ENABLED=true")
	}
	if cfg.IngestDispatchAlerts, err = getEnvAsBool("INGEST_DISPATCH_ALERTS", "false"); err != nil {
		return err
	}
	if cfg.AlertDispatchWorkers, err = getEnvAsInt("ALERT_DISPATCH_WORKERS", 4); err != nil {
		return fmt.Errorf("parse ALERT_DISPATCH_WORKERS: %w", err)
	}
	if cfg.AlertDispatchWorkers < 1 {
		return fmt.Errorf("ALERT_DISPATCH_WORKERS must be >= 1")
	}
	if cfg.AlertDispatchDelay, err = time.ParseDuration(getEnv("ALERT_DISPATCH_DELAY", "0s")); err != nil {
		return fmt.Errorf("parse ALERT_DISPATCH_DELAY: %w", err)
	}
	if cfg.AlertDispatchDelay < 0 {
		return fmt.Errorf("ALERT_DISPATCH_DELAY must be >= 0")
	}
	return nil
}

func loadFotMob(cfg *Config) error {
	var err error
	if cfg.FotMobTimeout, err = getEnvAsDuration("FOTMOB_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.FotMobMaxRetries, err = getEnvAsInt("FOTMOB_MAX_RETRIES", 2); err != nil {
		return fmt.Errorf("parse FOTMOB_MAX_RETRIES: %w", err)
	}
	if cfg.FotMobMaxRetries < 0 {
		return fmt.Errorf("FOTMOB_MAX_RETRIES must be >= 0")
	}
	if cfg.FotMobRequestsPerSecond, err = getEnvAsFloat("FOTMOB_REQUESTS_PER_SECOND", 2); err != nil {
		return fmt.Errorf("parse FOTMOB_REQUESTS_PER_SECOND: %w", err)
	}
	if cfg.FotMobRequestsPerSecond <= 0 {
		return fmt.Errorf("FOTMOB_REQUESTS_PER_SECOND must be > 0")
	}
	if cfg.FotMobCircuit, err = getCircuitBreaker("FOTMOB"); err != nil {
		return err
	}

	if cfg.SeedLeagueIDs, err = parseIDList(getEnv("SEED_LEAGUE_IDS", "47,48,87,55,54,53")); err != nil {
		return fmt.Errorf("parse SEED_LEAGUE_IDS: %w", err)
	}
	if cfg.SeedLookbackDays, err = getEnvAsInt("SEED_LOOKBACK_DAYS", 14); err != nil {
		return fmt.Errorf("parse SEED_LOOKBACK_DAYS: %w", err)
	}
	if cfg.SeedLookbackDays < 1 {
		return fmt.Errorf("SEED_LOOKBACK_DAYS must be >= 1")
	}
	if cfg.SeedMatchesPerDay, err = getEnvAsInt("SEED_MATCHES_PER_LEAGUE_DAY", 10); err != nil {
		return fmt.Errorf("parse SEED_MATCHES_PER_LEAGUE_DAY: %w", err)
	}
	if cfg.SeedMatchesPerDay < 1 {
		return fmt.Errorf("SEED_MATCHES_PER_LEAGUE_DAY must be >= 1")
	}
	if cfg.SeedWorkers, err = getEnvAsInt("SEED_WORKERS", 4); err != nil {
		return fmt.Errorf("parse SEED_WORKERS: %w", err)
	}
	if cfg.SeedWorkers < 1 {
		return fmt.Errorf("SEED_WORKERS must be >= 1")
	}
	return nil
}

func loadQStash(cfg *Config) error {
	var err error
	if cfg.QStashEnabled, err = getEnvAsBool("QSTASH_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.QStashRetries, err = getEnvAsInt("QSTASH_RETRIES", 3); err != nil {
		return fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if cfg.QStashRetries < 0 {
		return fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	if cfg.QStashCircuit, err = getCircuitBreaker("QSTASH"); err != nil {
		return err
	}
	if !cfg.QStashEnabled {
		return nil
	}
	if cfg.QStashToken == "" {
		return fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
	}
	if cfg.QStashTargetBaseURL == "" {
		return fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
	}
	if cfg.InternalJobToken == "" {
		return fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", "false"); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", "true"); err != nil {
		return err
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	if cfg.PyroscopeEnabled {
		if cfg.PyroscopeServerAddress == "" {
			return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
		}
		if cfg.PyroscopeAppName == "" {
			return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
		}
	}
	return nil
}

// getCircuitBreaker reads <PREFIX>_CIRCUIT_{ENABLED,FAILURE_COUNT,OPEN_TIMEOUT,HALF_OPEN_MAX_REQ}.
func getCircuitBreaker(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()
	var (
		out resilience.CircuitBreakerConfig
		err error
	)

	key := prefix + "_CIRCUIT_ENABLED"
	if out.Enabled, err = getEnvAsBool(key, strconv.FormatBool(defaults.Enabled)); err != nil {
		return out, err
	}

	key = prefix + "_CIRCUIT_FAILURE_COUNT"
	if out.FailureThreshold, err = getEnvAsInt(key, defaults.FailureThreshold); err != nil {
		return out, fmt.Errorf("parse %s: %w", key, err)
	}
	if out.FailureThreshold < 1 {
		return out, fmt.Errorf("%s must be >= 1", key)
	}

	if out.OpenTimeout, err = getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout.String()); err != nil {
		return out, err
	}

	key = prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	if out.HalfOpenMaxReq, err = getEnvAsInt(key, defaults.HalfOpenMaxReq); err != nil {
		return out, fmt.Errorf("parse %s: %w", key, err)
	}
	if out.HalfOpenMaxReq < 1 {
		return out, fmt.Errorf("%s must be >= 1", key)
	}
	return out, nil
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

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(value, 64)
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

// getEnvAsDuration rejects non-positive values.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return out, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseIDList(raw string) ([]int64, error) {
	items := splitCSV(raw)
	out := make([]int64, 0, len(items))
	for _, item := range items {
		value, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %d", value)
		}
		out = append(out, value)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
