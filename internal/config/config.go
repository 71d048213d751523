package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mkm418/padel-intelligence/internal/platform/logging"
)

// Config stores runtime configuration for the reconciliation jobs.
type Config struct {
	AppEnv                         string
	ServiceName                    string
	ServiceVersion                 string
	LogLevel                       logging.Level
	LogFormat                      logging.Format
	DBURL                          string
	DBBinaryParameters             bool
	DBMaxOpenConns                 int
	UptraceEnabled                 bool
	UptraceDSN                     string
	PyroscopeEnabled               bool
	PyroscopeServerAddress         string
	PyroscopeAppName               string
	PyroscopeAuthToken             string
	PyroscopeBasicAuthUser         string
	PyroscopeBasicAuthPassword     string
	PyroscopeUploadRate            time.Duration
	PlaytomicBaseURL               string
	PlaytomicToken                 string
	PlaytomicTimeout               time.Duration
	PlaytomicMaxRetries            int
	PlaytomicRequestsPerSecond     float64
	PlaytomicPageSize              int
	PlaytomicMaxPages              int
	PlaytomicTenantIDs             []string
	PlaytomicTenantCacheTTL        time.Duration
	PlaytomicCircuitEnabled        bool
	PlaytomicCircuitFailureCount   int
	PlaytomicCircuitOpenTimeout    time.Duration
	PlaytomicCircuitHalfOpenMaxReq int
	SyncBatchSize                  int
	SyncBatchDelay                 time.Duration
	SyncOverlapWindow              time.Duration
	SyncInitialLookback            time.Duration
	SyncWriteChunkSize             int
	SyncHistoryChunkSize           int
	SyncWatchInterval              time.Duration
	CheckpointDir                  string
	CheckpointParallelism          int
	ExportDir                      string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	dbBinaryParameters, err := strconv.ParseBool(getEnv("DB_BINARY_PARAMETERS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}

	playtomicTimeout, err := getEnvAsPositiveDuration("PLAYTOMIC_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	playtomicMaxRetries, err := getEnvAsInt("PLAYTOMIC_MAX_RETRIES", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYTOMIC_MAX_RETRIES: %w", err)
	}
	if playtomicMaxRetries < 0 {
		return Config{}, fmt.Errorf("PLAYTOMIC_MAX_RETRIES must be >= 0")
	}
	playtomicRPS, err := strconv.ParseFloat(getEnv("PLAYTOMIC_REQUESTS_PER_SECOND", "5"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYTOMIC_REQUESTS_PER_SECOND: %w", err)
	}
	if playtomicRPS < 0 {
		return Config{}, fmt.Errorf("PLAYTOMIC_REQUESTS_PER_SECOND must be >= 0")
	}
	playtomicPageSize, err := getEnvAsInt("PLAYTOMIC_PAGE_SIZE", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYTOMIC_PAGE_SIZE: %w", err)
	}
	if playtomicPageSize <= 0 {
		return Config{}, fmt.Errorf("PLAYTOMIC_PAGE_SIZE must be > 0")
	}
	playtomicMaxPages, err := getEnvAsInt("PLAYTOMIC_MAX_PAGES", 200)
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYTOMIC_MAX_PAGES: %w", err)
	}
	if playtomicMaxPages <= 0 {
		return Config{}, fmt.Errorf("PLAYTOMIC_MAX_PAGES must be > 0")
	}
	playtomicTenantCacheTTL, err := getEnvAsPositiveDuration("PLAYTOMIC_TENANT_CACHE_TTL", "6h")
	if err != nil {
		return Config{}, err
	}
	playtomicCircuitEnabled, err := strconv.ParseBool(getEnv("PLAYTOMIC_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYTOMIC_CIRCUIT_ENABLED: %w", err)
	}
	playtomicCircuitFailureCount, err := getEnvAsInt("PLAYTOMIC_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYTOMIC_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if playtomicCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("PLAYTOMIC_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	playtomicCircuitOpenTimeout, err := getEnvAsPositiveDuration("PLAYTOMIC_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	playtomicCircuitHalfOpenMaxReq, err := getEnvAsInt("PLAYTOMIC_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYTOMIC_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if playtomicCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("PLAYTOMIC_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	syncBatchSize, err := getEnvAsInt("SYNC_BATCH_SIZE", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_BATCH_SIZE: %w", err)
	}
	if syncBatchSize < 1 {
		return Config{}, fmt.Errorf("SYNC_BATCH_SIZE must be >= 1")
	}
	syncBatchDelay, err := time.ParseDuration(getEnv("SYNC_BATCH_DELAY", "500ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_BATCH_DELAY: %w", err)
	}
	if syncBatchDelay < 0 {
		return Config{}, fmt.Errorf("SYNC_BATCH_DELAY must be >= 0")
	}
	syncOverlapWindow, err := time.ParseDuration(getEnv("SYNC_OVERLAP_WINDOW", "72h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_OVERLAP_WINDOW: %w", err)
	}
	if syncOverlapWindow < 0 {
		return Config{}, fmt.Errorf("SYNC_OVERLAP_WINDOW must be >= 0")
	}
	syncInitialLookback, err := getEnvAsPositiveDuration("SYNC_INITIAL_LOOKBACK", "720h")
	if err != nil {
		return Config{}, err
	}
	syncWriteChunkSize, err := getEnvAsInt("SYNC_WRITE_CHUNK_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_WRITE_CHUNK_SIZE: %w", err)
	}
	if syncWriteChunkSize < 1 {
		return Config{}, fmt.Errorf("SYNC_WRITE_CHUNK_SIZE must be >= 1")
	}
	syncHistoryChunkSize, err := getEnvAsInt("SYNC_HISTORY_CHUNK_SIZE", 200)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_HISTORY_CHUNK_SIZE: %w", err)
	}
	if syncHistoryChunkSize < 1 {
		return Config{}, fmt.Errorf("SYNC_HISTORY_CHUNK_SIZE must be >= 1")
	}
	syncWatchInterval, err := getEnvAsPositiveDuration("SYNC_WATCH_INTERVAL", "1h")
	if err != nil {
		return Config{}, err
	}

	checkpointParallelism, err := getEnvAsInt("CHECKPOINT_PARALLELISM", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKPOINT_PARALLELISM: %w", err)
	}
	if checkpointParallelism < 1 {
		return Config{}, fmt.Errorf("CHECKPOINT_PARALLELISM must be >= 1")
	}

	serviceName := getEnv("APP_SERVICE_NAME", "padel-intelligence-reconcile")
	cfg := Config{
		AppEnv:                         appEnv,
		ServiceName:                    serviceName,
		ServiceVersion:                 getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                      logging.ParseFormat(getEnv("APP_LOG_FORMAT", string(logging.FormatJSON))),
		DBURL:                          strings.TrimSpace(getEnv("DB_URL", "")),
		DBBinaryParameters:             dbBinaryParameters,
		DBMaxOpenConns:                 dbMaxOpenConns,
		UptraceEnabled:                 uptraceEnabled,
		UptraceDSN:                     uptraceDSN,
		PyroscopeEnabled:               pyroscopeEnabled,
		PyroscopeServerAddress:         pyroscopeServerAddress,
		PyroscopeAppName:               getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:             strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:         strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:            pyroscopeUploadRate,
		PlaytomicBaseURL:               strings.TrimSpace(getEnv("PLAYTOMIC_BASE_URL", "https://api.playtomic.io/v1")),
		PlaytomicToken:                 strings.TrimSpace(getEnv("PLAYTOMIC_TOKEN", "")),
		PlaytomicTimeout:               playtomicTimeout,
		PlaytomicMaxRetries:            playtomicMaxRetries,
		PlaytomicRequestsPerSecond:     playtomicRPS,
		PlaytomicPageSize:              playtomicPageSize,
		PlaytomicMaxPages:              playtomicMaxPages,
		PlaytomicTenantIDs:             splitCSV(getEnv("PLAYTOMIC_TENANT_IDS", "")),
		PlaytomicTenantCacheTTL:        playtomicTenantCacheTTL,
		PlaytomicCircuitEnabled:        playtomicCircuitEnabled,
		PlaytomicCircuitFailureCount:   playtomicCircuitFailureCount,
		PlaytomicCircuitOpenTimeout:    playtomicCircuitOpenTimeout,
		PlaytomicCircuitHalfOpenMaxReq: playtomicCircuitHalfOpenMaxReq,
		SyncBatchSize:                  syncBatchSize,
		SyncBatchDelay:                 syncBatchDelay,
		SyncOverlapWindow:              syncOverlapWindow,
		SyncInitialLookback:            syncInitialLookback,
		SyncWriteChunkSize:             syncWriteChunkSize,
		SyncHistoryChunkSize:           syncHistoryChunkSize,
		SyncWatchInterval:              syncWatchInterval,
		CheckpointDir:                  strings.TrimSpace(getEnv("CHECKPOINT_DIR", "./data/checkpoints")),
		CheckpointParallelism:          checkpointParallelism,
		ExportDir:                      strings.TrimSpace(getEnv("EXPORT_DIR", "./data/export")),
	}

	return cfg, nil
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

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
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

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
