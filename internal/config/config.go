package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/fitcoach-api/internal/platform/logging"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	ShutdownTimeout            time.Duration
	MaxBodyBytes               int64
	CORSAllowedOrigin          string
	UserStore                  string
	MongoURI                   string
	MongoDatabase              string
	MongoCollection            string
	MongoConnectTimeout        time.Duration
	DBURL                      string
	DBBinaryParameters         bool
	CacheEnabled               bool
	CacheTTL                   time.Duration
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
	LogLevel                   logging.Level
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	port, err := parsePort(getEnv("PORT", "5000"))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}

	maxBodyBytes, err := getEnvAsInt("APP_MAX_BODY_BYTES", 100<<10)
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_MAX_BODY_BYTES: %w", err)
	}
	if maxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("APP_MAX_BODY_BYTES must be > 0")
	}

	userStore, err := parseUserStore(getEnv("USER_STORE", StoreMongo))
	if err != nil {
		return Config{}, err
	}

	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if userStore == StorePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when USER_STORE=%s", StorePostgres)
	}
	dbBinaryParameters, err := strconv.ParseBool(getEnv("DB_BINARY_PARAMETERS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
	}

	mongoConnectTimeout, err := time.ParseDuration(getEnv("MONGO_CONNECT_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MONGO_CONNECT_TIMEOUT: %w", err)
	}
	if mongoConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("MONGO_CONNECT_TIMEOUT must be > 0")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheEnabled && cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0 when CACHE_ENABLED=true")
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
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "fitcoach-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   ":" + strconv.Itoa(port),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		ShutdownTimeout:            shutdownTimeout,
		MaxBodyBytes:               int64(maxBodyBytes),
		CORSAllowedOrigin:          strings.TrimSpace(getEnv("CORS_ALLOWED_ORIGIN", "http://127.0.0.1:5500")),
		UserStore:                  userStore,
		MongoURI:                   strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase:              strings.TrimSpace(getEnv("MONGO_DATABASE", "")),
		MongoCollection:            strings.TrimSpace(getEnv("MONGO_COLLECTION", "users")),
		MongoConnectTimeout:        mongoConnectTimeout,
		DBURL:                      dbURL,
		DBBinaryParameters:         dbBinaryParameters,
		CacheEnabled:               cacheEnabled,
		CacheTTL:                   cacheTTL,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	return cfg, nil
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

func parsePort(v string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("parse PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	return port, nil
}

func parseUserStore(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StoreMongo, StorePostgres, StoreMemory:
		return value, nil
	case "mongodb":
		return StoreMongo, nil
	default:
		return "", fmt.Errorf("invalid USER_STORE %q: valid values are %s, %s, %s", v, StoreMongo, StorePostgres, StoreMemory)
	}
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
