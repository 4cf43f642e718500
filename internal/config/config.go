package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"time-report-go/pkg/logger"
)

type Config struct {
	HTTPPort       string
	Env            string
	CORSOrigins    []string
	MetricsEnabled bool
	OTLPEndpoint   string
	ViewCacheTTL   time.Duration
	DB             DBConfig
	Supabase       SupabaseConfig
	Storage        StorageConfig
	Rates          RatesConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type SupabaseConfig struct {
	URL            string
	PublishableKey string
	JWTSecret      string
	AuthTimeout    time.Duration
	SkipAuth       bool
	MockUserID     string
	MockUserEmail  string
	MockUserName   string
	MockUserAvatar string
}

type StorageConfig struct {
	ServiceKey string
	Bucket     string
	Timeout    time.Duration
}

type RatesConfig struct {
	URL            string
	Pivot          string
	TTL            time.Duration
	MaxStale       time.Duration
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ViewCacheTTL:   getEnvDuration("VIEW_CACHE_TTL", time.Minute),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "time_report"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			PublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
			JWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
			AuthTimeout:    getEnvDuration("SUPABASE_AUTH_TIMEOUT", 5*time.Second),
			SkipAuth:       getEnvBool("AUTH_SKIP", false),
			MockUserID:     getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail:  getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:   getEnv("AUTH_MOCK_USER_NAME", ""),
			MockUserAvatar: getEnv("AUTH_MOCK_USER_AVATAR_URL", ""),
		},
		Storage: StorageConfig{
			ServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:     getEnv("SUPABASE_STORAGE_BUCKET", "client-images"),
			Timeout:    getEnvDuration("SUPABASE_STORAGE_TIMEOUT", 10*time.Second),
		},
		Rates: RatesConfig{
			URL:            getEnv("RATES_URL", "https://api.frankfurter.app/latest"),
			Pivot:          strings.ToUpper(getEnv("RATES_PIVOT", "EUR")),
			TTL:            getEnvDuration("RATES_TTL", 24*time.Hour),
			MaxStale:       getEnvDuration("RATES_MAX_STALE", 72*time.Hour),
			Timeout:        getEnvDuration("RATES_TIMEOUT", 10*time.Second),
			MaxRetries:     getEnvInt("RATES_MAX_RETRIES", 2),
			InitialBackoff: getEnvDuration("RATES_INITIAL_BACKOFF", 200*time.Millisecond),
		},
	}

	if cfg.Rates.MaxStale < cfg.Rates.TTL {
		return Config{}, fmt.Errorf("RATES_MAX_STALE (%s) must not be shorter than RATES_TTL (%s)", cfg.Rates.MaxStale, cfg.Rates.TTL)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
