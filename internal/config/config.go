package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/relink-app/relink/internal/ua"
)

// DefaultArchivedURL is where archived links redirect when no override is
// configured. Deliberately a default, not a required value: the redirect
// surface keeps serving with minimal config.
const DefaultArchivedURL = "https://relink.example/link-archived"

type Config struct {
	Port        string
	DBPath      string
	BaseURL     string
	JWTSecret   string
	ArchivedURL string
	GeoIPPath   string

	BufferSize     int
	TokenCacheSize int
	LookupTimeout  time.Duration
	RetentionDays  int

	UAFallback         string
	AllowAnonymousEdit bool
	FilterBots         bool
	FilterDatacenter   bool
}

func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	secret := os.Getenv("RELINK_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("RELINK_JWT_SECRET is required")
	}

	cfg := &Config{
		Port:        envOrDefault("RELINK_PORT", "8080"),
		DBPath:      envOrDefault("RELINK_DB_PATH", "./relink.db"),
		BaseURL:     envOrDefault("RELINK_BASE_URL", "http://localhost:8080"),
		JWTSecret:   secret,
		ArchivedURL: envOrDefault("RELINK_ARCHIVED_URL", DefaultArchivedURL),
		GeoIPPath:   os.Getenv("RELINK_GEOIP_PATH"),

		BufferSize:     parseInt("RELINK_BUFFER_SIZE", 50000),
		TokenCacheSize: parseInt("RELINK_TOKEN_CACHE_SIZE", 1024),
		LookupTimeout:  parseDuration("RELINK_LOOKUP_TIMEOUT", 2*time.Second),
		RetentionDays:  parseInt("RELINK_RETENTION_DAYS", 365),

		UAFallback:         envOrDefault("RELINK_UA_FALLBACK", ua.FallbackUnknown),
		AllowAnonymousEdit: parseBool("RELINK_ALLOW_ANONYMOUS_EDIT", true),
		FilterBots:         parseBool("RELINK_FILTER_BOTS", false),
		FilterDatacenter:   parseBool("RELINK_FILTER_DATACENTER", false),
	}

	if cfg.UAFallback != ua.FallbackUnknown && cfg.UAFallback != ua.FallbackOther {
		return nil, fmt.Errorf("RELINK_UA_FALLBACK must be %q or %q", ua.FallbackUnknown, ua.FallbackOther)
	}
	if cfg.BufferSize <= 0 {
		return nil, fmt.Errorf("RELINK_BUFFER_SIZE must be positive")
	}
	if cfg.TokenCacheSize <= 0 {
		return nil, fmt.Errorf("RELINK_TOKEN_CACHE_SIZE must be positive")
	}
	if cfg.LookupTimeout <= 0 {
		return nil, fmt.Errorf("RELINK_LOOKUP_TIMEOUT must be positive")
	}
	if cfg.RetentionDays < 1 || cfg.RetentionDays > 3650 {
		return nil, fmt.Errorf("RELINK_RETENTION_DAYS must be between 1 and 3650")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
