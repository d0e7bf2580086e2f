// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server and CORS.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RateLimitConfig provides per-IP rate limit settings for the public API.
type RateLimitConfig interface {
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// LocationCacheConfig provides the remote cache credentials and fallback sizing.
// The REST backend is used only when both URL and token are present; REDIS_URL
// is the next choice.
type LocationCacheConfig interface {
	GetLocationCacheRESTURL() string
	GetLocationCacheRESTToken() string
	GetLocationCacheRESTTimeout() time.Duration
	GetLocationCacheMaxEntries() int
	GetRedisURL() string
}

// GeodataConfig provides settings for the upstream geodata signal service.
type GeodataConfig interface {
	GetGeodataAPIURL() string
	GetGeodataAPIKey() string
	GetGeodataTimeout() time.Duration
	IsGeodataEnabled() bool
}

// MatchingConfig provides defaults for the brand matching orchestrator.
type MatchingConfig interface {
	GetMatchMinScore() int
	GetMatchConcurrency() int
}

// Config holds all application configuration.
type Config struct {
	Env           string
	HTTPAddr      string
	DatabaseURL   string
	MigrationsDir string

	JWTAccessSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	RateLimitRPS   float64
	RateLimitBurst int

	LocationCacheRESTURL     string
	LocationCacheRESTToken   string
	LocationCacheRESTTimeout time.Duration
	LocationCacheMaxEntries  int
	RedisURL                 string

	GeodataAPIURL  string
	GeodataAPIKey  string
	GeodataTimeout time.Duration

	MatchMinScore    int
	MatchConcurrency int
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) IsDatabaseEnabled() bool { return c.DatabaseURL != "" }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }
func (c *Config) IsAuthEnabled() bool        { return c.JWTAccessSecret != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RateLimitConfig implementation
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// LocationCacheConfig implementation
func (c *Config) GetLocationCacheRESTURL() string            { return c.LocationCacheRESTURL }
func (c *Config) GetLocationCacheRESTToken() string          { return c.LocationCacheRESTToken }
func (c *Config) GetLocationCacheRESTTimeout() time.Duration { return c.LocationCacheRESTTimeout }
func (c *Config) GetLocationCacheMaxEntries() int            { return c.LocationCacheMaxEntries }
func (c *Config) GetRedisURL() string                        { return c.RedisURL }

// GeodataConfig implementation
func (c *Config) GetGeodataAPIURL() string         { return c.GeodataAPIURL }
func (c *Config) GetGeodataAPIKey() string         { return c.GeodataAPIKey }
func (c *Config) GetGeodataTimeout() time.Duration { return c.GeodataTimeout }
func (c *Config) IsGeodataEnabled() bool           { return c.GeodataAPIURL != "" }

// MatchingConfig implementation
func (c *Config) GetMatchMinScore() int    { return c.MatchMinScore }
func (c *Config) GetMatchConcurrency() int { return c.MatchConcurrency }

// Load reads configuration from the environment, loading a .env file first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		MigrationsDir:            getEnv("MIGRATIONS_DIR", "migrations"),
		JWTAccessSecret:          getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:             corsAllowAll,
		CORSOrigins:              corsOrigins,
		CORSAllowCreds:           strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitRPS:             mustFloat(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst:           mustInt(getEnv("RATE_LIMIT_BURST", "20")),
		LocationCacheRESTURL:     strings.TrimRight(getEnv("LOCATION_CACHE_REST_URL", ""), "/"),
		LocationCacheRESTToken:   getEnv("LOCATION_CACHE_REST_TOKEN", ""),
		LocationCacheRESTTimeout: mustDuration(getEnv("LOCATION_CACHE_REST_TIMEOUT", "0s")),
		LocationCacheMaxEntries:  mustInt(getEnv("LOCATION_CACHE_MAX_ENTRIES", "0")),
		RedisURL:                 getEnv("REDIS_URL", ""),
		GeodataAPIURL:            strings.TrimRight(getEnv("GEODATA_API_URL", ""), "/"),
		GeodataAPIKey:            getEnv("GEODATA_API_KEY", ""),
		GeodataTimeout:           mustDuration(getEnv("GEODATA_TIMEOUT", "10s")),
		MatchMinScore:            mustInt(getEnv("MATCH_MIN_SCORE", "60")),
		MatchConcurrency:         mustInt(getEnv("MATCH_CONCURRENCY", "8")),
	}

	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.LocationCacheMaxEntries < 0 {
		return nil, fmt.Errorf("LOCATION_CACHE_MAX_ENTRIES must not be negative")
	}
	if cfg.MatchConcurrency < 1 {
		cfg.MatchConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func mustFloat(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return f
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
