package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	defaultPort               = "8080"
	defaultJWTExpirationHours = 24
	defaultInsightsCacheTTL   = 300
	defaultRequestTimeout     = 8
	defaultTimeZone           = "America/Chicago"
)

type Config struct {
	// runtime environment, "production" switches the logger to JSON
	Env      string
	LogLevel string
	Port     string

	// per-request deadline enforced by the router
	RequestTimeout time.Duration

	// database settings
	DatabaseDriver   string // sqlite or postgres
	DatabasePath     string // sqlite file
	DatabaseURL      string // postgres connection URL
	DatabaseLogLevel string

	// auth settings
	JWTSecret          string
	JWTExpirationHours int
	AllowSignup        bool

	CORSAllowedOrigins []string

	// location used to decide what "today" is
	Location *time.Location

	// insights cache, disabled when RedisURL is empty
	RedisURL         string
	InsightsCacheTTL time.Duration
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %t. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	env := getEnvOrDefault("APP_ENV", "development")

	driver := strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "postgres" {
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER '%s'", driver)
	}
	dbURL := os.Getenv("DATABASE_URL")
	if driver == "postgres" && dbURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER is postgres")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if env == "production" {
			return Config{}, fmt.Errorf("JWT_SECRET must be set in production")
		}
		secret = "dev-only-secret"
		log.Printf("Warning: JWT_SECRET not set, using an insecure development secret")
	}

	tzName := getEnvOrDefault("TIME_ZONE", defaultTimeZone)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load time zone '%s': %w", tzName, err)
	}

	cfg := Config{
		Env:                env,
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		Port:               getEnvOrDefault("PORT", defaultPort),
		RequestTimeout:     time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeout)) * time.Second,
		DatabaseDriver:     driver,
		DatabasePath:       getEnvOrDefault("DATABASE_PATH", "seeds.db"),
		DatabaseURL:        dbURL,
		DatabaseLogLevel:   getEnvOrDefault("DB_LOG_LEVEL", "warn"),
		JWTSecret:          secret,
		JWTExpirationHours: getEnvIntOrDefault("JWT_EXPIRATION_HOURS", defaultJWTExpirationHours),
		AllowSignup:        getEnvBoolOrDefault("ALLOW_SIGNUP", true),
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		Location:           loc,
		RedisURL:           os.Getenv("REDIS_URL"),
		InsightsCacheTTL:   time.Duration(getEnvIntOrDefault("INSIGHTS_CACHE_TTL_SECONDS", defaultInsightsCacheTTL)) * time.Second,
	}

	return cfg, nil
}

// WriteTimeout leaves the server room to send the router's timeout response
// before the connection is cut.
func (c Config) WriteTimeout() time.Duration {
	return c.RequestTimeout + 2*time.Second
}

// DatabaseDSN returns the connection string for the configured driver.
func (c Config) DatabaseDSN() string {
	if c.DatabaseDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}
