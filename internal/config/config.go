package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv                 string
	LogLevel               slog.Level
	LogFile                string
	ApiServicePort         string
	RequestTimeout         int64 // Per-request deadline in seconds
	DatabaseDriver         string
	SQLitePath             string
	PostgreSQLHost         string
	PostgreSQLPort         int64
	PostgreSQLUser         string
	PostgreSQLPassword     string
	PostgreSQLDatabase     string
	JWTSecret              string
	AccessTokenExpiration  int64
	RefreshTokenExpiration int64
	TokenCleanupInterval   int64 // Expired refresh token sweep interval in seconds
	RedisHost              string
	RedisPort              int64
	RedisPassword          string
	RedisDB                int64
	CalendarStateTTL       int64 // Remembered calendar month TTL in seconds
	MaxLoginAttempts       int64
	LoginLockoutWindow     int64 // Failed login counting window in seconds
	Timezone               string
}

func LoadConfig() *Config {
	// A missing .env is fine, the process environment still applies.
	_ = godotenv.Load()

	return &Config{
		AppEnv:                 getEnv("APP_ENV", "development"),                       // Default development
		LogLevel:               getLogLevel(),                                          // Default INFO
		LogFile:                getEnv("LOG_FILE", ""),                                 // Default stdout only
		ApiServicePort:         getEnv("API_SERVICE_PORT", "8080"),                     // Default 8080
		RequestTimeout:         getEnvAsInt64("REQUEST_TIMEOUT", 10),                   // Default 10 seconds
		DatabaseDriver:         strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")), // postgres or sqlite
		SQLitePath:             getEnv("SQLITE_PATH", "nightstay.db"),                  // Default ./nightstay.db
		PostgreSQLHost:         getEnv("POSTGRESQL_HOST", "db"),                        // Default db
		PostgreSQLPort:         getEnvAsInt64("POSTGRESQL_PORT", 5432),                 // Default 5432
		PostgreSQLUser:         getEnv("POSTGRESQL_USER", "nightstay_user"),            // Default user
		PostgreSQLPassword:     getEnv("POSTGRESQL_PASSWORD", "nightstay_password"),    // Default password
		PostgreSQLDatabase:     getEnv("POSTGRESQL_DATABASE", "nightstay_db"),          // Default database name
		JWTSecret:              getEnv("JWT_SECRET", "nightstay_secret"),               // Default secret key
		AccessTokenExpiration:  getEnvAsInt64("ACCESS_TOKEN_EXPIRATION", 900),          // Default 15 minutes
		RefreshTokenExpiration: getEnvAsInt64("REFRESH_TOKEN_EXPIRATION", 2592000),     // Default 30 days
		TokenCleanupInterval:   getEnvAsInt64("TOKEN_CLEANUP_INTERVAL", 3600),          // Default 1 hour
		RedisHost:              getEnv("REDIS_HOST", "redis"),                          // Default redis
		RedisPort:              getEnvAsInt64("REDIS_PORT", 6379),                      // Default 6379
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),                           // Default empty
		RedisDB:                getEnvAsInt64("REDIS_DATABASE", 0),                     // Default 0
		CalendarStateTTL:       getEnvAsInt64("CALENDAR_STATE_TTL", 7776000),           // Default 90 days
		MaxLoginAttempts:       getEnvAsInt64("MAX_LOGIN_ATTEMPTS", 10),                // Default 10, 0 disables
		LoginLockoutWindow:     getEnvAsInt64("LOGIN_LOCKOUT_WINDOW", 900),             // Default 15 minutes
		Timezone:               getEnv("APP_TIMEZONE", "Local"),                        // Default host zone
	}
}

// PostgresDSN builds the connection string shared by gorm and the migration runner.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.PostgreSQLHost,
		c.PostgreSQLUser,
		c.PostgreSQLPassword,
		c.PostgreSQLDatabase,
		c.PostgreSQLPort,
	)
}

// Location resolves Timezone. "Local" and empty map to the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
