package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Success(t *testing.T) {
	t.Setenv("API_SERVICE_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/nights.db")
	t.Setenv("CALENDAR_STATE_TTL", "60")
	t.Setenv("MAX_LOGIN_ATTEMPTS", "0")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.ApiServicePort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "/tmp/nights.db", cfg.SQLitePath)
	assert.Equal(t, int64(60), cfg.CalendarStateTTL)
	assert.Equal(t, int64(0), cfg.MaxLoginAttempts)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"API_SERVICE_PORT", "DATABASE_DRIVER", "REQUEST_TIMEOUT", "MAX_LOGIN_ATTEMPTS", "APP_TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, int64(10), cfg.RequestTimeout)
	assert.Equal(t, int64(900), cfg.LoginLockoutWindow)
	assert.Equal(t, int64(7776000), cfg.CalendarStateTTL)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("REDIS_PORT", "-")

	cfg := LoadConfig()

	// Should use default when invalid
	assert.Equal(t, int64(10), cfg.RequestTimeout)
	assert.Equal(t, int64(6379), cfg.RedisPort)
}

func TestLoadConfig_LogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{value: "debug", want: slog.LevelDebug},
		{value: "INFO", want: slog.LevelInfo},
		{value: "warn", want: slog.LevelWarn},
		{value: "Error", want: slog.LevelError},
		{value: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.value)
			assert.Equal(t, tt.want, LoadConfig().LogLevel)
		})
	}
}

func TestConfig_PostgresDSN(t *testing.T) {
	cfg := &Config{
		PostgreSQLHost:     "db",
		PostgreSQLPort:     5432,
		PostgreSQLUser:     "u",
		PostgreSQLPassword: "p",
		PostgreSQLDatabase: "nights",
	}

	assert.Equal(t, "host=db user=u password=p dbname=nights port=5432 sslmode=disable TimeZone=UTC", cfg.PostgresDSN())
}

func TestConfig_Location(t *testing.T) {
	loc, err := (&Config{Timezone: "Local"}).Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = (&Config{}).Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = (&Config{Timezone: "UTC"}).Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = (&Config{Timezone: "Mars/Olympus"}).Location()
	assert.Error(t, err)
}
