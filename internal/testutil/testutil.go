package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nightstay/backend-go/internal/config"
	"github.com/nightstay/backend-go/internal/database"
	"github.com/nightstay/backend-go/internal/database/models"
)

// TestConfig returns a config suitable for unit tests
func TestConfig() *config.Config {
	return &config.Config{
		AppEnv:                 "test",
		LogLevel:               slog.LevelError,
		JWTSecret:              "test-secret",
		AccessTokenExpiration:  900,
		RefreshTokenExpiration: 3600,
		CalendarStateTTL:       3600,
		MaxLoginAttempts:       3,
		LoginLockoutWindow:     900,
		RequestTimeout:         5,
		Timezone:               "UTC",
	}
}

// TestLogger returns a logger that discards output
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SetupTestDB creates a new in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// CreateUser inserts a user with a placeholder password hash
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, Password: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateLocation inserts a location owned by userID
func CreateLocation(t *testing.T, db *gorm.DB, userID uint, name string) *models.Location {
	t.Helper()

	location := &models.Location{UserID: userID, Name: name}
	require.NoError(t, db.Omit("User").Create(location).Error)
	return location
}

// AllowAllThrottle returns a login throttle that never blocks
func AllowAllThrottle() *MockLoginThrottle {
	throttle := new(MockLoginThrottle)
	throttle.On("Allow", mock.Anything, mock.Anything).Return(true, nil).Maybe()
	throttle.On("RecordFailure", mock.Anything, mock.Anything).Return(nil).Maybe()
	throttle.On("Reset", mock.Anything, mock.Anything).Return(nil).Maybe()
	return throttle
}

// AuthorizedRouter returns a gin engine in test mode whose requests carry userID,
// as the auth middleware would set it
func AuthorizedRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	return r
}
