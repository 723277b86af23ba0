//go:build integration

package database_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nightstay/backend-go/internal/database"
	"github.com/nightstay/backend-go/internal/database/models"
	"github.com/nightstay/backend-go/internal/database/repository"
)

// setupPostgres starts PostgreSQL, applies the goose migrations and opens gorm on it
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("nightstay_test"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(sqlDB))
	// Applying twice is a no-op.
	require.NoError(t, database.RunMigrations(sqlDB))

	return db
}

func TestPostgres_ConcurrentUpsertKeepsOneRow(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	user := &models.User{Email: "owner@example.com", Password: "hash"}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, user))

	locations := repository.NewLocationRepository(db)
	home := &models.Location{UserID: user.ID, Name: "Home"}
	parents := &models.Location{UserID: user.ID, Name: "Parents"}
	require.NoError(t, locations.Create(ctx, home))
	require.NoError(t, locations.Create(ctx, parents))

	entries := repository.NewSleepEntryRepository(db)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := home.ID
			if i%2 == 1 {
				target = parents.ID
			}
			_, err := entries.Upsert(ctx, user.ID, "2024-01-15", target)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&models.SleepEntry{}).Where("user_id = ? AND date = ?", user.ID, "2024-01-15").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPostgres_DeleteUsedLocationIsRejected(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	user := &models.User{Email: "owner@example.com", Password: "hash"}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, user))

	locations := repository.NewLocationRepository(db)
	home := &models.Location{UserID: user.ID, Name: "Home"}
	require.NoError(t, locations.Create(ctx, home))

	_, err := repository.NewSleepEntryRepository(db).Upsert(ctx, user.ID, "2024-01-15", home.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, locations.DeleteUnused(ctx, user.ID, home.ID), repository.ErrLocationInUse)

	// The foreign key holds even without the repository check.
	err = db.Where("id = ?", home.ID).Delete(&models.Location{}).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestPostgres_DuplicateEmail(t *testing.T) {
	db := setupPostgres(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@example.com", Password: "hash"}))
	assert.ErrorIs(t, users.Create(ctx, &models.User{Email: "a@example.com", Password: "hash"}), repository.ErrEmailTaken)
}
