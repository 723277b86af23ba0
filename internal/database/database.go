package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nightstay/backend-go/internal/config"
	"github.com/nightstay/backend-go/internal/database/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var DATABASE *gorm.DB

// ConnectDatabase opens the configured store and brings its schema up to date.
func ConnectDatabase(cfg *config.Config, logger *slog.Logger) error {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = connectPostgres(cfg, logger)
	case DriverSQLite:
		db, err = connectSQLite(cfg, logger)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return err
	}

	DATABASE = db

	logger.Info("✅ [Database] Database connection established", "driver", cfg.DatabaseDriver)
	return nil
}

func connectPostgres(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	logger.Info("🔌 [Database] Connecting to PostgreSQL...",
		"host", cfg.PostgreSQLHost,
		"port", cfg.PostgreSQLPort,
		"database", cfg.PostgreSQLDatabase,
	)

	var db *gorm.DB
	var err error
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormConfig(cfg))
		if err == nil {
			var sqlDB *sql.DB
			sqlDB, err = db.DB()
			if err == nil {
				if err = sqlDB.Ping(); err == nil {
					break
				}
			}
		}

		if i < maxRetries-1 {
			logger.Warn("⏳ [Database] Connection failed, retrying...",
				"attempt", i+1,
				"max_retries", maxRetries,
				"retry_in", retryDelay,
				"error", err,
			)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	logger.Info("🔄 [Database] Running migrations...")
	if err := RunMigrations(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("✅ [Database] Migrations completed successfully")

	return db, nil
}

// sqliteParams turn on foreign keys and make writers queue for the lock. Transactions
// begin IMMEDIATE because the upsert reads before it writes, and a deferred transaction
// cannot wait for the lock upgrade.
const sqliteParams = "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

// connectSQLite backs local development. The embedded migrations are PostgreSQL
// specific, so the schema comes from the models instead.
func connectSQLite(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	logger.Info("🔌 [Database] Opening SQLite database...", "path", cfg.SQLitePath)

	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath+sqliteParams), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate SQLite schema: %w", err)
	}

	return db, nil
}

func gormConfig(cfg *config.Config) *gorm.Config {
	level := gormlogger.Warn
	if cfg.AppEnv == "production" {
		level = gormlogger.Error
	}
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	}
}

// AutoMigrate creates the schema from the models. Used for SQLite and in tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Location{},
		&models.SleepEntry{},
	)
}

// RunMigrations applies the embedded goose migrations to a PostgreSQL database.
func RunMigrations(sqlDB *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}

	return nil
}

// MigrationStatus prints the applied state of every embedded migration.
func MigrationStatus(sqlDB *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.Status(sqlDB, "migrations")
}

// OpenMigrationDB opens a plain database/sql handle through lib/pq for the
// operator tooling, independent of the gorm pool.
func OpenMigrationDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL for migrations: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach PostgreSQL: %w", err)
	}
	return db, nil
}

func GetDatabase() *gorm.DB {
	return DATABASE
}
