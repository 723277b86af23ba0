package cli

import (
	"errors"
	"fmt"

	"github.com/nightstay/backend-go/internal/database"
)

// MigrateCmd applies or inspects the PostgreSQL migrations
type MigrateCmd struct {
	Status bool `help:"Show migration status instead of applying."`
}

func (c *MigrateCmd) Run(ctx *Context) error {
	if ctx.Config.DatabaseDriver != database.DriverPostgres {
		return errors.New("migrations only apply to PostgreSQL, the SQLite schema is created on startup")
	}

	db, err := database.OpenMigrationDB(ctx.Config)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.Status {
		return database.MigrationStatus(db)
	}

	ctx.Logger.Info("Applying migrations", "database", ctx.Config.PostgreSQLDatabase)
	if err := database.RunMigrations(db); err != nil {
		return err
	}

	fmt.Fprintln(ctx.out(), successStyle.Render("✔ Database is up to date"))
	return nil
}
