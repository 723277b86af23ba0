package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/nightstay/backend-go/internal/cli"
	"github.com/nightstay/backend-go/internal/config"
	"github.com/nightstay/backend-go/internal/database"
	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/database/service"
	"github.com/nightstay/backend-go/internal/middleware"
)

var CLI struct {
	Debug bool `help:"Enable debug logging."`

	Migrate       cli.MigrateCmd       `cmd:"" help:"Apply database migrations."`
	Users         cli.UsersCmd         `cmd:"" help:"List registered accounts."`
	ResetPassword cli.ResetPasswordCmd `cmd:"" help:"Reset an account password."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("nightstay-admin"),
		kong.Description("Operator tooling for the NightStay API"),
		kong.UsageOnError(),
	)

	cfg := config.LoadConfig()
	logger := cli.NewLogger(os.Stderr, CLI.Debug)

	appCtx := &cli.Context{
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
		OpenAuth: func() (service.AuthService, error) {
			if err := database.ConnectDatabase(cfg, logger); err != nil {
				return nil, err
			}
			db := database.GetDatabase()
			return service.NewAuthService(
				repository.NewUserRepository(db),
				repository.NewRefreshTokenRepository(db),
				middleware.NewNoOpRateLimiter(logger),
				cfg,
				logger,
			), nil
		},
	}

	if err := kctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
