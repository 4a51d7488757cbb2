// Command stubapi runs the development stand-in for the storefront REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/99minutos/storefront-console/internal/api/handler"
	"github.com/99minutos/storefront-console/internal/core/ports"
	"github.com/99minutos/storefront-console/internal/infrastructure/config"
	mongodb "github.com/99minutos/storefront-console/internal/infrastructure/db/mongo"
	"github.com/99minutos/storefront-console/internal/stubapi"
	"github.com/99minutos/storefront-console/pkg/logger"
)

var (
	version = "dev"
	cli     struct {
		Port    string `help:"Listen port (overrides STUB_PORT)."`
		Debug   bool   `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Name("stubapi"),
		kong.Description("Development stand-in for the storefront API."),
		kong.Vars{"version": version})
	kctx.FatalIfErrorf(run(ctx))
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cli.Debug {
		level = "debug"
	}
	log := logger.Component(logger.Init(logger.Options{Level: level, Pretty: cfg.Development()}), "stubapi")

	var users ports.UserRepository
	checks := make(map[string]handler.Checker)

	switch cfg.Stub.UserStore {
	case "mongo":
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "storefront-stubapi",
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}()

		repo := mongodb.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		users = repo
		checks["mongodb"] = handler.MongoCheck(db)
	default:
		users = stubapi.NewMemoryUserRepository()
	}

	srv := stubapi.NewServer(stubapi.Options{
		Users:     users,
		JWTSecret: cfg.Stub.JWTSecret,
		TokenTTL:  cfg.Stub.TokenTTL,
		Logger:    log,
		Checks:    checks,
	})

	if cfg.Stub.Seed {
		if err := srv.Seed(ctx, stubapi.DemoAccounts()...); err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
	}

	port := cli.Port
	if port == "" {
		port = cfg.Stub.Port
	}
	log.Info().
		Str("version", version).
		Str("user_store", cfg.Stub.UserStore).
		Msg("starting stub backend")
	return srv.Start(ctx, ":"+port)
}
