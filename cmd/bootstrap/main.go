// Command bootstrap wipes the credential store, seeds a single account and
// revokes every outstanding session.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/odyssey-erp/recon-portal/internal/app"
	"github.com/odyssey-erp/recon-portal/internal/auth"
	"github.com/odyssey-erp/recon-portal/internal/platform/cache"
	"github.com/odyssey-erp/recon-portal/internal/platform/db"
	"github.com/odyssey-erp/recon-portal/internal/shared"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	flagSet.StringVar(&opts.email, "email", "", "email of the seeded account (default: $BOOTSTRAP_EMAIL or prompt)")
	flagSet.BoolVar(&opts.passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping bootstrap")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLoggerTo(os.Stderr, cfg)

	cred, err := resolveCredential(opts, os.Getenv, os.Stdin, os.Stderr)
	if err != nil {
		return err
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator := db.NewMigrator(pool)
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("close migrator", slog.Any("error", err))
		}
	}()

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		return fmt.Errorf("connect redis, existing sessions cannot be revoked: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	purger := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	bootstrapper := auth.NewBootstrapper(logger, migrator, auth.NewRepository(pool), purger, cfg.BcryptCost)
	id, err := bootstrapper.Run(ctx, cred)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "seeded %s (id %d)\n", cred.Email, id)
	return nil
}
