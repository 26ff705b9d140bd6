package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jbweber/homelab/animes/internal/api"
	"github.com/jbweber/homelab/animes/internal/config"
	"github.com/jbweber/homelab/animes/internal/migrations"
	"github.com/jbweber/homelab/animes/internal/repository"
	"github.com/jbweber/homelab/animes/internal/service"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "animes",
		Short:        "Anime catalogue web service",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, config.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level))
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides config)")
	return cmd
}

// serve runs the HTTP server until ctx is canceled, then shuts it down.
func serve(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	repo, closeRepo, err := cfg.OpenRepository(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Database.Driver, err)
	}
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Warn("failed to close store", "err", err)
		}
	}()

	svc := service.NewAnimeService(repo, logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting animes web service", "addr", srv.Addr, "driver", cfg.Database.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if down {
				return migrateDown(cmd.Context(), cfg, cmd)
			}
			return migrate(cmd.Context(), cfg, cmd)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "revert the latest sqlite migration (drops the table on postgres)")
	return cmd
}

func migrate(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	if cfg.Database.Driver == config.DriverPostgres {
		pool, err := repository.OpenPostgresPool(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := repository.NewPostgresAnimeRepository(pool).EnsureSchema(ctx); err != nil {
			return err
		}
		cmd.Println("postgres schema is up to date")
		return nil
	}

	db, err := cfg.InitializeDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := migrations.NewMigrator(db).GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	cmd.Printf("sqlite schema at version %d\n", version)
	return nil
}

func migrateDown(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	if cfg.Database.Driver == config.DriverPostgres {
		pool, err := repository.OpenPostgresPool(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := repository.NewPostgresAnimeRepository(pool).DropSchema(ctx); err != nil {
			return err
		}
		cmd.Println("postgres animes table dropped")
		return nil
	}

	db, err := cfg.OpenDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := migrations.NewMigrator(db)
	for _, migration := range migrations.All() {
		migrator.AddMigration(migration)
	}
	if err := migrator.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	version, err := migrator.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	cmd.Printf("sqlite schema at version %d\n", version)
	return nil
}
