package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/ronitphilip/zoom-backend/internal/config"
	"github.com/ronitphilip/zoom-backend/internal/handlers"
	"github.com/ronitphilip/zoom-backend/internal/ingest"
	"github.com/ronitphilip/zoom-backend/internal/logging"
	"github.com/ronitphilip/zoom-backend/internal/reports"
	"github.com/ronitphilip/zoom-backend/internal/repository"
	"github.com/ronitphilip/zoom-backend/internal/scheduler"
	"github.com/ronitphilip/zoom-backend/internal/server"
	"github.com/ronitphilip/zoom-backend/internal/zoom"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reporting HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// bootstrap builds the shared backend: config, logging, Postgres with
// migrations applied, the upstream client and the ingestion engine.
func bootstrap() (*config.Config, *repository.PostgresStore, *zoom.Client, *ingest.Engine, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("reporting"))
	logging.SetDefault(logger)

	connString := cfg.Database.ConnString()
	slog.Info("Connecting to PostgreSQL",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("database", cfg.Database.Database),
	)
	store, err := repository.NewPostgresStore(context.Background(), connString)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	slog.Info("Running database migrations")
	m, err := migrate.New("file://migrations", connString)
	if err != nil {
		store.Close()
		return nil, nil, nil, nil, nil, fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		store.Close()
		return nil, nil, nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	var tokenStore zoom.TokenStore
	cleanup := func() { store.Close() }
	if cfg.Redis.Enabled {
		rs, err := zoom.NewRedisTokenStore(cfg.Redis.URL, "")
		if err != nil {
			store.Close()
			return nil, nil, nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		slog.Info("Using shared Redis token cache")
		tokenStore = rs
		cleanup = func() {
			rs.Close()
			store.Close()
		}
	} else {
		tokenStore = zoom.NewMemoryTokenStore()
	}

	tokens := zoom.NewTokenProvider(cfg.Zoom.AuthURL, zoom.Credentials{
		AccountID:    cfg.Zoom.AccountID,
		ClientID:     cfg.Zoom.ClientID,
		ClientSecret: cfg.Zoom.ClientSecret,
	}, tokenStore)

	client := zoom.NewClient(cfg.Zoom.BaseURL, tokens, cfg.Zoom.PageTimeout)
	engine := ingest.NewEngine(client, store, cfg.Zoom.PageSize, slog.Default())
	return cfg, store, client, engine, cleanup, nil
}


func runServe() error {
	cfg, store, client, engine, cleanup, err := bootstrap()
	if err != nil {
		slog.Error("Startup failed", slog.String("error", err.Error()))
		return err
	}
	defer cleanup()

	service := reports.NewService(store, engine, slog.Default())
	router := server.NewRouter(
		handlers.NewReportHandler(service),
		handlers.NewTeamHandler(service),
		handlers.NewDirectoryHandler(client),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Resync.Enabled {
		sched := scheduler.New(engine, scheduler.Config{
			Interval: cfg.Resync.Interval,
			Lookback: cfg.Resync.Lookback,
		}, slog.Default())
		if err := sched.Start(context.Background()); err != nil {
			return err
		}
		defer sched.Stop()
	}

	go func() {
		slog.Info("Reporting service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.String("error", err.Error()))
		return err
	}

	slog.Info("Server stopped gracefully")
	return nil
}
