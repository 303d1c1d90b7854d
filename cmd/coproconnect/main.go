package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	backendadapter "github.com/coproconnect/panel/internal/adapter/driven/backend"
	sqliteadapter "github.com/coproconnect/panel/internal/adapter/driven/sqlite"
	httphandler "github.com/coproconnect/panel/internal/adapter/driving/http"
	"github.com/coproconnect/panel/internal/application"
	"github.com/coproconnect/panel/internal/config"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"backend_url", cfg.BackendURL,
		"db_path", cfg.DBPath,
		"monitor_interval", cfg.MonitorInterval,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters and services.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.CredentialKey)
	settingsStore := sqliteadapter.NewSettingsRepo(db)

	if err := seedPageSize(ctx, settingsStore, cfg.PageSize); err != nil {
		slog.Warn("could not seed default page size", "error", err)
	}

	session := application.NewSessionManager(credentialStore)
	session.SetMonitorInterval(cfg.MonitorInterval)
	defer session.Close()

	client := backendadapter.NewClient(cfg.BackendURL, session)
	authSvc := application.NewAuthService(client, session)
	store := application.NewResidentStore(client, session, settingsStore)

	// 6. Restore a persisted session, if any, before the store starts.
	session.Restore(ctx)
	go store.Start(ctx)

	// 7. HTTP server with panel API routes.
	handler := httphandler.NewHandler(authSvc, store, session, client, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("coproconnect panel started", "authenticated", session.Authenticated())

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// seedPageSize stores the configured page size once so the CLI and server
// share the same default; an existing user preference is left untouched.
func seedPageSize(ctx context.Context, settings driven.SettingsStore, size int) error {
	current, err := settings.Get(ctx, driven.SettingPageSize)
	if err != nil {
		return err
	}
	if current != "" {
		return nil
	}
	return settings.Set(ctx, driven.SettingPageSize, strconv.Itoa(size))
}
