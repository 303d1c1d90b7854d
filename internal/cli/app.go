package cli

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	backendadapter "github.com/coproconnect/panel/internal/adapter/driven/backend"
	sqliteadapter "github.com/coproconnect/panel/internal/adapter/driven/sqlite"
	"github.com/coproconnect/panel/internal/application"
	"github.com/coproconnect/panel/internal/config"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

// app bundles the wired services for one command invocation. Commands are
// one-shot: newApp builds the full graph, the command runs, Close tears it
// down.
type app struct {
	db       *sqliteadapter.DB
	session  *application.SessionManager
	client   *backendadapter.Client
	auth     *application.AuthService
	store    *application.ResidentStore
	settings driven.SettingsStore
}

// newApp loads configuration, opens the local database, restores any
// persisted session, and wires the services.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("backend_url"); v != "" {
		cfg.BackendURL = v
	}
	if v := viper.GetString("db_path"); v != "" {
		cfg.DBPath = v
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		db.Close()
		return nil, err
	}

	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.CredentialKey)
	settingsStore := sqliteadapter.NewSettingsRepo(db)

	session := application.NewSessionManager(credentialStore)
	session.SetMonitorInterval(cfg.MonitorInterval)
	session.Restore(ctx)

	client := backendadapter.NewClient(cfg.BackendURL, session)

	return &app{
		db:       db,
		session:  session,
		client:   client,
		auth:     application.NewAuthService(client, session),
		store:    application.NewResidentStore(client, session, settingsStore),
		settings: settingsStore,
	}, nil
}

// Close releases the session monitor and the database.
func (a *app) Close() {
	a.session.Close()
	if err := a.db.Close(); err != nil {
		logger.Warn("error closing database", "error", err)
	}
}
