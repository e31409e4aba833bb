// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package app assembles the components shared by the server and the
// operator CLI: database, backup manager, scheduler and import reconciler.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/filmvault/internal/api"
	"github.com/tomtom215/filmvault/internal/auth"
	"github.com/tomtom215/filmvault/internal/authz"
	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/database"
	spreadsheetimport "github.com/tomtom215/filmvault/internal/import"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

// App holds the wired components. Close releases the database.
type App struct {
	Config     *config.Config
	DB         *database.DB
	Backups    *backup.Manager
	Scheduler  *backup.Scheduler
	Reconciler *spreadsheetimport.Reconciler
	Audit      *logging.AuditLogger
}

// New opens the database, applies migrations and builds the backup and
// import components over it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	schedule, err := ScheduleConfig(&cfg.Backup)
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	manager, err := backup.NewManager(&cfg.Backup, db)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to initialize backup manager: %w", err)
	}

	audit := logging.NewAuditLogger()
	manager.SetAuditLogger(audit)

	reconciler := spreadsheetimport.NewReconciler(db)
	reconciler.SetAuditLogger(audit)

	return &App{
		Config:     cfg,
		DB:         db,
		Backups:    manager,
		Scheduler:  backup.NewScheduler(manager, schedule),
		Reconciler: reconciler,
		Audit:      audit,
	}, nil
}

// ScheduleConfig translates backup configuration into a scheduler
// configuration, rejecting unknown cadences, formats and time zones.
func ScheduleConfig(cfg *config.BackupConfig) (backup.ScheduleConfig, error) {
	cadence, err := backup.ParseCadence(cfg.Schedule)
	if err != nil {
		return backup.ScheduleConfig{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return backup.ScheduleConfig{}, err
	}
	format := models.FormatJSON
	if cfg.DefaultFormat != "" {
		if format, err = models.ParseBackupFormat(cfg.DefaultFormat); err != nil {
			return backup.ScheduleConfig{}, err
		}
	}
	return backup.ScheduleConfig{
		Cadence:       cadence,
		RetentionDays: cfg.RetentionDays,
		Location:      loc,
		Format:        format,
	}, nil
}

// Router builds the HTTP handler with authentication and authorization
// configured from the security settings.
func (a *App) Router() (http.Handler, error) {
	mode, err := auth.ParseAuthMode(a.Config.Security.AuthMode)
	if err != nil {
		return nil, err
	}
	var jwtManager *auth.JWTManager
	if mode == auth.AuthModeJWT {
		if jwtManager, err = auth.NewJWTManager(&a.Config.Security); err != nil {
			return nil, fmt.Errorf("failed to initialize JWT manager: %w", err)
		}
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authorization: %w", err)
	}

	handler := api.NewHandler(a.Config, api.HandlerDeps{
		Backups:  a.Backups,
		Schedule: a.Scheduler,
		Importer: a.Reconciler,
		Health:   a.DB,
		Audit:    a.Audit,
	})
	router := api.NewRouter(
		handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&a.Config.Security)),
		auth.NewMiddleware(mode, jwtManager),
		authz.NewMiddleware(enforcer, a.Audit),
	)
	return router.Setup(), nil
}

// Close releases the database connection.
func (a *App) Close() error {
	return a.DB.Close()
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
