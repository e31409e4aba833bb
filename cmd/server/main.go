// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package main is the entry point for the Filmvault server.
//
// Filmvault keeps backups of a film school's production records (students
// and their projects): scheduled and on-demand exports in four formats,
// transactional restore from a structured backup, and bulk import from the
// registrar's spreadsheet.
//
// # Startup
//
//  1. Configuration: defaults, config.yaml and environment (Koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Database: SQLite, migrated with goose
//  4. Backup manager, scheduler and import reconciler
//  5. Authorization (Casbin) and authentication (JWT or none)
//  6. HTTP router
//  7. Supervisor tree: jobs layer (scheduler) and api layer (HTTP server)
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
// requests for up to HTTP_SHUTDOWN_TIMEOUT and the scheduler waits for a
// running job before the database is closed.
//
// # Example Usage
//
//	export AUTH_MODE=none   # development only
//	export BACKUP_PATH=./backups
//	export DATABASE_PATH=./filmvault.db
//	./filmvault-server
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/filmvault/internal/app"
	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/supervisor"
	"github.com/tomtom215/filmvault/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("backup_dir", cfg.Backup.Dir).
		Str("schedule", cfg.Backup.Schedule).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("mirror_enabled", cfg.Backup.Mirror.Enabled).
		Msg("Configuration loaded")

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	router, err := a.Router()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	tree.AddJobService(a.Scheduler)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting Filmvault")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}
	return nil
}
