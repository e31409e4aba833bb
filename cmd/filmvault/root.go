// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package main

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomtom215/filmvault/internal/app"
	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/logging"
)

// cliEnv is what commands need from the outside world. Tests replace
// loadConfig and the writers.
type cliEnv struct {
	loadConfig func() (*config.Config, error)
	stdout     io.Writer
	stderr     io.Writer
}

func defaultEnv() *cliEnv {
	return &cliEnv{
		loadConfig: config.Load,
		stdout:     color.Output,
		stderr:     color.Error,
	}
}

// withApp loads configuration, opens the application and runs fn. The
// database is closed afterwards.
func (e *cliEnv) withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logging.Error().Err(cerr).Msg("Error closing database")
		}
	}()
	return fn(a)
}

func newRootCmd(env *cliEnv) *cobra.Command {
	var (
		noColor  bool
		logLevel string
	)

	root := &cobra.Command{
		Use:   "filmvault",
		Short: "Back up, restore and import film production records",
		Long: `filmvault manages backups of the production-tracking database.

It shares configuration (config.yaml and environment variables) with the
server, so commands act on the same database and backup directory.

Examples:
  # Create a spreadsheet backup
  filmvault backup create --format xlsx

  # Restore a structured backup
  filmvault backup restore backup_full_2026-10-16T02-00-00-000Z.json --yes

  # Import the registrar's workbook
  filmvault import registrar.xlsx`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor {
				color.NoColor = true
			}
			logging.Init(logging.Config{
				Level:  logLevel,
				Format: "console",
				Output: env.stderr,
			})
		},
	}
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	root.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable color output")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newBackupCmd(env),
		newImportCmd(env),
		newScheduleCmd(env),
		newEncryptSecretCmd(env),
		newTokenCmd(env),
	)
	return root
}
