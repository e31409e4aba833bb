// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/filmvault/internal/app"
	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/models"
)

// cliInitiator is recorded as the initiator of backups created from the CLI.
const cliInitiator = "cli"

const timeLayout = "2006-01-02 15:04:05"

func newBackupCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list, restore and clean up backups",
	}
	cmd.AddCommand(
		newBackupCreateCmd(env),
		newBackupListCmd(env),
		newBackupHistoryCmd(env),
		newBackupDeleteCmd(env),
		newBackupRestoreCmd(env),
		newBackupCleanupCmd(env),
	)
	return cmd
}

func newBackupCreateCmd(env *cliEnv) *cobra.Command {
	var format, kind string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a backup now",
		Long: `Create a backup of every active student and project.

Formats: json (restorable), csv, sql (students only) and xlsx.

Examples:
  filmvault backup create
  filmvault backup create --format xlsx --type manual`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withApp(cmd.Context(), func(a *app.App) error {
				f := format
				if f == "" {
					f = a.Config.Backup.DefaultFormat
				}
				parsedFormat, err := models.ParseBackupFormat(f)
				if err != nil {
					return err
				}
				parsedKind, err := models.ParseBackupKind(kind)
				if err != nil {
					return err
				}

				record, err := a.Backups.CreateBackupWithKind(cmd.Context(), parsedKind, parsedFormat, cliInitiator)
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Created %s (%s)", record.Filename, humanSize(record.Size))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "backup format: json, csv, sql or xlsx (default from config)")
	cmd.Flags().StringVarP(&kind, "type", "t", "full", "backup type: full or manual")
	return cmd
}

func newBackupListCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backup files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withApp(cmd.Context(), func(a *app.App) error {
				entries, err := a.Backups.ListBackups(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					warn(out, "No backups in %s", a.Backups.Dir())
					return nil
				}
				tw := newTable(out, "FILENAME", "FORMAT", "SIZE", "CREATED", "STATUS")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						e.Filename, e.Format, humanSize(e.Size), e.Created.Format(timeLayout), statusText(e.Status))
				}
				return tw.Flush()
			})
		},
	}
}

func newBackupHistoryCmd(env *cliEnv) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent backup records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withApp(cmd.Context(), func(a *app.App) error {
				records, err := a.Backups.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					warn(out, "No backup history")
					return nil
				}
				tw := newTable(out, "ID", "FILENAME", "BY", "CREATED", "STATUS")
				for i := range records {
					r := &records[i]
					status := statusText(r.Status)
					if r.ErrorMessage != "" {
						status += " (" + r.ErrorMessage + ")"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
						r.ID, r.Filename, r.Initiator, r.CreatedAt.Format(timeLayout), status)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", backup.DefaultHistoryLimit, "number of records to show")
	return cmd
}

func newBackupDeleteCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Backups.DeleteBackup(cmd.Context(), args[0]); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Deleted %s", args[0])
				return nil
			})
		},
	}
}

var errRestoreNotConfirmed = errors.New("restore replaces every student and project; re-run with --yes to confirm")

func newBackupRestoreCmd(env *cliEnv) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <filename>",
		Short: "Replace all students and projects with a json backup",
		Long: `Restore every student and project from a json backup in one transaction.

The live data is replaced. If any record fails, nothing changes. User
accounts are never touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errRestoreNotConfirmed
			}
			return env.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Backups.Restore(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Restored %d students and %d projects from %s",
					result.StudentsRestored, result.ProjectsRestored, result.Filename)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the restore")
	return cmd
}

func newBackupCleanupCmd(env *cliEnv) *cobra.Command {
	var retentionDays int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete backups older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withApp(cmd.Context(), func(a *app.App) error {
				days := retentionDays
				if days == 0 {
					days = a.Config.Backup.RetentionDays
				}
				start := time.Now()
				deleted, err := a.Backups.CleanupOlderThan(cmd.Context(), days)
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Deleted %d backups older than %d days in %s",
					deleted, days, time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "age in days (default from config)")
	return cmd
}
