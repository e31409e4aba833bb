// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/filmvault/internal/app"
	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/models"
)

func newScheduleCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect the backup schedule",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the configured cadence and next run times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := env.loadConfig()
			if err != nil {
				return err
			}
			return showSchedule(cmd, cfg)
		},
	})
	return cmd
}

// showSchedule prints the schedule the server would install from cfg.
// Jobs are installed on a private scheduler and stopped before returning,
// so nothing runs.
func showSchedule(cmd *cobra.Command, cfg *config.Config) error {
	sc, err := app.ScheduleConfig(&cfg.Backup)
	if err != nil {
		return err
	}
	scheduler := backup.NewScheduler(noopRunner{}, sc)
	if err := scheduler.Configure(sc); err != nil {
		return err
	}
	defer scheduler.Stop()

	status := scheduler.Status()
	out := cmd.OutOrStdout()
	headerColor.Fprintln(out, "Backup schedule")
	fmt.Fprintf(out, "  cadence:    %s\n", status.Cadence)
	fmt.Fprintf(out, "  retention:  %d days\n", status.RetentionDays)
	fmt.Fprintf(out, "  timezone:   %s\n", status.Timezone)
	fmt.Fprintf(out, "  format:     %s\n", sc.Format)

	if status.Cadence == backup.CadenceNone {
		warn(out, "No backup job (cadence none)")
	}
	tw := newTable(out, "JOB", "NEXT RUN")
	for _, j := range status.Jobs {
		fmt.Fprintf(tw, "%s\t%s\n", j.Name, j.NextRun.Format(timeLayout+" MST"))
	}
	return tw.Flush()
}

// noopRunner backs the preview scheduler in showSchedule.
type noopRunner struct{}

func (noopRunner) CreateBackup(context.Context, models.BackupFormat, string) (*models.BackupRecord, error) {
	return nil, nil
}

func (noopRunner) CleanupOlderThan(context.Context, int) (int, error) {
	return 0, nil
}
