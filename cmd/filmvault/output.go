// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/tomtom215/filmvault/internal/models"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

func success(w io.Writer, format string, args ...interface{}) {
	successColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

func warn(w io.Writer, format string, args ...interface{}) {
	warnColor.Fprintf(w, "! "+format+"\n", args...)
}

func newTable(w io.Writer, headers ...interface{}) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		headerColor.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	return tw
}

func statusText(s models.BackupStatus) string {
	switch s {
	case models.BackupStatusCompleted:
		return successColor.Sprint(s)
	case models.BackupStatusFailed:
		return errorColor.Sprint(s)
	case models.BackupStatusPending:
		return warnColor.Sprint(s)
	}
	return string(s)
}

// humanSize formats a byte count with binary units.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
