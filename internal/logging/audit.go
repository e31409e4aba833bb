// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package logging

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Audit actions recorded for dataset-level operations.
const (
	ActionBackupCreate  = "backup_create"
	ActionBackupDelete  = "backup_delete"
	ActionBackupRestore = "backup_restore"
	ActionBackupCleanup = "backup_cleanup"
	ActionImport        = "spreadsheet_import"
	ActionScheduleSet   = "schedule_configure"
	ActionAccessDenied  = "access_denied"
)

// AuditEvent describes one operation that changed, or tried to change, the
// stored dataset or its backups.
type AuditEvent struct {
	Action  string
	Actor   string
	Target  string
	Success bool
	Error   string
	Details map[string]string
}

// AuditLogger writes AuditEvents under component=audit.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger creates an audit logger over the global logger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{logger: With().Str("component", "audit").Logger()}
}

// NewAuditLoggerWithLogger creates an audit logger over a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLoggerWithLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With().Str("component", "audit").Logger()}
}

// Log records event. Failed events are logged at warn level.
func (a *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	var e *zerolog.Event
	if event.Success {
		e = a.logger.Info().Str("status", "success")
	} else {
		e = a.logger.Warn().Str("status", "failed")
	}
	e = e.Str("action", event.Action)

	if id := CorrelationIDFromContext(ctx); id != "" {
		e = e.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		e = e.Str("request_id", id)
	}
	actor := event.Actor
	if actor == "" {
		actor = ActorFromContext(ctx)
	}
	if actor != "" {
		e = e.Str("actor", actor)
	}
	if event.Target != "" {
		e = e.Str("target", event.Target)
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeError(v))
	}
	e.Msg("audit")
}

// SanitizeError collapses an error message onto one line and truncates it
// to 200 characters so uploaded content cannot forge log lines.
func SanitizeError(msg string) string {
	msg = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, msg)
	return truncateString(msg, 200)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
