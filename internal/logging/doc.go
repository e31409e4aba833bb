// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package logging provides centralized zerolog-based structured logging for Filmvault.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
//	logging.Info().Str("filename", name).Int64("size", size).Msg("Backup completed")
//	logging.Error().Err(err).Msg("Restore failed")
//	logging.Ctx(ctx).Warn().Msg("Import row skipped")
//
// # Components
//
//   - logger.go: the global logger and level helpers
//   - context.go: correlation and request IDs carried on context.Context
//   - slog_adapter.go: slog.Handler over zerolog, used by sutureslog
//   - audit.go: AuditLogger for backup, restore, import and access events
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
