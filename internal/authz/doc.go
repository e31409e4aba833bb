// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package authz decides which roles may call which API operations.
//
// Decisions come from a Casbin RBAC model with wildcard objects and actions.
// The model and the default policy are embedded in the binary; a policy file
// may replace the default at startup.
//
// Objects:
//
//   - backups: create, list, download and delete backup files
//   - backups.history: read backup history
//   - backups.schedule: read or change the backup schedule
//   - backups.restore: restore the dataset from a backup
//   - backups.cleanup: delete backups past retention
//   - import: upload a spreadsheet for reconciliation
//
// Actions are read, write and delete. Role inheritance is
// admin > producer > viewer.
package authz
