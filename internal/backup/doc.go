// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package backup implements backup creation, restore, the on-disk catalog,
// retention cleanup and the backup scheduler.
//
// # Formats
//
// Every backup serializes the active dataset (soft-deleted rows excluded):
//
//	json   structured document {exportedAt, version, data{projects, students, users, backupLogs}}
//	csv    one row per project, student fields flattened in, every text field quoted
//	sql    DROP/CREATE/INSERT for the students table only (projects are not dumped)
//	xlsx   "Projects" and "Students" sheets, control characters stripped, dates as YYYY-MM-DD
//
// Only json backups can be restored.
//
// # Storage Layout
//
// Backups live in one directory and are named
//
//	backup_<kind>_<YYYY-MM-DDTHH-MM-SS-mmmZ>.<ext>
//
// ValidateFilename enforces this convention and rejects traversal before
// any filesystem access; it guards Restore, DeleteBackup and OpenBackup.
// Files in flight are written as .tmp-<filename> and renamed into place.
//
// # Record Lifecycle
//
//	pending ──▶ completed ──▶ deleted
//	   │
//	   └──────▶ failed ─────▶ deleted
//
// # Usage
//
//	manager, err := backup.NewManager(&cfg.Backup, db)
//	record, err := manager.CreateBackup(ctx, models.FormatJSON, "alice")
//	result, err := manager.Restore(ctx, record.Filename)
//
//	scheduler := backup.NewScheduler(manager, backup.ScheduleConfig{
//	    Cadence:       backup.CadenceDaily,
//	    RetentionDays: 30,
//	})
//	tree.AddJobService(scheduler)
//
// # Concurrency
//
// Backup creation is serialized by a non-blocking guard: a second concurrent
// CreateBackup fails with a ConflictError. Restore runs in one store
// transaction and relies on the store's single connection for isolation.
package backup
