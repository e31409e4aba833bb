// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package database provides the relational store for students, projects,
// users and the backup-record audit log.
//
// # Overview
//
// The store is SQLite through the pure-Go modernc.org/sqlite driver. The
// schema lives in embedded goose migrations (migrations/*.sql) and is
// applied on open. Foreign keys are enforced on every connection.
//
// # Architecture
//
//   - database.go: lifecycle (open, migrate, ping, close)
//   - tx.go: WithTx, all-or-nothing transactions
//   - students.go, projects.go, users.go: entity queries
//   - backup_records.go: the backup audit log and its status transitions
//   - query_helpers.go: shared query plumbing and metrics timing
//
// Query methods are defined once on an internal store type and promoted to
// both *DB and *Tx, so code written against one runs unchanged inside a
// transaction.
//
// # Concurrency
//
// The pool holds a single connection. Transactions therefore serialize,
// and a query must drain its rows before the next one is issued.
//
// # Usage Example
//
//	db, err := database.New(ctx, &cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	err = db.WithTx(ctx, func(tx *database.Tx) error {
//	    if _, err := tx.DeleteAllProjects(ctx); err != nil {
//	        return err
//	    }
//	    _, delErr := tx.DeleteAllStudents(ctx)
//	    return delErr
//	})
package database
