// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/filmvault/internal/logging"
)

// Tx is a store transaction. It exposes the same query methods as DB.
type Tx struct {
	*store
	tx *sql.Tx
}

// WithTx runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back on error or panic; a panic is re-raised
// after rollback.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tx := &Tx{store: &store{q: sqlTx, now: db.store.now}, tx: sqlTx}

	defer func() {
		if p := recover(); p != nil {
			rollback(sqlTx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		rollback(sqlTx)
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Error().Err(err).Msg("Transaction rollback failed")
	}
}
