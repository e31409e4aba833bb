// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package database

import (
	"errors"
	"io"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/logging"
)

// closeWithLog closes a resource and logs any error
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}

// classifyConstraint maps SQLite constraint failures onto the application
// error taxonomy. Other errors are returned unchanged.
func classifyConstraint(err error, what string) error {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}
	if isForeignKeyViolation(sqlErr) {
		return apperrors.Wrap(apperrors.KindReferentialIntegrity, err, "%s violates a foreign key", what)
	}
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return apperrors.Wrap(apperrors.KindConflict, err, "%s already exists", what)
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return apperrors.Wrap(apperrors.KindValidation, err, "%s failed a constraint", what)
	}
	return err
}

// isForeignKeyViolation reports a foreign key failure. A delete blocked by a
// referencing row surfaces as SQLITE_CONSTRAINT_TRIGGER (1811), so the
// primary constraint code plus the message is what identifies it.
func isForeignKeyViolation(sqlErr *sqlite.Error) bool {
	code := sqlErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqlErr.Error(), "FOREIGN KEY constraint failed")
}
