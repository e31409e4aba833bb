// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package spreadsheetimport reconciles an uploaded workbook against the
// student and project tables.
//
// # Sheets
//
// The first sheet whose name contains "student" (case-insensitive) supplies
// students and the first containing "project" supplies projects. Either may
// be missing, but not both: a workbook with neither fails with a
// no_recognized_sheets error. The workbooks written by the backup package
// (sheets "Projects" and "Students") import unchanged.
//
// # Reconciliation
//
// Students are processed first and upserted by natural key (the "Student ID"
// column), so re-importing the same sheet never duplicates them. Projects
// have no natural key and are always created. A project's "Student ID" must
// resolve to an active student, including one upserted earlier in the same
// import; otherwise the row is skipped and reported.
//
// The whole import runs in one store transaction. Row-level problems are
// collected in Result.Errors and never abort the batch. A store failure
// aborts, rolls back and is returned as the error.
//
// # Usage
//
//	r := spreadsheetimport.NewReconciler(db)
//	result, err := r.ImportFromSpreadsheet(ctx, data)
//	if err != nil {
//	    return err
//	}
//	for _, msg := range result.Errors {
//	    logging.Warn().Str("row_error", msg).Msg("Import row skipped")
//	}
//
// Only one import runs at a time per Reconciler; an overlapping call gets a
// conflict error.
package spreadsheetimport
