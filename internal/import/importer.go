// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package spreadsheetimport

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/database"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/metrics"
)

// Store runs the import transaction. *database.DB satisfies it.
type Store interface {
	WithTx(ctx context.Context, fn func(tx *database.Tx) error) error
}

// Reconciler imports workbooks into the store.
type Reconciler struct {
	store Store
	audit *logging.AuditLogger

	mu      sync.RWMutex
	running bool
	last    *Result
}

// NewReconciler creates a reconciler writing to store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{
		store: store,
		audit: logging.NewAuditLogger(),
	}
}

// SetAuditLogger replaces the audit logger.
func (r *Reconciler) SetAuditLogger(a *logging.AuditLogger) {
	r.audit = a
}

// ImportFromSpreadsheet reconciles the workbook in data against the store.
//
// Row problems are collected in Result.Errors. The error return is reserved
// for conditions that abort the whole import: an unreadable workbook, no
// recognized sheets, an import already running, or a store failure. On a
// store failure nothing is committed.
func (r *Reconciler) ImportFromSpreadsheet(ctx context.Context, data []byte) (result *Result, err error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, apperrors.Conflict("import already in progress")
	}
	r.running = true
	r.mu.Unlock()

	start := time.Now()
	ctx = logging.ContextWithNewCorrelationID(ctx)

	defer func() {
		r.mu.Lock()
		r.running = false
		if result != nil {
			r.last = result
		}
		r.mu.Unlock()

		students, projects, rejected := 0, 0, 0
		if result != nil {
			students, projects, rejected = result.StudentsImported, result.ProjectsImported, len(result.Errors)
		}
		metrics.RecordImport(time.Since(start), students, projects, rejected, err)

		event := logging.AuditEvent{
			Action:  logging.ActionImport,
			Success: err == nil,
			Details: map[string]string{
				"students": strconv.Itoa(students),
				"projects": strconv.Itoa(projects),
				"rejected": strconv.Itoa(rejected),
			},
		}
		if err != nil {
			event.Error = err.Error()
		}
		r.audit.Log(ctx, event)
	}()

	wb, err := readWorkbook(data)
	if err != nil {
		return nil, err
	}

	result = &Result{StartTime: start, Errors: []string{}}
	err = r.store.WithTx(ctx, func(tx *database.Tx) error {
		if err := importStudents(ctx, tx, wb.students, result); err != nil {
			return err
		}
		return importProjects(ctx, tx, wb.projects, result)
	})
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	result.EndTime = time.Now()

	logging.Ctx(ctx).Info().
		Str("student_sheet", wb.studentSheet).
		Str("project_sheet", wb.projectSheet).
		Int("students", result.StudentsImported).
		Int("projects", result.ProjectsImported).
		Int("rejected", len(result.Errors)).
		Dur("duration", result.Duration()).
		Msg("Spreadsheet import completed")
	return result, nil
}

// IsRunning reports whether an import is in progress.
func (r *Reconciler) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// LastResult returns the result of the last successful import, or nil.
func (r *Reconciler) LastResult() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// importStudents upserts every student row by natural key. Inactive
// students match too, so the key stays unique.
func importStudents(ctx context.Context, tx *database.Tx, rows []Row, result *Result) error {
	for _, row := range rows {
		st, rowErr := studentFromRow(row)
		if rowErr != nil {
			result.reject("Student row %d: %s", row.Number, rowErr)
			continue
		}

		existing, err := tx.FindStudentByNaturalKey(ctx, st.StudentID)
		switch {
		case err == nil:
			st.ID = existing.ID
			st.CreatedAt = existing.CreatedAt
			if err := tx.UpdateStudent(ctx, st); err != nil {
				return err
			}
		case apperrors.IsKind(err, apperrors.KindNotFound):
			if err := tx.CreateStudent(ctx, st); err != nil {
				return err
			}
		default:
			return err
		}
		result.StudentsImported++
	}
	return nil
}

// importProjects creates every project row whose student, if named,
// resolves to an active student visible in tx.
func importProjects(ctx context.Context, tx *database.Tx, rows []Row, result *Result) error {
	for _, row := range rows {
		p, key, rowErr := projectFromRow(row)
		if rowErr != nil {
			result.reject("Project row %d: %s", row.Number, rowErr)
			continue
		}

		if key != "" {
			st, err := tx.FindStudentByNaturalKey(ctx, key)
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				result.reject("Student not found for project %q: %s", p.Title, key)
				continue
			}
			if err != nil {
				return err
			}
			if !st.IsActive {
				result.reject("Student inactive for project %q: %s", p.Title, key)
				continue
			}
			id := st.ID
			p.StudentID = &id
		}

		if err := tx.CreateProject(ctx, p); err != nil {
			return err
		}
		result.ProjectsImported++
	}
	return nil
}

var _ Store = (*database.DB)(nil)
