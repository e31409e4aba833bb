// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package spreadsheetimport

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
)

// Result reports one import.
type Result struct {
	// StudentsImported counts created and updated students.
	StudentsImported int `json:"studentsImported"`

	// ProjectsImported counts created projects.
	ProjectsImported int `json:"projectsImported"`

	// Errors lists every rejected row, in sheet order.
	Errors []string `json:"errors"`

	// StartTime is when the import started.
	StartTime time.Time `json:"-"`

	// EndTime is when the import finished.
	EndTime time.Time `json:"-"`
}

// Duration returns how long the import took.
func (r *Result) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

func (r *Result) reject(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Row is one non-blank data row of a sheet, keyed by trimmed header.
type Row struct {
	// Number is the 1-based spreadsheet row number.
	Number int
	cells  map[string]string

	// unlabeled counts non-empty cells under a blank or missing header.
	unlabeled int
}

func newRow(number int, headers, cells []string) Row {
	r := Row{Number: number, cells: make(map[string]string, len(headers))}
	for i, c := range cells {
		v := strings.TrimSpace(c)
		if v == "" {
			continue
		}
		if i >= len(headers) || headers[i] == "" {
			r.unlabeled++
			continue
		}
		r.cells[strings.ToLower(headers[i])] = v
	}
	return r
}

// checkLabeled fails a row whose only data sits in columns without a
// header. Such a row would otherwise map to nothing at all.
func (r Row) checkLabeled() error {
	if len(r.cells) == 0 && r.unlabeled > 0 {
		return apperrors.Validation("%d value(s) in columns without a header", r.unlabeled)
	}
	return nil
}

// Get returns the value of the first named column that is present.
// Header matching is case-insensitive.
func (r Row) Get(columns ...string) string {
	for _, c := range columns {
		if v, ok := r.cells[strings.ToLower(c)]; ok {
			return v
		}
	}
	return ""
}

// Blank reports whether every cell of the row is empty.
func (r Row) Blank() bool {
	return len(r.cells) == 0 && r.unlabeled == 0
}
