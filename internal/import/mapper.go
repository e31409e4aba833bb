// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package spreadsheetimport

import (
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/models"
	"github.com/tomtom215/filmvault/internal/validation"
)

// Column headers, as written by the workbook exporter.
const (
	colStudentID = "Student ID"
	colFirstName = "First Name"
	colLastName  = "Last Name"
	colEmail     = "Email"
	colPhone     = "Phone"
	colYear      = "Year"
	colProgram   = "Program"
	colStatus    = "Status"
	colNotes     = "Notes"

	colTitle        = "Title"
	colDescription  = "Description"
	colGenre        = "Genre"
	colDurationMin  = "Duration (min)"
	colDuration     = "Duration"
	colProducer     = "Supervising Producer"
	colDirector     = "Director"
	colEditor       = "Editor"
	colSound        = "Sound Engineer"
	colCamera       = "Camera Equipment"
	colEditingSuite = "Editing Suite"
)

// studentFromRow maps a student row. The returned error is a row error.
func studentFromRow(row Row) (*models.Student, error) {
	if err := row.checkLabeled(); err != nil {
		return nil, err
	}

	var missing []string
	for _, col := range []string{colStudentID, colFirstName, colLastName, colEmail} {
		if row.Get(col) == "" {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	year, err := parseYear(row.Get(colYear))
	if err != nil {
		return nil, err
	}
	active, err := models.ParseStudentStatus(row.Get(colStatus))
	if err != nil {
		return nil, err
	}

	email := row.Get(colEmail)
	if verr := validation.ValidateVar("email", email, "email"); verr != nil {
		return nil, apperrors.Validation("invalid email %q", email)
	}

	st := &models.Student{
		StudentID: row.Get(colStudentID),
		FirstName: row.Get(colFirstName),
		LastName:  row.Get(colLastName),
		Email:     email,
		Phone:     row.Get(colPhone),
		Year:      year,
		Program:   row.Get(colProgram),
		IsActive:  active,
		Notes:     row.Get(colNotes),
	}
	if st.Program == "" {
		st.Program = models.DefaultProgram
	}
	if verr := validation.ValidateStruct(st); verr != nil {
		return nil, verr.AppError()
	}
	return st, nil
}

// parseYear defaults blank or non-numeric years to 1. A numeric year
// outside 1-4 is rejected.
func parseYear(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1, nil
	}
	year := int(math.Trunc(f))
	if year < 1 || year > 4 {
		return 0, apperrors.Validation("year must be between 1 and 4, got %s", s)
	}
	return year, nil
}

// projectFromRow maps a project row and returns the referenced student key,
// which the caller resolves. The returned error is a row error.
func projectFromRow(row Row) (*models.Project, string, error) {
	if err := row.checkLabeled(); err != nil {
		return nil, "", err
	}

	title := row.Get(colTitle)
	if title == "" {
		return nil, "", apperrors.Validation("project missing title")
	}

	status, err := models.ParseProjectStatus(row.Get(colStatus))
	if err != nil {
		return nil, "", err
	}

	p := &models.Project{
		Title:               title,
		Description:         row.Get(colDescription),
		Genre:               row.Get(colGenre),
		Duration:            parseDuration(row.Get(colDurationMin, colDuration)),
		Status:              status,
		SupervisingProducer: row.Get(colProducer),
		Director:            row.Get(colDirector),
		Editor:              row.Get(colEditor),
		SoundEngineer:       row.Get(colSound),
		CameraEquipment:     row.Get(colCamera),
		EditingSuite:        row.Get(colEditingSuite),
		Notes:               row.Get(colNotes),
		IsActive:            true,
	}
	for _, label := range models.MilestoneLabels() {
		if d, ok := models.ParseDate(row.Get(label)); ok {
			p.SetMilestone(label, d)
		}
	}
	if verr := validation.ValidateStruct(p); verr != nil {
		return nil, "", verr.AppError()
	}
	return p, row.Get(colStudentID), nil
}

// parseDuration returns a positive minute count, or nil.
func parseDuration(s string) *int {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 {
		return nil
	}
	d := int(math.Trunc(f))
	return &d
}
