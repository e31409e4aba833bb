// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

// Sheet names written by the workbook exporter. The importer matches them
// case-insensitively by substring.
const (
	ProjectsSheet = "Projects"
	StudentsSheet = "Students"
)

type xlsxColumn struct {
	header string
	width  float64
}

var projectColumns = []xlsxColumn{
	{"Project ID", 10},
	{"Title", 25},
	{"Description", 30},
	{"Genre", 15},
	{"Duration (min)", 12},
	{"Status", 15},
	{"Student ID", 12},
	{"Student Name", 20},
	{"Supervising Producer", 20},
	{"Director", 15},
	{"Editor", 15},
	{"Sound Engineer", 15},
	{"Camera Equipment", 20},
	{"Editing Suite", 15},
	{"Shoot Date", 12},
	{"Grade Date", 12},
	{"Mix Date", 12},
	{"Rushes Delivery Date", 15},
	{"Final Delivery Date", 15},
	{"Review Date", 12},
	{"Screening Date", 15},
	{"Notes", 30},
	{"Created", 12},
	{"Updated", 12},
}

var studentColumns = []xlsxColumn{
	{"Student ID", 12},
	{"First Name", 15},
	{"Last Name", 15},
	{"Email", 25},
	{"Phone", 15},
	{"Year", 8},
	{"Program", 20},
	{"Status", 10},
	{"Notes", 30},
	{"Enrolled", 12},
	{"Last Updated", 12},
}

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

// cleanText strips control characters, which corrupt shared strings in
// some spreadsheet readers.
func cleanText(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// dateCell renders a timestamp as a calendar date with no time or zone.
func dateCell(t time.Time) string {
	return models.DateOf(t.UTC()).String()
}

func projectSheetRow(p *models.Project) []interface{} {
	var duration interface{} = ""
	if p.Duration != nil {
		duration = *p.Duration
	}
	var studentKey, studentName string
	if p.Student != nil {
		studentKey = p.Student.StudentID
		studentName = p.Student.FullName()
	}

	row := []interface{}{
		p.ID,
		cleanText(p.Title),
		cleanText(p.Description),
		cleanText(p.Genre),
		duration,
		cleanText(string(p.Status)),
		cleanText(studentKey),
		cleanText(studentName),
		cleanText(p.SupervisingProducer),
		cleanText(p.Director),
		cleanText(p.Editor),
		cleanText(p.SoundEngineer),
		cleanText(p.CameraEquipment),
		cleanText(p.EditingSuite),
	}
	for _, m := range p.Milestones() {
		row = append(row, m.Date.String())
	}
	return append(row,
		cleanText(p.Notes),
		dateCell(p.CreatedAt),
		dateCell(p.UpdatedAt),
	)
}

func studentSheetRow(st *models.Student) []interface{} {
	return []interface{}{
		cleanText(st.StudentID),
		cleanText(st.FirstName),
		cleanText(st.LastName),
		cleanText(st.Email),
		cleanText(st.Phone),
		st.Year,
		cleanText(st.Program),
		models.StudentStatusLabel(st.IsActive),
		cleanText(st.Notes),
		dateCell(st.CreatedAt),
		dateCell(st.UpdatedAt),
	}
}

// writeSheet writes a header row, the data rows and the column widths.
func writeSheet(f *excelize.File, sheet string, cols []xlsxColumn, headerStyle int, rows [][]interface{}) error {
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}

	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) writeXLSX(ctx context.Context, snap *dataSnapshot, w io.Writer) error {
	projects, students := snap.projects, snap.students

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Ctx(ctx).Warn().Err(cerr).Msg("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", ProjectsSheet); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	if _, err := f.NewSheet(StudentsSheet); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}

	projectRows := make([][]interface{}, len(projects))
	for i := range projects {
		projectRows[i] = projectSheetRow(&projects[i])
	}
	if err := writeSheet(f, ProjectsSheet, projectColumns, headerStyle, projectRows); err != nil {
		return fmt.Errorf("build %s sheet: %w", ProjectsSheet, err)
	}

	studentRows := make([][]interface{}, len(students))
	for i := range students {
		studentRows[i] = studentSheetRow(&students[i])
	}
	if err := writeSheet(f, StudentsSheet, studentColumns, headerStyle, studentRows); err != nil {
		return fmt.Errorf("build %s sheet: %w", StudentsSheet, err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return ioError(err, "xlsx backup")
	}
	return nil
}
