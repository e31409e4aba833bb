// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package spreadsheetimport

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/logging"
)

// Sheet-name fragments matched case-insensitively.
const (
	studentSheetFragment = "student"
	projectSheetFragment = "project"
)

// workbook holds the rows of the recognized sheets.
type workbook struct {
	studentSheet string
	projectSheet string
	students     []Row
	projects     []Row
}

// readWorkbook opens data as an xlsx workbook and reads the student and
// project sheets. Cells are read raw so date cells arrive as serials.
func readWorkbook(data []byte) (*workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFormat, err, "file is not a readable xlsx workbook")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close uploaded workbook")
		}
	}()

	wb := &workbook{}
	for _, name := range f.GetSheetList() {
		lower := strings.ToLower(name)
		if wb.studentSheet == "" && strings.Contains(lower, studentSheetFragment) {
			wb.studentSheet = name
		}
		if wb.projectSheet == "" && strings.Contains(lower, projectSheetFragment) {
			wb.projectSheet = name
		}
	}
	if wb.studentSheet == "" && wb.projectSheet == "" {
		return nil, apperrors.New(apperrors.KindNoRecognizedSheets,
			"no student or project sheet found in workbook (sheets: %s)", strings.Join(f.GetSheetList(), ", "))
	}

	if wb.studentSheet != "" {
		if wb.students, err = readRows(f, wb.studentSheet); err != nil {
			return nil, err
		}
	}
	if wb.projectSheet != "" {
		if wb.projects, err = readRows(f, wb.projectSheet); err != nil {
			return nil, err
		}
	}
	return wb, nil
}

// readRows returns the non-blank data rows of sheet. The first row is the
// header row.
func readRows(f *excelize.File, sheet string) ([]Row, error) {
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFormat, err, "read sheet %q", sheet)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		row := newRow(i+2, headers, cells)
		if row.Blank() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
