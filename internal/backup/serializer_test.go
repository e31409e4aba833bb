// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/filmvault/internal/database"
	"github.com/tomtom215/filmvault/internal/models"
)

// sheetRecords reads sheet back as header-keyed records.
func sheetRecords(t *testing.T, data []byte, sheet string) []map[string]string {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows(%s) error = %v", sheet, err)
	}
	if len(rows) == 0 {
		t.Fatalf("sheet %s is empty", sheet)
	}
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(rows[0]))
		for i, h := range rows[0] {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

func TestSerialize_XLSXCleansTextAndDates(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	st := &models.Student{
		StudentID: "FS020", FirstName: "Ann\tMarie", LastName: "Lee\x00", Email: "ann@school.edu",
		Year: 3, Program: "Sound\x7f Design", IsActive: true, Notes: "line one\r\nline two\x1b",
	}
	if err := db.CreateStudent(ctx, st); err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}
	id := st.ID
	p := &models.Project{
		Title: "Cut\x07 Point", StudentID: &id, Director: "J.\x0bPark", IsActive: true,
		ShootDate: models.NewDate(2024, time.May, 2), ScreeningDate: models.NewDate(2024, time.December, 31),
	}
	if err := db.CreateProject(ctx, p); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	var buf bytes.Buffer
	s := NewSerializer(db)
	s.SetClock(fixedClock(testNow))
	if err := s.Serialize(ctx, models.FormatXLSX, &buf); err != nil {
		t.Fatalf("Serialize(xlsx) error = %v", err)
	}

	students := sheetRecords(t, buf.Bytes(), StudentsSheet)
	if len(students) != 1 {
		t.Fatalf("student rows = %d, want 1", len(students))
	}
	for col, want := range map[string]string{
		"First Name":   "AnnMarie",
		"Last Name":    "Lee",
		"Program":      "Sound Design",
		"Notes":        "line oneline two",
		"Enrolled":     "2024-06-07",
		"Last Updated": "2024-06-07",
	} {
		if got := students[0][col]; got != want {
			t.Errorf("Students %s = %q, want %q", col, got, want)
		}
	}

	projects := sheetRecords(t, buf.Bytes(), ProjectsSheet)
	if len(projects) != 1 {
		t.Fatalf("project rows = %d, want 1", len(projects))
	}
	for col, want := range map[string]string{
		"Title":          "Cut Point",
		"Director":       "J.Park",
		"Student Name":   "AnnMarie Lee",
		"Shoot Date":     "2024-05-02",
		"Screening Date": "2024-12-31",
		"Mix Date":       "",
		"Created":        "2024-06-07",
	} {
		if got := projects[0][col]; got != want {
			t.Errorf("Projects %s = %q, want %q", col, got, want)
		}
	}
}

// racingSource deactivates a student as soon as the project list has been
// read through it, the way a concurrent writer could between two queries.
type racingSource struct {
	*database.DB
	victim    int64
	snapshots int
}

func (r *racingSource) ListExportableProjects(ctx context.Context) ([]models.Project, int, error) {
	projects, excluded, err := r.DB.ListExportableProjects(ctx)
	if err != nil {
		return nil, 0, err
	}
	return projects, excluded, r.DB.SetStudentActive(ctx, r.victim, false)
}

func (r *racingSource) WithTx(ctx context.Context, fn func(tx *database.Tx) error) error {
	r.snapshots++
	return r.DB.WithTx(ctx, fn)
}

// readOnlySource hides WithTx so reads go straight to the source.
type readOnlySource struct {
	Source
}

func TestSerialize_ReadsOneSnapshot(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, data []byte) *Document {
		t.Helper()
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		return &doc
	}
	referenced := func(doc *Document) (dangling int) {
		ids := make(map[int64]bool, len(doc.Data.Students))
		for _, st := range doc.Data.Students {
			ids[st.ID] = true
		}
		for _, p := range doc.Data.Projects {
			if p.StudentID != nil && !ids[*p.StudentID] {
				dangling++
			}
		}
		return dangling
	}

	t.Run("transactional source", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ann := mustCreateStudent(t, db, "FS001", "Ann", "Lee")
		mustCreateProject(t, db, "Night Shift", ann)
		src := &racingSource{DB: db, victim: ann.ID}

		var buf bytes.Buffer
		if err := NewSerializer(src).Serialize(context.Background(), models.FormatJSON, &buf); err != nil {
			t.Fatalf("Serialize(json) error = %v", err)
		}
		if src.snapshots != 1 {
			t.Errorf("snapshot transactions = %d, want 1", src.snapshots)
		}
		doc := decode(t, buf.Bytes())
		if len(doc.Data.Projects) != 1 || len(doc.Data.Students) != 1 {
			t.Fatalf("document = %d projects, %d students, want 1 and 1", len(doc.Data.Projects), len(doc.Data.Students))
		}
		if n := referenced(doc); n != 0 {
			t.Errorf("%d projects reference students missing from the document", n)
		}
	})

	t.Run("plain source", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ann := mustCreateStudent(t, db, "FS001", "Ann", "Lee")
		mustCreateProject(t, db, "Night Shift", ann)

		var buf bytes.Buffer
		if err := NewSerializer(readOnlySource{db}).Serialize(context.Background(), models.FormatJSON, &buf); err != nil {
			t.Fatalf("Serialize(json) error = %v", err)
		}
		doc := decode(t, buf.Bytes())
		if len(doc.Data.Students) != 1 || referenced(doc) != 0 {
			t.Errorf("document = %+v", doc.Data)
		}
	})
}
