// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/database"
	"github.com/tomtom215/filmvault/internal/models"
)

// testNow is a Friday.
var testNow = time.Date(2024, time.June, 7, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.NewMemory(context.Background())
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	db.SetClock(fixedClock(testNow))
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

// setupManager returns a manager over store writing to a fresh temp dir,
// with the clock pinned to testNow.
func setupManager(t *testing.T, store Store) *Manager {
	t.Helper()

	m, err := NewManager(&config.BackupConfig{Dir: t.TempDir()}, store)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m.SetClock(fixedClock(testNow))
	return m
}

func mustCreateStudent(t *testing.T, db *database.DB, key, first, last string) *models.Student {
	t.Helper()

	st := &models.Student{
		StudentID: key,
		FirstName: first,
		LastName:  last,
		Email:     key + "@school.edu",
		Year:      2,
		Program:   "Editing",
		IsActive:  true,
	}
	if err := db.CreateStudent(context.Background(), st); err != nil {
		t.Fatalf("CreateStudent(%s) error = %v", key, err)
	}
	return st
}

func mustCreateProject(t *testing.T, db *database.DB, title string, student *models.Student) *models.Project {
	t.Helper()

	p := &models.Project{Title: title, IsActive: true}
	if student != nil {
		id := student.ID
		p.StudentID = &id
	}
	if err := db.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("CreateProject(%s) error = %v", title, err)
	}
	return p
}

// writeBackupFile writes content under a convention name stamped at ts.
func writeBackupFile(t *testing.T, dir string, kind models.BackupKind, format models.BackupFormat, ts time.Time, content string) string {
	t.Helper()

	name := Filename(kind, format, ts)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return name
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
