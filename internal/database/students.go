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

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/models"
)

const studentColumns = `id, student_id, first_name, last_name, email, phone, year, program,
	is_active, notes, created_at, updated_at`

func scanStudent(row rowScanner) (models.Student, error) {
	var s models.Student
	var phone, notes sql.NullString
	err := row.Scan(&s.ID, &s.StudentID, &s.FirstName, &s.LastName, &s.Email, &phone,
		&s.Year, &s.Program, &s.IsActive, &notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.Phone = phone.String
	s.Notes = notes.String
	return s, nil
}

// ListActiveStudents returns every active student ordered by id.
func (s *store) ListActiveStudents(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE is_active = 1 ORDER BY id`
	students, err := queryAndScan(ctx, s, "students", query, nil, scanStudent)
	if err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// ListStudents returns every student, active or not, ordered by id.
func (s *store) ListStudents(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY id`
	students, err := queryAndScan(ctx, s, "students", query, nil, scanStudent)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindStudentByNaturalKey looks up a student by its StudentID, including
// inactive students. A missing student is a NotFound error.
func (s *store) FindStudentByNaturalKey(ctx context.Context, key string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_id = ?`
	student, err := scanStudent(s.queryRow(ctx, "students", query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("student %q not found", key)
	}
	if err != nil {
		return nil, fmt.Errorf("find student %q: %w", key, err)
	}
	return &student, nil
}

// GetStudent looks up a student by surrogate id.
func (s *store) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = ?`
	student, err := scanStudent(s.queryRow(ctx, "students", query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("student %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get student %d: %w", id, err)
	}
	return &student, nil
}

// CreateStudent inserts a new student and assigns its id and timestamps.
func (s *store) CreateStudent(ctx context.Context, st *models.Student) error {
	now := s.now()
	st.CreatedAt, st.UpdatedAt = now, now
	if st.Program == "" {
		st.Program = models.DefaultProgram
	}

	res, err := s.exec(ctx, "INSERT", "students", `
		INSERT INTO students (student_id, first_name, last_name, email, phone, year, program,
			is_active, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.StudentID, st.FirstName, st.LastName, st.Email, nullString(st.Phone), st.Year, st.Program,
		boolInt(st.IsActive), nullString(st.Notes), st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create student %q: %w", st.StudentID, classifyConstraint(err, "student "+st.StudentID))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create student %q: %w", st.StudentID, err)
	}
	st.ID = id
	return nil
}

// UpdateStudent overwrites the mutable fields of an existing student.
// The natural key is immutable and is not written.
func (s *store) UpdateStudent(ctx context.Context, st *models.Student) error {
	st.UpdatedAt = s.now()
	if st.Program == "" {
		st.Program = models.DefaultProgram
	}

	res, err := s.exec(ctx, "UPDATE", "students", `
		UPDATE students SET first_name = ?, last_name = ?, email = ?, phone = ?, year = ?,
			program = ?, is_active = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		st.FirstName, st.LastName, st.Email, nullString(st.Phone), st.Year,
		st.Program, boolInt(st.IsActive), nullString(st.Notes), st.UpdatedAt, st.ID)
	if err != nil {
		return fmt.Errorf("update student %q: %w", st.StudentID, classifyConstraint(err, "student "+st.StudentID))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("student %d not found", st.ID)
	}
	return nil
}

// InsertStudentWithID inserts a student keeping its id. Zero timestamps are
// filled with the current time.
func (s *store) InsertStudentWithID(ctx context.Context, st *models.Student) error {
	st.CreatedAt = stamp(st.CreatedAt, s.now)
	st.UpdatedAt = stamp(st.UpdatedAt, s.now)

	_, err := s.exec(ctx, "INSERT", "students", `
		INSERT INTO students (`+studentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.StudentID, st.FirstName, st.LastName, st.Email, nullString(st.Phone), st.Year,
		st.Program, boolInt(st.IsActive), nullString(st.Notes), st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert student %d: %w", st.ID, classifyConstraint(err, "student "+st.StudentID))
	}
	return nil
}

// SetStudentActive soft-deletes or reactivates a student.
func (s *store) SetStudentActive(ctx context.Context, id int64, active bool) error {
	res, err := s.exec(ctx, "UPDATE", "students",
		`UPDATE students SET is_active = ?, updated_at = ? WHERE id = ?`, boolInt(active), s.now(), id)
	if err != nil {
		return fmt.Errorf("set student %d active=%t: %w", id, active, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("student %d not found", id)
	}
	return nil
}

// DeleteAllStudents physically removes every student. Projects must be
// removed first or the foreign key rejects the delete.
func (s *store) DeleteAllStudents(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, "DELETE", "students", `DELETE FROM students`)
	if err != nil {
		return 0, fmt.Errorf("delete students: %w", classifyConstraint(err, "students"))
	}
	return res.RowsAffected()
}
