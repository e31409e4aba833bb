// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

const projectColumns = `id, title, description, genre, duration, status, student_id,
	shoot_date, rushes_delivery_date, grade_date, mix_date, final_delivery_date, review_date, screening_date,
	supervising_producer, director, editor, sound_engineer, camera_equipment, editing_suite,
	notes, is_active, created_at, updated_at`

// projectSelect joins each project with its owning student so the summary
// is read in the same pass. A single pooled connection cannot run a nested
// lookup while rows are open.
const projectSelect = `SELECT p.id, p.title, p.description, p.genre, p.duration, p.status, p.student_id,
	p.shoot_date, p.rushes_delivery_date, p.grade_date, p.mix_date, p.final_delivery_date, p.review_date, p.screening_date,
	p.supervising_producer, p.director, p.editor, p.sound_engineer, p.camera_equipment, p.editing_suite,
	p.notes, p.is_active, p.created_at, p.updated_at,
	s.student_id, s.first_name, s.last_name, s.email, s.is_active
FROM projects p
LEFT JOIN students s ON s.id = p.student_id`

// projectRow is a project together with its owning student's active flag.
type projectRow struct {
	project       models.Project
	studentActive bool
}

func scanProjectRow(row rowScanner) (projectRow, error) {
	var pr projectRow
	p := &pr.project
	var description, genre, notes sql.NullString
	var producer, director, editor, sound, camera, suite sql.NullString
	var duration, studentID sql.NullInt64
	var sKey, sFirst, sLast, sEmail sql.NullString
	var sActive sql.NullBool
	err := row.Scan(&p.ID, &p.Title, &description, &genre, &duration, &p.Status, &studentID,
		&p.ShootDate, &p.RushesDeliveryDate, &p.GradeDate, &p.MixDate, &p.FinalDeliveryDate, &p.ReviewDate, &p.ScreeningDate,
		&producer, &director, &editor, &sound, &camera, &suite,
		&notes, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&sKey, &sFirst, &sLast, &sEmail, &sActive)
	if err != nil {
		return pr, err
	}

	p.Description = description.String
	p.Genre = genre.String
	p.Notes = notes.String
	p.SupervisingProducer = producer.String
	p.Director = director.String
	p.Editor = editor.String
	p.SoundEngineer = sound.String
	p.CameraEquipment = camera.String
	p.EditingSuite = suite.String
	if duration.Valid {
		d := int(duration.Int64)
		p.Duration = &d
	}
	if studentID.Valid {
		id := studentID.Int64
		p.StudentID = &id
		p.Student = &models.StudentSummary{
			ID:        id,
			StudentID: sKey.String,
			FirstName: sFirst.String,
			LastName:  sLast.String,
			Email:     sEmail.String,
		}
		pr.studentActive = sActive.Bool
	}
	return pr, nil
}

// ListExportableProjects returns the active projects whose student, if any,
// is active, ordered by id. Projects dropped because their student is
// inactive are counted in excluded so every export stays restorable.
func (s *store) ListExportableProjects(ctx context.Context) (projects []models.Project, excluded int, err error) {
	rows, err := queryAndScan(ctx, s, "projects", projectSelect+` WHERE p.is_active = 1 ORDER BY p.id`, nil, scanProjectRow)
	if err != nil {
		return nil, 0, fmt.Errorf("list exportable projects: %w", err)
	}

	projects = make([]models.Project, 0, len(rows))
	for _, r := range rows {
		if r.project.StudentID != nil && !r.studentActive {
			excluded++
			continue
		}
		projects = append(projects, r.project)
	}
	if excluded > 0 {
		logging.Info().Int("excluded", excluded).Msg("Excluded active projects owned by inactive students")
	}
	return projects, excluded, nil
}

// ListProjects returns every project, active or not, ordered by id.
func (s *store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := queryAndScan(ctx, s, "projects", projectSelect+` ORDER BY p.id`, nil, scanProjectRow)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects := make([]models.Project, len(rows))
	for i, r := range rows {
		projects[i] = r.project
	}
	return projects, nil
}

// CreateProject inserts a new project. A set StudentID must reference an
// existing, active student.
func (s *store) CreateProject(ctx context.Context, p *models.Project) error {
	if p.StudentID != nil {
		st, err := s.GetStudent(ctx, *p.StudentID)
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return apperrors.ReferentialIntegrity("project %q references missing student %d", p.Title, *p.StudentID)
		}
		if err != nil {
			return fmt.Errorf("create project %q: %w", p.Title, err)
		}
		if !st.IsActive {
			return apperrors.ReferentialIntegrity("project %q references inactive student %s", p.Title, st.StudentID)
		}
		p.Student = st.Summary()
	}
	if p.Status == "" {
		p.Status = models.ProjectStatusPreProduction
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	res, err := s.exec(ctx, "INSERT", "projects", `
		INSERT INTO projects (title, description, genre, duration, status, student_id,
			shoot_date, rushes_delivery_date, grade_date, mix_date, final_delivery_date, review_date, screening_date,
			supervising_producer, director, editor, sound_engineer, camera_equipment, editing_suite,
			notes, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectArgs(p)[1:]...)
	if err != nil {
		return fmt.Errorf("create project %q: %w", p.Title, classifyConstraint(err, "project "+p.Title))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create project %q: %w", p.Title, err)
	}
	p.ID = id
	return nil
}

// InsertProjectWithID inserts a project keeping its id and student reference.
// The foreign key still requires the referenced student to exist.
func (s *store) InsertProjectWithID(ctx context.Context, p *models.Project) error {
	if p.Status == "" {
		p.Status = models.ProjectStatusPreProduction
	}
	p.CreatedAt = stamp(p.CreatedAt, s.now)
	p.UpdatedAt = stamp(p.UpdatedAt, s.now)

	_, err := s.exec(ctx, "INSERT", "projects", `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectArgs(p)...)
	if err != nil {
		return fmt.Errorf("insert project %d: %w", p.ID, classifyConstraint(err, "project "+p.Title))
	}
	return nil
}

// projectArgs returns the insert arguments in projectColumns order.
func projectArgs(p *models.Project) []interface{} {
	return []interface{}{
		p.ID, p.Title, nullString(p.Description), nullString(p.Genre), nullInt(p.Duration), string(p.Status), nullInt64(p.StudentID),
		p.ShootDate, p.RushesDeliveryDate, p.GradeDate, p.MixDate, p.FinalDeliveryDate, p.ReviewDate, p.ScreeningDate,
		nullString(p.SupervisingProducer), nullString(p.Director), nullString(p.Editor),
		nullString(p.SoundEngineer), nullString(p.CameraEquipment), nullString(p.EditingSuite),
		nullString(p.Notes), boolInt(p.IsActive), p.CreatedAt, p.UpdatedAt,
	}
}

// SetProjectActive soft-deletes or reactivates a project.
func (s *store) SetProjectActive(ctx context.Context, id int64, active bool) error {
	res, err := s.exec(ctx, "UPDATE", "projects",
		`UPDATE projects SET is_active = ?, updated_at = ? WHERE id = ?`, boolInt(active), s.now(), id)
	if err != nil {
		return fmt.Errorf("set project %d active=%t: %w", id, active, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("project %d not found", id)
	}
	return nil
}

// DeleteAllProjects physically removes every project.
func (s *store) DeleteAllProjects(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx, "DELETE", "projects", `DELETE FROM projects`)
	if err != nil {
		return 0, fmt.Errorf("delete projects: %w", err)
	}
	return res.RowsAffected()
}
