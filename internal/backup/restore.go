// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/database"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/metrics"
	"github.com/tomtom215/filmvault/internal/models"
	"github.com/tomtom215/filmvault/internal/validation"
)

// RestoreResult reports a completed restore.
type RestoreResult struct {
	Filename         string    `json:"filename"`
	RestoredAt       time.Time `json:"restoredAt"`
	StudentsRestored int       `json:"studentsRestored"`
	ProjectsRestored int       `json:"projectsRestored"`
}

// restoreDocument is the part of a Document that restore reads. Users and
// backup logs are ignored: accounts are never restored.
type restoreDocument struct {
	Data *struct {
		Projects []models.Project `json:"projects"`
		Students []models.Student `json:"students"`
	} `json:"data"`
}

// Restore replaces every student and project with the contents of a json
// backup, in one transaction. On any error the live dataset is unchanged.
func (m *Manager) Restore(ctx context.Context, filename string) (result *RestoreResult, err error) {
	start := time.Now()
	ctx = logging.ContextWithNewCorrelationID(ctx)
	defer func() {
		students, projects := 0, 0
		if result != nil {
			students, projects = result.StudentsRestored, result.ProjectsRestored
		}
		metrics.RecordRestore(time.Since(start), students, projects, err)

		event := logging.AuditEvent{Action: logging.ActionBackupRestore, Target: filename, Success: err == nil}
		if err != nil {
			event.Error = err.Error()
		}
		m.audit.Log(ctx, event)
	}()

	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}
	if parsed, _ := ParseFilename(filename); parsed.Format != models.FormatJSON {
		return nil, apperrors.Format("only json backups can be restored, got %s", parsed.Format)
	}

	data, err := os.ReadFile(filepath.Join(m.dir, filename)) //nolint:gosec // G304: filename validated above
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NotFound("backup %s not found", filename)
	}
	if err != nil {
		return nil, apperrors.IO(err, "read backup %s", filename)
	}

	students, projects, err := decodeRestoreDocument(data)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", filename, err)
	}
	if err := validateRestoreSet(students, projects); err != nil {
		return nil, fmt.Errorf("restore %s: %w", filename, err)
	}

	err = m.store.WithTx(ctx, func(tx *database.Tx) error {
		// Projects go first so no student is deleted while referenced, and
		// students are inserted before the projects pointing at them.
		if _, err := tx.DeleteAllProjects(ctx); err != nil {
			return err
		}
		if _, err := tx.DeleteAllStudents(ctx); err != nil {
			return err
		}
		for i := range students {
			if err := tx.InsertStudentWithID(ctx, &students[i]); err != nil {
				return err
			}
		}
		for i := range projects {
			if err := tx.InsertProjectWithID(ctx, &projects[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", filename, err)
	}

	result = &RestoreResult{
		Filename:         filename,
		RestoredAt:       m.clock().UTC(),
		StudentsRestored: len(students),
		ProjectsRestored: len(projects),
	}
	logging.Ctx(ctx).Info().
		Str("filename", filename).
		Int("students", result.StudentsRestored).
		Int("projects", result.ProjectsRestored).
		Dur("duration", time.Since(start)).
		Msg("Restore completed")
	return result, nil
}

func decodeRestoreDocument(data []byte) ([]models.Student, []models.Project, error) {
	var doc restoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindFormat, err, "backup is not a valid json document")
	}
	if doc.Data == nil {
		return nil, nil, apperrors.Format("backup document has no data container")
	}
	return doc.Data.Students, doc.Data.Projects, nil
}

// validateRestoreSet checks the whole document before the transaction
// starts: every student passes field validation, ids and natural keys are
// unique, and every project reference points into the restored set.
func validateRestoreSet(students []models.Student, projects []models.Project) error {
	ids := make(map[int64]struct{}, len(students))
	keys := make(map[string]struct{}, len(students))

	for i := range students {
		st := &students[i]
		if st.ID < 1 {
			return apperrors.Validation("student %q has no id", st.StudentID)
		}
		if verr := validation.ValidateStruct(st); verr != nil {
			return apperrors.Validation("student %q: %s", st.StudentID, verr.Error())
		}
		if _, dup := ids[st.ID]; dup {
			return apperrors.Validation("duplicate student id %d", st.ID)
		}
		if _, dup := keys[st.StudentID]; dup {
			return apperrors.Validation("duplicate student %q", st.StudentID)
		}
		ids[st.ID] = struct{}{}
		keys[st.StudentID] = struct{}{}
	}

	projectIDs := make(map[int64]struct{}, len(projects))
	for i := range projects {
		p := &projects[i]
		if p.ID < 1 {
			return apperrors.Validation("project %q has no id", p.Title)
		}
		if _, dup := projectIDs[p.ID]; dup {
			return apperrors.Validation("duplicate project id %d", p.ID)
		}
		projectIDs[p.ID] = struct{}{}

		if verr := validation.ValidateStruct(p); verr != nil {
			return apperrors.Validation("project %d: %s", p.ID, verr.Error())
		}
		status, err := models.ParseProjectStatus(string(p.Status))
		if err != nil {
			return fmt.Errorf("project %d: %w", p.ID, err)
		}
		p.Status = status

		if p.StudentID != nil {
			if _, ok := ids[*p.StudentID]; !ok {
				return apperrors.ReferentialIntegrity("project %q references student %d, which is not in the backup", p.Title, *p.StudentID)
			}
		}
		p.Student = nil
	}
	return nil
}
