// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/database"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

// DocumentVersion is written to every structured document.
const DocumentVersion = "1.0"

// Source is the read side of the store used by exports. Every list is
// ordered by id and holds active rows only, except the backup log.
type Source interface {
	ListActiveStudents(ctx context.Context) ([]models.Student, error)
	ListExportableProjects(ctx context.Context) ([]models.Project, int, error)
	ListActiveUsers(ctx context.Context) ([]models.User, error)
	ListAllBackupRecords(ctx context.Context) ([]models.BackupRecord, error)
}

// SnapshotSource is a Source that can pin a group of reads to one
// transaction. *database.DB satisfies it.
type SnapshotSource interface {
	Source
	WithTx(ctx context.Context, fn func(tx *database.Tx) error) error
}

// Serializer renders the active dataset in one of the backup formats.
// Output is deterministic for a fixed clock and dataset.
type Serializer struct {
	src Source
	now func() time.Time
}

// NewSerializer creates a serializer reading from src.
func NewSerializer(src Source) *Serializer {
	return &Serializer{src: src, now: time.Now}
}

// SetClock replaces the clock used for export timestamps.
func (s *Serializer) SetClock(now func() time.Time) {
	s.now = now
}

// Serialize writes the active dataset to w in format. An unknown format is
// a FormatError; a failed write is an IOError.
func (s *Serializer) Serialize(ctx context.Context, format models.BackupFormat, w io.Writer) error {
	var write func(context.Context, *dataSnapshot, io.Writer) error
	switch format {
	case models.FormatJSON:
		write = s.writeJSON
	case models.FormatCSV:
		write = s.writeCSV
	case models.FormatSQL:
		write = s.writeSQL
	case models.FormatXLSX:
		write = s.writeXLSX
	default:
		return apperrors.Format("unsupported backup format %q", format)
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	return write(ctx, snap, w)
}

// dataSnapshot is one consistent read of everything an export may contain.
type dataSnapshot struct {
	projects []models.Project
	students []models.Student
	users    []models.User
	logs     []models.BackupRecord
}

// snapshot loads the dataset. When the source supports transactions every
// read runs in the same one, so a write committed mid-export cannot leave a
// project pointing at a student the document lacks.
func (s *Serializer) snapshot(ctx context.Context) (*dataSnapshot, error) {
	ts, ok := s.src.(SnapshotSource)
	if !ok {
		return readSnapshot(ctx, s.src)
	}

	var snap *dataSnapshot
	err := ts.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		snap, err = readSnapshot(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func readSnapshot(ctx context.Context, src Source) (*dataSnapshot, error) {
	projects, excluded, err := src.ListExportableProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	if excluded > 0 {
		logging.Ctx(ctx).Warn().
			Int("excluded", excluded).
			Msg("Active projects referencing inactive students left out of export")
	}
	students, err := src.ListActiveStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	users, err := src.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	logs, err := src.ListAllBackupRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load backup logs: %w", err)
	}
	return &dataSnapshot{projects: projects, students: students, users: users, logs: logs}, nil
}

// ioError classifies a failed write. Errors that already carry a kind
// (a cancelled context surfacing from the store, say) pass through.
func ioError(err error, what string) error {
	if apperrors.KindOf(err) != apperrors.KindInternal {
		return err
	}
	return apperrors.IO(err, "write %s", what)
}
