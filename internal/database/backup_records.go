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

const backupColumns = `id, filename, type, format, size, status, error_message, file_path,
	scheduled_by, created_at, updated_at`

// BackupRecordFilter narrows ListBackupRecords. Zero values match everything.
type BackupRecordFilter struct {
	Status models.BackupStatus
	Kind   models.BackupKind
	Limit  int
}

func scanBackupRecord(row rowScanner) (models.BackupRecord, error) {
	var r models.BackupRecord
	var errMsg sql.NullString
	var status string
	err := row.Scan(&r.ID, &r.Filename, &r.Kind, &r.Format, &r.Size, &status, &errMsg,
		&r.FilePath, &r.Initiator, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	if r.Status, err = models.ParseBackupStatus(status); err != nil {
		return r, fmt.Errorf("backup record %d: %w", r.ID, err)
	}
	r.ErrorMessage = errMsg.String
	return r, nil
}

// CreateBackupRecord persists a new pending record and assigns its id.
func (s *store) CreateBackupRecord(ctx context.Context, r *models.BackupRecord) error {
	now := s.now()
	r.Status = models.BackupStatusPending
	r.CreatedAt, r.UpdatedAt = now, now
	if r.Initiator == "" {
		r.Initiator = models.InitiatorSystem
	}

	res, err := s.exec(ctx, "INSERT", "backup_logs", `
		INSERT INTO backup_logs (filename, type, format, size, status, file_path, scheduled_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Filename, string(r.Kind), string(r.Format), r.Size, string(r.Status), r.FilePath, r.Initiator,
		r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create backup record %s: %w", r.Filename, classifyConstraint(err, "backup record "+r.Filename))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create backup record %s: %w", r.Filename, err)
	}
	r.ID = id
	return nil
}

// transition moves a record into status `to` only if it is currently in one
// of the allowed source statuses. Any other transition is a Conflict.
func (s *store) transition(ctx context.Context, id int64, to models.BackupStatus, from []models.BackupStatus, set string, args ...interface{}) error {
	qb := newQueryBuilder(`UPDATE backup_logs SET status = ?, updated_at = ?` + set + ` WHERE id = ?`)
	qb.args = append(qb.args, string(to), s.now())
	qb.args = append(qb.args, args...)
	qb.args = append(qb.args, id)

	placeholders := ""
	for i, st := range from {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		qb.args = append(qb.args, string(st))
	}
	qb.filters = append(qb.filters, "status IN ("+placeholders+")")

	query, qargs := qb.build("")
	res, err := s.exec(ctx, "UPDATE", "backup_logs", query, qargs...)
	if err != nil {
		return fmt.Errorf("mark backup %d %s: %w", id, to, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Conflict("backup record %d cannot move to %s", id, to)
	}
	return nil
}

// MarkBackupCompleted moves a pending record to completed with the observed size.
func (s *store) MarkBackupCompleted(ctx context.Context, id, size int64) error {
	return s.transition(ctx, id, models.BackupStatusCompleted,
		[]models.BackupStatus{models.BackupStatusPending}, `, size = ?`, size)
}

// MarkBackupFailed moves a pending record to failed with the error text.
func (s *store) MarkBackupFailed(ctx context.Context, id int64, message string) error {
	return s.transition(ctx, id, models.BackupStatusFailed,
		[]models.BackupStatus{models.BackupStatusPending}, `, error_message = ?`, message)
}

// MarkBackupDeleted moves a completed or failed record to deleted.
func (s *store) MarkBackupDeleted(ctx context.Context, id int64) error {
	return s.transition(ctx, id, models.BackupStatusDeleted,
		[]models.BackupStatus{models.BackupStatusCompleted, models.BackupStatusFailed}, "")
}

// GetBackupRecord looks up a record by id.
func (s *store) GetBackupRecord(ctx context.Context, id int64) (*models.BackupRecord, error) {
	r, err := scanBackupRecord(s.queryRow(ctx, "backup_logs",
		`SELECT `+backupColumns+` FROM backup_logs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("backup record %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get backup record %d: %w", id, err)
	}
	return &r, nil
}

// LatestBackupRecordByFilename returns the most recent record for filename.
func (s *store) LatestBackupRecordByFilename(ctx context.Context, filename string) (*models.BackupRecord, error) {
	r, err := scanBackupRecord(s.queryRow(ctx, "backup_logs",
		`SELECT `+backupColumns+` FROM backup_logs WHERE filename = ? ORDER BY id DESC LIMIT 1`, filename))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("no backup record for %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("latest backup record %s: %w", filename, err)
	}
	return &r, nil
}

// LatestBackupRecords returns the most recent record per filename.
func (s *store) LatestBackupRecords(ctx context.Context) (map[string]models.BackupRecord, error) {
	query := `SELECT ` + backupColumns + ` FROM backup_logs
		WHERE id IN (SELECT MAX(id) FROM backup_logs GROUP BY filename)`
	records, err := queryAndScan(ctx, s, "backup_logs", query, nil, scanBackupRecord)
	if err != nil {
		return nil, fmt.Errorf("latest backup records: %w", err)
	}
	byName := make(map[string]models.BackupRecord, len(records))
	for _, r := range records {
		byName[r.Filename] = r
	}
	return byName, nil
}

// ListBackupRecords returns records newest first.
func (s *store) ListBackupRecords(ctx context.Context, filter BackupRecordFilter) ([]models.BackupRecord, error) {
	qb := newQueryBuilder(`SELECT ` + backupColumns + ` FROM backup_logs WHERE 1 = 1`).
		addFilterIf("status = ?", string(filter.Status)).
		addFilterIf("type = ?", string(filter.Kind))

	suffix := "ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		qb.addLimit(filter.Limit)
		suffix += " LIMIT ?"
	}
	query, args := qb.build(suffix)

	records, err := queryAndScan(ctx, s, "backup_logs", query, args, scanBackupRecord)
	if err != nil {
		return nil, fmt.Errorf("list backup records: %w", err)
	}
	return records, nil
}

// ListAllBackupRecords returns every record ordered by id.
func (s *store) ListAllBackupRecords(ctx context.Context) ([]models.BackupRecord, error) {
	records, err := queryAndScan(ctx, s, "backup_logs",
		`SELECT `+backupColumns+` FROM backup_logs ORDER BY id`, nil, scanBackupRecord)
	if err != nil {
		return nil, fmt.Errorf("list all backup records: %w", err)
	}
	return records, nil
}
