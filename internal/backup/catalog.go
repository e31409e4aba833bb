// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/database"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/metrics"
	"github.com/tomtom215/filmvault/internal/models"
)

// DefaultHistoryLimit is the number of records History returns when no
// limit is given. It is also the API maximum.
const DefaultHistoryLimit = 50

// Deletion reasons, used as the metrics label.
const (
	reasonManual    = "manual"
	reasonRetention = "retention"
)

// CatalogEntry is a backup file on disk joined with its latest record.
type CatalogEntry struct {
	Filename string              `json:"filename"`
	Path     string              `json:"path"`
	Size     int64               `json:"size"`
	Created  time.Time           `json:"created"`
	Modified time.Time           `json:"modified"`
	Status   models.BackupStatus `json:"status"`
	Kind     models.BackupKind   `json:"type"`
	Format   models.BackupFormat `json:"format"`
}

// ListBackups scans the backup directory for convention-named files, newest
// first. Files without a record are reported with status "unknown".
func (m *Manager) ListBackups(ctx context.Context) ([]CatalogEntry, error) {
	dirEntries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []CatalogEntry{}, nil
	}
	if err != nil {
		return nil, apperrors.IO(err, "read backup directory")
	}

	latest, err := m.store.LatestBackupRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	entries := make([]CatalogEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		parsed, ok := ParseFilename(de.Name())
		if !ok {
			continue
		}
		info, err := de.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue // removed while scanning
		}
		if err != nil {
			return nil, apperrors.IO(err, "stat %s", de.Name())
		}
		entries = append(entries, catalogEntry(m.dir, info, parsed, latest))
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Created.Equal(entries[j].Created) {
			return entries[i].Filename > entries[j].Filename
		}
		return entries[i].Created.After(entries[j].Created)
	})
	return entries, nil
}

func catalogEntry(dir string, info fs.FileInfo, parsed ParsedFilename, latest map[string]models.BackupRecord) CatalogEntry {
	e := CatalogEntry{
		Filename: info.Name(),
		Path:     filepath.Join(dir, info.Name()),
		Size:     info.Size(),
		Created:  parsed.CreatedAt,
		Modified: info.ModTime().UTC(),
		Status:   models.BackupStatusUnknown,
		Kind:     parsed.Kind,
		Format:   parsed.Format,
	}
	if e.Created.IsZero() {
		e.Created = e.Modified
	}
	if rec, ok := latest[e.Filename]; ok {
		e.Status = rec.Status
		e.Kind = rec.Kind
		e.Format = rec.Format
	}
	return e
}

// DeleteBackup removes a backup file and marks its latest record deleted.
func (m *Manager) DeleteBackup(ctx context.Context, filename string) error {
	return m.deleteBackup(ctx, filename, reasonManual)
}

func (m *Manager) deleteBackup(ctx context.Context, filename, reason string) (err error) {
	defer func() {
		event := logging.AuditEvent{
			Action: logging.ActionBackupDelete, Target: filename, Success: err == nil,
			Details: map[string]string{"reason": reason},
		}
		if err != nil {
			event.Error = err.Error()
		}
		m.audit.Log(ctx, event)
	}()

	if err := ValidateFilename(filename); err != nil {
		return err
	}
	path := filepath.Join(m.dir, filename)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return apperrors.NotFound("backup %s not found", filename)
	} else if err != nil {
		return apperrors.IO(err, "stat backup %s", filename)
	}
	if err := os.Remove(path); err != nil {
		return apperrors.IO(err, "delete backup %s", filename)
	}
	metrics.RecordBackupDeleted(reason)

	m.markRecordDeleted(ctx, filename)

	if m.mirror != nil {
		if err := m.mirror.Delete(ctx, filename); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("filename", filename).Msg("Failed to delete offsite mirror copy")
		}
	}

	logging.Ctx(ctx).Info().Str("filename", filename).Str("reason", reason).Msg("Backup deleted")
	return nil
}

// markRecordDeleted is best effort: the file is already gone, so a record
// update failure is logged and not returned.
func (m *Manager) markRecordDeleted(ctx context.Context, filename string) {
	rec, err := m.store.LatestBackupRecordByFilename(ctx, filename)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		logging.Ctx(ctx).Debug().Str("filename", filename).Msg("Deleted backup had no record")
		return
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("filename", filename).Msg("Failed to look up backup record")
		return
	}
	if rec.Status == models.BackupStatusDeleted {
		return
	}
	if err := m.store.MarkBackupDeleted(ctx, rec.ID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("filename", filename).Msg("Failed to mark backup record deleted")
	}
}

// History returns the latest backup records, newest first.
func (m *Manager) History(ctx context.Context, limit int) ([]models.BackupRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	records, err := m.store.ListBackupRecords(ctx, database.BackupRecordFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("backup history: %w", err)
	}
	return records, nil
}

// OpenBackup opens a backup for download. The caller closes the file.
func (m *Manager) OpenBackup(_ context.Context, filename string) (*os.File, fs.FileInfo, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(m.dir, filename)) //nolint:gosec // G304: filename validated above
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, apperrors.NotFound("backup %s not found", filename)
	}
	if err != nil {
		return nil, nil, apperrors.IO(err, "open backup %s", filename)
	}

	info, err := f.Stat()
	if err != nil {
		closeQuietly(f)
		return nil, nil, apperrors.IO(err, "stat backup %s", filename)
	}
	return f, info, nil
}
