// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

/*
manager.go - Backup Orchestrator

One call to CreateBackup produces exactly one artifact:

 1. take the backup-in-progress guard (non-blocking; a second caller gets a
    ConflictError instead of queueing)
 2. compute the convention filename from kind, format and a strictly
    increasing UTC timestamp
 3. persist a pending record before any I/O
 4. serialize into .tmp-<filename>, fsync, rename into place
 5. stat the final file and mark the record completed with the observed size

Any failure removes the temp file and marks the record failed. A record is
never completed for a partially written file.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/database"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/metrics"
	"github.com/tomtom215/filmvault/internal/models"
)

// Store is the persistence the manager needs. *database.DB satisfies it.
type Store interface {
	Source

	CreateBackupRecord(ctx context.Context, r *models.BackupRecord) error
	MarkBackupCompleted(ctx context.Context, id, size int64) error
	MarkBackupFailed(ctx context.Context, id int64, message string) error
	MarkBackupDeleted(ctx context.Context, id int64) error
	GetBackupRecord(ctx context.Context, id int64) (*models.BackupRecord, error)
	LatestBackupRecordByFilename(ctx context.Context, filename string) (*models.BackupRecord, error)
	LatestBackupRecords(ctx context.Context) (map[string]models.BackupRecord, error)
	ListBackupRecords(ctx context.Context, filter database.BackupRecordFilter) ([]models.BackupRecord, error)

	WithTx(ctx context.Context, fn func(tx *database.Tx) error) error
}

// Manager creates, restores, lists and deletes backups in one directory.
type Manager struct {
	dir        string
	store      Store
	serializer *Serializer
	mirror     Mirror
	audit      *logging.AuditLogger

	// backupMu is the backup-in-progress guard. It is only ever TryLock'ed.
	backupMu sync.Mutex

	clockMu   sync.Mutex
	now       func() time.Time
	lastStamp time.Time
}

// NewManager creates a manager writing to cfg.Dir, creating the directory
// if needed. An enabled mirror in cfg is wired to S3.
func NewManager(cfg *config.BackupConfig, store Store) (*Manager, error) {
	if cfg == nil || cfg.Dir == "" {
		return nil, apperrors.Validation("backup directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, apperrors.IO(err, "create backup directory %s", cfg.Dir)
	}

	m := &Manager{
		dir:        cfg.Dir,
		store:      store,
		serializer: NewSerializer(store),
		audit:      logging.NewAuditLogger(),
		now:        time.Now,
	}
	if cfg.Mirror.Enabled {
		m.mirror = NewS3Mirror(&cfg.Mirror)
	}
	return m, nil
}

// SetClock replaces the manager's clock. Tests use it to pin filenames and
// retention cutoffs.
func (m *Manager) SetClock(now func() time.Time) {
	m.clockMu.Lock()
	defer m.clockMu.Unlock()
	m.now = now
	m.serializer.SetClock(now)
}

// SetMirror replaces the offsite mirror. nil disables mirroring.
func (m *Manager) SetMirror(mirror Mirror) {
	m.mirror = mirror
}

// SetAuditLogger replaces the audit logger.
func (m *Manager) SetAuditLogger(a *logging.AuditLogger) {
	m.audit = a
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) clock() time.Time {
	m.clockMu.Lock()
	defer m.clockMu.Unlock()
	return m.now()
}

// nextTimestamp returns the current UTC time at millisecond precision,
// bumped past the previous stamp so two backups never share a filename.
func (m *Manager) nextTimestamp() time.Time {
	m.clockMu.Lock()
	defer m.clockMu.Unlock()

	t := m.now().UTC().Truncate(time.Millisecond)
	if !t.After(m.lastStamp) {
		t = m.lastStamp.Add(time.Millisecond)
	}
	m.lastStamp = t
	return t
}

// CreateBackup creates a full backup.
func (m *Manager) CreateBackup(ctx context.Context, format models.BackupFormat, initiator string) (*models.BackupRecord, error) {
	return m.CreateBackupWithKind(ctx, models.BackupKindFull, format, initiator)
}

// CreateBackupWithKind creates a full or manual backup. Incremental backups
// are rejected: nothing tracks changes between backups.
func (m *Manager) CreateBackupWithKind(ctx context.Context, kind models.BackupKind, format models.BackupFormat, initiator string) (*models.BackupRecord, error) {
	switch kind {
	case models.BackupKindFull, models.BackupKindManual:
	case models.BackupKindIncremental:
		return nil, apperrors.Validation("incremental backups are not supported")
	default:
		return nil, apperrors.Validation("invalid backup type %q", kind)
	}
	format, err := models.ParseBackupFormat(string(format))
	if err != nil {
		return nil, err
	}
	if initiator == "" {
		initiator = models.InitiatorSystem
	}

	if !m.backupMu.TryLock() {
		metrics.RecordBackupConflict()
		return nil, apperrors.Conflict("backup already in progress")
	}
	defer m.backupMu.Unlock()

	metrics.BackupInProgress.Set(1)
	defer metrics.BackupInProgress.Set(0)

	ctx = logging.ContextWithNewCorrelationID(ctx)
	start := time.Now()

	filename := Filename(kind, format, m.nextTimestamp())
	record := &models.BackupRecord{
		Filename:  filename,
		Kind:      kind,
		Format:    format,
		FilePath:  filepath.Join(m.dir, filename),
		Initiator: initiator,
	}
	if err := m.store.CreateBackupRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	size, err := m.writeArtifact(ctx, format, record.FilePath)
	if err == nil {
		err = m.store.MarkBackupCompleted(ctx, record.ID, size)
	}
	metrics.RecordBackup(string(format), string(kind), time.Since(start), size, err)

	if err != nil {
		m.markFailed(ctx, record, err)
		m.audit.Log(ctx, logging.AuditEvent{
			Action: logging.ActionBackupCreate, Actor: initiator, Target: filename,
			Success: false, Error: err.Error(),
		})
		return nil, fmt.Errorf("backup %s: %w", filename, err)
	}

	if done, gerr := m.store.GetBackupRecord(ctx, record.ID); gerr == nil {
		record = done
	} else {
		record.Status, record.Size = models.BackupStatusCompleted, size
	}

	logging.Ctx(ctx).Info().
		Str("filename", filename).
		Str("format", string(format)).
		Str("initiator", initiator).
		Int64("size", size).
		Dur("duration", time.Since(start)).
		Msg("Backup completed")
	m.audit.Log(ctx, logging.AuditEvent{
		Action: logging.ActionBackupCreate, Actor: initiator, Target: filename, Success: true,
		Details: map[string]string{"format": string(format), "type": string(kind)},
	})

	m.mirrorUpload(ctx, record)
	return record, nil
}

// writeArtifact serializes into a hidden temp file, fsyncs it and renames
// it to finalPath. The temp file is removed on every failure path.
func (m *Manager) writeArtifact(ctx context.Context, format models.BackupFormat, finalPath string) (int64, error) {
	tmpPath := filepath.Join(filepath.Dir(finalPath), tempPrefix+filepath.Base(finalPath))

	if err := m.writeTemp(ctx, format, tmpPath); err != nil {
		removeQuietly(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		removeQuietly(tmpPath)
		return 0, apperrors.IO(err, "finalize %s", filepath.Base(finalPath))
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return 0, apperrors.IO(err, "stat %s", filepath.Base(finalPath))
	}
	return info.Size(), nil
}

func (m *Manager) writeTemp(ctx context.Context, format models.BackupFormat, tmpPath string) (err error) {
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640) //nolint:gosec // G304: path built from a validated filename
	if err != nil {
		return apperrors.IO(err, "create %s", filepath.Base(tmpPath))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperrors.IO(cerr, "close %s", filepath.Base(tmpPath))
		}
	}()

	if err := m.serializer.Serialize(ctx, format, f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return apperrors.IO(err, "sync %s", filepath.Base(tmpPath))
	}
	return nil
}

// markFailed records the failure even when ctx is already cancelled.
func (m *Manager) markFailed(ctx context.Context, record *models.BackupRecord, cause error) {
	record.Status = models.BackupStatusFailed
	record.ErrorMessage = cause.Error()

	if err := m.store.MarkBackupFailed(context.WithoutCancel(ctx), record.ID, cause.Error()); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("filename", record.Filename).Msg("Failed to mark backup as failed")
	}
	logging.Ctx(ctx).Error().Err(cause).Str("filename", record.Filename).Msg("Backup failed")
}

func (m *Manager) mirrorUpload(ctx context.Context, record *models.BackupRecord) {
	if m.mirror == nil {
		return
	}
	if err := m.mirror.Upload(ctx, record.Filename, record.FilePath); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("filename", record.Filename).Msg("Offsite mirror upload failed")
		return
	}
	logging.Ctx(ctx).Debug().Str("filename", record.Filename).Msg("Backup mirrored offsite")
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to remove temporary backup file")
	}
}

func closeQuietly(f *os.File) {
	_ = f.Close() //nolint:errcheck // read-only handle
}
