// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package api

import (
	"context"
	"io/fs"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/config"
	spreadsheetimport "github.com/tomtom215/filmvault/internal/import"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

// BackupService is the backup manager surface the API uses. *backup.Manager
// satisfies it.
type BackupService interface {
	CreateBackupWithKind(ctx context.Context, kind models.BackupKind, format models.BackupFormat, initiator string) (*models.BackupRecord, error)
	ListBackups(ctx context.Context) ([]backup.CatalogEntry, error)
	History(ctx context.Context, limit int) ([]models.BackupRecord, error)
	OpenBackup(ctx context.Context, filename string) (*os.File, fs.FileInfo, error)
	DeleteBackup(ctx context.Context, filename string) error
	Restore(ctx context.Context, filename string) (*backup.RestoreResult, error)
	CleanupOlderThan(ctx context.Context, retentionDays int) (int, error)
}

// ScheduleService controls the backup scheduler. *backup.Scheduler
// satisfies it.
type ScheduleService interface {
	Status() backup.ScheduleStatus
	Config() backup.ScheduleConfig
	Configure(cfg backup.ScheduleConfig) error
	TriggerNow(ctx context.Context, format models.BackupFormat) (*models.BackupRecord, error)
}

// Importer reconciles uploaded workbooks. *spreadsheetimport.Reconciler
// satisfies it.
type Importer interface {
	ImportFromSpreadsheet(ctx context.Context, data []byte) (*spreadsheetimport.Result, error)
}

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

var (
	_ BackupService   = (*backup.Manager)(nil)
	_ ScheduleService = (*backup.Scheduler)(nil)
	_ Importer        = (*spreadsheetimport.Reconciler)(nil)
)

// Handler serves the API routes.
type Handler struct {
	backups  BackupService
	schedule ScheduleService
	importer Importer
	health   HealthChecker
	audit    *logging.AuditLogger

	defaultFormat  models.BackupFormat
	maxUploadBytes int64
	importLimiter  *rate.Limiter
	startTime      time.Time
}

// HandlerDeps are the services a Handler calls.
type HandlerDeps struct {
	Backups  BackupService
	Schedule ScheduleService
	Importer Importer
	Health   HealthChecker
	Audit    *logging.AuditLogger
}

// NewHandler creates a Handler. Import throttling and upload limits come
// from cfg.Security; the default backup format from cfg.Backup.
func NewHandler(cfg *config.Config, deps HandlerDeps) *Handler {
	format, err := models.ParseBackupFormat(cfg.Backup.DefaultFormat)
	if err != nil {
		format = models.FormatJSON
	}

	maxUpload := cfg.Security.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = config.DefaultMaxUploadBytes
	}

	audit := deps.Audit
	if audit == nil {
		audit = logging.NewAuditLogger()
	}

	return &Handler{
		backups:        deps.Backups,
		schedule:       deps.Schedule,
		importer:       deps.Importer,
		health:         deps.Health,
		audit:          audit,
		defaultFormat:  format,
		maxUploadBytes: maxUpload,
		importLimiter:  newImportLimiter(cfg.Security.ImportRatePerMinute),
		startTime:      time.Now(),
	}
}

// newImportLimiter is a process-wide token bucket refilling perMinute
// tokens a minute. Zero or less disables throttling.
func newImportLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}
