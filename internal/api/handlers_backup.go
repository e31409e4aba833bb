// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package api

import (
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/filmvault/internal/auth"
	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

// MaxHistoryLimit caps GET /api/v1/backups/history.
const MaxHistoryLimit = 50

// CreateBackupRequest is the body of POST /api/v1/backups.
type CreateBackupRequest struct {
	Format string `json:"format" validate:"omitempty,max=32"`
	Type   string `json:"type" validate:"omitempty,max=32"`
}

// RestoreRequest is the body of POST /api/v1/backups/restore.
type RestoreRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
}

// CleanupRequest is the body of POST /api/v1/backups/cleanup. A zero
// RetentionDays uses the scheduler's retention.
type CleanupRequest struct {
	RetentionDays int `json:"retentionDays" validate:"min=0,max=3650"`
}

var contentTypes = map[models.BackupFormat]string{
	models.FormatJSON: "application/json",
	models.FormatCSV:  "text/csv; charset=utf-8",
	models.FormatSQL:  "application/sql",
	models.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// requestInitiator is the username recorded on backups created by the caller.
func requestInitiator(r *http.Request) string {
	if subject := auth.GetAuthSubject(r.Context()); subject != nil && subject.Username != "" {
		return subject.Username
	}
	if actor := logging.ActorFromContext(r.Context()); actor != "" {
		return actor
	}
	return models.InitiatorSystem
}

// CreateBackup creates a backup file.
// POST /api/v1/backups
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateBackupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	format := h.defaultFormat
	if req.Format != "" {
		parsed, err := models.ParseBackupFormat(req.Format)
		if err != nil {
			respondAppError(w, r, err)
			return
		}
		format = parsed
	}
	kind, err := models.ParseBackupKind(req.Type)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	record, err := h.backups.CreateBackupWithKind(r.Context(), kind, format, requestInitiator(r))
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, record, start)
}

// ListBackups lists backup files on disk, newest first.
// GET /api/v1/backups
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	entries, err := h.backups.ListBackups(r.Context())
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	if entries == nil {
		entries = []backup.CatalogEntry{}
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"backups": entries,
		"count":   len(entries),
	}, start)
}

// BackupHistory returns the latest backup records.
// GET /api/v1/backups/history?limit=
func (h *Handler) BackupHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := getIntParam(r, "limit", MaxHistoryLimit)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	records, err := h.backups.History(r.Context(), limit)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	if records == nil {
		records = []models.BackupRecord{}
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"history": records,
		"count":   len(records),
	}, start)
}

// DownloadBackup streams a backup file as an attachment.
// GET /api/v1/backups/{filename}/download
func (h *Handler) DownloadBackup(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	f, info, err := h.backups.OpenBackup(r.Context(), filename)
	if err != nil {
		respondAppError(w, r, err)
		return
	}
	defer f.Close()

	contentType := "application/octet-stream"
	if parsed, ok := backup.ParseFilename(filename); ok {
		if ct, known := contentTypes[parsed.Format]; known {
			contentType = ct
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	http.ServeContent(w, r, filename, info.ModTime(), f)
}

// DeleteBackup removes a backup file and marks its record deleted.
// DELETE /api/v1/backups/{filename}
func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	filename := chi.URLParam(r, "filename")

	if err := h.backups.DeleteBackup(r.Context(), filename); err != nil {
		respondAppError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]string{
		"filename": filename,
		"message":  "Backup deleted successfully",
	}, start)
}

// RestoreBackup replaces all students and projects with a json backup.
// POST /api/v1/backups/restore
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RestoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	result, err := h.backups.Restore(r.Context(), req.Filename)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, result, start)
}

// CleanupBackups deletes backups older than the retention period.
// POST /api/v1/backups/cleanup
func (h *Handler) CleanupBackups(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CleanupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	retention := req.RetentionDays
	if retention == 0 {
		retention = h.schedule.Config().RetentionDays
	}

	deleted, err := h.backups.CleanupOlderThan(r.Context(), retention)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"deleted":       deleted,
		"retentionDays": retention,
		"message":       "Deleted " + strconv.Itoa(deleted) + " backup(s)",
	}, start)
}
