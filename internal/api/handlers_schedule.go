// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

// ScheduleRequest is the body of PUT /api/v1/backups/schedule. Omitted
// fields keep their current value.
type ScheduleRequest struct {
	Cadence       string `json:"cadence" validate:"omitempty,max=16"`
	RetentionDays int    `json:"retentionDays" validate:"min=0,max=3650"`
}

// TriggerRequest is the body of POST /api/v1/backups/schedule/trigger.
type TriggerRequest struct {
	Format string `json:"format" validate:"omitempty,max=32"`
}

// GetSchedule reports the schedule and its jobs.
// GET /api/v1/backups/schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.schedule.Status(), time.Now())
}

// SetSchedule reconfigures the scheduler.
// PUT /api/v1/backups/schedule
func (h *Handler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	cfg := h.schedule.Config()
	if req.Cadence != "" {
		cadence, err := backup.ParseCadence(req.Cadence)
		if err != nil {
			respondAppError(w, r, err)
			return
		}
		cfg.Cadence = cadence
	}
	if req.RetentionDays > 0 {
		cfg.RetentionDays = req.RetentionDays
	}

	err := h.schedule.Configure(cfg)

	event := logging.AuditEvent{
		Action:  logging.ActionScheduleSet,
		Target:  string(cfg.Cadence),
		Success: err == nil,
		Details: map[string]string{"retention_days": strconv.Itoa(cfg.RetentionDays)},
	}
	if err != nil {
		event.Error = err.Error()
	}
	h.audit.Log(r.Context(), event)

	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, h.schedule.Status(), start)
}

// TriggerBackup runs a backup immediately, outside the schedule.
// POST /api/v1/backups/schedule/trigger
func (h *Handler) TriggerBackup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req TriggerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondAppError(w, r, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	var format models.BackupFormat
	if req.Format != "" {
		parsed, err := models.ParseBackupFormat(req.Format)
		if err != nil {
			respondAppError(w, r, err)
			return
		}
		format = parsed
	}

	record, err := h.schedule.TriggerNow(r.Context(), format)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, record, start)
}
