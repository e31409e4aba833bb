// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/filmvault/internal/logging"
)

// ImportFormField is the multipart field carrying the workbook.
const ImportFormField = "file"

// multipartOverhead allows for boundaries and part headers on top of the
// workbook itself.
const multipartOverhead = 64 << 10

// ImportResponse is the data of a successful import.
type ImportResponse struct {
	Filename         string   `json:"filename"`
	StudentsImported int      `json:"studentsImported"`
	ProjectsImported int      `json:"projectsImported"`
	Errors           []string `json:"errors"`
	DurationMS       int64    `json:"durationMs"`
}

// ImportSpreadsheet reconciles an uploaded .xlsx workbook into the store.
// POST /api/v1/import
func (h *Handler) ImportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !h.importLimiter.Allow() {
		w.Header().Set("Retry-After", "60")
		respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many imports, try again later", nil)
		return
	}

	limit := h.maxUploadBytes + multipartOverhead
	if r.ContentLength > limit {
		h.respondTooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondTooLarge(w)
			return
		}
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Expected a multipart form upload", nil)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			//nolint:errcheck // temp file cleanup is best effort
			r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(ImportFormField)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No file provided in field \""+ImportFormField+"\"", nil)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Only .xlsx workbooks can be imported", nil)
		return
	}
	if header.Size > h.maxUploadBytes {
		h.respondTooLarge(w)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	ctx := logging.ContextWithNewCorrelationID(r.Context())
	logging.Ctx(ctx).Info().
		Str("filename", sanitizeLogValue(name)).
		Int("bytes", len(data)).
		Msg("Spreadsheet upload received")

	result, err := h.importer.ImportFromSpreadsheet(ctx, data)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	respondSuccess(w, http.StatusOK, ImportResponse{
		Filename:         name,
		StudentsImported: result.StudentsImported,
		ProjectsImported: result.ProjectsImported,
		Errors:           errs,
		DurationMS:       result.Duration().Milliseconds(),
	}, start)
}

func (h *Handler) respondTooLarge(w http.ResponseWriter) {
	respondError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
		"Upload exceeds "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes", nil)
}
