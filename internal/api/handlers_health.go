// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package api

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthResponse is the data of GET /health.
type HealthResponse struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// Health reports liveness and database reachability. An unreachable
// database returns 503.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp := HealthResponse{
		Status:        "healthy",
		Database:      "ok",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	status := http.StatusOK

	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	respondSuccess(w, status, resp, start)
}
