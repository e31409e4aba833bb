// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

/*
Package middleware provides infrastructure HTTP middleware shared by the API
router.

Key Components:

  - RequestID: tags every request with an X-Request-ID and seeds the logging
    context with request and correlation IDs
  - PrometheusMetrics: counts requests and observes latency per chi route
    pattern, so /api/v1/backups/{filename} is one series regardless of the
    file requested

Both are chi-compatible (func(http.Handler) http.Handler):

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Authentication and authorization live in internal/auth and internal/authz.
*/
package middleware
