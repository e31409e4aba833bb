// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

/*
Package api exposes backup, restore, scheduling and spreadsheet import over
HTTP using the chi router.

Routes:

	POST   /api/v1/backups                      create a backup {format, type}
	GET    /api/v1/backups                      list backup files
	GET    /api/v1/backups/history?limit=       latest backup records (max 50)
	GET    /api/v1/backups/{filename}/download  download a backup file
	DELETE /api/v1/backups/{filename}           delete a backup file
	POST   /api/v1/backups/restore              restore from a json backup {filename}
	POST   /api/v1/backups/cleanup              delete old backups {retentionDays}
	GET    /api/v1/backups/schedule             schedule and job status
	PUT    /api/v1/backups/schedule             change the schedule {cadence, retentionDays}
	POST   /api/v1/backups/schedule/trigger     run a backup now {format}
	POST   /api/v1/import                       reconcile an uploaded .xlsx (multipart "file")
	GET    /health                              liveness and database check
	GET    /metrics                             Prometheus metrics

Every JSON response uses models.APIResponse. Application errors map to HTTP
status by kind:

	validation, security          400
	not_found                     404
	referential_integrity         409
	conflict                      409
	format, no_recognized_sheets  422
	io, internal                  500

Middleware order: request ID, panic recovery, CORS, per-IP rate limit,
request metrics, authentication, then per-route authorization.
*/
package api
