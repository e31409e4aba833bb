// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/filmvault/internal/apperrors"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmvault_db_query_duration_seconds",
			Help:    "Duration of SQLite queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_db_query_errors_total",
			Help: "Total number of SQLite query errors by error kind",
		},
		[]string{"operation", "table", "error_kind"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmvault_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmvault_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Backup Metrics
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_backups_total",
			Help: "Backups attempted by format, kind and final status",
		},
		[]string{"format", "kind", "status"},
	)

	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmvault_backup_duration_seconds",
			Help:    "Time to serialize and persist one backup",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"format"},
	)

	BackupSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmvault_backup_size_bytes",
			Help:    "Size of completed backup artifacts",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1 KiB .. 256 MiB
		},
		[]string{"format"},
	)

	BackupInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmvault_backup_in_progress",
			Help: "1 while a backup is being written",
		},
	)

	BackupConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmvault_backup_conflicts_total",
			Help: "Backup requests rejected because another backup was running",
		},
	)

	BackupsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_backups_deleted_total",
			Help: "Backup artifacts deleted, by reason (manual, retention)",
		},
		[]string{"reason"},
	)

	MirrorOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_backup_mirror_operations_total",
			Help: "Offsite mirror uploads and deletes by outcome",
		},
		[]string{"operation", "status"},
	)

	// Restore Metrics
	RestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_restores_total",
			Help: "Restores attempted by outcome",
		},
		[]string{"status"},
	)

	RestoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmvault_restore_duration_seconds",
			Help:    "Time to validate and apply one restore",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	RestoredRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_restored_records_total",
			Help: "Records written by successful restores",
		},
		[]string{"entity"},
	)

	// Import Metrics
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_imports_total",
			Help: "Spreadsheet imports by outcome",
		},
		[]string{"status"},
	)

	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_import_rows_total",
			Help: "Spreadsheet rows processed by entity and outcome (imported, rejected)",
		},
		[]string{"entity", "outcome"},
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmvault_import_duration_seconds",
			Help:    "Time to reconcile one workbook",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	// Scheduler Metrics
	ScheduledJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_scheduled_job_runs_total",
			Help: "Scheduled job executions by job and outcome",
		},
		[]string{"job", "status"},
	)

	ScheduledJobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filmvault_scheduled_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per job",
		},
		[]string{"job"},
	)

	// Authorization Metrics
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmvault_authz_decisions_total",
			Help: "Authorization decisions by role and result",
		},
		[]string{"role", "decision"},
	)
)

// statusLabel returns "success" or "failure".
func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordDBQuery records a database query metric. Errors are labelled by
// their apperrors kind to keep label cardinality bounded.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, string(apperrors.KindOf(err))).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordBackup records the outcome of one backup attempt.
func RecordBackup(format, kind string, duration time.Duration, size int64, err error) {
	status := "completed"
	if err != nil {
		status = "failed"
	}
	BackupsTotal.WithLabelValues(format, kind, status).Inc()
	BackupDuration.WithLabelValues(format).Observe(duration.Seconds())
	if err == nil {
		BackupSizeBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// RecordBackupConflict counts a backup rejected by the in-progress guard.
func RecordBackupConflict() {
	BackupConflicts.Inc()
}

// RecordBackupDeleted counts a deleted artifact.
func RecordBackupDeleted(reason string) {
	BackupsDeleted.WithLabelValues(reason).Inc()
}

// RecordMirrorOperation records an offsite mirror upload or delete.
func RecordMirrorOperation(operation string, err error) {
	MirrorOperations.WithLabelValues(operation, statusLabel(err)).Inc()
}

// RecordRestore records a restore and, on success, the records it wrote.
func RecordRestore(duration time.Duration, students, projects int, err error) {
	RestoresTotal.WithLabelValues(statusLabel(err)).Inc()
	RestoreDuration.Observe(duration.Seconds())
	if err == nil {
		RestoredRecords.WithLabelValues("students").Add(float64(students))
		RestoredRecords.WithLabelValues("projects").Add(float64(projects))
	}
}

// RecordImport records a reconciled workbook. rejected counts row-level errors.
func RecordImport(duration time.Duration, students, projects, rejected int, err error) {
	ImportsTotal.WithLabelValues(statusLabel(err)).Inc()
	ImportDuration.Observe(duration.Seconds())
	if err != nil {
		return
	}
	ImportRows.WithLabelValues("students", "imported").Add(float64(students))
	ImportRows.WithLabelValues("projects", "imported").Add(float64(projects))
	ImportRows.WithLabelValues("any", "rejected").Add(float64(rejected))
}

// RecordScheduledJob records one firing of a scheduled job.
func RecordScheduledJob(job string, at time.Time, err error) {
	ScheduledJobRuns.WithLabelValues(job, statusLabel(err)).Inc()
	if err == nil {
		ScheduledJobLastSuccess.WithLabelValues(job).Set(float64(at.Unix()))
	}
}

// RecordAuthzDecision records a policy decision.
func RecordAuthzDecision(role string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisions.WithLabelValues(role, decision).Inc()
}
