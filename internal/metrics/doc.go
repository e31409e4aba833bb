// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry through promauto and are
exposed at GET /metrics. Callers use the Record* helpers rather than the
collectors directly.

# Available Metrics

Database:
  - filmvault_db_query_duration_seconds{operation,table}
  - filmvault_db_query_errors_total{operation,table,error_kind}

API:
  - filmvault_api_requests_total{method,endpoint,status_code}
  - filmvault_api_request_duration_seconds{method,endpoint}
  - filmvault_api_active_requests

Backups:
  - filmvault_backups_total{format,kind,status}
  - filmvault_backup_duration_seconds{format}
  - filmvault_backup_size_bytes{format}
  - filmvault_backup_in_progress
  - filmvault_backup_conflicts_total
  - filmvault_backups_deleted_total{reason}
  - filmvault_backup_mirror_operations_total{operation,status}

Restore and import:
  - filmvault_restores_total{status}, filmvault_restored_records_total{entity}
  - filmvault_imports_total{status}, filmvault_import_rows_total{entity,outcome}

Scheduler:
  - filmvault_scheduled_job_runs_total{job,status}
  - filmvault_scheduled_job_last_success_timestamp_seconds{job}

Authorization:
  - filmvault_authz_decisions_total{role,decision}
*/
package metrics
