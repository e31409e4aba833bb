// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

/*
Package models defines the data structures shared by the store, the backup
pipeline, the spreadsheet importer and the HTTP API.

Entities:

  - Student: enrolled student keyed by the natural key StudentID
  - Project: student film with pipeline status, milestone dates and crew
  - User: application account (exported, never restored)
  - BackupRecord: audit-log entry for one backup artifact

Closed enums with canonicalizing parsers, applied at every ingestion boundary
(import rows, request bodies, restored documents):

  - BackupKind / ParseBackupKind
  - BackupFormat / ParseBackupFormat (accepts json, csv, sql, xlsx and their long names)
  - BackupStatus / ParseBackupStatus
  - ProjectStatus / ParseProjectStatus ("Post Production" -> post-production)
  - ParseStudentStatus (Active/Inactive -> bool)

Date is a calendar date without time or zone. Its zero value means absent.
ParseDate reads the many shapes dates take in hand-edited spreadsheets and
never fails hard.

JSON field names are camelCase to stay compatible with existing backup files.
*/
package models
