// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package models

import "time"

// InitiatorSystem is recorded for scheduled backups.
const InitiatorSystem = "system"

// BackupRecord is the audit-log entry for one backup artifact.
//
// Lifecycle: created pending before any I/O, then exactly one transition to
// completed or failed, then optionally deleted. A record never returns to pending.
type BackupRecord struct {
	ID           int64        `json:"id"`
	Filename     string       `json:"filename"`
	Kind         BackupKind   `json:"type"`
	Format       BackupFormat `json:"format"`
	Size         int64        `json:"size"`
	Status       BackupStatus `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	FilePath     string       `json:"filePath"`
	Initiator    string       `json:"scheduledBy"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
