// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package models

import (
	"strings"

	"github.com/tomtom215/filmvault/internal/apperrors"
)

// BackupKind is the kind of backup encoded in the filename.
type BackupKind string

const (
	BackupKindFull        BackupKind = "full"
	BackupKindIncremental BackupKind = "incremental"
	BackupKindManual      BackupKind = "manual"
)

// ParseBackupKind canonicalizes a kind token case-insensitively.
func ParseBackupKind(s string) (BackupKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "":
		return BackupKindFull, nil
	case "incremental":
		return BackupKindIncremental, nil
	case "manual":
		return BackupKindManual, nil
	}
	return "", apperrors.Validation("invalid backup type %q: must be full, incremental, or manual", s)
}

// BackupFormat is the serialization format of a backup artifact.
// The canonical token doubles as the file extension.
type BackupFormat string

const (
	// FormatJSON is the structured-document format.
	FormatJSON BackupFormat = "json"
	// FormatCSV is the delimited-text format.
	FormatCSV BackupFormat = "csv"
	// FormatSQL is the schema-script format (students only).
	FormatSQL BackupFormat = "sql"
	// FormatXLSX is the spreadsheet-workbook format.
	FormatXLSX BackupFormat = "xlsx"
)

var formatAliases = map[string]BackupFormat{
	"json":                 FormatJSON,
	"structured-document":  FormatJSON,
	"csv":                  FormatCSV,
	"delimited-text":       FormatCSV,
	"sql":                  FormatSQL,
	"schema-script":        FormatSQL,
	"xlsx":                 FormatXLSX,
	"excel":                FormatXLSX,
	"spreadsheet-workbook": FormatXLSX,
}

// ParseBackupFormat canonicalizes a format token. Unknown tokens fail with a format error.
func ParseBackupFormat(s string) (BackupFormat, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", apperrors.Format("unsupported backup format %q: must be json, csv, sql, or xlsx", s)
}

// Extension returns the file extension without the leading dot.
func (f BackupFormat) Extension() string {
	return string(f)
}

// BackupStatus is the lifecycle state of a backup record.
type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
	BackupStatusDeleted   BackupStatus = "deleted"

	// BackupStatusUnknown is reported by the catalog for files without a record.
	// It is never stored.
	BackupStatusUnknown BackupStatus = "unknown"
)

// ParseBackupStatus canonicalizes a stored status.
func ParseBackupStatus(s string) (BackupStatus, error) {
	switch st := BackupStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case BackupStatusPending, BackupStatusCompleted, BackupStatusFailed, BackupStatusDeleted:
		return st, nil
	}
	return "", apperrors.Validation("invalid backup status %q", s)
}

// ProjectStatus is the production pipeline stage of a project.
type ProjectStatus string

const (
	ProjectStatusPreProduction  ProjectStatus = "pre-production"
	ProjectStatusShooting       ProjectStatus = "shooting"
	ProjectStatusPostProduction ProjectStatus = "post-production"
	ProjectStatusGrading        ProjectStatus = "grading"
	ProjectStatusAudioMix       ProjectStatus = "audio-mix"
	ProjectStatusComplete       ProjectStatus = "complete"
)

var projectStatuses = map[ProjectStatus]struct{}{
	ProjectStatusPreProduction:  {},
	ProjectStatusShooting:       {},
	ProjectStatusPostProduction: {},
	ProjectStatusGrading:        {},
	ProjectStatusAudioMix:       {},
	ProjectStatusComplete:       {},
}

// ParseProjectStatus canonicalizes free text such as "Post Production" or
// "AUDIO_MIX" to a pipeline stage. Blank input yields pre-production.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProjectStatusPreProduction, nil
	}
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '_' || r == '-'
	}), "-")
	if s == "completed" {
		s = string(ProjectStatusComplete)
	}
	st := ProjectStatus(s)
	if _, ok := projectStatuses[st]; !ok {
		return "", apperrors.Validation("invalid project status %q", s)
	}
	return st, nil
}

// ParseStudentStatus canonicalizes Active/Inactive text to the active flag.
// Blank input means active.
func ParseStudentStatus(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active", "true", "yes", "1":
		return true, nil
	case "inactive", "false", "no", "0":
		return false, nil
	}
	return false, apperrors.Validation("invalid student status %q: must be Active or Inactive", s)
}

// StudentStatusLabel renders the active flag the way spreadsheets show it.
func StudentStatusLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}
