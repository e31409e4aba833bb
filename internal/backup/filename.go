// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/models"
)

// isoMillis is ISO-8601 UTC with milliseconds. In filenames its ':' and '.'
// are replaced by '-' so the name is safe on every filesystem.
const isoMillis = "2006-01-02T15:04:05.000Z"

var filenameTimeReplacer = strings.NewReplacer(":", "-", ".", "-")

// tempPrefix marks in-flight files. They never match filenamePattern and
// are therefore invisible to the catalog.
const tempPrefix = ".tmp-"

var filenamePattern = regexp.MustCompile(
	`^backup_(full|incremental|manual)_(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z)\.(json|csv|sql|xlsx)$`)

// Filename returns the convention name for a backup taken at t.
func Filename(kind models.BackupKind, format models.BackupFormat, t time.Time) string {
	ts := filenameTimeReplacer.Replace(t.UTC().Format(isoMillis))
	return "backup_" + string(kind) + "_" + ts + "." + format.Extension()
}

// ValidateFilename is the security boundary for every operation that takes a
// filename from a caller. It never touches the filesystem.
func ValidateFilename(name string) error {
	if name == "" {
		return apperrors.Security("backup filename is required")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return apperrors.Security("invalid backup filename %q: path separators and traversal are not allowed", name)
	}
	if !filenamePattern.MatchString(name) {
		return apperrors.Security("invalid backup filename %q: does not match the backup naming convention", name)
	}
	return nil
}

// ParsedFilename holds the fields encoded in a convention filename.
type ParsedFilename struct {
	Kind      models.BackupKind
	Format    models.BackupFormat
	CreatedAt time.Time
}

// ParseFilename decodes kind, format and timestamp from a convention name.
// ok is false for any other name.
func ParseFilename(name string) (ParsedFilename, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return ParsedFilename{}, false
	}
	// 2024-06-02T02-00-00-123Z: restore the separators at fixed offsets.
	b := []byte(m[2])
	b[13], b[16], b[19] = ':', ':', '.'
	ts, err := time.Parse(isoMillis, string(b))
	if err != nil {
		return ParsedFilename{}, false
	}
	return ParsedFilename{
		Kind:      models.BackupKind(m[1]),
		Format:    models.BackupFormat(m[3]),
		CreatedAt: ts,
	}, true
}
