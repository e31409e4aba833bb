// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmvault/internal/models"
)

// Document is the structured-document backup container.
type Document struct {
	ExportedAt time.Time     `json:"exportedAt"`
	Version    string        `json:"version"`
	Data       *DocumentData `json:"data"`
}

// DocumentData holds the exported tables. Users and backup logs are
// informational; restore never reads them.
type DocumentData struct {
	Projects   []models.Project      `json:"projects"`
	Students   []models.Student      `json:"students"`
	Users      []models.User         `json:"users"`
	BackupLogs []models.BackupRecord `json:"backupLogs"`
}

func (s *Serializer) buildDocument(snap *dataSnapshot) *Document {
	return &Document{
		ExportedAt: s.now().UTC(),
		Version:    DocumentVersion,
		Data: &DocumentData{
			Projects:   snap.projects,
			Students:   snap.students,
			Users:      snap.users,
			BackupLogs: snap.logs,
		},
	}
}

func (s *Serializer) writeJSON(_ context.Context, snap *dataSnapshot, w io.Writer) error {
	doc := s.buildDocument(snap)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return ioError(err, "json backup")
	}
	return nil
}
