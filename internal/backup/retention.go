// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/logging"
)

// CleanupOlderThan deletes every cataloged backup created more than
// retentionDays×24h ago. A failure on one file does not stop the others;
// all failures are joined into the returned error.
func (m *Manager) CleanupOlderThan(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays < 1 {
		return 0, apperrors.Validation("retention days must be at least 1, got %d", retentionDays)
	}

	entries, err := m.ListBackups(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}

	cutoff := m.clock().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	deleted := 0
	var errs []error
	for _, e := range entries {
		if !e.Created.Before(cutoff) {
			continue
		}
		if err := m.deleteBackup(ctx, e.Filename, reasonRetention); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Filename, err))
			continue
		}
		deleted++
	}

	err = errors.Join(errs...)
	m.audit.Log(ctx, logging.AuditEvent{
		Action:  logging.ActionBackupCleanup,
		Success: err == nil,
		Error:   errString(err),
		Details: map[string]string{
			"retention_days": strconv.Itoa(retentionDays),
			"deleted":        strconv.Itoa(deleted),
		},
	})
	logging.Ctx(ctx).Info().
		Int("retention_days", retentionDays).
		Int("deleted", deleted).
		Int("failed", len(errs)).
		Msg("Backup retention cleanup finished")

	return deleted, err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
