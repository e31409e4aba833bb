// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/filmvault/internal/models"
)

// ListActiveUsers returns active user accounts ordered by id. The password
// hash is never selected.
func (s *store) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, username, email, role, is_active, created_at, updated_at
		FROM users WHERE is_active = 1 ORDER BY id`
	users, err := queryAndScan(ctx, s, "users", query, nil, func(row rowScanner) (models.User, error) {
		var u models.User
		err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return users, nil
}

// CreateUser inserts a user account with an already-hashed password.
func (s *store) CreateUser(ctx context.Context, u *models.User, passwordHash string) error {
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := s.exec(ctx, "INSERT", "users", `
		INSERT INTO users (username, email, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, passwordHash, u.Role, boolInt(u.IsActive), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user %q: %w", u.Username, classifyConstraint(err, "user "+u.Username))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user %q: %w", u.Username, err)
	}
	u.ID = id
	return nil
}
