// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MemoryPath opens a private in-memory database. Used by tests and dry runs.
const MemoryPath = ":memory:"

// DB wraps the SQLite connection and provides data access methods
type DB struct {
	*store
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the database, configures the pool and applies pending migrations.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	if cfg.Path != MemoryPath {
		// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	conn, err := sql.Open("sqlite", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer. One connection serializes every
	// transaction and keeps :memory: databases from splitting per connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, conn); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Debug().Str("path", cfg.Path).Msg("Database opened")

	return &DB{
		store: &store{q: conn, now: func() time.Time { return time.Now().UTC() }},
		conn:  conn,
		cfg:   cfg,
	}, nil
}

// NewMemory opens a migrated in-memory database.
func NewMemory(ctx context.Context) (*DB, error) {
	return New(ctx, &config.DatabaseConfig{Path: MemoryPath, BusyTimeout: 5 * time.Second})
}

func buildDSN(cfg *config.DatabaseConfig) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	pragmas := fmt.Sprintf("_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_time_format=sqlite", busy.Milliseconds())
	if cfg.Path == MemoryPath {
		return "file::memory:?" + pragmas
	}
	return "file:" + cfg.Path + "?" + pragmas + "&_pragma=journal_mode(WAL)"
}

func runMigrations(ctx context.Context, conn *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		logging.Info().Str("migration", r.Source.Path).Dur("duration", r.Duration).Msg("Applied migration")
	}
	return nil
}

// SetClock overrides the timestamp source. Tests use it for deterministic output.
func (db *DB) SetClock(now func() time.Time) {
	db.store.now = func() time.Time { return now().UTC() }
}

// Path returns the configured database path.
func (db *DB) Path() string {
	return db.cfg.Path
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}
