// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables, in that order of precedence.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	db, err := database.New(ctx, &cfg.Database)
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Backup   BackupConfig   `koanf:"backup"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds the relational store settings
type DatabaseConfig struct {
	// Path is the SQLite database file, or ":memory:".
	Path string `koanf:"path"`

	// BusyTimeout bounds how long a statement waits on a locked database.
	BusyTimeout time.Duration `koanf:"busy_timeout"`
}

// BackupConfig holds backup storage, scheduling and retention settings
type BackupConfig struct {
	// Dir is where backup artifacts are written.
	Dir string `koanf:"dir"`

	// Schedule is the backup cadence: daily, weekly, monthly or none.
	Schedule string `koanf:"schedule"`

	// RetentionDays is the age after which the weekly cleanup deletes a backup.
	RetentionDays int `koanf:"retention_days"`

	// Timezone is the IANA zone the schedule is evaluated in. Default: UTC
	Timezone string `koanf:"timezone"`

	// DefaultFormat is used when a request or command names no format.
	DefaultFormat string `koanf:"default_format"`

	Mirror MirrorConfig `koanf:"mirror"`
}

// Location resolves Timezone, falling back to UTC.
func (b BackupConfig) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKUP_TIMEZONE %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// MirrorConfig configures the optional offsite copy of each completed backup
// to S3-compatible object storage.
type MirrorConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Bucket   string `koanf:"bucket"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"` // Custom endpoint for MinIO, R2 and similar; enables path-style addressing
	Prefix   string `koanf:"prefix"`

	AccessKey string `koanf:"access_key"`
	// SecretKey may be stored encrypted as "enc:<base64>"; Load decrypts it
	// with a key derived from the JWT secret.
	SecretKey string `koanf:"secret_key"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds authentication, CORS and request limiting settings
type SecurityConfig struct {
	// AuthMode is "jwt" (HS256 bearer tokens) or "none" (every caller is a local admin).
	AuthMode  string `koanf:"auth_mode"`
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the lifetime of issued tokens. Default: 24h
	SessionTimeout time.Duration `koanf:"session_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// MaxUploadBytes caps the size of an uploaded import workbook.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// ImportRatePerMinute is the process-wide token bucket rate for imports.
	ImportRatePerMinute int `koanf:"import_rate_per_minute"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console. Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load is the entry point used by both binaries.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
