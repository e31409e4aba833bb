// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateBackup(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// validCadences defines the allowed backup schedules
var validCadences = map[string]bool{
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"none":    true,
}

// validFormats mirrors the canonical export format tokens and their aliases.
var validFormats = map[string]bool{
	"json": true, "structured-document": true,
	"csv": true, "delimited-text": true,
	"sql": true, "schema-script": true,
	"xlsx": true, "excel": true, "spreadsheet-workbook": true,
}

// validateBackup validates backup storage, cadence and retention
func (c *Config) validateBackup() error {
	if strings.TrimSpace(c.Backup.Dir) == "" {
		return fmt.Errorf("BACKUP_PATH is required")
	}
	if !validCadences[strings.ToLower(c.Backup.Schedule)] {
		return fmt.Errorf("BACKUP_SCHEDULE must be one of: daily, weekly, monthly, none (got %q)", c.Backup.Schedule)
	}
	if c.Backup.RetentionDays < 1 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must be at least 1 (got %d)", c.Backup.RetentionDays)
	}
	if c.Backup.DefaultFormat != "" && !validFormats[strings.ToLower(c.Backup.DefaultFormat)] {
		return fmt.Errorf("BACKUP_DEFAULT_FORMAT %q is not a supported export format", c.Backup.DefaultFormat)
	}
	if _, err := c.Backup.Location(); err != nil {
		return err
	}
	return c.validateMirror()
}

func (c *Config) validateMirror() error {
	if !c.Backup.Mirror.Enabled {
		return nil
	}
	if c.Backup.Mirror.Bucket == "" {
		return fmt.Errorf("BACKUP_MIRROR_BUCKET is required when the backup mirror is enabled")
	}
	if (c.Backup.Mirror.AccessKey == "") != (c.Backup.Mirror.SecretKey == "") {
		return fmt.Errorf("BACKUP_MIRROR_ACCESS_KEY and BACKUP_MIRROR_SECRET_KEY must be set together")
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
	case "jwt":
		if err := c.validateJWTSecret(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: jwt, none")
	}

	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.Security.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.Security.ImportRatePerMinute < 1 {
		return fmt.Errorf("IMPORT_RATE_PER_MINUTE must be at least 1")
	}
	return nil
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns flag secrets that were copied from an example file.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
