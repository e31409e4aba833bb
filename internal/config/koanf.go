// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/filmvault/config.yaml",
	"/etc/filmvault/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultMaxUploadBytes caps import workbooks at 10 MiB.
const DefaultMaxUploadBytes = 10 << 20

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "/data/filmvault.db",
			BusyTimeout: 5 * time.Second,
		},
		Backup: BackupConfig{
			Dir:           "/data/backups",
			Schedule:      "daily",
			RetentionDays: 30,
			Timezone:      "UTC",
			DefaultFormat: "json",
			Mirror: MirrorConfig{
				Enabled: false,
				Region:  "us-east-1",
				Prefix:  "filmvault/",
			},
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute, // downloads and large exports
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:            "jwt",
			SessionTimeout:      24 * time.Hour,
			CORSOrigins:         []string{"*"},
			RateLimitReqs:       100,
			RateLimitWindow:     time.Minute,
			MaxUploadBytes:      DefaultMaxUploadBytes,
			ImportRatePerMinute: 6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// An encrypted mirror secret ("enc:...") is decrypted after unmarshaling.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// BACKUP_PATH -> backup.dir, DATABASE_PATH -> database.path, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveSecrets decrypts secrets stored in sealed form.
func (c *Config) resolveSecrets() error {
	if !IsSealed(c.Backup.Mirror.SecretKey) {
		return nil
	}
	plain, err := OpenSecret(c.Backup.Mirror.SecretKey, c.Security.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to decrypt backup.mirror.secret_key: %w", err)
	}
	c.Backup.Mirror.SecretKey = plain
	return nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unlisted variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	// Database
	"database_path":         "database.path",
	"database_busy_timeout": "database.busy_timeout",

	// Backups
	"backup_path":           "backup.dir",
	"backup_schedule":       "backup.schedule",
	"backup_retention_days": "backup.retention_days",
	"backup_timezone":       "backup.timezone",
	"backup_default_format": "backup.default_format",

	// Offsite mirror
	"backup_mirror_enabled":    "backup.mirror.enabled",
	"backup_mirror_bucket":     "backup.mirror.bucket",
	"backup_mirror_region":     "backup.mirror.region",
	"backup_mirror_endpoint":   "backup.mirror.endpoint",
	"backup_mirror_prefix":     "backup.mirror.prefix",
	"backup_mirror_access_key": "backup.mirror.access_key",
	"backup_mirror_secret_key": "backup.mirror.secret_key",

	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security
	"auth_mode":              "security.auth_mode",
	"jwt_secret":             "security.jwt_secret",
	"session_timeout":        "security.session_timeout",
	"cors_origins":           "security.cors_origins",
	"rate_limit_requests":    "security.rate_limit_reqs",
	"rate_limit_window":      "security.rate_limit_window",
	"max_upload_bytes":       "security.max_upload_bytes",
	"import_rate_per_minute": "security.import_rate_per_minute",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - BACKUP_PATH -> backup.dir
//   - BACKUP_RETENTION_DAYS -> backup.retention_days
//   - DATABASE_PATH -> database.path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
