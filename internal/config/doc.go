// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

/*
Package config provides centralized configuration management for Filmvault.

Configuration is layered with Koanf v2:
 1. Defaults from defaultConfig()
 2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/filmvault/config.yaml)
 3. Environment variables, mapped explicitly by envTransformFunc

# Sections

  - database: SQLite path and busy timeout
  - backup: storage directory, cadence, retention window, timezone, default
    export format, and the optional S3 mirror
  - server: HTTP listen address and timeouts
  - security: auth mode, JWT secret, CORS, rate limits, upload cap
  - logging: level, format, caller annotation

# Environment Variables

	DATABASE_PATH           database.path
	BACKUP_PATH             backup.dir
	BACKUP_SCHEDULE         backup.schedule (daily|weekly|monthly|none)
	BACKUP_RETENTION_DAYS   backup.retention_days
	BACKUP_MIRROR_*         backup.mirror.*
	HTTP_PORT, HTTP_HOST    server.port, server.host
	AUTH_MODE, JWT_SECRET   security.auth_mode, security.jwt_secret
	LOG_LEVEL, LOG_FORMAT   logging.level, logging.format

# Secrets

backup.mirror.secret_key may be stored sealed as "enc:<base64>" (see
SealSecret and the CLI's encrypt-secret command). The key is derived from
JWT_SECRET with HKDF-SHA256, so rotating the JWT secret requires resealing.
*/
package config
