// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

// Package auth authenticates API callers.
//
// Two modes are supported:
//
//   - jwt: every request carries an HS256 bearer token with username and
//     role claims, signed with security.jwt_secret.
//   - none: every request acts as the local admin. Intended for single-user
//     installs behind another gateway.
//
// The middleware stores an AuthSubject in the request context for the
// authorization layer and records the username as the audit actor, so
// backups created through the API carry the caller as their initiator.
//
// Example:
//
//	jwtManager, err := auth.NewJWTManager(&cfg.Security)
//	if err != nil {
//	    return err
//	}
//	mw := auth.NewMiddleware(auth.AuthModeJWT, jwtManager)
//	r.Use(mw.Authenticate)
package auth
