// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package auth

import (
	"context"
	"errors"
)

// AuthMode represents the authentication strategy.
type AuthMode string

const (
	// AuthModeNone disables authentication; every caller is the local admin.
	AuthModeNone AuthMode = "none"

	// AuthModeJWT uses JWT Bearer tokens
	AuthModeJWT AuthMode = "jwt"
)

// Roles known to the authorization policy.
const (
	RoleAdmin    = "admin"
	RoleProducer = "producer"
	RoleViewer   = "viewer"
)

// LocalSubjectID is the subject used when authentication is disabled.
const LocalSubjectID = "local"

// ParseAuthMode converts a string to AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "none", "":
		return AuthModeNone, nil
	case "jwt":
		return AuthModeJWT, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

// String returns the string representation of AuthMode.
func (m AuthMode) String() string {
	return string(m)
}

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// AuthSubject represents an authenticated caller.
type AuthSubject struct {
	// ID is the policy subject: the username for JWT, "local" otherwise.
	ID string `json:"id"`

	// Username is recorded as the initiator of backups and in audit events.
	Username string `json:"username"`

	// Roles contains the subject's assigned roles.
	Roles []string `json:"roles,omitempty"`

	// AuthMethod indicates how the subject was authenticated.
	AuthMethod AuthMode `json:"auth_method"`

	// ExpiresAt is when the authentication expires (unix seconds, 0 = never).
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// HasRole checks if the subject has a specific role.
func (s *AuthSubject) HasRole(role string) bool {
	if role == "" {
		return false
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LocalSubject is the caller under AuthModeNone.
func LocalSubject() *AuthSubject {
	return &AuthSubject{
		ID:         LocalSubjectID,
		Username:   LocalSubjectID,
		Roles:      []string{RoleAdmin},
		AuthMethod: AuthModeNone,
	}
}

// AuthSubjectFromClaims creates an AuthSubject from validated JWT claims.
func AuthSubjectFromClaims(claims *Claims) *AuthSubject {
	if claims == nil {
		return nil
	}

	subject := &AuthSubject{
		ID:         claims.Username,
		Username:   claims.Username,
		AuthMethod: AuthModeJWT,
	}
	if claims.Role != "" {
		subject.Roles = []string{claims.Role}
	}
	if claims.ExpiresAt != nil {
		subject.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return subject
}

type contextKey string

// authSubjectKey is the context key for AuthSubject.
const authSubjectKey contextKey = "auth_subject"

// ContextWithSubject returns a copy of ctx carrying subject.
func ContextWithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, authSubjectKey, subject)
}

// GetAuthSubject retrieves the AuthSubject from the request context, or nil.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	subject, ok := ctx.Value(authSubjectKey).(*AuthSubject)
	if !ok {
		return nil
	}
	return subject
}
