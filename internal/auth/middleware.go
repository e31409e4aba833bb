// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/filmvault/internal/logging"
)

// TokenCookieName is the cookie checked when no Authorization header is sent.
const TokenCookieName = "token"

// Middleware authenticates requests and stores the AuthSubject in the
// request context.
type Middleware struct {
	mode AuthMode
	jwt  *JWTManager
}

// NewMiddleware creates the authentication middleware. jwtManager may be nil
// when mode is AuthModeNone.
func NewMiddleware(mode AuthMode, jwtManager *JWTManager) *Middleware {
	return &Middleware{mode: mode, jwt: jwtManager}
}

// Mode returns the configured authentication mode.
func (m *Middleware) Mode() AuthMode {
	return m.mode
}

// Authenticate is chi-compatible middleware. Unauthenticated requests get 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.authenticate(r)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithActor(ctx, subject.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*AuthSubject, error) {
	if m.mode != AuthModeJWT {
		return LocalSubject(), nil
	}
	if m.jwt == nil {
		return nil, ErrInvalidCredentials
	}

	tokenStr := extractToken(r)
	if tokenStr == "" {
		return nil, ErrNoCredentials
	}

	claims, err := m.jwt.ValidateToken(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredentials
		}
		return nil, ErrInvalidCredentials
	}
	return AuthSubjectFromClaims(claims), nil
}

// extractToken extracts the bearer token from Authorization header or cookie.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token := strings.TrimSpace(parts[1])
			if token != "" {
				return token
			}
		}
	}

	cookie, err := r.Cookie(TokenCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// handleAuthError sends the appropriate HTTP error response for auth errors.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")

	w.Header().Set("WWW-Authenticate", `Bearer realm="filmvault"`)
	switch {
	case errors.Is(err, ErrNoCredentials):
		http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
	case errors.Is(err, ErrExpiredCredentials):
		http.Error(w, "Unauthorized: credentials expired", http.StatusUnauthorized)
	default:
		http.Error(w, "Unauthorized: invalid credentials", http.StatusUnauthorized)
	}
}
