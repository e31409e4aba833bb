// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package authz

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmvault/internal/auth"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/metrics"
	"github.com/tomtom215/filmvault/internal/models"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
	audit    *logging.AuditLogger
}

// NewMiddleware creates a new authorization middleware. Denials are recorded
// on audit when it is non-nil.
func NewMiddleware(enforcer *Enforcer, audit *logging.AuditLogger) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		audit:    audit,
	}
}

// Authorize returns chi middleware that requires the authenticated subject
// to hold action on object.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.GetAuthSubject(r.Context())
			if subject == nil {
				writeForbidden(w, "no authentication context")
				return
			}

			allowed, err := m.enforcer.EnforceWithRoles(subject.ID, subject.Roles, object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			role := strings.Join(subject.Roles, ",")
			if role == "" {
				role = "none"
			}
			metrics.RecordAuthzDecision(role, allowed)

			if !allowed {
				if m.audit != nil {
					m.audit.Log(r.Context(), logging.AuditEvent{
						Action:  logging.ActionAccessDenied,
						Actor:   subject.Username,
						Target:  object + ":" + action,
						Success: false,
						Details: map[string]string{"role": role, "path": r.URL.Path},
					})
				}
				writeForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizeMethod is Authorize with the action derived from the request method.
func (m *Middleware) AuthorizeMethod(object string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.Authorize(object, MethodToAction(r.Method))(next).ServeHTTP(w, r)
		})
	}
}

// MethodToAction maps HTTP methods to Casbin actions.
func MethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

func writeForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	//nolint:errcheck // response already committed
	json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    "FORBIDDEN",
			Message: "Forbidden: " + message,
		},
	})
}
