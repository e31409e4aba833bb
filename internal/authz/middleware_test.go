// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package authz

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmvault/internal/auth"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func requestAs(method string, subject *auth.AuthSubject) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/backups/restore", nil)
	if subject != nil {
		req = req.WithContext(auth.ContextWithSubject(req.Context(), subject))
	}
	return req
}

func TestAuthorize(t *testing.T) {
	t.Parallel()
	mw := NewMiddleware(newTestEnforcer(t), nil)

	tests := []struct {
		name       string
		subject    *auth.AuthSubject
		wantStatus int
	}{
		{"admin allowed", &auth.AuthSubject{ID: "root", Username: "root", Roles: []string{auth.RoleAdmin}}, http.StatusNoContent},
		{"local subject allowed", auth.LocalSubject(), http.StatusNoContent},
		{"producer denied", &auth.AuthSubject{ID: "jamie", Username: "jamie", Roles: []string{auth.RoleProducer}}, http.StatusForbidden},
		{"no subject", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			mw.Authorize(ObjectRestore, ActionWrite)(okHandler).ServeHTTP(rec, requestAs(http.MethodPost, tt.subject))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusForbidden {
				return
			}
			var resp models.APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Status != "error" || resp.Error == nil || resp.Error.Code != "FORBIDDEN" {
				t.Errorf("response = %+v, want FORBIDDEN error", resp)
			}
		})
	}
}

func TestAuthorize_AuditsDenial(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	audit := logging.NewAuditLoggerWithLogger(logging.NewTestLogger(&buf))
	mw := NewMiddleware(newTestEnforcer(t), audit)

	viewer := &auth.AuthSubject{ID: "sam", Username: "sam", Roles: []string{auth.RoleViewer}}
	rec := httptest.NewRecorder()
	mw.Authorize(ObjectImport, ActionWrite)(okHandler).ServeHTTP(rec, requestAs(http.MethodPost, viewer))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	out := buf.String()
	for _, want := range []string{logging.ActionAccessDenied, `"actor":"sam"`, "import:write"} {
		if !strings.Contains(out, want) {
			t.Errorf("audit output %q missing %q", out, want)
		}
	}
}

func TestAuthorizeMethod(t *testing.T) {
	t.Parallel()
	mw := NewMiddleware(newTestEnforcer(t), nil)
	viewer := &auth.AuthSubject{ID: "sam", Username: "sam", Roles: []string{auth.RoleViewer}}

	tests := []struct {
		method     string
		wantStatus int
	}{
		{http.MethodGet, http.StatusNoContent},
		{http.MethodPut, http.StatusForbidden},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mw.AuthorizeMethod(ObjectSchedule)(okHandler).ServeHTTP(rec, requestAs(tt.method, viewer))
		if rec.Code != tt.wantStatus {
			t.Errorf("%s status = %d, want %d", tt.method, rec.Code, tt.wantStatus)
		}
	}
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		http.MethodGet:     ActionRead,
		http.MethodHead:    ActionRead,
		http.MethodPost:    ActionWrite,
		http.MethodPut:     ActionWrite,
		http.MethodPatch:   ActionWrite,
		http.MethodDelete:  ActionDelete,
		http.MethodConnect: ActionRead,
	}
	for method, want := range tests {
		if got := MethodToAction(method); got != want {
			t.Errorf("MethodToAction(%s) = %q, want %q", method, got, want)
		}
	}
}
