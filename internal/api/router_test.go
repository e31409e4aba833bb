// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/auth"
)

func TestRouter_RoleAccess(t *testing.T) {
	t.Parallel()
	srv, jwtManager := newTestServer(t, newTestDeps(), testConfig(), auth.AuthModeJWT)

	token := func(role string) string {
		tok, err := jwtManager.GenerateToken(role+"-user", role)
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		return tok
	}
	tokens := map[string]string{
		auth.RoleAdmin:    token(auth.RoleAdmin),
		auth.RoleProducer: token(auth.RoleProducer),
		auth.RoleViewer:   token(auth.RoleViewer),
	}

	restoreBody := `{"filename":"backup_full_2024-06-07T12-00-00-000Z.json"}`
	tests := []struct {
		method string
		path   string
		body   string
		allow  map[string]bool
	}{
		{http.MethodGet, "/api/v1/backups", "", map[string]bool{auth.RoleAdmin: true, auth.RoleProducer: true}},
		{http.MethodPost, "/api/v1/backups", "", map[string]bool{auth.RoleAdmin: true, auth.RoleProducer: true}},
		{http.MethodGet, "/api/v1/backups/history", "", map[string]bool{auth.RoleAdmin: true, auth.RoleProducer: true, auth.RoleViewer: true}},
		{http.MethodDelete, "/api/v1/backups/backup_full_2024-06-07T12-00-00-000Z.json", "", map[string]bool{auth.RoleAdmin: true, auth.RoleProducer: true}},
		{http.MethodPost, "/api/v1/backups/restore", restoreBody, map[string]bool{auth.RoleAdmin: true}},
		{http.MethodPost, "/api/v1/backups/cleanup", "", map[string]bool{auth.RoleAdmin: true}},
		{http.MethodGet, "/api/v1/backups/schedule", "", map[string]bool{auth.RoleAdmin: true, auth.RoleProducer: true, auth.RoleViewer: true}},
		{http.MethodPut, "/api/v1/backups/schedule", `{"cadence":"weekly"}`, map[string]bool{auth.RoleAdmin: true}},
		{http.MethodPost, "/api/v1/backups/schedule/trigger", "", map[string]bool{auth.RoleAdmin: true}},
	}

	for _, tt := range tests {
		for role, tok := range tokens {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+tok)
			rec := do(t, srv, req)

			denied := rec.Code == http.StatusForbidden
			if denied == tt.allow[role] {
				t.Errorf("%s %s as %s: status %d, allowed = %v", tt.method, tt.path, role, rec.Code, tt.allow[role])
			}
		}
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, newTestDeps(), testConfig(), auth.AuthModeJWT)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/backups/history", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200 without a token", rec.Code)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "filmvault_") {
		t.Errorf("/metrics status = %d, want 200 with filmvault metrics", rec.Code)
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, newTestDeps(), testConfig(), auth.AuthModeNone)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID response header")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantDB     string
	}{
		{"reachable", nil, http.StatusOK, "ok"},
		{"unreachable", errors.New("database is closed"), http.StatusServiceUnavailable, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := newTestDeps()
			d.health = fakeHealth{err: tt.pingErr}
			srv, _ := newTestServer(t, d, testConfig(), auth.AuthModeNone)

			rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			decodeResponse(t, rec, &resp)
			if resp.Database != tt.wantDB {
				t.Errorf("Database = %q, want %q", resp.Database, tt.wantDB)
			}
		})
	}
}

func TestStatusForKind(t *testing.T) {
	t.Parallel()

	tests := map[apperrors.Kind]int{
		apperrors.KindValidation:           http.StatusBadRequest,
		apperrors.KindSecurity:             http.StatusBadRequest,
		apperrors.KindNotFound:             http.StatusNotFound,
		apperrors.KindReferentialIntegrity: http.StatusConflict,
		apperrors.KindConflict:             http.StatusConflict,
		apperrors.KindFormat:               http.StatusUnprocessableEntity,
		apperrors.KindNoRecognizedSheets:   http.StatusUnprocessableEntity,
		apperrors.KindIO:                   http.StatusInternalServerError,
		apperrors.KindInternal:             http.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := statusForKind(kind); got != want {
			t.Errorf("statusForKind(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()
	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
