// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package api

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmvault/internal/auth"
	"github.com/tomtom215/filmvault/internal/authz"
	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/config"
	spreadsheetimport "github.com/tomtom215/filmvault/internal/import"
	"github.com/tomtom215/filmvault/internal/models"
)

const testJWTSecret = "api_test_secret_that_is_long_enough_for_hs256_signing"

// fakeBackups is a BackupService whose behavior is set per test.
type fakeBackups struct {
	createFn  func(kind models.BackupKind, format models.BackupFormat, initiator string) (*models.BackupRecord, error)
	listFn    func() ([]backup.CatalogEntry, error)
	historyFn func(limit int) ([]models.BackupRecord, error)
	openFn    func(filename string) (*os.File, fs.FileInfo, error)
	deleteFn  func(filename string) error
	restoreFn func(filename string) (*backup.RestoreResult, error)
	cleanupFn func(retentionDays int) (int, error)
}

func (f *fakeBackups) CreateBackupWithKind(_ context.Context, kind models.BackupKind, format models.BackupFormat, initiator string) (*models.BackupRecord, error) {
	if f.createFn == nil {
		return &models.BackupRecord{Kind: kind, Format: format, Initiator: initiator, Status: models.BackupStatusCompleted}, nil
	}
	return f.createFn(kind, format, initiator)
}

func (f *fakeBackups) ListBackups(context.Context) ([]backup.CatalogEntry, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn()
}

func (f *fakeBackups) History(_ context.Context, limit int) ([]models.BackupRecord, error) {
	if f.historyFn == nil {
		return nil, nil
	}
	return f.historyFn(limit)
}

func (f *fakeBackups) OpenBackup(_ context.Context, filename string) (*os.File, fs.FileInfo, error) {
	return f.openFn(filename)
}

func (f *fakeBackups) DeleteBackup(_ context.Context, filename string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(filename)
}

func (f *fakeBackups) Restore(_ context.Context, filename string) (*backup.RestoreResult, error) {
	if f.restoreFn == nil {
		return &backup.RestoreResult{Filename: filename}, nil
	}
	return f.restoreFn(filename)
}

func (f *fakeBackups) CleanupOlderThan(_ context.Context, retentionDays int) (int, error) {
	if f.cleanupFn == nil {
		return 0, nil
	}
	return f.cleanupFn(retentionDays)
}

// fakeSchedule records the last configuration it was given.
type fakeSchedule struct {
	mu         sync.Mutex
	cfg        backup.ScheduleConfig
	configured []backup.ScheduleConfig
	triggerFn  func(format models.BackupFormat) (*models.BackupRecord, error)
}

func newFakeSchedule() *fakeSchedule {
	return &fakeSchedule{cfg: backup.ScheduleConfig{Cadence: backup.CadenceDaily, RetentionDays: 30, Location: time.UTC}}
}

func (f *fakeSchedule) Status() backup.ScheduleStatus {
	cfg := f.Config()
	return backup.ScheduleStatus{Cadence: cfg.Cadence, RetentionDays: cfg.RetentionDays, Timezone: "UTC", Jobs: []backup.JobStatus{}}
}

func (f *fakeSchedule) Config() backup.ScheduleConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeSchedule) Configure(cfg backup.ScheduleConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
	f.configured = append(f.configured, cfg)
	return nil
}

func (f *fakeSchedule) TriggerNow(_ context.Context, format models.BackupFormat) (*models.BackupRecord, error) {
	if f.triggerFn != nil {
		return f.triggerFn(format)
	}
	return &models.BackupRecord{Format: format, Initiator: backup.TriggerInitiator}, nil
}

// fakeImporter returns a canned result and remembers the uploaded bytes.
type fakeImporter struct {
	got    []byte
	result *spreadsheetimport.Result
	err    error
}

func (f *fakeImporter) ImportFromSpreadsheet(_ context.Context, data []byte) (*spreadsheetimport.Result, error) {
	f.got = data
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return &spreadsheetimport.Result{Errors: []string{}}, nil
	}
	return f.result, nil
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

type testDeps struct {
	backups  *fakeBackups
	schedule *fakeSchedule
	importer *fakeImporter
	health   fakeHealth
}

func newTestDeps() *testDeps {
	return &testDeps{
		backups:  &fakeBackups{},
		schedule: newFakeSchedule(),
		importer: &fakeImporter{},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Backup: config.BackupConfig{DefaultFormat: "json"},
		Security: config.SecurityConfig{
			AuthMode:       "none",
			JWTSecret:      testJWTSecret,
			SessionTimeout: time.Hour,
			MaxUploadBytes: 1 << 20,
		},
	}
}

func (d *testDeps) handler(cfg *config.Config) *Handler {
	return NewHandler(cfg, HandlerDeps{
		Backups:  d.backups,
		Schedule: d.schedule,
		Importer: d.importer,
		Health:   d.health,
	})
}

// newTestServer builds the full router. mode selects the auth mode.
func newTestServer(t *testing.T, d *testDeps, cfg *config.Config, mode auth.AuthMode) (http.Handler, *auth.JWTManager) {
	t.Helper()

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	chiMW := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	router := NewRouter(d.handler(cfg), chiMW, auth.NewMiddleware(mode, jwtManager), authz.NewMiddleware(enforcer, nil))
	return router.Setup(), jwtManager
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(data)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeResponse decodes the envelope; data is decoded into out when non-nil.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) models.APIResponse {
	t.Helper()
	var env struct {
		models.APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env.APIResponse
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, rec, nil)
	if resp.Error == nil {
		t.Fatalf("expected error response, got %s", rec.Body.String())
	}
	return resp.Error.Code
}

// multipartUpload builds a POST /api/v1/import request carrying content
// under field as filename.
func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
