// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/database"
	"github.com/tomtom215/filmvault/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: time.Second},
		Backup: config.BackupConfig{
			Dir:           t.TempDir(),
			Schedule:      "weekly",
			RetentionDays: 14,
			Timezone:      "UTC",
			DefaultFormat: "json",
		},
		Security: config.SecurityConfig{
			AuthMode:            "none",
			MaxUploadBytes:      config.DefaultMaxUploadBytes,
			ImportRatePerMinute: 6,
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return a
}

func TestScheduleConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.BackupConfig
		want    backup.Cadence
		format  models.BackupFormat
		wantErr bool
	}{
		{"daily json", config.BackupConfig{Schedule: "daily", RetentionDays: 7, DefaultFormat: "json"}, backup.CadenceDaily, models.FormatJSON, false},
		{"format defaults to json", config.BackupConfig{Schedule: "monthly", RetentionDays: 7}, backup.CadenceMonthly, models.FormatJSON, false},
		{"xlsx alias", config.BackupConfig{Schedule: "none", RetentionDays: 7, DefaultFormat: "excel"}, backup.CadenceNone, models.FormatXLSX, false},
		{"bad cadence", config.BackupConfig{Schedule: "hourly", RetentionDays: 7}, "", "", true},
		{"bad format", config.BackupConfig{Schedule: "daily", RetentionDays: 7, DefaultFormat: "pdf"}, "", "", true},
		{"bad timezone", config.BackupConfig{Schedule: "daily", RetentionDays: 7, Timezone: "Mars/Olympus"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ScheduleConfig(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ScheduleConfig() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ScheduleConfig: %v", err)
			}
			if got.Cadence != tt.want || got.Format != tt.format || got.RetentionDays != 7 {
				t.Errorf("ScheduleConfig() = %+v", got)
			}
			if got.Location == nil {
				t.Error("Location should default to UTC")
			}
		})
	}
}

func TestNewWiresComponents(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, testConfig(t))

	if a.Backups.Dir() == "" {
		t.Error("backup manager has no directory")
	}
	sc := a.Scheduler.Config()
	if sc.Cadence != backup.CadenceWeekly || sc.RetentionDays != 14 {
		t.Errorf("scheduler config = %+v", sc)
	}
	if a.Reconciler.IsRunning() {
		t.Error("reconciler should be idle")
	}
	if err := a.DB.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Backup.Schedule = "fortnightly"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown cadence")
	}
}

func TestRouterEndToEnd(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, testConfig(t))
	h, err := a.Router()
	if err != nil {
		t.Fatalf("Router: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backups", strings.NewReader(`{"format":"json"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var resp struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Data.Count)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestRouterAuthModes(t *testing.T) {
	t.Parallel()

	t.Run("jwt without secret fails", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Security.AuthMode = "jwt"
		a := newTestApp(t, cfg)
		if _, err := a.Router(); err == nil {
			t.Fatal("expected error without JWT secret")
		}
	})

	t.Run("jwt rejects anonymous calls", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Security.AuthMode = "jwt"
		cfg.Security.JWTSecret = "a-test-secret-that-is-long-enough-for-hs256"
		a := newTestApp(t, cfg)
		h, err := a.Router()
		if err != nil {
			t.Fatalf("Router: %v", err)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/backups", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown mode fails", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Security.AuthMode = "basic"
		a := newTestApp(t, cfg)
		if _, err := a.Router(); err == nil {
			t.Fatal("expected error for unknown auth mode")
		}
	})
}
