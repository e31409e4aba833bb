// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmvault/internal/apperrors"
)

func TestParseBackupFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    BackupFormat
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"structured-document", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"delimited-text", FormatCSV, false},
		{"sql", FormatSQL, false},
		{"schema-script", FormatSQL, false},
		{"xlsx", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{" Spreadsheet-Workbook ", FormatXLSX, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseBackupFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBackupFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && apperrors.KindOf(err) != apperrors.KindFormat {
				t.Errorf("expected format error kind, got %s", apperrors.KindOf(err))
			}
			if got != tt.want {
				t.Errorf("ParseBackupFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseProjectStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    ProjectStatus
		wantErr bool
	}{
		{"", ProjectStatusPreProduction, false},
		{"Pre-Production", ProjectStatusPreProduction, false},
		{"pre production", ProjectStatusPreProduction, false},
		{"Shooting", ProjectStatusShooting, false},
		{"Post  Production", ProjectStatusPostProduction, false},
		{"GRADING", ProjectStatusGrading, false},
		{"audio_mix", ProjectStatusAudioMix, false},
		{"Audio Mix", ProjectStatusAudioMix, false},
		{"Complete", ProjectStatusComplete, false},
		{"completed", ProjectStatusComplete, false},
		{"on hold", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseProjectStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseProjectStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseProjectStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStudentStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"Active", true, false},
		{"ACTIVE", true, false},
		{"Inactive", false, false},
		{"inactive", false, false},
		{"no", false, false},
		{"graduated", false, true},
	}

	for _, tt := range tests {
		got, err := ParseStudentStatus(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStudentStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStudentStatus(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseBackupKind(t *testing.T) {
	t.Parallel()

	if k, err := ParseBackupKind(""); err != nil || k != BackupKindFull {
		t.Errorf("blank kind = %q, %v; want full", k, err)
	}
	if k, err := ParseBackupKind("Manual"); err != nil || k != BackupKindManual {
		t.Errorf("Manual kind = %q, %v", k, err)
	}
	if _, err := ParseBackupKind("differential"); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := NewDate(2025, time.March, 7)
	inputs := []string{
		"2025-03-07",
		"2025/03/07",
		"3/7/2025",
		"03/07/2025",
		"7-Mar-2025",
		"Mar 7, 2025",
		"March 7, 2025",
		"7 March 2025",
		"2025-03-07 14:30:00",
		"2025-03-07T14:30:00Z",
		"45723",
		"45723.75",
	}
	for _, in := range inputs {
		got, ok := ParseDate(in)
		if !ok {
			t.Errorf("ParseDate(%q) failed", in)
			continue
		}
		if got != want {
			t.Errorf("ParseDate(%q) = %s, want %s", in, got, want)
		}
	}

	for _, bad := range []string{"", "   ", "next tuesday", "2025-13-45", "0", "-3"} {
		if d, ok := ParseDate(bad); ok || !d.IsZero() {
			t.Errorf("ParseDate(%q) = %s, %v; want absent", bad, d, ok)
		}
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		Shoot  Date `json:"shoot"`
		Review Date `json:"review"`
	}
	data, err := json.Marshal(wrapper{Shoot: NewDate(2024, time.January, 15)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"shoot":"2024-01-15","review":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var decoded wrapper
	if err := json.Unmarshal([]byte(`{"shoot":"2024-01-15T00:00:00.000Z","review":null}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Shoot.String() != "2024-01-15" || !decoded.Review.IsZero() {
		t.Errorf("unexpected decode: %+v", decoded)
	}
}

func TestDateScanAndValue(t *testing.T) {
	t.Parallel()

	var d Date
	if err := d.Scan("2024-02-29"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	v, err := d.Value()
	if err != nil || v != "2024-02-29" {
		t.Errorf("Value() = %v, %v", v, err)
	}

	var empty Date
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if v, _ := empty.Value(); v != nil {
		t.Errorf("expected nil value for absent date, got %v", v)
	}
}

func TestProjectStudentSummaryAbsent(t *testing.T) {
	t.Parallel()

	p := Project{Title: "Orphan"}
	if p.Student.FullName() != "" {
		t.Error("expected empty name for absent student")
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := raw["student"]; !ok || v != nil {
		t.Errorf("expected student:null, got %v", v)
	}
}

func TestParseBackupStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    BackupStatus
		wantErr bool
	}{
		{"pending", BackupStatusPending, false},
		{"Completed", BackupStatusCompleted, false},
		{" failed ", BackupStatusFailed, false},
		{"deleted", BackupStatusDeleted, false},
		{"unknown", "", true},
		{"running", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseBackupStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBackupStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Errorf("expected validation error kind, got %s", apperrors.KindOf(err))
			}
			if got != tt.want {
				t.Errorf("ParseBackupStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
