// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tomtom215/filmvault/internal/config"
	"github.com/tomtom215/filmvault/internal/models"
)

type fakeS3 struct {
	mu      sync.Mutex
	puts    map[string]string // key -> body
	deletes []string
	bucket  string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bucket = aws.ToString(in.Bucket)
	f.puts[aws.ToString(in.Key)] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Mirror_UploadAndDelete(t *testing.T) {
	t.Parallel()

	m := setupManager(t, setupTestDB(t))
	name := writeBackupFile(t, m.Dir(), models.BackupKindFull, models.FormatJSON, testNow, `{"data":{}}`)

	client := &fakeS3{puts: make(map[string]string)}
	mirror := &S3Mirror{client: client, bucket: "school-backups", prefix: "filmvault"}
	ctx := context.Background()

	if err := mirror.Upload(ctx, name, filepath.Join(m.Dir(), name)); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if client.bucket != "school-backups" {
		t.Errorf("bucket = %q", client.bucket)
	}
	if got := client.puts["filmvault/"+name]; got != `{"data":{}}` {
		t.Errorf("uploaded body = %q, keys = %v", got, client.puts)
	}

	if err := mirror.Delete(ctx, name); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(client.deletes) != 1 || client.deletes[0] != "filmvault/"+name {
		t.Errorf("deletes = %v", client.deletes)
	}
}

func TestS3Mirror_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("access denied")
	mirror := &S3Mirror{client: &fakeS3{puts: make(map[string]string), err: boom}, bucket: "b"}

	if err := mirror.Upload(context.Background(), "missing.json", "/nonexistent/missing.json"); err == nil {
		t.Error("Upload() of a missing file succeeded")
	}
	if err := mirror.Delete(context.Background(), "x.json"); !errors.Is(err, boom) {
		t.Errorf("Delete() error = %v, want %v", err, boom)
	}
}

func TestNewS3Mirror(t *testing.T) {
	t.Parallel()

	m := NewS3Mirror(&config.MirrorConfig{
		Enabled:   true,
		Bucket:    "offsite",
		Region:    "us-east-1",
		Endpoint:  "http://minio:9000",
		Prefix:    "nightly",
		AccessKey: "key",
		SecretKey: "secret",
	})
	if m.bucket != "offsite" || m.prefix != "nightly" {
		t.Errorf("mirror = %+v", m)
	}
	if got := m.key("backup.json"); got != "nightly/backup.json" {
		t.Errorf("key() = %q", got)
	}
	if m.client == nil {
		t.Error("client not built")
	}
}

// recordingMirror records every call and returns err.
type recordingMirror struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	err      error
}

func (r *recordingMirror) Upload(_ context.Context, filename, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploaded = append(r.uploaded, filename)
	return r.err
}

func (r *recordingMirror) Delete(_ context.Context, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, filename)
	return r.err
}

func TestManager_MirrorsCompletedBackups(t *testing.T) {
	t.Parallel()

	m := setupManager(t, setupTestDB(t))
	mirror := &recordingMirror{}
	m.SetMirror(mirror)
	ctx := context.Background()

	rec, err := m.CreateBackup(ctx, models.FormatJSON, "")
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	if len(mirror.uploaded) != 1 || mirror.uploaded[0] != rec.Filename {
		t.Errorf("uploaded = %v, want [%s]", mirror.uploaded, rec.Filename)
	}

	if err := m.DeleteBackup(ctx, rec.Filename); err != nil {
		t.Fatalf("DeleteBackup() error = %v", err)
	}
	if len(mirror.deleted) != 1 || mirror.deleted[0] != rec.Filename {
		t.Errorf("deleted = %v, want [%s]", mirror.deleted, rec.Filename)
	}
}

func TestManager_MirrorFailureKeepsBackupCompleted(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	m := setupManager(t, db)
	m.SetMirror(&recordingMirror{err: errors.New("bucket unreachable")})
	ctx := context.Background()

	rec, err := m.CreateBackup(ctx, models.FormatJSON, "")
	if err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	got, err := db.GetBackupRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetBackupRecord() error = %v", err)
	}
	if got.Status != models.BackupStatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}

	if err := m.DeleteBackup(ctx, rec.Filename); err != nil {
		t.Errorf("DeleteBackup() error = %v, mirror failure must not fail the delete", err)
	}
}
