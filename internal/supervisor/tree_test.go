// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package supervisor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/filmvault/internal/backup"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(logging.NewSlogHandlerWithLogger(logging.NewTestLogger(io.Discard)))
}

// syncBuffer guards a bytes.Buffer written by supervisor goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewSupervisorTree(t *testing.T) {
	t.Parallel()

	t.Run("explicit config is kept", func(t *testing.T) {
		t.Parallel()
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
			FailureThreshold: 3,
			FailureDecay:     10,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  2 * time.Second,
		})
		if err != nil {
			t.Fatalf("NewSupervisorTree: %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}
		if tree.config.FailureThreshold != 3 || tree.config.ShutdownTimeout != 2*time.Second {
			t.Errorf("config = %+v", tree.config)
		}
	})

	t.Run("zero config gets defaults", func(t *testing.T) {
		t.Parallel()
		tree, err := NewSupervisorTree(nil, TreeConfig{})
		if err != nil {
			t.Fatalf("NewSupervisorTree: %v", err)
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
		}
	})
}

func TestDefaultTreeConfig(t *testing.T) {
	t.Parallel()
	config := DefaultTreeConfig()

	if config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %f, want 5", config.FailureThreshold)
	}
	if config.FailureDecay != 30.0 {
		t.Errorf("FailureDecay = %f, want 30", config.FailureDecay)
	}
	if config.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", config.FailureBackoff)
	}
	if config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", config.ShutdownTimeout)
	}
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	jobSvc := newMockService("job")
	apiSvc := newMockService("api")
	tree.AddJobService(jobSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	time.Sleep(100 * time.Millisecond)
	if jobSvc.starts() < 1 {
		t.Error("job service was not started")
	}
	if apiSvc.starts() < 1 {
		t.Error("api service was not started")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestSupervisorTreeRestartsFailingJob(t *testing.T) {
	t.Parallel()

	var logs syncBuffer
	logger := slog.New(logging.NewSlogHandlerWithLogger(logging.NewTestLogger(&logs)))
	tree, err := NewSupervisorTree(logger, TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	failing := &mockService{name: "flaky-job", maxFails: 2}
	stable := newMockService("api")
	tree.AddJobService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	time.Sleep(200 * time.Millisecond)
	if failing.starts() < 3 {
		t.Errorf("failing job started %d times, want at least 3", failing.starts())
	}
	if stable.starts() != 1 {
		t.Errorf("api service started %d times, want 1", stable.starts())
	}
	<-errCh

	if !strings.Contains(logs.String(), "flaky-job") {
		t.Errorf("supervisor events not logged, got %q", logs.String())
	}
}

func TestRemoveJobService(t *testing.T) {
	t.Parallel()

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	svc := newMockService("job")
	token := tree.AddJobService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	time.Sleep(50 * time.Millisecond)
	if err := tree.RemoveJobService(token); err != nil {
		t.Errorf("RemoveJobService: %v", err)
	}
	cancel()
	<-errCh
}

type countingRunner struct {
	mu      sync.Mutex
	backups int
}

func (r *countingRunner) CreateBackup(_ context.Context, format models.BackupFormat, initiator string) (*models.BackupRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backups++
	return &models.BackupRecord{Format: format, Initiator: initiator}, nil
}

func (r *countingRunner) CleanupOlderThan(context.Context, int) (int, error) {
	return 0, nil
}

func TestSupervisorTreeRunsScheduler(t *testing.T) {
	t.Parallel()

	scheduler := backup.NewScheduler(&countingRunner{}, backup.ScheduleConfig{
		Cadence:       backup.CadenceDaily,
		RetentionDays: 7,
	})

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	tree.AddJobService(scheduler)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for len(scheduler.JobStatus()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(scheduler.JobStatus()); got == 0 {
		t.Fatal("scheduler jobs were not installed under the tree")
	}

	cancel()
	<-errCh
	if got := len(scheduler.JobStatus()); got != 0 {
		t.Errorf("jobs after shutdown = %d, want 0", got)
	}
}
