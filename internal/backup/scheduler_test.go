// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

package backup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/models"
)

const waitTimeout = 2 * time.Second

type timerRequest struct {
	d  time.Duration
	ch chan time.Time
}

// fakeTimers hands every timer request to the test instead of sleeping.
type fakeTimers struct {
	reqs chan timerRequest
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{reqs: make(chan timerRequest, 64)}
}

func (f *fakeTimers) after(d time.Duration) (<-chan time.Time, func() bool) {
	ch := make(chan time.Time, 1)
	f.reqs <- timerRequest{d: d, ch: ch}
	return ch, func() bool { return true }
}

// next waits for the next timer request.
func (f *fakeTimers) next(t *testing.T) timerRequest {
	t.Helper()
	select {
	case r := <-f.reqs:
		return r
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a timer request")
		return timerRequest{}
	}
}

// await collects n requests keyed by duration.
func (f *fakeTimers) await(t *testing.T, n int) map[time.Duration]timerRequest {
	t.Helper()
	out := make(map[time.Duration]timerRequest, n)
	for i := 0; i < n; i++ {
		r := f.next(t)
		out[r.d] = r
	}
	return out
}

type fakeRunner struct {
	mu         sync.Mutex
	initiators []string
	formats    []models.BackupFormat
	cleanups   []int

	// onBackup, when set, runs inside CreateBackup.
	onBackup func()
}

func (r *fakeRunner) CreateBackup(_ context.Context, format models.BackupFormat, initiator string) (*models.BackupRecord, error) {
	if r.onBackup != nil {
		r.onBackup()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initiators = append(r.initiators, initiator)
	r.formats = append(r.formats, format)
	return &models.BackupRecord{Format: format, Initiator: initiator}, nil
}

func (r *fakeRunner) CleanupOlderThan(_ context.Context, days int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanups = append(r.cleanups, days)
	return 0, nil
}

func (r *fakeRunner) backups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.initiators)
}

func newTestScheduler(t *testing.T, runner Runner) (*Scheduler, *fakeTimers) {
	t.Helper()

	timers := newFakeTimers()
	s := NewScheduler(runner, ScheduleConfig{Cadence: CadenceDaily, RetentionDays: 30})
	s.now = fixedClock(testNow)
	s.after = timers.after
	t.Cleanup(s.Stop)
	return s, timers
}

func jobNames(statuses []JobStatus) []string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = st.Name
	}
	return names
}

func TestNextRunTimes(t *testing.T) {
	t.Parallel()

	est := time.FixedZone("EST", -5*3600)
	at := func(y int, m time.Month, d, h int, loc *time.Location) time.Time {
		return time.Date(y, m, d, h, 0, 0, 0, loc)
	}

	tests := []struct {
		name string
		next func(time.Time) time.Time
		now  time.Time
		want time.Time
	}{
		{"daily later today", dailyAt(2, time.UTC), at(2024, 6, 7, 1, time.UTC), at(2024, 6, 7, 2, time.UTC)},
		{"daily tomorrow", dailyAt(2, time.UTC), testNow, at(2024, 6, 8, 2, time.UTC)},
		{"daily exactly on time", dailyAt(2, time.UTC), at(2024, 6, 7, 2, time.UTC), at(2024, 6, 8, 2, time.UTC)},
		{"daily month rollover", dailyAt(2, time.UTC), at(2024, 6, 30, 12, time.UTC), at(2024, 7, 1, 2, time.UTC)},
		{"daily in location", dailyAt(2, est), testNow, at(2024, 6, 8, 2, est)},
		{"weekly sunday", weeklyAt(time.Sunday, 2, time.UTC), testNow, at(2024, 6, 9, 2, time.UTC)},
		{"weekly same day passed", weeklyAt(time.Sunday, 2, time.UTC), at(2024, 6, 9, 2, time.UTC), at(2024, 6, 16, 2, time.UTC)},
		{"cleanup saturday", weeklyAt(time.Saturday, 3, time.UTC), testNow, at(2024, 6, 8, 3, time.UTC)},
		{"monthly next month", monthlyAt(1, 2, time.UTC), testNow, at(2024, 7, 1, 2, time.UTC)},
		{"monthly later today", monthlyAt(1, 2, time.UTC), at(2024, 6, 1, 1, time.UTC), at(2024, 6, 1, 2, time.UTC)},
		{"monthly year rollover", monthlyAt(1, 2, time.UTC), at(2024, 12, 15, 0, time.UTC), at(2025, 1, 1, 2, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.next(tt.now); !got.Equal(tt.want) {
				t.Errorf("next(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestParseCadence(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Cadence{"daily": CadenceDaily, " Weekly ": CadenceWeekly, "MONTHLY": CadenceMonthly, "none": CadenceNone} {
		got, err := ParseCadence(in)
		if err != nil || got != want {
			t.Errorf("ParseCadence(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseCadence("hourly"); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("ParseCadence(hourly) error = %v, want validation error", err)
	}
}

func TestScheduler_ConfigureInstallsJobs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cadence Cadence
		want    []string
	}{
		{CadenceDaily, []string{JobCleanup, JobDailyBackup}},
		{CadenceWeekly, []string{JobCleanup, JobWeeklyBackup}},
		{CadenceMonthly, []string{JobCleanup, JobMonthlyBackup}},
		{CadenceNone, []string{JobCleanup}},
	}

	for _, tt := range tests {
		t.Run(string(tt.cadence), func(t *testing.T) {
			t.Parallel()

			s, timers := newTestScheduler(t, &fakeRunner{})
			if err := s.Configure(ScheduleConfig{Cadence: tt.cadence, RetentionDays: 14}); err != nil {
				t.Fatalf("Configure() error = %v", err)
			}
			timers.await(t, len(tt.want))

			got := jobNames(s.JobStatus())
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("jobs = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScheduler_ConfigureReplacesJobs(t *testing.T) {
	t.Parallel()

	s, timers := newTestScheduler(t, &fakeRunner{})
	if err := s.Configure(ScheduleConfig{Cadence: CadenceDaily, RetentionDays: 30}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	timers.await(t, 2)

	if err := s.Configure(ScheduleConfig{Cadence: CadenceWeekly, RetentionDays: 7}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	timers.await(t, 2)

	got := jobNames(s.JobStatus())
	if strings.Join(got, ",") != JobCleanup+","+JobWeeklyBackup {
		t.Errorf("jobs = %v, want only cleanup and weekly", got)
	}

	status := s.Status()
	if status.Cadence != CadenceWeekly || status.RetentionDays != 7 || status.Timezone != "UTC" {
		t.Errorf("Status() = %+v", status)
	}
}

func TestScheduler_ConfigureRejectsInvalid(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(t, &fakeRunner{})
	for _, cfg := range []ScheduleConfig{
		{Cadence: "hourly", RetentionDays: 30},
		{Cadence: CadenceDaily, RetentionDays: 0},
	} {
		if err := s.Configure(cfg); !apperrors.IsKind(err, apperrors.KindValidation) {
			t.Errorf("Configure(%+v) error = %v, want validation error", cfg, err)
		}
	}
	if jobs := s.JobStatus(); len(jobs) != 0 {
		t.Errorf("rejected config installed jobs: %v", jobNames(jobs))
	}
}

func TestScheduler_FiresAndReschedules(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s, timers := newTestScheduler(t, runner)
	if err := s.Configure(ScheduleConfig{Cadence: CadenceDaily, RetentionDays: 30, Format: models.FormatCSV}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	// Friday 12:00 UTC: the backup is due in 14h, cleanup in 15h.
	reqs := timers.await(t, 2)
	backup, ok := reqs[14*time.Hour]
	if !ok {
		t.Fatalf("no 14h timer requested, got %v", reqs)
	}
	if _, ok := reqs[15*time.Hour]; !ok {
		t.Fatalf("no 15h cleanup timer requested, got %v", reqs)
	}

	backup.ch <- testNow
	if again := timers.next(t); again.d != 14*time.Hour {
		t.Errorf("rescheduled after %v, want 14h", again.d)
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.initiators) != 1 || runner.initiators[0] != models.InitiatorSystem {
		t.Errorf("initiators = %v, want [system]", runner.initiators)
	}
	if runner.formats[0] != models.FormatCSV {
		t.Errorf("format = %q, want csv", runner.formats[0])
	}
}

func TestScheduler_CleanupUsesRetention(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s, timers := newTestScheduler(t, runner)
	if err := s.Configure(ScheduleConfig{Cadence: CadenceNone, RetentionDays: 9}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	cleanup := timers.next(t)
	cleanup.ch <- testNow
	timers.next(t)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.cleanups) != 1 || runner.cleanups[0] != 9 {
		t.Errorf("cleanups = %v, want [9]", runner.cleanups)
	}
}

func TestScheduler_RecoversPanics(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{onBackup: func() { panic("serializer exploded") }}
	s, timers := newTestScheduler(t, runner)
	if err := s.Configure(ScheduleConfig{Cadence: CadenceDaily, RetentionDays: 30}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	reqs := timers.await(t, 2)
	reqs[14*time.Hour].ch <- testNow
	timers.next(t)

	var daily *JobStatus
	jobs := s.JobStatus()
	for i := range jobs {
		if jobs[i].Name == JobDailyBackup {
			daily = &jobs[i]
		}
	}
	if daily == nil {
		t.Fatal("daily job missing after panic")
	}
	if !strings.Contains(daily.LastError, "panicked") {
		t.Errorf("LastError = %q, want panic recorded", daily.LastError)
	}
	if daily.LastRun == nil || daily.Running {
		t.Errorf("status = %+v, want a finished run", daily)
	}
}

func TestScheduler_ConfigureWaitsForRunningJob(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	runner := &fakeRunner{onBackup: func() {
		close(started)
		<-release
	}}
	s, timers := newTestScheduler(t, runner)
	if err := s.Configure(ScheduleConfig{Cadence: CadenceDaily, RetentionDays: 30}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	reqs := timers.await(t, 2)
	reqs[14*time.Hour].ch <- testNow
	select {
	case <-started:
	case <-time.After(waitTimeout):
		t.Fatal("backup job never started")
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Configure(ScheduleConfig{Cadence: CadenceNone, RetentionDays: 30})
	}()

	select {
	case err := <-done:
		t.Fatalf("Configure() returned while a job was running: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Configure() error = %v", err)
		}
	case <-time.After(waitTimeout):
		t.Fatal("Configure() did not return after the job finished")
	}
	if runner.backups() != 1 {
		t.Errorf("backups = %d, want the in-flight run to complete", runner.backups())
	}
}

func TestScheduler_TriggerNow(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s := NewScheduler(runner, ScheduleConfig{Cadence: CadenceNone, RetentionDays: 30, Format: models.FormatSQL})

	if _, err := s.TriggerNow(context.Background(), ""); err != nil {
		t.Fatalf("TriggerNow() error = %v", err)
	}
	if _, err := s.TriggerNow(context.Background(), models.FormatXLSX); err != nil {
		t.Fatalf("TriggerNow() error = %v", err)
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	for _, who := range runner.initiators {
		if who != TriggerInitiator {
			t.Errorf("initiator = %q, want %q", who, TriggerInitiator)
		}
	}
	if runner.formats[0] != models.FormatSQL || runner.formats[1] != models.FormatXLSX {
		t.Errorf("formats = %v, want [sql xlsx]", runner.formats)
	}
}

func TestScheduler_Serve(t *testing.T) {
	t.Parallel()

	s, timers := newTestScheduler(t, &fakeRunner{})
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx) }()
	timers.await(t, 2)

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(waitTimeout):
		t.Fatal("Serve() did not return after cancel")
	}
	if jobs := s.JobStatus(); len(jobs) != 0 {
		t.Errorf("jobs left after Serve returned: %v", jobNames(jobs))
	}
	if s.String() != "backup-scheduler" {
		t.Errorf("String() = %q", s.String())
	}
}
