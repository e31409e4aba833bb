// Filmvault - Film Production Backup, Restore and Import Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmvault

/*
scheduler.go - Backup Scheduling

The scheduler owns a set of named timer jobs:

	daily-backup    every day at 02:00
	weekly-backup   Sundays at 02:00
	monthly-backup  the 1st of each month at 02:00
	cleanup         Saturdays at 03:00 (always installed)

Only one cadence job exists at a time. Times are evaluated in the configured
location. Configure cancels every existing job and waits for its goroutine,
including a job that is mid-run, before installing the new set, so a stale
timer can never fire alongside a new one.

A job's failure or panic is recovered and logged; the next firing is always
scheduled.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/filmvault/internal/apperrors"
	"github.com/tomtom215/filmvault/internal/logging"
	"github.com/tomtom215/filmvault/internal/metrics"
	"github.com/tomtom215/filmvault/internal/models"
)

// Cadence is how often the scheduled backup runs.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
	CadenceNone    Cadence = "none"
)

// Job names.
const (
	JobDailyBackup   = "daily-backup"
	JobWeeklyBackup  = "weekly-backup"
	JobMonthlyBackup = "monthly-backup"
	JobCleanup       = "cleanup"
)

// TriggerInitiator is the initiator recorded for TriggerNow backups.
const TriggerInitiator = "manual-trigger"

const (
	backupHour  = 2
	cleanupHour = 3
)

// ParseCadence canonicalizes a cadence token case-insensitively.
func ParseCadence(s string) (Cadence, error) {
	switch c := Cadence(strings.ToLower(strings.TrimSpace(s))); c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceNone:
		return c, nil
	}
	return "", apperrors.Validation("invalid backup schedule %q: must be daily, weekly, monthly or none", s)
}

// Runner is what scheduled jobs call. *Manager satisfies it.
type Runner interface {
	CreateBackup(ctx context.Context, format models.BackupFormat, initiator string) (*models.BackupRecord, error)
	CleanupOlderThan(ctx context.Context, retentionDays int) (int, error)
}

// ScheduleConfig configures the scheduler.
type ScheduleConfig struct {
	Cadence       Cadence
	RetentionDays int
	Location      *time.Location
	// Format of scheduled backups. Default: json
	Format models.BackupFormat
}

// JobStatus reports one scheduled job.
type JobStatus struct {
	Name      string     `json:"name"`
	NextRun   time.Time  `json:"nextRun"`
	LastRun   *time.Time `json:"lastRun,omitempty"`
	LastError string     `json:"lastError,omitempty"`
	Running   bool       `json:"running"`
}

// ScheduleStatus is the scheduler configuration plus its jobs.
type ScheduleStatus struct {
	Cadence       Cadence     `json:"cadence"`
	RetentionDays int         `json:"retentionDays"`
	Timezone      string      `json:"timezone"`
	Jobs          []JobStatus `json:"jobs"`
}

type job struct {
	name   string
	next   func(time.Time) time.Time
	run    func(ctx context.Context) error
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status JobStatus
}

func (j *job) snapshot() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := j.status
	if s.LastRun != nil {
		t := *s.LastRun
		s.LastRun = &t
	}
	return s
}

// timerFunc returns a channel that fires after d and a stop function.
type timerFunc func(d time.Duration) (<-chan time.Time, func() bool)

func realTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Scheduler fires backups and retention cleanup on a cadence. It
// implements suture.Service.
type Scheduler struct {
	runner Runner
	now    func() time.Time
	after  timerFunc

	mu   sync.Mutex
	cfg  ScheduleConfig
	jobs map[string]*job
}

// NewScheduler creates a scheduler that will install initial when served.
func NewScheduler(runner Runner, initial ScheduleConfig) *Scheduler {
	return &Scheduler{
		runner: runner,
		now:    time.Now,
		after:  realTimer,
		cfg:    initial,
		jobs:   make(map[string]*job),
	}
}

func normalizeSchedule(cfg ScheduleConfig) (ScheduleConfig, error) {
	cadence, err := ParseCadence(string(cfg.Cadence))
	if err != nil {
		return cfg, err
	}
	cfg.Cadence = cadence
	if cfg.RetentionDays < 1 {
		return cfg, apperrors.Validation("retention days must be at least 1, got %d", cfg.RetentionDays)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Format == "" {
		cfg.Format = models.FormatJSON
	}
	return cfg, nil
}

// Configure replaces every job. Existing jobs are cancelled and awaited
// before the new set is installed.
func (s *Scheduler) Configure(cfg ScheduleConfig) error {
	cfg, err := normalizeSchedule(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.cfg = cfg

	format := cfg.Format
	if name, next := cadenceJob(cfg.Cadence, cfg.Location); name != "" {
		s.startLocked(name, next, func(ctx context.Context) error {
			_, err := s.runner.CreateBackup(ctx, format, models.InitiatorSystem)
			return err
		})
	}

	retention := cfg.RetentionDays
	s.startLocked(JobCleanup, weeklyAt(time.Saturday, cleanupHour, cfg.Location), func(ctx context.Context) error {
		_, err := s.runner.CleanupOlderThan(ctx, retention)
		return err
	})

	logging.Info().
		Str("cadence", string(cfg.Cadence)).
		Int("retention_days", cfg.RetentionDays).
		Str("timezone", cfg.Location.String()).
		Int("jobs", len(s.jobs)).
		Msg("Backup schedule configured")
	return nil
}

// Config returns the current schedule configuration.
func (s *Scheduler) Config() ScheduleConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Stop cancels every job and waits for their goroutines.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	for _, j := range s.jobs {
		j.cancel()
	}
	for name, j := range s.jobs {
		<-j.done
		delete(s.jobs, name)
	}
}

func (s *Scheduler) startLocked(name string, next func(time.Time) time.Time, run func(context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		name:   name,
		next:   next,
		run:    run,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	j.status.Name = name
	j.status.NextRun = next(s.now())
	s.jobs[name] = j
	go s.loop(ctx, j)
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer close(j.done)

	for {
		now := s.now()
		next := j.next(now)
		j.mu.Lock()
		j.status.NextRun = next
		j.mu.Unlock()

		fire, stop := s.after(next.Sub(now))
		select {
		case <-ctx.Done():
			stop()
			return
		case <-fire:
		}

		// A running job finishes even if it is cancelled meanwhile;
		// Configure waits for it.
		s.fire(context.WithoutCancel(ctx), j)
	}
}

func (s *Scheduler) fire(ctx context.Context, j *job) {
	ctx = logging.ContextWithActor(logging.ContextWithNewCorrelationID(ctx), models.InitiatorSystem)
	started := s.now()

	j.mu.Lock()
	j.status.Running = true
	j.mu.Unlock()

	err := safeRun(ctx, j)

	j.mu.Lock()
	j.status.Running = false
	j.status.LastRun = &started
	j.status.LastError = errString(err)
	j.mu.Unlock()

	metrics.RecordScheduledJob(j.name, started, err)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("job", j.name).Msg("Scheduled job failed")
		return
	}
	logging.Ctx(ctx).Info().Str("job", j.name).Dur("duration", s.now().Sub(started)).Msg("Scheduled job completed")
}

func safeRun(ctx context.Context, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
	}()
	return j.run(ctx)
}

// JobStatus reports every installed job, sorted by name.
func (s *Scheduler) JobStatus() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.snapshot())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Status reports the configuration and every job.
func (s *Scheduler) Status() ScheduleStatus {
	cfg := s.Config()
	loc := "UTC"
	if cfg.Location != nil {
		loc = cfg.Location.String()
	}
	return ScheduleStatus{
		Cadence:       cfg.Cadence,
		RetentionDays: cfg.RetentionDays,
		Timezone:      loc,
		Jobs:          s.JobStatus(),
	}
}

// TriggerNow runs a backup immediately, outside the schedule.
func (s *Scheduler) TriggerNow(ctx context.Context, format models.BackupFormat) (*models.BackupRecord, error) {
	if format == "" {
		format = s.Config().Format
	}
	return s.runner.CreateBackup(ctx, format, TriggerInitiator)
}

// Serve implements suture.Service. It installs the current configuration,
// blocks until ctx is cancelled and then stops every job.
func (s *Scheduler) Serve(ctx context.Context) error {
	if err := s.Configure(s.Config()); err != nil {
		return fmt.Errorf("backup scheduler start failed: %w", err)
	}

	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (s *Scheduler) String() string {
	return "backup-scheduler"
}

// cadenceJob returns the job name and next-run function for a cadence, or
// "" for CadenceNone.
func cadenceJob(c Cadence, loc *time.Location) (string, func(time.Time) time.Time) {
	switch c {
	case CadenceDaily:
		return JobDailyBackup, dailyAt(backupHour, loc)
	case CadenceWeekly:
		return JobWeeklyBackup, weeklyAt(time.Sunday, backupHour, loc)
	case CadenceMonthly:
		return JobMonthlyBackup, monthlyAt(1, backupHour, loc)
	default:
		return "", nil
	}
}

// dailyAt returns the first hour:00 strictly after now.
func dailyAt(hour int, loc *time.Location) func(time.Time) time.Time {
	return func(now time.Time) time.Time {
		now = now.In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
		if !next.After(now) {
			next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, loc)
		}
		return next
	}
}

// weeklyAt returns the first weekday hour:00 strictly after now.
func weeklyAt(day time.Weekday, hour int, loc *time.Location) func(time.Time) time.Time {
	return func(now time.Time) time.Time {
		now = now.In(loc)
		ahead := (int(day) - int(now.Weekday()) + 7) % 7
		next := time.Date(now.Year(), now.Month(), now.Day()+ahead, hour, 0, 0, 0, loc)
		if !next.After(now) {
			next = time.Date(now.Year(), now.Month(), now.Day()+ahead+7, hour, 0, 0, 0, loc)
		}
		return next
	}
}

// monthlyAt returns the first day-of-month hour:00 strictly after now.
func monthlyAt(day, hour int, loc *time.Location) func(time.Time) time.Time {
	return func(now time.Time) time.Time {
		now = now.In(loc)
		next := time.Date(now.Year(), now.Month(), day, hour, 0, 0, 0, loc)
		if !next.After(now) {
			next = time.Date(now.Year(), now.Month()+1, day, hour, 0, 0, 0, loc)
		}
		return next
	}
}
