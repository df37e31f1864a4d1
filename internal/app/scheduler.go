package app

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mandalnilabja/chatrelay/internal/metrics"
	"github.com/mandalnilabja/chatrelay/internal/provider"
	"github.com/mandalnilabja/chatrelay/internal/storage"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/middleware/ratelimit"
)

// Maintenance schedules.
const (
	LimiterCleanupSchedule = "@every 1m"
	StickySweepSchedule    = "@every 5m"
	RetentionSchedule      = "@daily"
)

// SchedulerOptions lists the state the scheduler maintains. Nil members are
// skipped.
type SchedulerOptions struct {
	Limiter   *ratelimit.Limiter
	Sticky    *provider.StickyStore
	Storage   storage.Storage
	Retention time.Duration
	Metrics   *metrics.Prometheus
	Logger    *slog.Logger
}

// Scheduler runs periodic maintenance: expired rate-limit windows, expired
// sticky entries and old request logs.
type Scheduler struct {
	opts SchedulerOptions
	cron *cron.Cron
	now  func() time.Time

	mu      sync.Mutex
	running bool
}

// NewScheduler registers the maintenance jobs without starting them.
func NewScheduler(opts SchedulerOptions) (*Scheduler, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Scheduler{
		opts: opts,
		cron: cron.New(),
		now:  time.Now,
	}

	jobs := []struct {
		spec string
		run  func()
		on   bool
	}{
		{LimiterCleanupSchedule, s.CleanupLimiter, opts.Limiter != nil},
		{StickySweepSchedule, s.SweepSticky, opts.Sticky != nil},
		{RetentionSchedule, s.PruneLogs, opts.Storage != nil && opts.Retention > 0},
	}
	for _, job := range jobs {
		if !job.on {
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return nil, fmt.Errorf("failed to schedule %q: %w", job.spec, err)
		}
	}

	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.opts.Logger.Debug("maintenance scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// CleanupLimiter drops expired rate-limit windows.
func (s *Scheduler) CleanupLimiter() {
	if n := s.opts.Limiter.Cleanup(); n > 0 {
		s.opts.Logger.Debug("rate limit windows cleaned", "removed", n)
	}
}

// SweepSticky drops expired sticky entries and updates the gauge.
func (s *Scheduler) SweepSticky() {
	removed := s.opts.Sticky.Sweep()
	if s.opts.Metrics != nil {
		s.opts.Metrics.SetStickyEntries(s.opts.Sticky.Len())
	}
	if removed > 0 {
		s.opts.Logger.Debug("sticky entries swept", "removed", removed)
	}
}

// PruneLogs deletes request logs older than the retention period.
func (s *Scheduler) PruneLogs() {
	cutoff := s.now().Add(-s.opts.Retention)
	deleted, err := s.opts.Storage.DeleteRequestLogs(cutoff)
	if err != nil {
		s.opts.Logger.Error("request log pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.opts.Logger.Info("request logs pruned", "deleted", deleted, "older_than", cutoff.UTC().Format(time.RFC3339))
	}
}
