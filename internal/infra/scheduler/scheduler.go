package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yanqian/smart-energy/internal/domain/notification"
	"github.com/yanqian/smart-energy/pkg/metrics"
)

// ThresholdJob is the job name of the hourly threshold check.
const ThresholdJob = "threshold-check"

// Notifier is the part of the notification service the scheduler drives.
type Notifier interface {
	Reminders() []notification.Reminder
	FireReminder(ctx context.Context, id string) (notification.Notification, error)
	EvaluateThresholds(ctx context.Context) ([]notification.Notification, error)
}

// Config selects the jobs to run.
type Config struct {
	Reminders     bool
	Thresholds    bool
	ThresholdSpec string
	Location      *time.Location
	JobTimeout    time.Duration
}

// Scheduler runs reminders and the threshold check on cron schedules.
type Scheduler struct {
	cron     *cron.Cron
	notifier Notifier
	cfg      Config
	logger   *slog.Logger
	jobs     []string
}

// New registers the configured jobs without starting them.
func New(cfg Config, notifier Notifier, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.ThresholdSpec == "" {
		cfg.ThresholdSpec = "0 * * * *"
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(cfg.Location)),
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With("component", "scheduler"),
	}
	if cfg.Reminders {
		for _, r := range notifier.Reminders() {
			id := r.ID
			if err := s.add(r.Spec, id, func(ctx context.Context) error {
				_, err := s.notifier.FireReminder(ctx, id)
				return err
			}); err != nil {
				return nil, err
			}
		}
	}
	if cfg.Thresholds {
		if err := s.add(cfg.ThresholdSpec, ThresholdJob, func(ctx context.Context) error {
			fired, err := s.notifier.EvaluateThresholds(ctx)
			if len(fired) > 0 {
				s.logger.Info("threshold alerts fired", "count", len(fired))
			}
			return err
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(spec, job string, run func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(job, run)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job, spec, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) runJob(job string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()
	started := time.Now()
	err := run(ctx)
	metrics.UpdateJobMetrics(job, started, err)
	if err != nil {
		s.logger.Error("scheduled job failed", "job", job, "error", err)
		return
	}
	s.logger.Debug("scheduled job completed", "job", job, "duration_ms", time.Since(started).Milliseconds())
}

// Jobs lists the registered job names.
func (s *Scheduler) Jobs() []string {
	out := make([]string, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler starting", "jobs", len(s.jobs))
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}
