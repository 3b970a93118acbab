package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type Config struct {
	// Cron specs use the standard five-field format.
	RequeueSpec    string
	PurgeSpec      string
	QueueDepthSpec string
	StaleRunning   time.Duration
	Retention      time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequeueSpec:    "*/1 * * * *",
		PurgeSpec:      "0 3 * * *",
		QueueDepthSpec: "@every 15s",
		StaleRunning:   5 * time.Minute,
		Retention:      7 * 24 * time.Hour,
	}
}

// Scheduler runs periodic job_run housekeeping.
type Scheduler struct {
	log  *logger.Logger
	repo repos.JobRunRepo
	cfg  Config
	cron *cron.Cron
	now  func() time.Time
}

func New(baseLog *logger.Logger, repo repos.JobRunRepo, cfg Config) (*Scheduler, error) {
	def := DefaultConfig()
	if cfg.RequeueSpec == "" {
		cfg.RequeueSpec = def.RequeueSpec
	}
	if cfg.PurgeSpec == "" {
		cfg.PurgeSpec = def.PurgeSpec
	}
	if cfg.QueueDepthSpec == "" {
		cfg.QueueDepthSpec = def.QueueDepthSpec
	}
	if cfg.StaleRunning <= 0 {
		cfg.StaleRunning = def.StaleRunning
	}
	if cfg.Retention <= 0 {
		cfg.Retention = def.Retention
	}
	for name, spec := range map[string]string{"requeue_stale": cfg.RequeueSpec, "purge_finished": cfg.PurgeSpec, "queue_depth": cfg.QueueDepthSpec} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", name, spec, err)
		}
	}
	s := &Scheduler{
		log:  baseLog.With("component", "JobScheduler"),
		repo: repo,
		cfg:  cfg,
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		now:  func() time.Time { return time.Now().UTC() },
	}
	return s, nil
}

// Run registers the housekeeping entries and blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	entries := []struct {
		name string
		spec string
		fn   func(context.Context) error
	}{
		{"requeue_stale", s.cfg.RequeueSpec, func(ctx context.Context) error { _, err := s.RequeueStale(ctx); return err }},
		{"purge_finished", s.cfg.PurgeSpec, func(ctx context.Context) error { _, err := s.PurgeFinished(ctx); return err }},
		{"queue_depth", s.cfg.QueueDepthSpec, s.PublishQueueDepth},
	}
	for _, e := range entries {
		e := e
		if _, err := s.cron.AddFunc(e.spec, func() {
			if err := e.fn(ctx); err != nil {
				s.log.Warn("Scheduled job maintenance failed", "task", e.name, "error", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", e.name, e.spec, err)
		}
	}

	s.cron.Start()
	s.log.Info("Job scheduler started",
		"requeue_spec", s.cfg.RequeueSpec,
		"purge_spec", s.cfg.PurgeSpec,
		"queue_depth_spec", s.cfg.QueueDepthSpec,
	)
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("Job scheduler stopped")
	return nil
}

// RequeueStale moves running jobs with an expired heartbeat back to failed so
// the worker retries them.
func (s *Scheduler) RequeueStale(ctx context.Context) (int64, error) {
	n, err := s.repo.RequeueStale(dbctx.Context{Ctx: ctx}, s.cfg.StaleRunning)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Warn("Requeued stale jobs", "count", n, "stale_after", s.cfg.StaleRunning)
	}
	return n, nil
}

// PurgeFinished deletes terminal jobs that finished before the retention window.
func (s *Scheduler) PurgeFinished(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeFinished(dbctx.Context{Ctx: ctx}, s.now().Add(-s.cfg.Retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Purged finished jobs", "count", n, "retention", s.cfg.Retention)
	}
	return n, nil
}

func (s *Scheduler) PublishQueueDepth(ctx context.Context) error {
	counts, err := s.repo.CountByStatus(dbctx.Context{Ctx: ctx})
	if err != nil {
		return err
	}
	observability.Current().SetQueueDepth(counts)
	return nil
}
