package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/jobs/runtime"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	// StaleRunning is how long a running job may go without a heartbeat
	// before another worker may claim it.
	StaleRunning      time.Duration
	HeartbeatInterval time.Duration
	Backoff           runtime.Backoff
}

func (c Config) withDefaults() Config {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.StaleRunning <= 0 {
		c.StaleRunning = 5 * time.Minute
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = c.StaleRunning / 3
	}
	return c
}

type Worker struct {
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	onDead   services.JobNotifier
	cfg      Config
}

func NewWorker(baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, onDead services.JobNotifier, cfg Config) *Worker {
	return &Worker{
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		onDead:   onDead,
		cfg:      cfg.withDefaults(),
	}
}

// Run polls job_run with Concurrency loops until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Starting job worker pool",
		"concurrency", w.cfg.Concurrency,
		"poll_interval", w.cfg.PollInterval,
		"job_types", w.registry.Types(),
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Concurrency; i++ {
		workerID := i + 1
		g.Go(func() error {
			w.runLoop(gctx, workerID)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			// Drain the queue before waiting for the next tick.
			for ctx.Err() == nil {
				ran, err := w.ProcessNext(ctx)
				if err != nil {
					w.log.Warn("ClaimNextRunnable failed", "worker_id", workerID, "error", err)
					break
				}
				if !ran {
					break
				}
			}
		}
	}
}

// ProcessNext claims one runnable job and executes it. It reports whether a
// job was claimed.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, w.cfg.StaleRunning)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	w.execute(ctx, job)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, job *types.JobRun) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "job."+job.JobType,
		observability.AttrJobID.String(job.ID.String()),
		observability.AttrJobAttempt.Int(job.Attempts),
	)
	defer span.End()

	jc := runtime.NewContext(ctx, job, w.repo, w.onDead, w.cfg.Backoff, w.log)
	status := "succeeded"
	defer func() {
		observability.Current().ObserveActivity("job", job.JobType, status, time.Since(start))
	}()

	h, ok := w.registry.Get(job.JobType)
	if !ok {
		w.log.Warn("No handler registered for job_type", "job_type", job.JobType, "job_id", job.ID)
		jc.Fail("dispatch", runtime.Permanent(&missingHandlerError{JobType: job.JobType}))
		status = "dead"
		return
	}

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go w.heartbeat(hbCtx, jc)

	runErr := w.run(h, jc)
	if runErr == nil {
		return
	}
	observability.FailSpan(span, runErr)
	if jc.Fail("run", runErr) {
		status = "failed"
	} else {
		status = "dead"
	}
}

func (w *Worker) run(h runtime.Handler, jc *runtime.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Job handler panic", "job_id", jc.Job.ID, "job_type", jc.Job.JobType, "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Run(jc)
}

func (w *Worker) heartbeat(ctx context.Context, jc *runtime.Context) {
	ticker := time.NewTicker(w.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jc.Heartbeat()
		}
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string { return "no handler registered for job_type=" + e.JobType }

// IsMissingHandler reports whether err came from a job type with no handler.
func IsMissingHandler(err error) bool {
	var m *missingHandlerError
	return errors.As(err, &m)
}
