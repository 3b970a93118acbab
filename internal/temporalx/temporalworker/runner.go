package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	jobrt "github.com/yungbote/neurobridge-milestones/internal/jobs/runtime"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/services"
	"github.com/yungbote/neurobridge-milestones/internal/temporalx"
	"github.com/yungbote/neurobridge-milestones/internal/temporalx/jobrun"
)

// startMaxWait bounds how long Run waits for the frontend and namespace.
const startMaxWait = time.Minute

type Runner struct {
	log      *logger.Logger
	cfg      temporalx.Config
	tc       temporalsdkclient.Client
	jobRepo  repos.JobRunRepo
	registry *jobrt.Registry
	onDead   services.JobNotifier
}

func NewRunner(
	log *logger.Logger,
	cfg temporalx.Config,
	tc temporalsdkclient.Client,
	jobRepo repos.JobRunRepo,
	registry *jobrt.Registry,
	onDead services.JobNotifier,
) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if jobRepo == nil || registry == nil {
		return nil, fmt.Errorf("temporal worker missing deps")
	}
	return &Runner{
		log:      log.With("component", "TemporalWorker"),
		cfg:      cfg.WithDefaults(),
		tc:       tc,
		jobRepo:  jobRepo,
		registry: registry,
		onDead:   onDead,
	}, nil
}

// Run starts the worker, retrying while the namespace or frontend comes up,
// and blocks until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting Temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	var w worker.Worker
	attempts := 0
	err := temporalx.DialBackoff(startMaxWait).Do(ctx,
		func(error) bool { return ctx.Err() == nil },
		func(n uint, err error) {
			r.log.Warn("Temporal worker failed to start; retrying", "task_queue", r.cfg.TaskQueue, "attempt", n+1, "error", err)
		},
		func() error {
			attempts++
			candidate := r.newWorker()
			if err := candidate.Start(); err != nil {
				candidate.Stop()
				r.maybeRegisterNamespace(ctx, err)
				return err
			}
			w = candidate
			return nil
		},
	)
	if ctx.Err() != nil {
		if w != nil {
			w.Stop()
		}
		return nil
	}
	if err != nil {
		var nfe *serviceerror.NamespaceNotFound
		if errors.As(err, &nfe) {
			return fmt.Errorf("temporal namespace not found (namespace=%s): %w", r.cfg.Namespace, err)
		}
		return err
	}

	r.log.Info("Temporal worker started", "task_queue", r.cfg.TaskQueue, "attempts", attempts)
	<-ctx.Done()
	w.Stop()
	r.log.Info("Temporal worker stopped")
	return nil
}

func (r *Runner) maybeRegisterNamespace(ctx context.Context, startErr error) {
	var nfe *serviceerror.NamespaceNotFound
	if !r.cfg.AutoRegisterNamespace || !errors.As(startErr, &nfe) {
		return
	}
	if err := temporalx.EnsureNamespace(ctx, r.cfg, r.log); err != nil {
		r.log.Warn("Temporal namespace ensure failed", "namespace", r.cfg.Namespace, "error", err)
	}
}

func (r *Runner) newWorker() worker.Worker {
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     r.cfg.WorkerConcurrency,
		MaxConcurrentWorkflowTaskExecutionSize: r.cfg.WorkerConcurrency,
	})
	acts := &jobrun.Activities{
		Log:      r.log,
		Jobs:     r.jobRepo,
		Registry: r.registry,
		OnDead:   r.onDead,
	}
	w.RegisterWorkflowWithOptions(jobrun.Workflow, workflow.RegisterOptions{Name: jobrun.WorkflowName})
	w.RegisterActivityWithOptions(acts.Run, activity.RegisterOptions{Name: jobrun.ActivityRun})
	return w
}
