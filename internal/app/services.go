package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/config"
	"github.com/yungbote/neurobridge-milestones/internal/data/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	"github.com/yungbote/neurobridge-milestones/internal/jobs/milestonetasks"
	jobrt "github.com/yungbote/neurobridge-milestones/internal/jobs/runtime"
	"github.com/yungbote/neurobridge-milestones/internal/jobs/scheduler"
	"github.com/yungbote/neurobridge-milestones/internal/jobs/worker"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/services"
	"github.com/yungbote/neurobridge-milestones/internal/temporalx/jobrun"
	"github.com/yungbote/neurobridge-milestones/internal/temporalx/temporalworker"
)

func wireEngine(db *gorm.DB, log *logger.Logger, cfg *config.Config, set repos.Set, clients Clients) *services.Engine {
	log.Info("Wiring milestone engine...")
	return services.NewEngine(services.EngineDeps{
		DB:    db,
		Log:   log,
		Repos: set,
		Bus:   clients.Bus,
		Retry: aggregates.DefaultRetryPolicy(),
		Hooks: aggregates.Chain(
			observability.AggregateHooks{M: observability.Current()},
			aggregates.NewSlowOpHooks(log, cfg.Database.SlowThreshold),
		),
		WriteTimeout: cfg.Database.WriteTimeout,
		Badges:       clients.Badges,
		Mailer:       clients.Mailer,
	})
}

// wireJobs builds the job service plus the runners of the configured backend:
// the job_run worker pool and its cron housekeeping, or the Temporal worker.
func wireJobs(log *logger.Logger, cfg *config.Config, db *gorm.DB, set repos.Set, engine *services.Engine, clients Clients) (services.JobService, []Runner, error) {
	log.Info("Wiring job runtime...", "backend", cfg.Jobs.Backend)
	registry := jobrt.NewRegistry()
	if err := milestonetasks.Register(registry, engine.Monitor, engine.Maintenance); err != nil {
		return nil, nil, fmt.Errorf("register milestone tasks: %w", err)
	}
	onDead := services.NewJobNotifier(log, clients.Bus)

	switch cfg.Jobs.Backend {
	case config.BackendTemporal:
		tcfg := temporalConfig(cfg.Temporal).WithDefaults()
		dispatcher := &jobrun.Dispatcher{Client: clients.Temporal, TaskQueue: tcfg.TaskQueue}
		jobs := services.NewJobService(db, log, set.JobRun, dispatcher, jobrun.RetryMaximumAttempts)
		runner, err := temporalworker.NewRunner(log, tcfg, clients.Temporal, set.JobRun, registry, onDead)
		if err != nil {
			return nil, nil, err
		}
		return jobs, []Runner{{Name: "temporal_worker", Run: runner.Run}}, nil
	default:
		jobs := services.NewJobService(db, log, set.JobRun, nil, cfg.Jobs.MaxAttempts())
		w := worker.NewWorker(log, set.JobRun, registry, onDead, worker.Config{
			Concurrency:       cfg.Jobs.Concurrency,
			PollInterval:      cfg.Jobs.PollInterval,
			StaleRunning:      cfg.Jobs.StaleRunning,
			HeartbeatInterval: cfg.Jobs.HeartbeatInterval,
			Backoff:           jobrt.Backoff{Base: cfg.Jobs.BackoffBase, Max: cfg.Jobs.BackoffMax},
		})
		sched, err := scheduler.New(log, set.JobRun, scheduler.Config{
			RequeueSpec:    cfg.Jobs.RequeueSpec,
			PurgeSpec:      cfg.Jobs.PurgeSpec,
			QueueDepthSpec: cfg.Jobs.QueueDepthSpec,
			StaleRunning:   cfg.Jobs.StaleRunning,
			Retention:      cfg.Jobs.Retention,
		})
		if err != nil {
			return nil, nil, err
		}
		return jobs, []Runner{
			{Name: "job_worker", Run: w.Run},
			{Name: "job_scheduler", Run: sched.Run},
		}, nil
	}
}
