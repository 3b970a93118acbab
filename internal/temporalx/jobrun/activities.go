package jobrun

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	jobrt "github.com/yungbote/neurobridge-milestones/internal/jobs/runtime"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

type Activities struct {
	Log      *logger.Logger
	Jobs     repos.JobRunRepo
	Registry *jobrt.Registry
	OnDead   services.JobNotifier
}

// Run executes the job_run handler once per activity attempt. The activity
// attempt number is written to job_run.attempts so the shared retry policy in
// jobs/runtime decides between failed and dead.
func (a *Activities) Run(ctx context.Context, jobID string) (RunResult, error) {
	res := RunResult{JobID: strings.TrimSpace(jobID)}
	if a == nil || a.Jobs == nil || a.Registry == nil {
		return res, temporal.NewNonRetryableApplicationError("jobrun: activity not configured", ErrTypePermanent, nil)
	}
	id, err := uuid.Parse(res.JobID)
	if err != nil || id == uuid.Nil {
		return res, temporal.NewNonRetryableApplicationError("jobrun: invalid job_id", ErrTypePermanent, err)
	}

	job, err := a.Jobs.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return res, err
	}
	if job == nil {
		return res, temporal.NewNonRetryableApplicationError("jobrun: job not found", ErrTypePermanent, nil)
	}
	if isTerminal(job.Status) {
		res.Status, res.Stage = job.Status, job.Stage
		return res, nil
	}

	attempt := 1
	if info := activity.GetInfo(ctx); info.Attempt > 0 {
		attempt = int(info.Attempt)
	}
	now := time.Now().UTC()
	ok, err := a.Jobs.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: ctx}, id, []string{domainjobs.StatusCanceled}, map[string]interface{}{
		"status":       domainjobs.StatusRunning,
		"attempts":     attempt,
		"max_attempts": RetryMaximumAttempts,
		"locked_at":    now,
		"heartbeat_at": now,
	})
	if err != nil {
		return res, err
	}
	if !ok {
		res.Status = domainjobs.StatusCanceled
		return res, nil
	}
	job.Status = domainjobs.StatusRunning
	job.Attempts = attempt
	job.MaxAttempts = RetryMaximumAttempts

	stopHB := a.startHeartbeat(ctx, id)
	defer stopHB()

	start := time.Now()
	jc := jobrt.NewContext(ctx, job, a.Jobs, a.OnDead, jobrt.Backoff{Base: RetryInitialInterval, Max: RetryMaximumInterval}, a.Log)
	runErr := a.run(jc)
	res.Status, res.Stage = job.Status, job.Stage
	if runErr == nil {
		observability.Current().ObserveActivity(ActivityRun, job.JobType, "succeeded", time.Since(start))
		return res, nil
	}

	retried := jc.Fail("run", runErr)
	res.Status, res.Stage = job.Status, job.Stage
	if retried {
		observability.Current().ObserveActivity(ActivityRun, job.JobType, "failed", time.Since(start))
		return res, temporal.NewApplicationErrorWithCause(runErr.Error(), "retryable", runErr)
	}
	observability.Current().ObserveActivity(ActivityRun, job.JobType, "dead", time.Since(start))
	return res, temporal.NewNonRetryableApplicationError(runErr.Error(), errType(runErr), runErr)
}

func (a *Activities) run(jc *jobrt.Context) (err error) {
	h, ok := a.Registry.Get(jc.Job.JobType)
	if !ok {
		return jobrt.Permanent(fmt.Errorf("no handler registered for job_type=%s", jc.Job.JobType))
	}
	defer func() {
		if r := recover(); r != nil {
			if a.Log != nil {
				a.Log.Error("Job handler panic", "job_id", jc.Job.ID, "job_type", jc.Job.JobType, "panic", r)
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Run(jc)
}

func (a *Activities) startHeartbeat(ctx context.Context, jobID uuid.UUID) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				activity.RecordHeartbeat(ctx)
				_ = a.Jobs.Heartbeat(dbctx.Context{Ctx: ctx}, jobID)
			}
		}
	}()
	return func() { close(done) }
}

func errType(err error) string {
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	if jobrt.IsPermanent(err) {
		return ErrTypePermanent
	}
	return "retryable"
}

func isTerminal(status string) bool {
	for _, s := range domainjobs.TerminalStatuses {
		if status == s {
			return true
		}
	}
	return false
}
