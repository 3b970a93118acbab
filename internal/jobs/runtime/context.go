package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

/*
Context is the execution handle for one claimed job_run.
Handlers read their input through DecodePayload and finish through Succeed.
Any error a handler returns goes through Fail, which owns the retry policy:
	- permanent errors and exhausted attempts mark the row dead and reach the
	  error handler,
	- everything else marks the row failed with next_run_at pushed out by the
	  exponential backoff.
Handlers never update job_run directly.
*/
type Context struct {
	Ctx     context.Context
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	OnDead  services.JobNotifier
	Backoff Backoff
	Log     *logger.Logger
	now     func() time.Time
}

func NewContext(ctx context.Context, job *types.JobRun, repo repos.JobRunRepo, onDead services.JobNotifier, backoff Backoff, log *logger.Logger) *Context {
	c := &Context{
		Ctx:     ctxutil.Default(ctx),
		Job:     job,
		Repo:    repo,
		OnDead:  onDead,
		Backoff: backoff,
		Log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
	c.applyTraceData()
	return c
}

// applyTraceData restores the trace/request ids stamped at enqueue time.
func (c *Context) applyTraceData() {
	if c.Job == nil {
		return
	}
	if td := ctxutil.TraceDataFromPayload(c.Job.Payload); td != nil {
		c.Ctx = ctxutil.WithTraceData(c.Ctx, td)
		if c.Log != nil {
			c.Log = c.Log.With(ctxutil.LogFields(c.Ctx)...)
		}
	}
}

// DecodePayload unmarshals the job payload into dst. A malformed payload can
// never succeed, so the error is permanent.
func (c *Context) DecodePayload(dst any) error {
	if c.Job == nil {
		return Permanent(fmt.Errorf("no job bound to context"))
	}
	raw := []byte(c.Job.Payload)
	if len(raw) == 0 {
		raw = []byte(`{}`)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return Permanent(fmt.Errorf("decode %s payload: %w", c.Job.JobType, err))
	}
	return nil
}

func (c *Context) Heartbeat() {
	if c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	if err := c.Repo.Heartbeat(dbctx.Context{Ctx: c.Ctx}, c.Job.ID); err != nil && c.Log != nil {
		c.Log.Warn("job heartbeat failed", "job_id", c.Job.ID, "error", err)
	}
}

// Succeed marks the job succeeded and stores result as JSON. A canceled row is
// left untouched.
func (c *Context) Succeed(stage string, result any) {
	if c == nil || c.Job == nil {
		return
	}
	now := c.now()
	res := datatypes.JSON([]byte(`{}`))
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			res = datatypes.JSON(b)
		}
	}
	if !c.update(map[string]interface{}{
		"status":       domainjobs.StatusSucceeded,
		"stage":        stage,
		"progress":     100,
		"error":        "",
		"result":       res,
		"locked_at":    nil,
		"heartbeat_at": now,
		"finished_at":  now,
		"updated_at":   now,
	}) {
		return
	}
	c.Job.Status = domainjobs.StatusSucceeded
	c.Job.Stage = stage
	c.Job.Progress = 100
	c.Job.Error = ""
	c.Job.Result = res
	c.Job.LockedAt = nil
	c.Job.FinishedAt = &now
	c.Job.UpdatedAt = now
}

// Fail records err against the job and reports whether it will be retried.
func (c *Context) Fail(stage string, err error) bool {
	if c == nil || c.Job == nil {
		return false
	}
	now := c.now()
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	retry := err != nil && !IsPermanent(err) && !c.Job.RetriesExhausted()
	updates := map[string]interface{}{
		"stage":         stage,
		"error":         msg,
		"last_error_at": now,
		"locked_at":     nil,
		"updated_at":    now,
	}
	var next time.Time
	if retry {
		next = now.Add(c.Backoff.Delay(c.Job.Attempts))
		updates["status"] = domainjobs.StatusFailed
		updates["next_run_at"] = next
	} else {
		updates["status"] = domainjobs.StatusDead
		updates["finished_at"] = now
	}
	if !c.update(updates) {
		return false
	}

	c.Job.Stage = stage
	c.Job.Error = msg
	c.Job.LastErrorAt = &now
	c.Job.LockedAt = nil
	c.Job.UpdatedAt = now
	if retry {
		c.Job.Status = domainjobs.StatusFailed
		c.Job.NextRunAt = &next
		if c.Log != nil {
			c.Log.Warn("job failed; retry scheduled",
				"job_id", c.Job.ID,
				"job_type", c.Job.JobType,
				"attempt", c.Job.Attempts,
				"max_attempts", c.Job.MaxAttempts,
				"next_run_at", next,
				"error", msg,
			)
		}
		return true
	}

	c.Job.Status = domainjobs.StatusDead
	c.Job.FinishedAt = &now
	if c.OnDead != nil {
		c.OnDead.JobDead(c.Ctx, c.Job, err)
	}
	return false
}

func (c *Context) update(updates map[string]interface{}) bool {
	if c.Repo == nil || c.Job.ID == uuid.Nil {
		return true
	}
	ok, err := c.Repo.UpdateFieldsUnlessStatus(dbctx.Context{Ctx: c.Ctx}, c.Job.ID, []string{domainjobs.StatusCanceled}, updates)
	if err != nil {
		if c.Log != nil {
			c.Log.Error("job status update failed", "job_id", c.Job.ID, "error", err)
		}
		return false
	}
	return ok
}
