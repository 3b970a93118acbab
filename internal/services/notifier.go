package services

import (
	"context"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/realtime"
	"github.com/yungbote/neurobridge-milestones/internal/realtime/bus"
)

// JobNotifier is the task error handler: it receives every job that will not
// be retried again.
type JobNotifier interface {
	JobDead(ctx context.Context, job *types.JobRun, cause error)
}

type jobNotifier struct {
	log *logger.Logger
	bus bus.Bus
}

func NewJobNotifier(baseLog *logger.Logger, b bus.Bus) JobNotifier {
	return &jobNotifier{log: baseLog.With("service", "JobNotifier"), bus: b}
}

func (n *jobNotifier) JobDead(ctx context.Context, job *types.JobRun, cause error) {
	if n == nil || job == nil {
		return
	}
	errMsg := job.Error
	if cause != nil {
		errMsg = cause.Error()
	}
	n.log.Error("Job failed permanently",
		"job_id", job.ID,
		"job_type", job.JobType,
		"payload", string(job.Payload),
		"attempts", job.Attempts,
		"max_attempts", job.MaxAttempts,
		"error", errMsg,
	)
	if n.bus == nil {
		return
	}
	_ = n.bus.Publish(ctx, realtime.Message{
		Channel: "jobs",
		Event:   realtime.EventJobDead,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"attempts": job.Attempts,
			"error":    errMsg,
		},
	})
}
