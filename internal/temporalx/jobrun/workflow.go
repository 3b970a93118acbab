package jobrun

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow runs one job_run through the milestone task activity. Retries
// live in the activity RetryPolicy; the job_run row mirrors each attempt.
func Workflow(ctx workflow.Context, jobID string) (RunResult, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		jobID = strings.TrimSpace(workflow.GetInfo(ctx).WorkflowExecution.ID)
	}
	if jobID == "" {
		return RunResult{}, fmt.Errorf("jobrun: missing job_id")
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        RetryInitialInterval,
			BackoffCoefficient:     RetryBackoffCoefficient,
			MaximumInterval:        RetryMaximumInterval,
			MaximumAttempts:        RetryMaximumAttempts,
			NonRetryableErrorTypes: NonRetryableErrorTypes,
		},
	})

	var out RunResult
	if err := workflow.ExecuteActivity(ctx, ActivityRun, jobID).Get(ctx, &out); err != nil {
		workflow.GetLogger(ctx).Error("milestone task failed permanently", "job_id", jobID, "error", err)
		return out, err
	}
	return out, nil
}
