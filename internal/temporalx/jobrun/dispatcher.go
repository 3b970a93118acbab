package jobrun

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
)

// Starter is the part of the Temporal client the dispatcher needs.
type Starter interface {
	ExecuteWorkflow(ctx context.Context, options temporalsdkclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (temporalsdkclient.WorkflowRun, error)
}

// Dispatcher starts one workflow per job_run, using the job id as workflow id
// so a repeated dispatch attaches to the running execution.
type Dispatcher struct {
	Client    Starter
	TaskQueue string
}

func (d *Dispatcher) Dispatch(ctx context.Context, job *types.JobRun) error {
	if d == nil || d.Client == nil {
		return fmt.Errorf("temporal dispatcher not configured")
	}
	if job == nil {
		return fmt.Errorf("nil job")
	}
	_, err := d.Client.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        job.ID.String(),
		TaskQueue: d.TaskQueue,
	}, WorkflowName, job.ID.String())
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}
	return err
}
