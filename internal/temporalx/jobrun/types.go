package jobrun

import "time"

const (
	WorkflowName = "milestone_task"
	ActivityRun  = "milestone_task_run"
)

// ErrTypePermanent tags activity failures that a retry cannot fix.
const ErrTypePermanent = "permanent"

// RetryPolicy values for the milestone task activity.
const (
	RetryInitialInterval    = time.Second
	RetryBackoffCoefficient = 2.0
	RetryMaximumInterval    = time.Minute
	RetryMaximumAttempts    = 4
)

// NonRetryableErrorTypes are the activity error types that end the workflow
// on first failure.
var NonRetryableErrorTypes = []string{ErrTypePermanent, "validation", "course_finished", "not_found"}

type RunResult struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Stage  string `json:"stage,omitempty"`
}
