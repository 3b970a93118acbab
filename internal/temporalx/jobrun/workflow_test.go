package jobrun

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
)

type WorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
}

func (s *WorkflowSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func (s *WorkflowSuite) registerActivity(fn func(ctx context.Context, jobID string) (RunResult, error)) {
	s.env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: ActivityRun})
}

func (s *WorkflowSuite) TestRetriesTransientFailuresUntilSuccess() {
	calls := 0
	s.registerActivity(func(ctx context.Context, jobID string) (RunResult, error) {
		calls++
		if calls < 3 {
			return RunResult{}, temporal.NewApplicationError("deadlock detected", "retryable")
		}
		return RunResult{JobID: jobID, Status: "succeeded"}, nil
	})

	s.env.ExecuteWorkflow(WorkflowName, "job-1")
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
	var out RunResult
	s.NoError(s.env.GetWorkflowResult(&out))
	s.Equal("succeeded", out.Status)
	s.Equal(3, calls)
}

func (s *WorkflowSuite) TestStopsAfterMaximumAttempts() {
	calls := 0
	s.registerActivity(func(ctx context.Context, jobID string) (RunResult, error) {
		calls++
		return RunResult{}, temporal.NewApplicationError("still locked", "retryable")
	})

	s.env.ExecuteWorkflow(WorkflowName, "job-2")
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.Equal(RetryMaximumAttempts, calls)
}

func (s *WorkflowSuite) TestCourseFinishedIsNotRetried() {
	calls := 0
	s.registerActivity(func(ctx context.Context, jobID string) (RunResult, error) {
		calls++
		return RunResult{}, temporal.NewApplicationError("course has finished", "course_finished")
	})

	s.env.ExecuteWorkflow(WorkflowName, "job-3")
	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Error(err)
	var appErr *temporal.ApplicationError
	s.True(errors.As(err, &appErr))
	s.Equal("course_finished", appErr.Type())
	s.Equal(1, calls)
}

type fakeStarter struct {
	opts temporalsdkclient.StartWorkflowOptions
	args []interface{}
	err  error
}

func (f *fakeStarter) ExecuteWorkflow(_ context.Context, options temporalsdkclient.StartWorkflowOptions, _ interface{}, args ...interface{}) (temporalsdkclient.WorkflowRun, error) {
	f.opts = options
	f.args = args
	return nil, f.err
}

func TestDispatcherUsesJobIDAsWorkflowID(t *testing.T) {
	starter := &fakeStarter{}
	d := &Dispatcher{Client: starter, TaskQueue: "milestones"}
	job := &types.JobRun{ID: uuid.New()}

	require.NoError(t, d.Dispatch(context.Background(), job))
	assert.Equal(t, job.ID.String(), starter.opts.ID)
	assert.Equal(t, "milestones", starter.opts.TaskQueue)
	assert.Equal(t, []interface{}{job.ID.String()}, starter.args)

	starter.err = serviceerror.NewWorkflowExecutionAlreadyStarted("running", "req", "run")
	assert.NoError(t, d.Dispatch(context.Background(), job))

	starter.err = errors.New("frontend unavailable")
	assert.Error(t, d.Dispatch(context.Background(), job))
	assert.Error(t, (&Dispatcher{}).Dispatch(context.Background(), job))
}
