package temporalworker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/mocks"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	jobrt "github.com/yungbote/neurobridge-milestones/internal/jobs/runtime"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/temporalx"
)

func TestNewRunnerValidatesDeps(t *testing.T) {
	log := logger.NewNop()
	jobs := repos.NewJobRunRepo(nil, log)
	reg := jobrt.NewRegistry()
	cfg := temporalx.Config{Address: "temporal:7233"}

	_, err := NewRunner(log, cfg, nil, jobs, reg, nil)
	assert.ErrorContains(t, err, "temporal client")

	_, err = NewRunner(log, cfg, new(mocks.Client), nil, reg, nil)
	assert.Error(t, err)

	r, err := NewRunner(log, cfg, new(mocks.Client), jobs, reg, nil)
	require.NoError(t, err)
	assert.Equal(t, "milestones", r.cfg.TaskQueue)
	assert.Equal(t, 4, r.cfg.WorkerConcurrency)
}

func TestRunReturnsOnCanceledContext(t *testing.T) {
	log := logger.NewNop()
	r, err := NewRunner(log, temporalx.Config{Address: "temporal:7233"}, new(mocks.Client), repos.NewJobRunRepo(nil, log), jobrt.NewRegistry(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.Run(ctx))
}
