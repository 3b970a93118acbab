package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

func job(status string, mutate func(*types.JobRun)) *types.JobRun {
	now := time.Now().UTC()
	j := &types.JobRun{
		ID:          uuid.New(),
		JobType:     domainjobs.TypeRescoreAssessmentMilestoneProgress,
		Status:      status,
		Stage:       status,
		Attempts:    1,
		MaxAttempts: 4,
		Payload:     datatypes.JSON([]byte(`{}`)),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if mutate != nil {
		mutate(j)
	}
	return j
}

func TestHousekeeping(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	repo := repos.NewJobRunRepo(tx, testutil.Logger(t))
	s, err := New(testutil.Logger(t), repo, Config{StaleRunning: time.Minute, Retention: 24 * time.Hour})
	require.NoError(t, err)

	now := time.Now().UTC()
	stale := job(domainjobs.StatusRunning, func(j *types.JobRun) { j.HeartbeatAt = testutil.PtrTime(now.Add(-time.Hour)) })
	fresh := job(domainjobs.StatusRunning, func(j *types.JobRun) { j.HeartbeatAt = testutil.PtrTime(now) })
	oldDone := job(domainjobs.StatusSucceeded, func(j *types.JobRun) { j.FinishedAt = testutil.PtrTime(now.Add(-48 * time.Hour)) })
	oldDead := job(domainjobs.StatusDead, func(j *types.JobRun) { j.FinishedAt = testutil.PtrTime(now.Add(-72 * time.Hour)) })
	recentDone := job(domainjobs.StatusSucceeded, func(j *types.JobRun) { j.FinishedAt = testutil.PtrTime(now.Add(-time.Hour)) })
	_, err = repo.Create(dbctx.Context{Ctx: ctx}, []*types.JobRun{stale, fresh, oldDone, oldDead, recentDone})
	require.NoError(t, err)

	n, err := s.RequeueStale(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	got, err := repo.GetByID(dbctx.Context{Ctx: ctx}, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domainjobs.StatusFailed, got.Status)
	assert.Equal(t, "stale", got.Stage)

	n, err = s.PurgeFinished(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	gone, err := repo.GetByID(dbctx.Context{Ctx: ctx}, oldDead.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	counts, err := repo.CountByStatus(dbctx.Context{Ctx: ctx})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		domainjobs.StatusFailed:    1,
		domainjobs.StatusRunning:   1,
		domainjobs.StatusSucceeded: 1,
	}, counts)
	require.NoError(t, s.PublishQueueDepth(ctx))
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(testutil.Logger(t), nil, Config{RequeueSpec: "not a cron spec"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requeue_stale")
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := New(testutil.Logger(t), nil, DefaultConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
