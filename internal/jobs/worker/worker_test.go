package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/jobs/runtime"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/services"
)

type stubHandler struct {
	jobType string
	calls   int
	run     func(*runtime.Context) error
}

func (h *stubHandler) Type() string { return h.jobType }
func (h *stubHandler) Run(jc *runtime.Context) error {
	h.calls++
	return h.run(jc)
}

type deadLog struct{ jobs []*types.JobRun }

func (d *deadLog) JobDead(_ context.Context, job *types.JobRun, _ error) { d.jobs = append(d.jobs, job) }

type fixture struct {
	ctx    context.Context
	repo   repos.JobRunRepo
	jobs   services.JobService
	dead   *deadLog
	worker *Worker
}

func newFixture(t *testing.T, handlers ...runtime.Handler) *fixture {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	repo := repos.NewJobRunRepo(tx, log)
	reg := runtime.NewRegistry()
	for _, h := range handlers {
		require.NoError(t, reg.Register(h))
	}
	dead := &deadLog{}
	return &fixture{
		ctx:  context.Background(),
		repo: repo,
		jobs: services.NewJobService(tx, log, repo, nil, 0),
		dead: dead,
		worker: NewWorker(log, repo, reg, dead, Config{
			Concurrency: 1,
			Backoff:     runtime.Backoff{Base: time.Millisecond, Max: 10 * time.Millisecond},
		}),
	}
}

func (f *fixture) enqueue(t *testing.T, jobType string) *types.JobRun {
	t.Helper()
	job, _, err := f.jobs.Enqueue(dbctx.Context{Ctx: f.ctx}, services.EnqueueRequest{JobType: jobType, Payload: map[string]any{"n": 1}})
	require.NoError(t, err)
	return job
}

func (f *fixture) reload(t *testing.T, job *types.JobRun) *types.JobRun {
	t.Helper()
	got, err := f.repo.GetByID(dbctx.Context{Ctx: f.ctx}, job.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	return got
}

func TestProcessNextRunsHandler(t *testing.T) {
	h := &stubHandler{jobType: "ping", run: func(jc *runtime.Context) error {
		jc.Succeed("done", map[string]int{"rows": 1})
		return nil
	}}
	f := newFixture(t, h)

	ran, err := f.worker.ProcessNext(f.ctx)
	require.NoError(t, err)
	assert.False(t, ran, "empty queue")

	job := f.enqueue(t, "ping")
	ran, err = f.worker.ProcessNext(f.ctx)
	require.NoError(t, err)
	require.True(t, ran)
	assert.Equal(t, 1, h.calls)

	got := f.reload(t, job)
	assert.Equal(t, domainjobs.StatusSucceeded, got.Status)
	assert.Equal(t, 1, got.Attempts)
}

func TestRetriesStopAfterMaxAttempts(t *testing.T) {
	h := &stubHandler{jobType: "flaky", run: func(*runtime.Context) error {
		return errors.New("could not serialize access")
	}}
	f := newFixture(t, h)
	job := f.enqueue(t, "flaky")

	for i := 0; i < 10; i++ {
		ran, err := f.worker.ProcessNext(f.ctx)
		require.NoError(t, err)
		if !ran {
			got := f.reload(t, job)
			if got.Status == domainjobs.StatusDead {
				break
			}
			time.Sleep(15 * time.Millisecond)
		}
	}

	got := f.reload(t, job)
	assert.Equal(t, domainjobs.StatusDead, got.Status)
	// One initial attempt plus three retries.
	assert.Equal(t, services.DefaultMaxAttempts, got.Attempts)
	assert.Equal(t, services.DefaultMaxAttempts, h.calls)
	require.Len(t, f.dead.jobs, 1)
	assert.Equal(t, job.ID, f.dead.jobs[0].ID)
}

func TestPermanentFailureGoesStraightToDead(t *testing.T) {
	h := &stubHandler{jobType: "finished", run: func(*runtime.Context) error {
		return runtime.Permanent(errors.New("course has finished"))
	}}
	f := newFixture(t, h)
	job := f.enqueue(t, "finished")

	ran, err := f.worker.ProcessNext(f.ctx)
	require.NoError(t, err)
	require.True(t, ran)

	assert.Equal(t, domainjobs.StatusDead, f.reload(t, job).Status)
	assert.Len(t, f.dead.jobs, 1)
	assert.Equal(t, 1, h.calls)
}

func TestPanicsAndUnknownTypesAreRecorded(t *testing.T) {
	h := &stubHandler{jobType: "boom", run: func(*runtime.Context) error { panic("nil map") }}
	f := newFixture(t, h)

	boom := f.enqueue(t, "boom")
	ran, err := f.worker.ProcessNext(f.ctx)
	require.NoError(t, err)
	require.True(t, ran)
	got := f.reload(t, boom)
	assert.Equal(t, domainjobs.StatusFailed, got.Status)
	assert.Contains(t, got.Error, "panic: nil map")

	unknown := f.enqueue(t, "nobody_handles_this")
	require.NoError(t, f.repo.UpdateFields(dbctx.Context{Ctx: f.ctx}, boom.ID, map[string]interface{}{"status": domainjobs.StatusCanceled}))
	ran, err = f.worker.ProcessNext(f.ctx)
	require.NoError(t, err)
	require.True(t, ran)
	got = f.reload(t, unknown)
	assert.Equal(t, domainjobs.StatusDead, got.Status)
	assert.Contains(t, got.Error, "no handler registered")
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(f.ctx)
	done := make(chan error, 1)
	go func() { done <- f.worker.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestMissingHandlerError(t *testing.T) {
	assert.True(t, IsMissingHandler(runtime.Permanent(&missingHandlerError{JobType: "x"})))
	assert.False(t, IsMissingHandler(errors.New("x")))
}
