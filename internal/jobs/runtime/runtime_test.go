package runtime

import (
	"context"
	"errors"
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
	"github.com/yungbote/neurobridge-milestones/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

type deadRecorder struct {
	jobs   []*types.JobRun
	causes []error
}

func (d *deadRecorder) JobDead(_ context.Context, job *types.JobRun, cause error) {
	d.jobs = append(d.jobs, job)
	d.causes = append(d.causes, cause)
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{40, 10 * time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, b.Delay(tc.attempt), "attempt %d", tc.attempt)
	}
	assert.Equal(t, DefaultBackoffBase, Backoff{}.Delay(1))
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))
	base := errors.New("bad payload")
	p := Permanent(base)
	assert.True(t, IsPermanent(p))
	assert.ErrorIs(t, p, base)
	assert.Same(t, p, Permanent(p))
	assert.False(t, IsPermanent(base))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register(nil))
	require.NoError(t, r.Register(handlerFunc{typ: "b"}))
	require.NoError(t, r.Register(handlerFunc{typ: "a"}))
	require.Error(t, r.Register(handlerFunc{typ: "a"}))
	require.Error(t, r.Register(handlerFunc{}))

	err := r.Register(handlerFunc{typ: "c"}, nil, handlerFunc{typ: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil handler")
	assert.Contains(t, err.Error(), "job type b already has a handler")
	require.NoError(t, r.Require("a", "c"))
	assert.EqualError(t, r.Require("a", "x", "y"), "no handler for job types: x, y")

	_, ok := r.Get("a")
	assert.True(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, r.Types())
}

type handlerFunc struct {
	typ string
	fn  func(*Context) error
}

func (h handlerFunc) Type() string { return h.typ }
func (h handlerFunc) Run(c *Context) error {
	if h.fn == nil {
		return nil
	}
	return h.fn(c)
}

func seedRunningJob(t *testing.T, repo repos.JobRunRepo, attempts int, payload string) *types.JobRun {
	t.Helper()
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		JobType:     domainjobs.TypeTrackMilestoneProgress,
		Status:      domainjobs.StatusRunning,
		Stage:       "running",
		Attempts:    attempts,
		MaxAttempts: 4,
		Payload:     datatypes.JSON([]byte(payload)),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := repo.Create(dbctx.Background(), []*types.JobRun{job})
	require.NoError(t, err)
	return job
}

func newTestContext(t *testing.T, attempts int, payload string) (*Context, repos.JobRunRepo, *deadRecorder) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	repo := repos.NewJobRunRepo(tx, log)
	job := seedRunningJob(t, repo, attempts, payload)
	dead := &deadRecorder{}
	return NewContext(context.Background(), job, repo, dead, Backoff{Base: time.Second, Max: time.Minute}, log), repo, dead
}

func TestContextRestoresTraceData(t *testing.T) {
	jc, _, _ := newTestContext(t, 1, `{"course_id":"x","trace_id":"t-1","request_id":"r-1"}`)
	td := ctxutil.GetTraceData(jc.Ctx)
	require.NotNil(t, td)
	assert.Equal(t, "t-1", td.TraceID)
	assert.Equal(t, "r-1", td.RequestID)

	var p struct {
		CourseID string `json:"course_id"`
	}
	require.NoError(t, jc.DecodePayload(&p))
	assert.Equal(t, "x", p.CourseID)
}

func TestDecodePayloadIsPermanentOnMalformedInput(t *testing.T) {
	jc, _, _ := newTestContext(t, 1, `{}`)
	jc.Job.Payload = datatypes.JSON([]byte(`[1,2]`))
	var p struct{ A string }
	err := jc.DecodePayload(&p)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestFailSchedulesRetryWithBackoff(t *testing.T) {
	jc, repo, dead := newTestContext(t, 2, `{}`)
	before := time.Now().UTC()

	retried := jc.Fail("run", errors.New("deadlock detected"))
	require.True(t, retried)
	assert.Empty(t, dead.jobs)

	got, err := repo.GetByID(dbctx.Background(), jc.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, domainjobs.StatusFailed, got.Status)
	assert.Equal(t, "deadlock detected", got.Error)
	require.NotNil(t, got.NextRunAt)
	// Attempt 2 waits Base*2.
	assert.WithinDuration(t, before.Add(2*time.Second), *got.NextRunAt, time.Second)
	assert.Nil(t, got.FinishedAt)
}

func TestFailMarksDeadWhenAttemptsExhausted(t *testing.T) {
	jc, repo, dead := newTestContext(t, 4, `{}`)
	cause := errors.New("still locked")

	require.False(t, jc.Fail("run", cause))
	require.Len(t, dead.jobs, 1)
	assert.Equal(t, jc.Job.ID, dead.jobs[0].ID)
	assert.Equal(t, cause, dead.causes[0])

	got, err := repo.GetByID(dbctx.Background(), jc.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, domainjobs.StatusDead, got.Status)
	assert.NotNil(t, got.FinishedAt)
}

func TestFailMarksDeadOnPermanentError(t *testing.T) {
	jc, repo, dead := newTestContext(t, 1, `{}`)

	require.False(t, jc.Fail("run", Permanent(errors.New("course has finished"))))
	assert.Len(t, dead.jobs, 1)

	got, err := repo.GetByID(dbctx.Background(), jc.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, domainjobs.StatusDead, got.Status)
}

func TestSucceedStoresResult(t *testing.T) {
	jc, repo, _ := newTestContext(t, 1, `{}`)
	jc.Succeed("done", map[string]any{"rows": 3})

	got, err := repo.GetByID(dbctx.Background(), jc.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, domainjobs.StatusSucceeded, got.Status)
	assert.JSONEq(t, `{"rows":3}`, string(got.Result))
	assert.Equal(t, 100, got.Progress)
}

func TestCanceledJobIsNotOverwritten(t *testing.T) {
	jc, repo, dead := newTestContext(t, 1, `{}`)
	require.NoError(t, repo.UpdateFields(dbctx.Background(), jc.Job.ID, map[string]interface{}{"status": domainjobs.StatusCanceled}))
	jc.Succeed("done", nil)
	assert.False(t, jc.Fail("run", Permanent(errors.New("x"))))
	assert.Empty(t, dead.jobs)

	got, err := repo.GetByID(dbctx.Background(), jc.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, domainjobs.StatusCanceled, got.Status)
}
