package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

func newJob(jobType, status string, created time.Time) *types.JobRun {
	return &types.JobRun{
		ID:          uuid.New(),
		JobType:     jobType,
		Status:      status,
		Stage:       status,
		MaxAttempts: 4,
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestJobRunRepoClaimOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewJobRunRepo(tx, testutil.Logger(t))

	now := time.Now().UTC()

	queued := newJob("test_job", domainjobs.StatusQueued, now.Add(-4*time.Hour))
	failed := newJob("test_job", domainjobs.StatusFailed, now.Add(-3*time.Hour))
	failed.Attempts = 1
	failed.NextRunAt = testutil.PtrTime(now.Add(-time.Minute))
	notDue := newJob("test_job", domainjobs.StatusFailed, now.Add(-150*time.Minute))
	notDue.Attempts = 1
	notDue.NextRunAt = testutil.PtrTime(now.Add(time.Hour))
	exhausted := newJob("test_job", domainjobs.StatusFailed, now.Add(-140*time.Minute))
	exhausted.Attempts = 4
	exhausted.NextRunAt = testutil.PtrTime(now.Add(-time.Minute))
	staleRunning := newJob("test_job", domainjobs.StatusRunning, now.Add(-2*time.Hour))
	staleRunning.Attempts = 1
	staleRunning.HeartbeatAt = testutil.PtrTime(now.Add(-10 * time.Hour))
	dead := newJob("test_job", domainjobs.StatusDead, now.Add(-time.Hour))

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, notDue, exhausted, staleRunning, dead})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 6 {
		t.Fatalf("Create: expected 6, got %d", len(created))
	}

	want := []uuid.UUID{queued.ID, failed.ID, staleRunning.ID}
	for i, id := range want {
		claim, err := repo.ClaimNextRunnable(dbc, time.Hour)
		if err != nil {
			t.Fatalf("ClaimNextRunnable #%d: %v", i+1, err)
		}
		if claim == nil || claim.ID != id {
			t.Fatalf("ClaimNextRunnable #%d: expected %v got %v", i+1, id, claim)
		}
		if claim.Status != domainjobs.StatusRunning {
			t.Fatalf("ClaimNextRunnable #%d: status=%s", i+1, claim.Status)
		}
	}
	if claim, err := repo.ClaimNextRunnable(dbc, time.Hour); err != nil || claim != nil {
		t.Fatalf("ClaimNextRunnable drained: err=%v claim=%v", err, claim)
	}

	stored, err := repo.GetByID(dbc, failed.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByID: err=%v row=%v", err, stored)
	}
	if stored.Attempts != 2 || stored.Status != domainjobs.StatusRunning {
		t.Fatalf("claimed row: attempts=%d status=%s", stored.Attempts, stored.Status)
	}
}

func TestJobRunRepoDedupeAndMaintenance(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewJobRunRepo(tx, testutil.Logger(t))

	now := time.Now().UTC()
	job := newJob("rescore", domainjobs.StatusQueued, now)
	job.DedupeKey = "c:u:a"
	if _, err := repo.Create(dbc, []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.FindByDedupeKey(dbc, "rescore", "c:u:a", domainjobs.PendingStatuses)
	if err != nil || found == nil || found.ID != job.ID {
		t.Fatalf("FindByDedupeKey: err=%v found=%v", err, found)
	}
	if other, err := repo.FindByDedupeKey(dbc, "remove", "c:u:a", domainjobs.PendingStatuses); err != nil || other != nil {
		t.Fatalf("FindByDedupeKey other type: err=%v found=%v", err, other)
	}

	if err := repo.UpdateFields(dbc, job.ID, map[string]interface{}{"status": domainjobs.StatusRunning}); err != nil {
		t.Fatalf("UpdateFields running: %v", err)
	}
	if found, err := repo.FindByDedupeKey(dbc, "rescore", "c:u:a", domainjobs.PendingStatuses); err != nil || found != nil {
		t.Fatalf("running job should not match pending statuses: err=%v found=%v", err, found)
	}
	if found, err := repo.FindByDedupeKey(dbc, "rescore", "c:u:a", domainjobs.RunnableStatuses); err != nil || found == nil {
		t.Fatalf("running job should match runnable statuses: err=%v found=%v", err, found)
	}

	ok, err := repo.UpdateFieldsUnlessStatus(dbc, job.ID, []string{domainjobs.StatusCanceled}, map[string]interface{}{
		"status":      domainjobs.StatusSucceeded,
		"finished_at": now.Add(-48 * time.Hour),
	})
	if err != nil || !ok {
		t.Fatalf("UpdateFieldsUnlessStatus: ok=%v err=%v", ok, err)
	}
	if found, err := repo.FindByDedupeKey(dbc, "rescore", "c:u:a", domainjobs.RunnableStatuses); err != nil || found != nil {
		t.Fatalf("finished job should not dedupe: err=%v found=%v", err, found)
	}

	stale := newJob("track", domainjobs.StatusRunning, now)
	stale.HeartbeatAt = testutil.PtrTime(now.Add(-2 * time.Hour))
	if _, err := repo.Create(dbc, []*types.JobRun{stale}); err != nil {
		t.Fatalf("Create stale: %v", err)
	}
	n, err := repo.RequeueStale(dbc, time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("RequeueStale: n=%d err=%v", n, err)
	}

	counts, err := repo.CountByStatus(dbc)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[domainjobs.StatusFailed] != 1 || counts[domainjobs.StatusSucceeded] != 1 {
		t.Fatalf("CountByStatus: %+v", counts)
	}

	purged, err := repo.PurgeFinished(dbc, now.Add(-24*time.Hour))
	if err != nil || purged != 1 {
		t.Fatalf("PurgeFinished: n=%d err=%v", purged, err)
	}
	if row, err := repo.GetByID(dbc, job.ID); err != nil || row != nil {
		t.Fatalf("purged row still present: err=%v row=%v", err, row)
	}
}

func TestStampedLeavesCallerMapAlone(t *testing.T) {
	now := time.Now().UTC()
	in := map[string]interface{}{"stage": "x"}
	out := stamped(in, now)
	if _, ok := in["updated_at"]; ok {
		t.Fatalf("caller map was mutated")
	}
	if out["updated_at"] != now || out["stage"] != "x" {
		t.Fatalf("stamped = %+v", out)
	}

	explicit := now.Add(-time.Hour)
	if got := stamped(map[string]interface{}{"updated_at": explicit}, now)["updated_at"]; got != explicit {
		t.Fatalf("explicit updated_at overwritten: %v", got)
	}
	if got := stamped(nil, now); len(got) != 1 {
		t.Fatalf("nil updates: %+v", got)
	}
}
