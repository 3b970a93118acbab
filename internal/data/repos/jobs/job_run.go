package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type JobRunRepo interface {
	Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error)
	FindByDedupeKey(dbc dbctx.Context, jobType, dedupeKey string, statuses []string) (*types.JobRun, error)
	ClaimNextRunnable(dbc dbctx.Context, staleRunning time.Duration) (*types.JobRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowedStatuses []string, updates map[string]interface{}) (bool, error)
	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	RequeueStale(dbc dbctx.Context, staleRunning time.Duration) (int64, error)
	PurgeFinished(dbc dbctx.Context, finishedBefore time.Time) (int64, error)
	CountByStatus(dbc dbctx.Context) (map[string]int64, error)
}

type jobRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return &jobRunRepo{
		db:  db,
		log: baseLog.With("repo", "JobRunRepo"),
	}
}

// stamped copies updates and sets updated_at unless the caller already did.
func stamped(updates map[string]interface{}, now time.Time) map[string]interface{} {
	out := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		out[k] = v
	}
	if _, ok := out["updated_at"]; !ok {
		out["updated_at"] = now
	}
	return out
}

const runnableClause = `(status = ? AND (next_run_at IS NULL OR next_run_at <= ?))` +
	` OR (status = ? AND attempts < max_attempts AND (next_run_at IS NULL OR next_run_at <= ?))` +
	` OR (status = ? AND heartbeat_at IS NOT NULL AND heartbeat_at < ?)`

// runnableAt matches queued rows that are due, failed rows with attempts left
// whose backoff elapsed, and running rows whose heartbeat went stale.
func runnableAt(now, staleCutoff time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(runnableClause,
			domainjobs.StatusQueued, now,
			domainjobs.StatusFailed, now,
			domainjobs.StatusRunning, staleCutoff)
	}
}

func (r *jobRunRepo) Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	if len(jobs) == 0 {
		return []*types.JobRun{}, nil
	}
	if err := dbc.DB(r.db).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var job types.JobRun
	switch err := dbc.DB(r.db).Where("id = ?", id).Take(&job).Error; {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &job, nil
}

func (r *jobRunRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error) {
	var out []*types.JobRun
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindByDedupeKey returns the newest job sharing the key in one of statuses.
func (r *jobRunRepo) FindByDedupeKey(dbc dbctx.Context, jobType, dedupeKey string, statuses []string) (*types.JobRun, error) {
	if jobType == "" || dedupeKey == "" || len(statuses) == 0 {
		return nil, nil
	}
	var found []*types.JobRun
	err := dbc.DB(r.db).
		Where("job_type = ? AND dedupe_key = ? AND status IN ?", jobType, dedupeKey, statuses).
		Order("created_at DESC").
		Limit(1).
		Find(&found).Error
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// ClaimNextRunnable locks the oldest runnable row, skipping rows other workers
// hold, and flips it to running. The returned row reflects the claim.
func (r *jobRunRepo) ClaimNextRunnable(dbc dbctx.Context, staleRunning time.Duration) (*types.JobRun, error) {
	now := time.Now().UTC()
	var claimed *types.JobRun
	err := dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		var job types.JobRun
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Scopes(runnableAt(now, now.Add(-staleRunning))).
			Order("created_at ASC").
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&types.JobRun{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
			"status":       domainjobs.StatusRunning,
			"attempts":     gorm.Expr("attempts + 1"),
			"locked_at":    now,
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error; err != nil {
			return err
		}
		job.Status = domainjobs.StatusRunning
		job.Attempts++
		job.LockedAt, job.HeartbeatAt = &now, &now
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *jobRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Model(&types.JobRun{}).Where("id = ?", id).Updates(stamped(updates, time.Now().UTC())).Error
}

// UpdateFieldsUnlessStatus applies updates only while the row is in none of
// the given statuses, and reports whether it did.
func (r *jobRunRepo) UpdateFieldsUnlessStatus(dbc dbctx.Context, id uuid.UUID, disallowedStatuses []string, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	q := dbc.DB(r.db).Model(&types.JobRun{}).Where("id = ?", id)
	if len(disallowedStatuses) > 0 {
		q = q.Where("status NOT IN ?", disallowedStatuses)
	}
	res := q.Updates(stamped(updates, time.Now().UTC()))
	return res.RowsAffected > 0, res.Error
}

func (r *jobRunRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	return dbc.DB(r.db).Model(&types.JobRun{}).
		Where("id = ? AND status = ?", id, domainjobs.StatusRunning).
		Updates(map[string]interface{}{"heartbeat_at": now, "updated_at": now}).Error
}

// RequeueStale hands running jobs whose worker stopped heartbeating back to the
// retry path.
func (r *jobRunRepo) RequeueStale(dbc dbctx.Context, staleRunning time.Duration) (int64, error) {
	now := time.Now().UTC()
	res := dbc.DB(r.db).Model(&types.JobRun{}).
		Where("status = ? AND heartbeat_at IS NOT NULL AND heartbeat_at < ?", domainjobs.StatusRunning, now.Add(-staleRunning)).
		Updates(map[string]interface{}{
			"status":        domainjobs.StatusFailed,
			"stage":         "stale",
			"error":         "worker heartbeat expired",
			"last_error_at": now,
			"next_run_at":   now,
			"updated_at":    now,
		})
	return res.RowsAffected, res.Error
}

func (r *jobRunRepo) PurgeFinished(dbc dbctx.Context, finishedBefore time.Time) (int64, error) {
	res := dbc.DB(r.db).
		Where("status IN ? AND finished_at IS NOT NULL AND finished_at < ?", domainjobs.TerminalStatuses, finishedBefore.UTC()).
		Delete(&types.JobRun{})
	return res.RowsAffected, res.Error
}

func (r *jobRunRepo) CountByStatus(dbc dbctx.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	if err := dbc.DB(r.db).Model(&types.JobRun{}).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
