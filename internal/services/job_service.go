package services

//go:generate mockgen -source=job_service.go -destination=../mocks/services/job_service.go -package=mock_services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	domainjobs "github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/platform/apierr"
	"github.com/yungbote/neurobridge-milestones/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

const DefaultMaxAttempts = 4

// JobDispatcher hands a committed job_run to an external executor.
// The database worker pool needs none; the Temporal backend starts a workflow.
type JobDispatcher interface {
	Dispatch(ctx context.Context, job *types.JobRun) error
}

type EnqueueRequest struct {
	JobType    string
	EntityType string
	EntityID   *uuid.UUID
	// DedupeKey, when set, returns the runnable job with the same type and key
	// instead of creating a new one.
	DedupeKey string
	Payload   any
}

type JobService interface {
	Enqueue(dbc dbctx.Context, req EnqueueRequest) (*types.JobRun, bool, error)
	Dispatch(dbc dbctx.Context, jobID uuid.UUID) error
	GetByID(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)
	// Retry puts a dead job back in the queue with a fresh attempt budget.
	// A nil job means jobID is unknown.
	Retry(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error)

	EnqueueTrack(dbc dbctx.Context, p domainjobs.TrackPayload) (*types.JobRun, error)
	EnqueueRemove(dbc dbctx.Context, p domainjobs.MaintenancePayload) (*types.JobRun, bool, error)
	EnqueueRescore(dbc dbctx.Context, p domainjobs.MaintenancePayload) (*types.JobRun, bool, error)
}

type jobService struct {
	db          *gorm.DB
	log         *logger.Logger
	repo        repos.JobRunRepo
	dispatcher  JobDispatcher
	maxAttempts int
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo repos.JobRunRepo, dispatcher JobDispatcher, maxAttempts int) JobService {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &jobService{
		db:          db,
		log:         baseLog.With("service", "JobService"),
		repo:        repo,
		dispatcher:  dispatcher,
		maxAttempts: maxAttempts,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, req EnqueueRequest) (*types.JobRun, bool, error) {
	if strings.TrimSpace(req.JobType) == "" {
		return nil, false, fmt.Errorf("missing job_type")
	}
	repoCtx := dbctx.Context{Ctx: ctxutil.Default(dbc.Ctx), Tx: dbc.Tx}
	if repoCtx.Tx == nil {
		repoCtx.Tx = s.db
	}

	if req.DedupeKey != "" {
		existing, err := s.repo.FindByDedupeKey(repoCtx, req.JobType, req.DedupeKey, domainjobs.PendingStatuses)
		if err != nil {
			return nil, false, fmt.Errorf("dedupe lookup: %w", err)
		}
		if existing != nil {
			s.log.Debug("Job already queued", "job_id", existing.ID, "job_type", req.JobType, "dedupe_key", req.DedupeKey)
			return existing, false, nil
		}
	}

	payloadJSON, err := encodePayload(dbc.Ctx, req.Payload)
	if err != nil {
		return nil, false, err
	}
	now := time.Now().UTC()
	job := &types.JobRun{
		ID:          uuid.New(),
		JobType:     req.JobType,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		DedupeKey:   req.DedupeKey,
		Status:      domainjobs.StatusQueued,
		Stage:       "queued",
		MaxAttempts: s.maxAttempts,
		NextRunAt:   &now,
		Payload:     payloadJSON,
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repo.Create(repoCtx, []*types.JobRun{job}); err != nil {
		return nil, false, fmt.Errorf("create job: %w", err)
	}

	// Inside a real transaction the caller dispatches after commit.
	if isDBTransaction(dbc.Tx) {
		s.log.Debug("Job enqueued inside transaction; awaiting dispatch after commit", "job_id", job.ID, "job_type", job.JobType)
		return job, true, nil
	}
	if err := s.Dispatch(dbctx.Context{Ctx: dbc.Ctx}, job.ID); err != nil {
		return job, true, err
	}
	return job, true, nil
}

// encodePayload marshals the payload and stamps trace/request ids from ctx.
func encodePayload(ctx context.Context, payload any) (datatypes.JSON, error) {
	fields := map[string]any{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("payload must be an object: %w", err)
		}
	}
	ctxutil.GetTraceData(ctx).Stamp(fields)
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return datatypes.JSON(b), nil
}

type txCommitter interface {
	Commit() error
	Rollback() error
}

// gorm.DB pointers are cloned by WithContext/Session, so pointer identity is
// not a transaction test.
func isDBTransaction(db *gorm.DB) bool {
	if db == nil || db.Statement == nil || db.Statement.ConnPool == nil {
		return false
	}
	_, ok := db.Statement.ConnPool.(txCommitter)
	return ok
}

func (s *jobService) Dispatch(dbc dbctx.Context, jobID uuid.UUID) error {
	if jobID == uuid.Nil {
		return fmt.Errorf("missing job id")
	}
	if s.dispatcher == nil {
		return nil
	}
	ctx := ctxutil.Default(dbc.Ctx)
	job, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}
	err = s.dispatcher.Dispatch(ctx, job)
	if err == nil {
		return nil
	}

	now := time.Now().UTC()
	// Best effort; the scheduler requeues rows stuck in failed.
	_ = s.repo.UpdateFields(dbctx.Context{Ctx: ctx}, jobID, map[string]interface{}{
		"status":        domainjobs.StatusFailed,
		"stage":         "dispatch",
		"error":         err.Error(),
		"last_error_at": now,
		"next_run_at":   now,
		"updated_at":    now,
	})
	s.log.Warn("Job dispatch failed", "job_id", jobID, "job_type", job.JobType, "error", err)
	return fmt.Errorf("dispatch job: %w", err)
}

func (s *jobService) GetByID(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("missing job id")
	}
	return s.repo.GetByID(dbc, jobID)
}

func (s *jobService) Retry(dbc dbctx.Context, jobID uuid.UUID) (*types.JobRun, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("missing job id")
	}
	ctx := ctxutil.Default(dbc.Ctx)
	repoCtx := dbctx.Context{Ctx: ctx, Tx: dbc.Tx}
	job, err := s.repo.GetByID(repoCtx, jobID)
	if err != nil || job == nil {
		return nil, err
	}
	if job.Status != domainjobs.StatusDead {
		return nil, apierr.New(http.StatusConflict, "job_not_retryable", fmt.Errorf("job %s is %s; only dead jobs can be retried", jobID, job.Status))
	}
	if job.DedupeKey != "" {
		other, err := s.repo.FindByDedupeKey(repoCtx, job.JobType, job.DedupeKey, domainjobs.RunnableStatuses)
		if err != nil {
			return nil, fmt.Errorf("dedupe lookup: %w", err)
		}
		if other != nil {
			s.log.Info("Retry superseded by runnable job", "job_id", jobID, "runnable_job_id", other.ID)
			return other, nil
		}
	}

	now := time.Now().UTC()
	notDead := []string{domainjobs.StatusQueued, domainjobs.StatusRunning, domainjobs.StatusFailed, domainjobs.StatusSucceeded, domainjobs.StatusCanceled}
	ok, err := s.repo.UpdateFieldsUnlessStatus(repoCtx, jobID, notDead, map[string]interface{}{
		"status":       domainjobs.StatusQueued,
		"stage":        "queued",
		"attempts":     0,
		"max_attempts": s.maxAttempts,
		"error":        "",
		"next_run_at":  now,
		"locked_at":    nil,
		"finished_at":  nil,
		"updated_at":   now,
	})
	if err != nil {
		return nil, fmt.Errorf("requeue job: %w", err)
	}
	if !ok {
		return nil, apierr.New(http.StatusConflict, "job_not_retryable", fmt.Errorf("job %s changed status concurrently", jobID))
	}
	s.log.Info("Dead job requeued", "job_id", jobID, "job_type", job.JobType)
	if !isDBTransaction(dbc.Tx) {
		if err := s.Dispatch(dbctx.Context{Ctx: ctx}, jobID); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(repoCtx, jobID)
}

func (s *jobService) EnqueueTrack(dbc dbctx.Context, p domainjobs.TrackPayload) (*types.JobRun, error) {
	if p.CourseID == uuid.Nil || p.StudentID == uuid.Nil || p.BlockID == uuid.Nil {
		return nil, fmt.Errorf("course_id, student_id and block_id are required")
	}
	blockID := p.BlockID
	job, _, err := s.Enqueue(dbc, EnqueueRequest{
		JobType:    domainjobs.TypeTrackMilestoneProgress,
		EntityType: "block",
		EntityID:   &blockID,
		Payload:    p,
	})
	return job, err
}

func (s *jobService) EnqueueRemove(dbc dbctx.Context, p domainjobs.MaintenancePayload) (*types.JobRun, bool, error) {
	return s.enqueueMaintenance(dbc, domainjobs.TypeRemoveAssessmentFromMilestoneProgress, p)
}

func (s *jobService) EnqueueRescore(dbc dbctx.Context, p domainjobs.MaintenancePayload) (*types.JobRun, bool, error) {
	return s.enqueueMaintenance(dbc, domainjobs.TypeRescoreAssessmentMilestoneProgress, p)
}

func (s *jobService) enqueueMaintenance(dbc dbctx.Context, jobType string, p domainjobs.MaintenancePayload) (*types.JobRun, bool, error) {
	if p.CourseID == uuid.Nil {
		return nil, false, fmt.Errorf("missing course_id")
	}
	courseID := p.CourseID
	return s.Enqueue(dbc, EnqueueRequest{
		JobType:    jobType,
		EntityType: "course",
		EntityID:   &courseID,
		DedupeKey:  p.DedupeKey(),
		Payload:    p,
	})
}
