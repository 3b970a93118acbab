package milestones

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type MilestoneRepo interface {
	Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Milestone, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Milestone, error)
	ListByCourseAndType(dbc dbctx.Context, courseID uuid.UUID, typ types.MilestoneType) ([]*types.Milestone, error)
	ListRequiredToPass(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Milestone, error)
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return &milestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

func (r *milestoneRepo) Create(dbc dbctx.Context, rows []*types.Milestone) ([]*types.Milestone, error) {
	if len(rows) == 0 {
		return []*types.Milestone{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *milestoneRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Milestone, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Milestone
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *milestoneRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Milestone, error) {
	var out []*types.Milestone
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Milestone, error) {
	var out []*types.Milestone
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneRepo) ListByCourseAndType(dbc dbctx.Context, courseID uuid.UUID, typ types.MilestoneType) ([]*types.Milestone, error) {
	var out []*types.Milestone
	if courseID == uuid.Nil || typ == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ? AND type = ?", courseID, typ).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneRepo) ListRequiredToPass(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Milestone, error) {
	var out []*types.Milestone
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ? AND required_to_pass = ?", courseID, true).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
