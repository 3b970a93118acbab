package courses

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type AssessmentRepo interface {
	Create(dbc dbctx.Context, assessments []*types.Assessment) ([]*types.Assessment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Assessment, error)
	GetByBlockID(dbc dbctx.Context, blockID uuid.UUID) (*types.Assessment, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID, gradedOnly bool) ([]*types.Assessment, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (r *assessmentRepo) Create(dbc dbctx.Context, assessments []*types.Assessment) ([]*types.Assessment, error) {
	if len(assessments) == 0 {
		return []*types.Assessment{}, nil
	}
	if err := dbc.DB(r.db).Create(&assessments).Error; err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Assessment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.takeWhere(dbc, "id = ?", id)
}

func (r *assessmentRepo) GetByBlockID(dbc dbctx.Context, blockID uuid.UUID) (*types.Assessment, error) {
	if blockID == uuid.Nil {
		return nil, nil
	}
	return r.takeWhere(dbc, "block_id = ?", blockID)
}

func (r *assessmentRepo) takeWhere(dbc dbctx.Context, where string, args ...interface{}) (*types.Assessment, error) {
	var out types.Assessment
	err := dbc.DB(r.db).Where(where, args...).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *assessmentRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID, gradedOnly bool) ([]*types.Assessment, error) {
	var out []*types.Assessment
	if courseID == uuid.Nil {
		return out, nil
	}
	db := dbc.DB(r.db)
	q := db.Where("block_id IN (?)", db.Model(&types.Block{}).Select("id").Where("course_id = ?", courseID))
	if gradedOnly {
		q = q.Where("graded = ?", true)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assessmentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Assessment{}).
		Where("id = ?", id).
		Updates(updates).Error
}
