package courses

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type BlockRepo interface {
	Create(dbc dbctx.Context, blocks []*types.Block) ([]*types.Block, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Block, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Block, error)
}

type blockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlockRepo(db *gorm.DB, baseLog *logger.Logger) BlockRepo {
	return &blockRepo{db: db, log: baseLog.With("repo", "BlockRepo")}
}

func (r *blockRepo) Create(dbc dbctx.Context, blocks []*types.Block) ([]*types.Block, error) {
	if len(blocks) == 0 {
		return []*types.Block{}, nil
	}
	if err := dbc.DB(r.db).Create(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *blockRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Block, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Block
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *blockRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.Block, error) {
	var out []*types.Block
	if courseID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
