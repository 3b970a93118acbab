package courses

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type SimpleInteractiveToolRepo interface {
	CreateTools(dbc dbctx.Context, tools []*types.SimpleInteractiveTool) ([]*types.SimpleInteractiveTool, error)
	GetToolByBlockID(dbc dbctx.Context, blockID uuid.UUID) (*types.SimpleInteractiveTool, error)
	CreateSubmissions(dbc dbctx.Context, subs []*types.SimpleInteractiveToolSubmission) ([]*types.SimpleInteractiveToolSubmission, error)
	// GetSubmissionByID returns the submission with its Tool preloaded, or nil when absent.
	GetSubmissionByID(dbc dbctx.Context, id uuid.UUID) (*types.SimpleInteractiveToolSubmission, error)
}

type simpleInteractiveToolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSimpleInteractiveToolRepo(db *gorm.DB, baseLog *logger.Logger) SimpleInteractiveToolRepo {
	return &simpleInteractiveToolRepo{db: db, log: baseLog.With("repo", "SimpleInteractiveToolRepo")}
}

func (r *simpleInteractiveToolRepo) CreateTools(dbc dbctx.Context, tools []*types.SimpleInteractiveTool) ([]*types.SimpleInteractiveTool, error) {
	if len(tools) == 0 {
		return []*types.SimpleInteractiveTool{}, nil
	}
	if err := dbc.DB(r.db).Create(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}

func (r *simpleInteractiveToolRepo) GetToolByBlockID(dbc dbctx.Context, blockID uuid.UUID) (*types.SimpleInteractiveTool, error) {
	if blockID == uuid.Nil {
		return nil, nil
	}
	var out types.SimpleInteractiveTool
	err := dbc.DB(r.db).Where("block_id = ?", blockID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *simpleInteractiveToolRepo) CreateSubmissions(dbc dbctx.Context, subs []*types.SimpleInteractiveToolSubmission) ([]*types.SimpleInteractiveToolSubmission, error) {
	if len(subs) == 0 {
		return []*types.SimpleInteractiveToolSubmission{}, nil
	}
	if err := dbc.DB(r.db).Omit("Tool").Create(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *simpleInteractiveToolRepo) GetSubmissionByID(dbc dbctx.Context, id uuid.UUID) (*types.SimpleInteractiveToolSubmission, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.SimpleInteractiveToolSubmission
	err := dbc.DB(r.db).
		Preload("Tool").
		Where("id = ?", id).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
