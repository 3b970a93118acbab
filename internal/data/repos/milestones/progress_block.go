package milestones

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type MilestoneProgressBlockRepo interface {
	// Insert credits a block unless already credited and reports whether a row was written.
	Insert(dbc dbctx.Context, progressID, blockID uuid.UUID, score int) (bool, error)
	ListByProgressID(dbc dbctx.Context, progressID uuid.UUID) ([]*types.MilestoneProgressBlock, error)
	UpdateScore(dbc dbctx.Context, id uuid.UUID, score int) error
}

type milestoneProgressBlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneProgressBlockRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneProgressBlockRepo {
	return &milestoneProgressBlockRepo{db: db, log: baseLog.With("repo", "MilestoneProgressBlockRepo")}
}

func (r *milestoneProgressBlockRepo) Insert(dbc dbctx.Context, progressID, blockID uuid.UUID, score int) (bool, error) {
	if progressID == uuid.Nil || blockID == uuid.Nil {
		return false, fmt.Errorf("missing progress_id or block_id")
	}
	now := time.Now().UTC()
	row := &types.MilestoneProgressBlock{
		ID:                  uuid.New(),
		MilestoneProgressID: progressID,
		BlockID:             blockID,
		Score:               score,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "milestone_progress_id"}, {Name: "block_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *milestoneProgressBlockRepo) ListByProgressID(dbc dbctx.Context, progressID uuid.UUID) ([]*types.MilestoneProgressBlock, error) {
	var out []*types.MilestoneProgressBlock
	if progressID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("milestone_progress_id = ?", progressID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneProgressBlockRepo) UpdateScore(dbc dbctx.Context, id uuid.UUID, score int) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return dbc.DB(r.db).
		Model(&types.MilestoneProgressBlock{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":      score,
			"updated_at": time.Now().UTC(),
		}).Error
}
