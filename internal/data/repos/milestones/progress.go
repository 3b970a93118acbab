package milestones

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

// ProgressFilter selects progress rows for bulk maintenance.
// Zero-valued optional fields do not filter.
type ProgressFilter struct {
	CourseID      uuid.UUID
	StudentID     *uuid.UUID
	MilestoneType types.MilestoneType
	// CreditsBlockID keeps only rows whose credited set contains the block.
	CreditsBlockID *uuid.UUID
}

type ProgressKey struct {
	CourseID    uuid.UUID
	MilestoneID uuid.UUID
	StudentID   uuid.UUID
}

type MilestoneProgressRepo interface {
	// EnsureExists inserts a zero row for key unless one is present.
	EnsureExists(dbc dbctx.Context, key ProgressKey) (bool, error)
	GetByKey(dbc dbctx.Context, key ProgressKey) (*types.MilestoneProgress, error)
	LockByKey(dbc dbctx.Context, key ProgressKey) (*types.MilestoneProgress, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.MilestoneProgress, error)
	ListByCourseStudent(dbc dbctx.Context, courseID, studentID uuid.UUID) ([]*types.MilestoneProgress, error)
	ListIDs(dbc dbctx.Context, f ProgressFilter) ([]uuid.UUID, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// BulkRemoveBlock decrements count and subtracts the stored block score on
	// every row matching f that credits blockID. It returns the rows updated.
	BulkRemoveBlock(dbc dbctx.Context, f ProgressFilter, blockID uuid.UUID) (int64, error)
	DeleteMatching(dbc dbctx.Context, f ProgressFilter) (int64, error)
	CountAchieved(dbc dbctx.Context, courseID, studentID uuid.UUID, milestoneIDs []uuid.UUID) (int64, error)
}

type milestoneProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneProgressRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneProgressRepo {
	return &milestoneProgressRepo{db: db, log: baseLog.With("repo", "MilestoneProgressRepo")}
}

func (k ProgressKey) valid() bool {
	return k.CourseID != uuid.Nil && k.MilestoneID != uuid.Nil && k.StudentID != uuid.Nil
}

func (r *milestoneProgressRepo) EnsureExists(dbc dbctx.Context, key ProgressKey) (bool, error) {
	if !key.valid() {
		return false, fmt.Errorf("missing progress key")
	}
	now := time.Now().UTC()
	row := &types.MilestoneProgress{
		ID:          uuid.New(),
		CourseID:    key.CourseID,
		MilestoneID: key.MilestoneID,
		StudentID:   key.StudentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res := dbc.DB(r.db).
		Omit("Milestone", "Blocks").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "milestone_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *milestoneProgressRepo) GetByKey(dbc dbctx.Context, key ProgressKey) (*types.MilestoneProgress, error) {
	if !key.valid() {
		return nil, nil
	}
	var out types.MilestoneProgress
	err := dbc.DB(r.db).
		Where("course_id = ? AND milestone_id = ? AND student_id = ?", key.CourseID, key.MilestoneID, key.StudentID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *milestoneProgressRepo) LockByKey(dbc dbctx.Context, key ProgressKey) (*types.MilestoneProgress, error) {
	if !key.valid() {
		return nil, fmt.Errorf("missing progress key")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByKey requires dbc.Tx")
	}
	var out types.MilestoneProgress
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("course_id = ? AND milestone_id = ? AND student_id = ?", key.CourseID, key.MilestoneID, key.StudentID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *milestoneProgressRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.MilestoneProgress, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.MilestoneProgress
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *milestoneProgressRepo) ListByCourseStudent(dbc dbctx.Context, courseID, studentID uuid.UUID) ([]*types.MilestoneProgress, error) {
	var out []*types.MilestoneProgress
	if courseID == uuid.Nil || studentID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneProgressRepo) filtered(dbc dbctx.Context, f ProgressFilter) *gorm.DB {
	base := dbc.DB(r.db)
	q := base.Model(&types.MilestoneProgress{}).Where("course_id = ?", f.CourseID)
	if f.StudentID != nil && *f.StudentID != uuid.Nil {
		q = q.Where("student_id = ?", *f.StudentID)
	}
	if f.MilestoneType != "" {
		q = q.Where("milestone_id IN (?)",
			base.Session(&gorm.Session{NewDB: true}).Model(&types.Milestone{}).Select("id").
				Where("course_id = ? AND type = ?", f.CourseID, f.MilestoneType))
	}
	if f.CreditsBlockID != nil && *f.CreditsBlockID != uuid.Nil {
		q = q.Where("id IN (?)",
			base.Session(&gorm.Session{NewDB: true}).Model(&types.MilestoneProgressBlock{}).Select("milestone_progress_id").
				Where("block_id = ?", *f.CreditsBlockID))
	}
	return q
}

func (r *milestoneProgressRepo) ListIDs(dbc dbctx.Context, f ProgressFilter) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if f.CourseID == uuid.Nil {
		return ids, fmt.Errorf("missing course_id")
	}
	if err := r.filtered(dbc, f).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *milestoneProgressRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.MilestoneProgress{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// matchingIDs selects the ids behind f as a subquery, so bulk writes never
// bind one parameter per row.
func (r *milestoneProgressRepo) matchingIDs(dbc dbctx.Context, f ProgressFilter) *gorm.DB {
	return r.filtered(dbc, f).Select("id")
}

func (r *milestoneProgressRepo) BulkRemoveBlock(dbc dbctx.Context, f ProgressFilter, blockID uuid.UUID) (int64, error) {
	if f.CourseID == uuid.Nil || blockID == uuid.Nil {
		return 0, nil
	}
	db := dbc.DB(r.db)
	const credited = "SELECT %s FROM milestone_progress_block mpb WHERE mpb.milestone_progress_id = milestone_progress.id AND mpb.block_id = ?"
	res := db.Model(&types.MilestoneProgress{}).
		Where("id IN (?)", r.matchingIDs(dbc, f)).
		Where(fmt.Sprintf("EXISTS ("+credited+")", "1"), blockID).
		Updates(map[string]interface{}{
			"count":       gorm.Expr("count - 1"),
			"total_score": gorm.Expr(fmt.Sprintf("total_score - COALESCE(("+credited+"), 0)", "mpb.score"), blockID),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := db.Where("milestone_progress_id IN (?) AND block_id = ?", r.matchingIDs(dbc, f), blockID).
		Delete(&types.MilestoneProgressBlock{}).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func (r *milestoneProgressRepo) DeleteMatching(dbc dbctx.Context, f ProgressFilter) (int64, error) {
	if f.CourseID == uuid.Nil {
		return 0, fmt.Errorf("missing course_id")
	}
	db := dbc.DB(r.db)
	if err := db.Where("milestone_progress_id IN (?)", r.matchingIDs(dbc, f)).Delete(&types.MilestoneProgressBlock{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("id IN (?)", r.matchingIDs(dbc, f)).Delete(&types.MilestoneProgress{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *milestoneProgressRepo) CountAchieved(dbc dbctx.Context, courseID, studentID uuid.UUID, milestoneIDs []uuid.UUID) (int64, error) {
	if courseID == uuid.Nil || studentID == uuid.Nil || len(milestoneIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := dbc.DB(r.db).
		Model(&types.MilestoneProgress{}).
		Where("course_id = ? AND student_id = ? AND achieved = ? AND milestone_id IN ?", courseID, studentID, true, milestoneIDs).
		Count(&n).Error
	return n, err
}
