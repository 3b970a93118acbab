package courses

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

// AnswerQuery narrows a student's answers within one course.
type AnswerQuery struct {
	CourseID     uuid.UUID
	StudentID    uuid.UUID
	AssessmentID *uuid.UUID
	GradedOnly   bool
}

type SubmittedAnswerRepo interface {
	Create(dbc dbctx.Context, answers []*types.SubmittedAnswer) ([]*types.SubmittedAnswer, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SubmittedAnswer, error)
	// List returns matching answers with their Assessment preloaded.
	List(dbc dbctx.Context, q AnswerQuery) ([]*types.SubmittedAnswer, error)
	UpdateGrade(dbc dbctx.Context, id uuid.UUID, status types.AnswerStatus, score int) error
}

type submittedAnswerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmittedAnswerRepo(db *gorm.DB, baseLog *logger.Logger) SubmittedAnswerRepo {
	return &submittedAnswerRepo{db: db, log: baseLog.With("repo", "SubmittedAnswerRepo")}
}

func (r *submittedAnswerRepo) Create(dbc dbctx.Context, answers []*types.SubmittedAnswer) ([]*types.SubmittedAnswer, error) {
	if len(answers) == 0 {
		return []*types.SubmittedAnswer{}, nil
	}
	if err := dbc.DB(r.db).Omit("Assessment").Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

// GetByID returns the answer with its Assessment preloaded, or nil when absent.
func (r *submittedAnswerRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SubmittedAnswer, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.SubmittedAnswer
	err := dbc.DB(r.db).
		Preload("Assessment").
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

func (r *submittedAnswerRepo) List(dbc dbctx.Context, q AnswerQuery) ([]*types.SubmittedAnswer, error) {
	var out []*types.SubmittedAnswer
	if q.CourseID == uuid.Nil || q.StudentID == uuid.Nil {
		return out, nil
	}
	db := dbc.DB(r.db)
	query := db.Preload("Assessment").
		Where("course_id = ? AND student_id = ?", q.CourseID, q.StudentID)
	if q.AssessmentID != nil && *q.AssessmentID != uuid.Nil {
		query = query.Where("assessment_id = ?", *q.AssessmentID)
	}
	if q.GradedOnly {
		query = query.Where("assessment_id IN (?)",
			db.Model(&types.Assessment{}).Select("id").Where("graded = ?", true))
	}
	if err := query.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *submittedAnswerRepo) UpdateGrade(dbc dbctx.Context, id uuid.UUID, status types.AnswerStatus, score int) error {
	if id == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.SubmittedAnswer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"score":      score,
			"updated_at": time.Now().UTC(),
		}).Error
}
