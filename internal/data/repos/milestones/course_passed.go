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

type CoursePassedRepo interface {
	Get(dbc dbctx.Context, courseID, studentID uuid.UUID) (*types.CoursePassed, error)
	// CreateIfAbsent reports true only when this call wrote the row.
	CreateIfAbsent(dbc dbctx.Context, courseID, studentID uuid.UUID, passedAt time.Time) (*types.CoursePassed, bool, error)
}

type coursePassedRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCoursePassedRepo(db *gorm.DB, baseLog *logger.Logger) CoursePassedRepo {
	return &coursePassedRepo{db: db, log: baseLog.With("repo", "CoursePassedRepo")}
}

func (r *coursePassedRepo) Get(dbc dbctx.Context, courseID, studentID uuid.UUID) (*types.CoursePassed, error) {
	if courseID == uuid.Nil || studentID == uuid.Nil {
		return nil, nil
	}
	var out types.CoursePassed
	err := dbc.DB(r.db).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *coursePassedRepo) CreateIfAbsent(dbc dbctx.Context, courseID, studentID uuid.UUID, passedAt time.Time) (*types.CoursePassed, bool, error) {
	if courseID == uuid.Nil || studentID == uuid.Nil {
		return nil, false, fmt.Errorf("missing course_id or student_id")
	}
	row := &types.CoursePassed{
		ID:        uuid.New(),
		CourseID:  courseID,
		StudentID: studentID,
		PassedAt:  passedAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.Get(dbc, courseID, studentID)
		return existing, false, err
	}
	return row, true, nil
}
