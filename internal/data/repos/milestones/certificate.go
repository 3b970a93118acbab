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

type CertificateRepo interface {
	Get(dbc dbctx.Context, courseID, studentID uuid.UUID) (*types.Certificate, error)
	CreateIfAbsent(dbc dbctx.Context, courseID, studentID uuid.UUID, issuedAt time.Time) (*types.Certificate, bool, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return &certificateRepo{db: db, log: baseLog.With("repo", "CertificateRepo")}
}

func (r *certificateRepo) Get(dbc dbctx.Context, courseID, studentID uuid.UUID) (*types.Certificate, error) {
	if courseID == uuid.Nil || studentID == uuid.Nil {
		return nil, nil
	}
	var out types.Certificate
	err := dbc.DB(r.db).Where("course_id = ? AND student_id = ?", courseID, studentID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *certificateRepo) CreateIfAbsent(dbc dbctx.Context, courseID, studentID uuid.UUID, issuedAt time.Time) (*types.Certificate, bool, error) {
	if courseID == uuid.Nil || studentID == uuid.Nil {
		return nil, false, fmt.Errorf("missing course_id or student_id")
	}
	row := &types.Certificate{
		ID:        uuid.New(),
		CourseID:  courseID,
		StudentID: studentID,
		IssuedAt:  issuedAt.UTC(),
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
