package milestones

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type TrackingEventRepo interface {
	Create(dbc dbctx.Context, events []*types.TrackingEvent) ([]*types.TrackingEvent, error)
	// List returns events for the pair, oldest first. An empty eventType matches all.
	List(dbc dbctx.Context, courseID, studentID uuid.UUID, eventType string) ([]*types.TrackingEvent, error)
}

type trackingEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrackingEventRepo(db *gorm.DB, baseLog *logger.Logger) TrackingEventRepo {
	return &trackingEventRepo{db: db, log: baseLog.With("repo", "TrackingEventRepo")}
}

func (r *trackingEventRepo) Create(dbc dbctx.Context, events []*types.TrackingEvent) ([]*types.TrackingEvent, error) {
	if len(events) == 0 {
		return []*types.TrackingEvent{}, nil
	}
	if err := dbc.DB(r.db).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *trackingEventRepo) List(dbc dbctx.Context, courseID, studentID uuid.UUID, eventType string) ([]*types.TrackingEvent, error) {
	var out []*types.TrackingEvent
	if courseID == uuid.Nil || studentID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("course_id = ? AND student_id = ?", courseID, studentID)
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	if err := q.Order("occurred_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
